package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"peerprep/interview/internal/llm"
	"peerprep/interview/internal/prompts"
)

// GenerateQuestionsPayload asks the model for a question list.
type GenerateQuestionsPayload struct {
	Role   string `json:"role"`
	Resume string `json:"resume"`
	Count  int    `json:"count"`
}

// GeneratedQuestion is one model-produced question before the question
// service calibrates it (ids, time limits, weights).
type GeneratedQuestion struct {
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

type GenerateQuestionsResult struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// GradeAnswerPayload asks the model to grade one answer.
type GradeAnswerPayload struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
	MinScore   int    `json:"minScore"`
	MaxScore   int    `json:"maxScore"`
}

type GradeResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// SummaryPayload asks the model for a final interview summary.
type SummaryPayload struct {
	Transcript string `json:"transcript"`
}

type SummaryResult struct {
	Summary string `json:"summary"`
}

// Handlers builds the pure worker functions for each job kind. They hold a
// provider and prompt manager but no session state.
type Handlers struct {
	Provider llm.Provider
	Prompts  *prompts.Manager
	Cost     *llm.CostEstimator
}

func (h *Handlers) complete(ctx context.Context, task string, vars map[string]string) (string, error) {
	prompt, err := h.Prompts.Build(task, vars)
	if err != nil {
		return "", err
	}
	text, usage, err := h.Provider.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if h.Cost != nil {
		h.Cost.Record(usage)
	}
	return text, nil
}

// GenerateQuestions returns the generate-questions handler.
func (h *Handlers) GenerateQuestions() Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var req GenerateQuestionsPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode generate-questions payload: %w", err)
		}

		text, err := h.complete(ctx, prompts.TaskGenerateQuestions, map[string]string{
			"Role":   req.Role,
			"Resume": req.Resume,
			"Count":  strconv.Itoa(req.Count),
		})
		if err != nil {
			return nil, err
		}

		var questions []GeneratedQuestion
		if err := parseModelJSON(text, &questions); err != nil {
			return nil, fmt.Errorf("malformed question list from model: %w", err)
		}
		if len(questions) == 0 {
			return nil, fmt.Errorf("model returned no questions")
		}
		for i := range questions {
			questions[i].Difficulty = strings.ToLower(strings.TrimSpace(questions[i].Difficulty))
		}
		return json.Marshal(GenerateQuestionsResult{Questions: questions})
	}
}

// GradeAnswer returns the grade-answer handler.
func (h *Handlers) GradeAnswer() Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var req GradeAnswerPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode grade-answer payload: %w", err)
		}

		text, err := h.complete(ctx, prompts.TaskGradeAnswer, map[string]string{
			"Question":   req.Question,
			"Answer":     req.Answer,
			"Difficulty": req.Difficulty,
			"MinScore":   strconv.Itoa(req.MinScore),
			"MaxScore":   strconv.Itoa(req.MaxScore),
		})
		if err != nil {
			return nil, err
		}

		var grade GradeResult
		if err := parseModelJSON(text, &grade); err != nil {
			return nil, fmt.Errorf("malformed grade from model: %w", err)
		}
		if grade.Feedback == "" {
			return nil, fmt.Errorf("model returned no feedback")
		}
		return json.Marshal(grade)
	}
}

// Summarize returns the generate-summary handler.
func (h *Handlers) Summarize() Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var req SummaryPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode summary payload: %w", err)
		}

		text, err := h.complete(ctx, prompts.TaskSummary, map[string]string{
			"Transcript": req.Transcript,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(SummaryResult{Summary: strings.TrimSpace(text)})
	}
}

// parseModelJSON decodes model output that may be wrapped in code fences.
func parseModelJSON(text string, out any) error {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return json.Unmarshal([]byte(strings.TrimSpace(cleaned)), out)
}
