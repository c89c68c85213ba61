package taskqueue

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
)

// Pipeline is the producer-side facade over the task queue: it sanitizes
// inputs, enqueues the job, and awaits the reply. The orchestrator and the
// question service depend on this, not on redis directly.
type Pipeline struct {
	client *Client
	cfg    config.QueueConfig
}

func NewPipeline(client *Client, cfg config.QueueConfig) *Pipeline {
	return &Pipeline{client: client, cfg: cfg}
}

// GenerateQuestions runs the generation job and shuffles the returned list to
// avoid positional bias from the model.
func (p *Pipeline) GenerateQuestions(ctx context.Context, role, resume string, count int) ([]GeneratedQuestion, error) {
	payload := GenerateQuestionsPayload{
		Role:   SanitizeText(role, 200),
		Resume: SanitizeText(resume, p.cfg.MaxResumeLength),
		Count:  count,
	}
	var result GenerateQuestionsResult
	if err := p.client.Do(ctx, KindGenerateQuestions, payload, p.cfg.AwaitTimeout, &result); err != nil {
		return nil, err
	}

	questions := result.Questions
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions, nil
}

// GradeAnswer runs the grading job for one question/answer pair.
func (p *Pipeline) GradeAnswer(ctx context.Context, question models.Question, answer string, scoring config.ScoringConfig) (*GradeResult, error) {
	payload := GradeAnswerPayload{
		Question:   SanitizeText(question.Text, 1000),
		Answer:     SanitizeText(answer, p.cfg.MaxAnswerLength),
		Difficulty: question.Difficulty,
		MinScore:   scoring.MinScorePerQuestion,
		MaxScore:   scoring.MaxScorePerQuestion,
	}
	var result GradeResult
	if err := p.client.Do(ctx, KindGradeAnswer, payload, p.cfg.AwaitTimeout, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Summarize runs the summary job over the full graded question list.
func (p *Pipeline) Summarize(ctx context.Context, questions []models.Question) (string, error) {
	var transcript strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&transcript, "Q%d (%s): %s\n", i+1, q.Difficulty, q.Text)
		answer := q.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&transcript, "Answer: %s\nScore: %d\n\n", SanitizeText(answer, p.cfg.MaxAnswerLength), q.Score)
	}

	payload := SummaryPayload{Transcript: transcript.String()}
	var result SummaryResult
	if err := p.client.Do(ctx, KindGenerateSummary, payload, p.cfg.AwaitTimeout, &result); err != nil {
		return "", err
	}
	return result.Summary, nil
}
