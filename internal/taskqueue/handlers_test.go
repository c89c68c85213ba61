package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peerprep/interview/internal/llm"
	"peerprep/interview/internal/prompts"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, *llm.Usage, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", nil, s.err
	}
	return s.response, &llm.Usage{Model: "gemini-2.0-flash", InputTokens: 100, OutputTokens: 50}, nil
}

func (s *stubProvider) GetProviderName() string { return "stub" }

func testHandlers(t *testing.T, provider llm.Provider) *Handlers {
	t.Helper()
	pm, err := prompts.NewManager()
	require.NoError(t, err)
	return &Handlers{Provider: provider, Prompts: pm, Cost: llm.NewCostEstimator(nil)}
}

func TestGradeAnswerHandler(t *testing.T) {
	provider := &stubProvider{response: `{"score": 85, "feedback": "thorough answer"}`}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(GradeAnswerPayload{
		Question: "Explain goroutines", Answer: "They are lightweight threads", Difficulty: "medium",
		MinScore: 0, MaxScore: 100,
	})
	raw, err := h.GradeAnswer()(context.Background(), payload)
	require.NoError(t, err)

	var grade GradeResult
	require.NoError(t, json.Unmarshal(raw, &grade))
	assert.Equal(t, 85, grade.Score)
	assert.Equal(t, "thorough answer", grade.Feedback)

	// The rendered prompt carries the sanitized inputs and bounds.
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "Explain goroutines")
	assert.Contains(t, provider.prompts[0], "100")
}

func TestGradeAnswerHandlerFencedOutput(t *testing.T) {
	provider := &stubProvider{response: "```json\n{\"score\": 40, \"feedback\": \"shallow\"}\n```"}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(GradeAnswerPayload{Question: "q", Answer: "a"})
	raw, err := h.GradeAnswer()(context.Background(), payload)
	require.NoError(t, err)

	var grade GradeResult
	require.NoError(t, json.Unmarshal(raw, &grade))
	assert.Equal(t, 40, grade.Score)
}

func TestGradeAnswerHandlerMalformedOutput(t *testing.T) {
	provider := &stubProvider{response: "I would give this a 7/10"}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(GradeAnswerPayload{Question: "q", Answer: "a"})
	_, err := h.GradeAnswer()(context.Background(), payload)
	assert.ErrorContains(t, err, "malformed grade")
}

func TestGenerateQuestionsHandler(t *testing.T) {
	provider := &stubProvider{response: `[
		{"text": "What is a slice?", "difficulty": "Easy", "category": "go"},
		{"text": "Design a rate limiter", "difficulty": "hard", "category": "systems"}
	]`}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(GenerateQuestionsPayload{Role: "Backend", Count: 2})
	raw, err := h.GenerateQuestions()(context.Background(), payload)
	require.NoError(t, err)

	var result GenerateQuestionsResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Questions, 2)
	// Difficulties are normalized to lowercase.
	assert.Equal(t, "easy", result.Questions[0].Difficulty)
}

func TestGenerateQuestionsHandlerEmptyList(t *testing.T) {
	provider := &stubProvider{response: `[]`}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(GenerateQuestionsPayload{Role: "Backend", Count: 3})
	_, err := h.GenerateQuestions()(context.Background(), payload)
	assert.ErrorContains(t, err, "no questions")
}

func TestSummarizeHandler(t *testing.T) {
	provider := &stubProvider{response: "  Strong candidate overall.  "}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(SummaryPayload{Transcript: "Q1: ..."})
	raw, err := h.Summarize()(context.Background(), payload)
	require.NoError(t, err)

	var result SummaryResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "Strong candidate overall.", result.Summary)
}

func TestHandlersPropagateProviderErrors(t *testing.T) {
	provider := &stubProvider{err: &llm.ProviderError{Provider: "stub", Code: llm.ErrCodeRateLimit, Message: "slow down"}}
	h := testHandlers(t, provider)

	payload, _ := json.Marshal(SummaryPayload{Transcript: "t"})
	_, err := h.Summarize()(context.Background(), payload)

	var provErr *llm.ProviderError
	assert.True(t, errors.As(err, &provErr))
}
