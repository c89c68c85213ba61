package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
	"peerprep/interview/internal/taskqueue"
)

type fakeGenerator struct {
	questions []taskqueue.GeneratedQuestion
	err       error
	lastCount int
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, role, resume string, count int) ([]taskqueue.GeneratedQuestion, error) {
	f.lastCount = count
	return f.questions, f.err
}

func testQuestionConfig() config.QuestionConfig {
	return config.QuestionConfig{
		MinQuestionCount:     3,
		MaxQuestionCount:     10,
		DefaultQuestionCount: 5,
		DefaultTimeLimits: map[string]int{
			config.DifficultyEasy:   120,
			config.DifficultyMedium: 180,
			config.DifficultyHard:   300,
		},
		DifficultyWeights: map[string]float64{
			config.DifficultyEasy:   1.0,
			config.DifficultyMedium: 1.25,
			config.DifficultyHard:   1.5,
		},
	}
}

func newTestService(t *testing.T, gen Generator) *Service {
	t.Helper()
	svc, err := NewService(gen, testQuestionConfig(), zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestBuildQuestionSetExactCount(t *testing.T) {
	gen := &fakeGenerator{questions: []taskqueue.GeneratedQuestion{
		{Text: "gen one", Difficulty: "medium", Category: "go"},
		{Text: "gen two", Difficulty: "hard", Category: "systems"},
		{Text: "gen three", Difficulty: "easy", Category: "go"},
	}}
	svc := newTestService(t, gen)

	set := svc.BuildQuestionSet(context.Background(), "backend", "", 5, nil)

	assert.Len(t, set, 5)
	for _, q := range set {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Text)
		assert.NotZero(t, q.TimeLimitSec)
		assert.NotZero(t, q.Weight)
	}
}

func TestBuildQuestionSetCustomFirst(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	custom := []models.Question{
		{Text: "our own question", Difficulty: "easy"},
		{Text: "another of ours", Difficulty: "hard"},
	}
	set := svc.BuildQuestionSet(context.Background(), "backend", "", 5, custom)

	require.Len(t, set, 5)
	assert.Equal(t, "our own question", set[0].Text)
	assert.Equal(t, "another of ours", set[1].Text)
	assert.True(t, set[0].IsCustom)
	assert.True(t, set[1].IsCustom)
	assert.False(t, set[2].IsCustom)
}

func TestBuildQuestionSetCustomTruncated(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	custom := make([]models.Question, 6)
	for i := range custom {
		custom[i] = models.Question{Text: string(rune('a' + i)), Difficulty: "easy"}
	}
	set := svc.BuildQuestionSet(context.Background(), "backend", "", 3, custom)

	assert.Len(t, set, 3)
	for _, q := range set {
		assert.True(t, q.IsCustom)
	}
}

func TestBuildQuestionSetCountClamped(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	assert.Len(t, svc.BuildQuestionSet(context.Background(), "backend", "", 1, nil), 3)
	assert.Len(t, svc.BuildQuestionSet(context.Background(), "backend", "", 0, nil), 5)
	// 50 exceeds the max but the default pool plus templates still cap the set.
	set := svc.BuildQuestionSet(context.Background(), "backend", "", 50, nil)
	assert.LessOrEqual(t, len(set), 10)
}

func TestBuildQuestionSetGenerationFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model down")}
	svc := newTestService(t, gen)

	set := svc.BuildQuestionSet(context.Background(), "frontend", "resume text", 5, nil)

	assert.Len(t, set, 5)
	for _, q := range set {
		assert.NotEmpty(t, q.Text)
	}
}

func TestFallbackSetShuffledAndSized(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	set := svc.FallbackSet(5)
	assert.Len(t, set, 5)
	for _, q := range set {
		assert.NotEmpty(t, q.ID)
		assert.NotZero(t, q.TimeLimitSec)
	}
}

func TestFallbackSetPadsBeyondPool(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	// 10 exceeds the default pool size; the pool cycles rather than
	// under-filling the set.
	set := svc.FallbackSet(10)
	require.Len(t, set, 10)

	ids := make(map[string]bool)
	for _, q := range set {
		assert.NotEmpty(t, q.Text)
		ids[q.ID] = true
	}
	assert.Len(t, ids, 10)
}

func TestDefaultQuestionsPureShuffle(t *testing.T) {
	a := DefaultQuestions(42)
	b := DefaultQuestions(42)
	c := DefaultQuestions(7)

	// Same seed, same order; the pool itself is never mutated.
	require.Equal(t, a, b)
	assert.Len(t, c, len(a))

	seen := make(map[string]bool)
	for _, q := range a {
		seen[q.Text] = true
	}
	for _, q := range c {
		assert.True(t, seen[q.Text])
	}
}

func TestCalibrateDefaults(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	q := svc.Calibrate(models.Question{Text: "x", Difficulty: "HARD "})
	assert.Equal(t, config.DifficultyHard, q.Difficulty)
	assert.Equal(t, 300, q.TimeLimitSec)
	assert.Equal(t, 1.5, q.Weight)
	assert.Equal(t, "general", q.Category)

	// Unknown difficulty normalizes to medium.
	q = svc.Calibrate(models.Question{Text: "y", Difficulty: "impossible"})
	assert.Equal(t, config.DifficultyMedium, q.Difficulty)
}
