package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
)

func testConfig() config.ScoringConfig {
	return config.ScoringConfig{
		MinScorePerQuestion: 0,
		MaxScorePerQuestion: 100,
		FallbackScore:       50,
		DifficultyMultipliers: map[string]float64{
			config.DifficultyEasy:   1.0,
			config.DifficultyMedium: 1.2,
			config.DifficultyHard:   1.5,
		},
		PartialCreditEnabled: true,
		MinAnswerLength:      100,
		MaxAnswerLength:      2000,
		OverLengthLeniency:   0.9,
	}
}

func TestClamp(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 0, Clamp(-10, cfg))
	assert.Equal(t, 100, Clamp(250, cfg))
	assert.Equal(t, 42, Clamp(42, cfg))
}

func TestWeightedScoreMonotonicInDifficulty(t *testing.T) {
	cfg := testConfig()
	base := 60

	easy := WeightedScore(base, config.DifficultyEasy, 1.0, cfg)
	medium := WeightedScore(base, config.DifficultyMedium, 1.0, cfg)
	hard := WeightedScore(base, config.DifficultyHard, 1.0, cfg)

	assert.Equal(t, 60, easy)
	assert.Equal(t, 72, medium)
	assert.Equal(t, 90, hard)
	assert.GreaterOrEqual(t, hard, medium)
	assert.GreaterOrEqual(t, medium, easy)
}

func TestWeightedScoreClampsAtMax(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 100, WeightedScore(90, config.DifficultyHard, 1.5, cfg))
}

func TestWeightedScoreUnknownDifficultyAndZeroWeight(t *testing.T) {
	cfg := testConfig()
	// Both fall back to neutral multipliers.
	assert.Equal(t, 55, WeightedScore(55, "brutal", 0, cfg))
}

func TestPartialCreditMonotonicUpToMinLength(t *testing.T) {
	cfg := testConfig()
	base := 80

	previous := -1
	for _, length := range []int{0, 5, 25, 50, 75, 99, 100, 150} {
		scored := PartialCredit(base, length, cfg)
		assert.GreaterOrEqual(t, scored, previous, "length %d", length)
		previous = scored
	}
	// Full credit once the minimum expected length is reached.
	assert.Equal(t, base, PartialCredit(base, cfg.MinAnswerLength, cfg))
}

func TestPartialCreditFloorAndOverLength(t *testing.T) {
	cfg := testConfig()

	// Very short answers bottom out at the 0.1 floor rather than zero.
	assert.Equal(t, 8, PartialCredit(80, 1, cfg))

	// Overlong answers get the mild leniency penalty, not a proportional one.
	assert.Equal(t, 72, PartialCredit(80, 5000, cfg))
}

func TestPartialCreditDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.PartialCreditEnabled = false
	assert.Equal(t, 80, PartialCredit(80, 1, cfg))
}

func TestAggregate(t *testing.T) {
	cfg := testConfig()
	questions := []models.Question{
		{ID: "q1", Score: 60, Answered: true, Difficulty: config.DifficultyEasy, Weight: 1.0, Category: "general"},
		{ID: "q2", Score: 80, Answered: true, Difficulty: config.DifficultyHard, Weight: 1.0, Category: "systems"},
		{ID: "q3", Difficulty: config.DifficultyMedium, Weight: 1.25}, // never answered
	}

	breakdown := Aggregate(questions, cfg)

	assert.Len(t, breakdown.Questions, 3)
	assert.Equal(t, 140, breakdown.TotalScore)
	assert.Equal(t, 60+100, breakdown.TotalWeighted) // hard answer clamps at 100
	assert.Equal(t, 47, breakdown.AverageScore)
	assert.Equal(t, 53, breakdown.WeightedScore)
	assert.Equal(t, 0, breakdown.Questions[2].BaseScore)
	assert.Equal(t, 0, breakdown.Questions[2].WeightedScore)
}

func TestAggregateEmpty(t *testing.T) {
	breakdown := Aggregate(nil, testConfig())
	assert.Zero(t, breakdown.TotalScore)
	assert.Zero(t, breakdown.AverageScore)
}

func TestAdjustClampsAndRecordsHistory(t *testing.T) {
	cfg := testConfig()
	q := &models.Question{ID: "q1", Score: 60, Answered: true}

	adj := Adjust(q, 150, "generous grading", "admin@x.com", cfg)

	assert.Equal(t, 60, adj.OriginalScore)
	assert.Equal(t, 100, adj.AdjustedScore)
	assert.Equal(t, "generous grading", adj.Reason)
	assert.Equal(t, "admin@x.com", adj.AdjustedBy)
	assert.True(t, adj.IsManualAdjustment)
	assert.False(t, adj.AdjustedAt.IsZero())
}
