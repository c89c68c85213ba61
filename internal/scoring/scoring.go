package scoring

import (
	"math"
	"time"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
)

// Clamp constrains score to the configured per-question bounds.
func Clamp(score int, cfg config.ScoringConfig) int {
	if score < cfg.MinScorePerQuestion {
		return cfg.MinScorePerQuestion
	}
	if score > cfg.MaxScorePerQuestion {
		return cfg.MaxScorePerQuestion
	}
	return score
}

// WeightedScore scales a base score by the difficulty multiplier and the
// question's own weight, rounding after weighting, then clamps.
func WeightedScore(base int, difficulty string, weight float64, cfg config.ScoringConfig) int {
	multiplier, ok := cfg.DifficultyMultipliers[difficulty]
	if !ok {
		multiplier = 1.0
	}
	if weight <= 0 {
		weight = 1.0
	}
	weighted := int(math.Round(float64(base) * multiplier * weight))
	return Clamp(weighted, cfg)
}

// PartialCredit scales a base score by a completeness ratio derived from the
// answer's length. Short answers are penalized proportionally down to a 0.1
// floor; answers beyond the max expected length get a mild leniency penalty
// instead of a harsh one. Disabled via config, in which case the base score
// passes through unchanged.
func PartialCredit(base int, answerLength int, cfg config.ScoringConfig) int {
	if !cfg.PartialCreditEnabled {
		return Clamp(base, cfg)
	}

	var ratio float64
	switch {
	case answerLength >= cfg.MaxAnswerLength:
		ratio = cfg.OverLengthLeniency
	case answerLength >= cfg.MinAnswerLength:
		ratio = 1.0
	default:
		ratio = float64(answerLength) / float64(cfg.MinAnswerLength)
		if ratio < 0.1 {
			ratio = 0.1
		}
	}

	return Clamp(int(math.Round(float64(base)*ratio)), cfg)
}

// Aggregate computes the per-question breakdown plus raw and weighted totals
// and averages across the whole question list. Unanswered questions
// contribute 0 to every aggregate.
func Aggregate(questions []models.Question, cfg config.ScoringConfig) models.ScoreBreakdown {
	breakdown := models.ScoreBreakdown{
		Questions: make([]models.QuestionScore, 0, len(questions)),
	}

	for _, q := range questions {
		weighted := 0
		if q.Answered {
			weighted = WeightedScore(q.Score, q.Difficulty, q.Weight, cfg)
		}
		breakdown.Questions = append(breakdown.Questions, models.QuestionScore{
			QuestionID:    q.ID,
			BaseScore:     q.Score,
			WeightedScore: weighted,
			Difficulty:    q.Difficulty,
			Weight:        q.Weight,
			Category:      q.Category,
		})
		breakdown.TotalScore += q.Score
		breakdown.TotalWeighted += weighted
	}

	if len(questions) > 0 {
		breakdown.AverageScore = int(math.Round(float64(breakdown.TotalScore) / float64(len(questions))))
		breakdown.WeightedScore = int(math.Round(float64(breakdown.TotalWeighted) / float64(len(questions))))
	}
	return breakdown
}

// Adjust clamps the requested override and produces the audit record for it.
// The caller appends the record to the question's history and overwrites the
// live score; prior adjustments are never touched.
func Adjust(q *models.Question, newScore int, reason, actor string, cfg config.ScoringConfig) models.Adjustment {
	return models.Adjustment{
		OriginalScore:      q.Score,
		AdjustedScore:      Clamp(newScore, cfg),
		Reason:             reason,
		AdjustedBy:         actor,
		AdjustedAt:         time.Now().UTC(),
		IsManualAdjustment: true,
	}
}
