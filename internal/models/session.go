package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session statuses.
const (
	SessionStatusPending    = "pending"
	SessionStatusInProgress = "in-progress"
	SessionStatusCompleted  = "completed"
	SessionStatusAbandoned  = "abandoned"
	SessionStatusExpired    = "expired"
)

// Adjustment is an append-only audit record of a manual score override.
type Adjustment struct {
	OriginalScore      int       `json:"originalScore"`
	AdjustedScore      int       `json:"adjustedScore"`
	Reason             string    `json:"reason"`
	AdjustedBy         string    `json:"adjustedBy"`
	AdjustedAt         time.Time `json:"adjustedAt"`
	IsManualAdjustment bool      `json:"isManualAdjustment"`
}

// Question is one entry in a session's ordered question list. Questions live
// embedded in the session row as JSON rather than in their own table; they are
// only ever read and written through their owning session.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Difficulty   string       `json:"difficulty"`
	TimeLimitSec int          `json:"time"`
	Answer       string       `json:"answer"`
	Draft        string       `json:"draft"`
	Score        int          `json:"score"`
	Answered     bool         `json:"answered"`
	Feedback     string       `json:"feedback"`
	Weight       float64      `json:"weight"`
	Category     string       `json:"category"`
	Tags         []string     `json:"tags,omitempty"`
	IsCustom     bool         `json:"isCustom"`
	Adjustments  []Adjustment `json:"adjustments,omitempty"`
}

// QuestionScore is the per-question slice of a session's score breakdown.
type QuestionScore struct {
	QuestionID    string  `json:"questionId"`
	BaseScore     int     `json:"baseScore"`
	WeightedScore int     `json:"weightedScore"`
	Difficulty    string  `json:"difficulty"`
	Weight        float64 `json:"weight"`
	Category      string  `json:"category"`
}

// ScoreBreakdown aggregates raw and weighted scores across a full session.
type ScoreBreakdown struct {
	Questions     []QuestionScore `json:"questions"`
	TotalScore    int             `json:"totalScore"`
	TotalWeighted int             `json:"totalWeighted"`
	AverageScore  int             `json:"averageScore"`
	WeightedScore int             `json:"weightedScore"`
}

// InterviewSession is one candidate's single interview attempt. It references
// its candidate by id only; candidate status sync happens in the orchestrator,
// inside the same transaction whenever both records change together.
type InterviewSession struct {
	gorm.Model
	SessionID   string `gorm:"uniqueIndex;not null" json:"sessionId"`
	CandidateID string `gorm:"index;not null" json:"candidateId"`
	Status      string `gorm:"not null;default:pending" json:"status"`

	Questions            datatypes.JSONSlice[Question] `json:"questions"`
	CurrentQuestionIndex int                           `gorm:"default:0" json:"currentQuestionIndex"`

	Score          int                                `json:"score"`
	WeightedScore  int                                `json:"weightedScore"`
	ScoreBreakdown datatypes.JSONType[ScoreBreakdown] `json:"scoreBreakdown"`
	Summary        string                             `gorm:"type:text" json:"summary"`
}

// Finished reports whether every question has been answered.
func (s *InterviewSession) Finished() bool {
	return s.CurrentQuestionIndex >= len(s.Questions)
}
