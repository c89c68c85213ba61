package models

import (
	"time"

	"gorm.io/gorm"
)

// Candidate statuses.
const (
	CandidateStatusPending    = "pending"
	CandidateStatusScheduled  = "scheduled"
	CandidateStatusInProgress = "in-progress"
	CandidateStatusCompleted  = "completed"
	CandidateStatusAbandoned  = "abandoned"
)

// Candidate represents a person being interviewed. Name, Email and Phone are
// stored encrypted; EmailDigest is a keyed hash kept alongside so equality
// lookups still work. Encryption and decryption happen in the repository
// layer, never on field mutation.
type Candidate struct {
	gorm.Model
	CandidateID string `gorm:"uniqueIndex;not null" json:"candidateId"`
	Name        string `gorm:"not null" json:"name"`
	Email       string `gorm:"not null" json:"email"`
	EmailDigest string `gorm:"index;not null" json:"-"`
	Phone       string `json:"phone"`
	Role        string `gorm:"not null" json:"role"`
	Status      string `gorm:"not null;default:pending" json:"status"`

	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	GDPRConsent bool       `json:"gdprConsent"`
}

// Active reports whether the candidate still has an interview underway.
func (c *Candidate) Active() bool {
	return c.Status == CandidateStatusPending || c.Status == CandidateStatusInProgress
}
