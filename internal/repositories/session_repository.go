package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"peerprep/interview/internal/models"
)

var ErrSessionNotFound = errors.New("interview session not found")

type SessionRepository struct {
	DB *gorm.DB
}

func (r *SessionRepository) Create(ctx context.Context, session *models.InterviewSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

// GetByID loads a session by its public id. Soft-deleted sessions are treated
// as not found.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.DB.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Save persists the full session row, questions included.
func (r *SessionRepository) Save(ctx context.Context, session *models.InterviewSession) error {
	return r.DB.WithContext(ctx).Save(session).Error
}

// SoftDelete marks the session deleted without removing the row.
func (r *SessionRepository) SoftDelete(ctx context.Context, sessionID string) error {
	result := r.DB.WithContext(ctx).Delete(&models.InterviewSession{}, "session_id = ?", sessionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// FindStaleInProgress returns in-progress sessions not updated since the
// cutoff, for the expiry sweep.
func (r *SessionRepository) FindStaleInProgress(ctx context.Context, cutoff time.Time) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.SessionStatusInProgress).
		Where("updated_at < ?", cutoff).
		Find(&sessions).Error
	return sessions, err
}
