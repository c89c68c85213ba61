package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"peerprep/interview/internal/audit"
	"peerprep/interview/internal/models"
	"peerprep/interview/internal/repositories"
)

// ExpirerConfig configures the stale-session sweep.
type ExpirerConfig struct {
	Schedule   string        // cron schedule (e.g. "@every 10m")
	SessionTTL time.Duration // how long an in-progress session may sit idle
	Enabled    bool
}

// SessionExpirerJob periodically expires in-progress sessions whose last
// update is older than the TTL, marking their candidates abandoned.
type SessionExpirerJob struct {
	store  *repositories.Store
	audit  audit.Recorder
	config *ExpirerConfig
	cron   *cron.Cron
	logger *zap.Logger
}

func NewSessionExpirerJob(store *repositories.Store, auditor audit.Recorder, config *ExpirerConfig, logger *zap.Logger) *SessionExpirerJob {
	return &SessionExpirerJob{
		store:  store,
		audit:  auditor,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduled sweep.
func (sej *SessionExpirerJob) Start() error {
	if !sej.config.Enabled {
		sej.logger.Info("session expiry sweep is disabled, skipping scheduler")
		return nil
	}

	_, err := sej.cron.AddFunc(sej.config.Schedule, func() {
		if _, err := sej.RunSweep(context.Background()); err != nil {
			sej.logger.Error("session expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session expiry sweep: %w", err)
	}

	sej.cron.Start()
	sej.logger.Info("session expirer started",
		zap.String("schedule", sej.config.Schedule),
		zap.Duration("sessionTTL", sej.config.SessionTTL))
	return nil
}

// Stop stops the scheduled sweep.
func (sej *SessionExpirerJob) Stop() {
	if sej.cron != nil {
		sej.cron.Stop()
		sej.logger.Info("session expirer stopped")
	}
}

// RunSweep performs a single sweep and returns how many sessions it expired.
// Each session is expired in its own transaction so one bad row cannot stall
// the rest of the sweep.
func (sej *SessionExpirerJob) RunSweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-sej.config.SessionTTL)
	stale, err := sej.store.Sessions.FindStaleInProgress(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	expired := 0
	for i := range stale {
		session := &stale[i]
		err := sej.store.Atomically(ctx, func(tx *repositories.Store) error {
			session.Status = models.SessionStatusExpired
			if err := tx.Sessions.Save(ctx, session); err != nil {
				return err
			}
			err := tx.Candidates.UpdateStatus(ctx, session.CandidateID, models.CandidateStatusAbandoned)
			if errors.Is(err, repositories.ErrCandidateNotFound) {
				// Candidate already soft-deleted; expiring the session is enough.
				return nil
			}
			return err
		})
		if err != nil {
			sej.logger.Warn("failed to expire session",
				zap.String("sessionId", session.SessionID), zap.Error(err))
			continue
		}
		sej.audit.Record(ctx, "interview.expired", "interview_session", session.SessionID, map[string]any{
			"candidateId": session.CandidateID,
		})
		expired++
	}

	sej.logger.Info("session expiry sweep finished",
		zap.Int("stale", len(stale)), zap.Int("expired", expired))
	return expired, nil
}

// RunManual runs a sweep on demand.
func (sej *SessionExpirerJob) RunManual(ctx context.Context) (int, error) {
	return sej.RunSweep(ctx)
}
