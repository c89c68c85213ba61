package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerprep/interview/internal/models"
)

// Recorder is the audit-log write contract. Implementations must never let a
// failed write abort the operation being audited.
type Recorder interface {
	Record(ctx context.Context, action, entityType, entityID string, metadata map[string]any)
}

// DBRecorder persists audit records to the database. Failures are logged and
// swallowed; auditing is fire-and-forget.
type DBRecorder struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewDBRecorder(db *gorm.DB, logger *zap.Logger) *DBRecorder {
	return &DBRecorder{DB: db, Logger: logger}
}

func (r *DBRecorder) Record(ctx context.Context, action, entityType, entityID string, metadata map[string]any) {
	record := models.AuditRecord{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			record.Metadata = raw
		}
	}
	if err := r.DB.WithContext(ctx).Create(&record).Error; err != nil {
		r.Logger.Warn("audit record write failed",
			zap.String("action", action),
			zap.String("entityId", entityID),
			zap.Error(err))
	}
}

// Nop discards every record; useful default for tests.
type Nop struct{}

func (Nop) Record(ctx context.Context, action, entityType, entityID string, metadata map[string]any) {}
