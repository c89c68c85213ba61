package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditRecord captures a single auditable action against an entity.
type AuditRecord struct {
	gorm.Model
	Action     string         `gorm:"not null;index" json:"action"`
	EntityType string         `gorm:"not null" json:"entityType"`
	EntityID   string         `gorm:"not null;index" json:"entityId"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}
