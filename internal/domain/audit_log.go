package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of state-boundary transitions
// (spec.md §2). Rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"org_id"`
	EntityType string         `gorm:"index;not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"entity_id"`
	Event      string         `gorm:"not null" json:"event"`
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
