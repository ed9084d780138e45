package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrder is the scheduling projection of a work order — the
// scheduler never sees the full work-order entity, only this view
// (spec.md §3).
type WorkOrder struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"org_id"`
	Priority   int        `gorm:"not null;default:3" json:"priority"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	PartsReady bool       `gorm:"not null;default:true" json:"parts_ready"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (WorkOrder) TableName() string { return "work_orders" }
