package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScheduleItem is a persisted task placement produced by a
// ScheduleRun. Invariant: StartAt < EndAt (spec.md §3).
type ScheduleItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID          uuid.UUID      `gorm:"type:uuid;index;not null" json:"org_id"`
	ScheduleRunID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"schedule_run_id"`
	TaskID         uuid.UUID      `gorm:"type:uuid;index;not null" json:"task_id"`
	TechnicianID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"technician_id"`
	BayID          uuid.UUID      `gorm:"type:uuid;index;not null" json:"bay_id"`
	StartAt        time.Time      `gorm:"not null" json:"start_at"`
	EndAt          time.Time      `gorm:"not null" json:"end_at"`
	IsLocked       bool           `gorm:"not null;default:false" json:"is_locked"`
	Why            datatypes.JSON `gorm:"type:jsonb" json:"why,omitempty"`
	TechnicianName string         `gorm:"-" json:"technician_name,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (ScheduleItem) TableName() string { return "schedule_items" }
