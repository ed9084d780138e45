package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobType enumerates the closed set the Job Record Store validates
// enqueue() against (spec.md §4.1).
type JobType string

const (
	JobTypeAIEnrich    JobType = "ai_enrich"
	JobTypeScheduleRun JobType = "schedule_run"
)

// Job is the durable unit of work dispatched by the Queue Dispatcher.
// Invariant: (Status == running) <=> (LockedBy != nil && LockedAt != nil).
type Job struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"org_id"`
	Type        string         `gorm:"index;not null" json:"type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Status      JobStatus      `gorm:"index;not null;default:queued" json:"status"`
	RunAfter    time.Time      `gorm:"index;not null" json:"run_after"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts int            `gorm:"not null;default:3" json:"max_attempts"`
	LockedAt    *time.Time     `json:"locked_at,omitempty"`
	LockedBy    *string        `json:"locked_by,omitempty"`
	Error       *string        `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }
