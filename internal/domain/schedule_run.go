package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduleRunStatus string

const (
	ScheduleRunQueued    ScheduleRunStatus = "queued"
	ScheduleRunRunning   ScheduleRunStatus = "running"
	ScheduleRunSucceeded ScheduleRunStatus = "succeeded"
	ScheduleRunFailed    ScheduleRunStatus = "failed"
)

// ScheduleRun is one invocation of the Constraint Scheduler over a
// bounded horizon (spec.md §3).
type ScheduleRun struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID            uuid.UUID         `gorm:"type:uuid;index;not null" json:"org_id"`
	HorizonStart     time.Time         `gorm:"not null" json:"horizon_start"`
	HorizonEnd       time.Time         `gorm:"not null" json:"horizon_end"`
	Status           ScheduleRunStatus `gorm:"index;not null;default:queued" json:"status"`
	Trigger          string            `json:"trigger"`
	LockedTaskCount  int               `json:"locked_task_count"`
	TaskCount        int               `json:"task_count"`
	SolverWallTimeMs *int              `json:"solver_wall_time_ms,omitempty"`
	ObjectiveValue   *int              `json:"objective_value,omitempty"`
	ObjectiveBreak   datatypes.JSON    `gorm:"column:objective_breakdown;type:jsonb" json:"objective_breakdown,omitempty"`
	SolverStatus     *string           `json:"solver_status,omitempty"`
	InfeasibleReason *string           `json:"infeasible_reason,omitempty"`
	CreatedBy        *uuid.UUID        `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (ScheduleRun) TableName() string { return "schedule_runs" }
