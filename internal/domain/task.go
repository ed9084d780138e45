package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusScheduled  TaskStatus = "scheduled"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// Task is a unit of shop-floor work the scheduler may place.
// Invariant: LockFlag => all four lock fields populated and
// LockedStartAt < LockedEndAt (spec.md §3).
type Task struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;index;not null" json:"org_id"`
	WorkOrderID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"work_order_id"`
	Type                string     `json:"type"`
	Status              TaskStatus `gorm:"index;not null;default:todo" json:"status"`
	RequiredSkill       *string    `json:"required_skill,omitempty"`
	RequiredSkillIsHard bool       `json:"required_skill_is_hard"`
	RequiredBayType     *string    `json:"required_bay_type,omitempty"`
	EarliestStart       *time.Time `json:"earliest_start,omitempty"`
	LatestFinish        *time.Time `json:"latest_finish,omitempty"`
	DurationMinutesLow  int        `gorm:"not null" json:"duration_minutes_low"`
	DurationMinutesHigh int        `gorm:"not null" json:"duration_minutes_high"`

	LockFlag      bool       `json:"lock_flag"`
	LockedTechID  *uuid.UUID `gorm:"type:uuid" json:"locked_tech_id,omitempty"`
	LockedBayID   *uuid.UUID `gorm:"type:uuid" json:"locked_bay_id,omitempty"`
	LockedStartAt *time.Time `json:"locked_start_at,omitempty"`
	LockedEndAt   *time.Time `json:"locked_end_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// DurationMinutes returns floor((low+high)/2) per spec.md §4.5 and
// the open-question decision in DESIGN.md to keep mean-floor
// semantics.
func (t Task) DurationMinutes() int {
	return (t.DurationMinutesLow + t.DurationMinutesHigh) / 2
}
