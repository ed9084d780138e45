// Package scheduler implements the Constraint Scheduler (spec.md §4.4-§4.7):
// an in-memory model of one scheduling horizon, a solver that places
// unlocked tasks onto technicians and bays, and a persister that
// writes the result back atomically. Types here mirror the original
// scheduler's models.py, translated to a value-oriented Go shape.
package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// Task is the solver's view of a schedulable unit of work.
type Task struct {
	ID                  uuid.UUID
	WorkOrderID         uuid.UUID
	RequiredSkill       *string
	RequiredSkillIsHard bool
	RequiredBayType     *string
	EarliestStart       *time.Time
	LatestFinish        *time.Time
	DurationMinutes     int

	IsLocked      bool
	LockedTechID  *uuid.UUID
	LockedBayID   *uuid.UUID
	LockedStartAt *time.Time
	LockedEndAt   *time.Time
}

// Technician is the solver's view of a resource that can perform
// tasks.
type Technician struct {
	ID                   uuid.UUID
	Name                 string
	Skills               map[string]bool
	EfficiencyMultiplier float64
	WipLimit             int
}

// Bay is the solver's view of a physical resource.
type Bay struct {
	ID      uuid.UUID
	Name    string
	BayType string
}

// WorkOrder is the scheduling projection of a work order.
type WorkOrder struct {
	ID         uuid.UUID
	Priority   int
	DueDate    *time.Time
	PartsReady bool
}

// Input is everything the solver needs for one scheduling horizon.
type Input struct {
	OrgID         uuid.UUID
	ScheduleRunID uuid.UUID
	HorizonStart  time.Time
	HorizonEnd    time.Time
	Tasks         []Task
	Technicians   []Technician
	Bays          []Bay
	WorkOrders    map[uuid.UUID]WorkOrder
}

// LockedTasks returns the tasks that are not subject to solving.
func (in Input) LockedTasks() []Task {
	out := make([]Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if t.IsLocked {
			out = append(out, t)
		}
	}
	return out
}

// UnlockedTasks returns the tasks the solver must place.
func (in Input) UnlockedTasks() []Task {
	out := make([]Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if !t.IsLocked {
			out = append(out, t)
		}
	}
	return out
}

// HorizonMinutes is the horizon's length, the solver's time unit.
func (in Input) HorizonMinutes() int {
	return int(in.HorizonEnd.Sub(in.HorizonStart).Minutes())
}

// Item is one placement the solver produced: a task assigned to a
// technician and bay over a concrete interval.
type Item struct {
	TaskID       uuid.UUID
	TechnicianID uuid.UUID
	BayID        uuid.UUID
	StartAt      time.Time
	EndAt        time.Time
	IsLocked     bool
	Why          map[string]interface{}
}

// ObjectiveBreakdown attributes the total penalty to its sources
// (spec.md §4.5 objective terms).
type ObjectiveBreakdown struct {
	TotalPenalty         int `json:"total_penalty"`
	DueDatePenalty       int `json:"due_date_penalty"`
	PriorityPenalty      int `json:"priority_penalty"`
	SkillMismatchPenalty int `json:"skill_mismatch_penalty"`
	PartsNotReadyPenalty int `json:"parts_not_ready_penalty"`
}

// Status is the tagged-variant outcome of a solve (spec.md §4.5
// "Design Notes §9" — Succeeded/Infeasible/Failed).
type Status string

const (
	StatusSucceeded  Status = "succeeded"
	StatusInfeasible Status = "infeasible"
	StatusFailed     Status = "failed"
)

// Result is the outcome of one solve attempt.
type Result struct {
	Status           Status
	Items            []Item
	SolverWallTime   time.Duration
	ObjectiveValue   *int
	Breakdown        *ObjectiveBreakdown
	InfeasibleReason string
}
