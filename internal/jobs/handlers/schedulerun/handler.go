// Package schedulerun implements the schedule_run job type: load the
// horizon, run the Constraint Scheduler, persist the result. Grounded
// on handlers/schedule_run.py.
package schedulerun

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
	"github.com/shopfloor-ops/shopcore/internal/repos"
	"github.com/shopfloor-ops/shopcore/internal/scheduler"

	"github.com/shopfloor-ops/shopcore/internal/audit"
)

const JobType = "schedule_run"

type payload struct {
	ScheduleRunID   uuid.UUID `json:"schedule_run_id"`
	OrgID           uuid.UUID `json:"org_id"`
	HorizonStart    time.Time `json:"horizon_start"`
	HorizonEnd      time.Time `json:"horizon_end"`
	TimeLimitSecond int       `json:"time_limit_seconds"`
}

func (p payload) validate() error {
	if p.ScheduleRunID == uuid.Nil {
		return fmt.Errorf("schedule_run_id is required in payload")
	}
	if p.OrgID == uuid.Nil {
		return fmt.Errorf("org_id is required in payload")
	}
	if p.HorizonStart.IsZero() || p.HorizonEnd.IsZero() {
		return fmt.Errorf("horizon_start and horizon_end are required")
	}
	return nil
}

type Handler struct {
	log          *logger.Logger
	scheduleRuns repos.ScheduleRunRepo
	loader       *scheduler.Loader
	persister    *scheduler.Persister
	audit        *audit.Sink
}

func New(log *logger.Logger, scheduleRuns repos.ScheduleRunRepo, loader *scheduler.Loader, persister *scheduler.Persister, sink *audit.Sink) *Handler {
	return &Handler{
		log:          log.With("handler", JobType),
		scheduleRuns: scheduleRuns,
		loader:       loader,
		persister:    persister,
		audit:        sink,
	}
}

// Handle mirrors handlers/schedule_run.py's control flow exactly:
// mark running, load, guard on missing resources (a logic error — the
// job fails), solve, persist, and on any step failing mark the
// schedule run 'failed' before propagating the error so the Retry
// Policy Engine can act (spec.md §4.6 step 1, §7).
func (h *Handler) Handle(ctx context.Context, orgID, jobID uuid.UUID, raw json.RawMessage) error {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("invalid schedule_run payload: %w", err)
	}
	if err := p.validate(); err != nil {
		return err
	}

	h.log.Info("schedule_run_job_started", "job_id", jobID, "schedule_run_id", p.ScheduleRunID,
		"org_id", p.OrgID, "horizon_start", p.HorizonStart, "horizon_end", p.HorizonEnd)

	dc := dbctx.Context{Ctx: ctx}
	if err := h.scheduleRuns.SetRunning(dc, p.ScheduleRunID); err != nil {
		return fmt.Errorf("mark schedule run running: %w", err)
	}

	in, err := h.loader.Load(dc, p.OrgID, p.ScheduleRunID, p.HorizonStart, p.HorizonEnd)
	if err != nil {
		return h.fail(ctx, p.ScheduleRunID, fmt.Errorf("load schedule input: %w", err))
	}

	timeLimit := time.Duration(p.TimeLimitSecond) * time.Second
	result, runErr := scheduler.Run(ctx, *in, timeLimit)
	if runErr != nil {
		return h.fail(ctx, p.ScheduleRunID, runErr)
	}

	if err := h.persister.Save(dc, p.OrgID, p.ScheduleRunID, result); err != nil {
		return h.fail(ctx, p.ScheduleRunID, fmt.Errorf("persist schedule result: %w", err))
	}

	h.log.Info("schedule_run_job_completed", "job_id", jobID, "schedule_run_id", p.ScheduleRunID,
		"status", result.Status, "task_count", len(result.Items), "wall_time_ms", result.SolverWallTime.Milliseconds())
	h.audit.Record(ctx, p.OrgID, p.ScheduleRunID, "schedule_run", "schedule_run.completed", map[string]interface{}{
		"job_id": jobID, "status": result.Status, "task_count": len(result.Items),
	})

	// Solver Infeasible/Failed variants are not job failures: the
	// scheduler completed its work even when no schedule resulted
	// (spec.md §7). Only handler logic errors (above) fail the job.
	return nil
}

// fail marks the schedule run 'failed' with origErr's message (the
// same outer-catch shape as handlers/schedule_run.py) and returns
// origErr so the job itself fails too.
func (h *Handler) fail(ctx context.Context, scheduleRunID uuid.UUID, origErr error) error {
	wallTimeMs := 0
	if setErr := h.scheduleRuns.SetFailed(dbctx.Context{Ctx: ctx}, scheduleRunID, &wallTimeMs, origErr.Error()); setErr != nil {
		h.log.Error("failed to mark schedule run failed", "error", setErr, "schedule_run_id", scheduleRunID)
	}
	return origErr
}
