package scheduler

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfloor-ops/shopcore/internal/observability"
	"github.com/shopfloor-ops/shopcore/internal/scheduler/solve"
)

var tracer = observability.Tracer("shopcore/scheduler")

// DefaultTimeLimit is the solver wall-clock budget applied when a job
// payload doesn't specify one (spec.md §4.6, mirrors the original
// handler's time_limit_seconds default of 30).
const DefaultTimeLimit = 30 * time.Second

// ErrNoTechnicians and ErrNoBays are handler logic errors, not solver
// outcomes (spec.md §7 "Handler logic errors... raised as runtime
// failures"): the job itself fails/retries, distinct from a solver
// Infeasible result, under which the job still succeeds.
var (
	ErrNoTechnicians = errors.New("no technicians available for scheduling")
	ErrNoBays        = errors.New("no bays available for scheduling")
)

// Run builds the model and drives the solver under a bounded
// wall-clock budget. A non-nil error means the caller (the job
// handler) should fail the job outright; a nil error always carries a
// Result whose Status is the tagged-variant outcome the Persister
// writes down regardless of the job's own fate (spec.md §4.5 Design
// Notes §9, §7).
func Run(ctx context.Context, in Input, timeLimit time.Duration) (Result, error) {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	started := time.Now()

	if len(in.UnlockedTasks()) == 0 {
		return Result{Status: StatusSucceeded, Items: lockedOnlyItems(in), SolverWallTime: time.Since(started)}, nil
	}
	if len(in.Technicians) == 0 {
		return Result{}, ErrNoTechnicians
	}
	if len(in.Bays) == 0 {
		return Result{}, ErrNoBays
	}

	model, err := Build(in)
	if err != nil {
		reason := err.Error()
		if infeasible, ok := err.(*InfeasibilityError); ok {
			reason = infeasible.Reason
		}
		return Result{Status: StatusInfeasible, SolverWallTime: time.Since(started), InfeasibleReason: reason}, nil
	}

	bctx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	sctx, span := tracer.Start(bctx, "scheduler.solve", trace.WithAttributes(
		attribute.Int("task_count", len(in.UnlockedTasks())),
		attribute.Int("technician_count", len(in.Technicians)),
		attribute.Int("bay_count", len(in.Bays)),
	))
	defer span.End()

	return solve.Solve(sctx, model, solve.Options{}), nil
}

func lockedOnlyItems(in Input) []Item {
	items := make([]Item, 0, len(in.Tasks))
	for _, t := range in.LockedTasks() {
		if t.LockedTechID == nil || t.LockedBayID == nil || t.LockedStartAt == nil || t.LockedEndAt == nil {
			continue
		}
		items = append(items, Item{
			TaskID:       t.ID,
			TechnicianID: *t.LockedTechID,
			BayID:        *t.LockedBayID,
			StartAt:      *t.LockedStartAt,
			EndAt:        *t.LockedEndAt,
			IsLocked:     true,
			Why:          map[string]interface{}{"reason": "locked"},
		})
	}
	return items
}
