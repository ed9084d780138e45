// Package dispatcher implements the Queue Dispatcher (spec.md §4.2):
// a per-worker cooperative loop that claims one job, dispatches it to
// a registered handler, and records the outcome.
package dispatcher

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/jobs/registry"
	"github.com/shopfloor-ops/shopcore/internal/jobs/retry"
	"github.com/shopfloor-ops/shopcore/internal/observability"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

var tracer = observability.Tracer("shopcore/dispatcher")

// AuditFunc records a state-boundary event; nil is a valid no-op.
type AuditFunc func(ctx context.Context, job *domain.Job, event string, detail map[string]interface{})

type Dispatcher struct {
	jobs         repos.JobRepo
	registry     *registry.Registry
	log          *logger.Logger
	workerID     string
	pollInterval time.Duration
	audit        AuditFunc
}

type Option func(*Dispatcher)

func WithPollInterval(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.pollInterval = d }
}

func WithAudit(fn AuditFunc) Option {
	return func(disp *Dispatcher) { disp.audit = fn }
}

func New(jobs repos.JobRepo, reg *registry.Registry, log *logger.Logger, workerID string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		jobs:         jobs,
		registry:     reg,
		log:          log.With("component", "Dispatcher", "worker_id", workerID),
		workerID:     workerID,
		pollInterval: 2 * time.Second,
		audit:        func(context.Context, *domain.Job, string, map[string]interface{}) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the cooperative loop described in spec.md §4.2 until
// ctx is cancelled. On cancellation it finishes any in-flight job
// before returning (spec.md "Shutdown").
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		claimed, err := d.claimAndRun(ctx)
		if err != nil {
			d.log.Warn("claim_and_run_failed", "error", err)
		}
		if claimed {
			// Claim succeeded: loop again immediately without sleeping
			// (spec.md §4.2 "Pacing").
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.pollInterval):
		}
	}
}

// RunGroup runs each dispatcher's cooperative loop inside one process
// (callers give each a distinct worker id), awaited through an
// errgroup so shutdown blocks on every in-flight job (spec.md §5
// "Suspension points" + graceful shutdown). The teacher's worker pool
// spawns bare goroutines; this repo additionally coordinates them with
// golang.org/x/sync/errgroup so RunGroup returns only once every loop
// has finished.
func RunGroup(ctx context.Context, dispatchers []*Dispatcher) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range dispatchers {
		d := d
		g.Go(func() error { return d.Run(gctx) })
	}
	return g.Wait()
}

// claimAndRun performs one iteration: claim, dispatch, execute,
// record. Returns claimed=true if a job was claimed (regardless of
// outcome), so the caller knows whether to skip the poll sleep.
func (d *Dispatcher) claimAndRun(ctx context.Context) (claimed bool, err error) {
	claimCtx, claimSpan := tracer.Start(ctx, "dispatcher.claim")
	job, err := d.jobs.ClaimNext(dbctx.Context{Ctx: claimCtx}, d.workerID, time.Now().UTC())
	claimSpan.End()
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	claimed = true

	ctx, span := tracer.Start(ctx, "dispatcher.dispatch", trace.WithAttributes(
		attribute.String("job.type", job.Type),
		attribute.String("job.id", job.ID.String()),
	))
	defer span.End()

	d.audit(ctx, job, "job.claimed", map[string]interface{}{"attempts": job.Attempts})

	handler, ok := d.registry.Get(job.Type)
	if !ok {
		// Unknown type is a permanent failure: straight to dead-letter
		// regardless of attempts (spec.md §4.2 step 2, §4.3 edge case).
		decision := retry.DecideUnknownType("unknown job type: " + job.Type)
		derr := d.jobs.DeadLetter(dbctx.Context{Ctx: ctx}, job.ID, decision.Error)
		d.audit(ctx, job, "job.dead_lettered", map[string]interface{}{"reason": decision.Error})
		return true, derr
	}

	execErr := d.execute(ctx, handler, job)
	if execErr == nil {
		d.audit(ctx, job, "job.succeeded", nil)
		return true, d.jobs.Succeed(dbctx.Context{Ctx: ctx}, job.ID)
	}

	decision := retry.Decide(job.Attempts, job.MaxAttempts, execErr.Error(), time.Now().UTC())
	switch decision.Outcome {
	case retry.OutcomeRequeue:
		d.audit(ctx, job, "job.requeued", map[string]interface{}{"run_after": decision.RunAfter, "error": decision.Error})
		return true, d.jobs.Requeue(dbctx.Context{Ctx: ctx}, job.ID, decision.RunAfter, decision.Error)
	default:
		d.audit(ctx, job, "job.dead_lettered", map[string]interface{}{"error": decision.Error})
		return true, d.jobs.DeadLetter(dbctx.Context{Ctx: ctx}, job.ID, decision.Error)
	}
}

func (d *Dispatcher) execute(ctx context.Context, h registry.Handler, job *domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler_panicked", "job_id", job.ID, "panic", r)
			err = panicToError(r)
		}
	}()
	return h(ctx, job.OrgID, job.ID, json.RawMessage(job.Payload))
}

func panicToError(r interface{}) error {
	if e, ok := r.(error); ok {
		return e
	}
	return errStr{v: r}
}

type errStr struct{ v interface{} }

func (e errStr) Error() string { return "handler panic" }
