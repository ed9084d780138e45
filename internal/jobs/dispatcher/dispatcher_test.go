package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/jobs/registry"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/platform/logger"
)

type fakeJobRepo struct {
	queue      []*domain.Job
	succeeded  []uuid.UUID
	requeued   []uuid.UUID
	deadLetter []uuid.UUID
	lastError  string
}

func (f *fakeJobRepo) Enqueue(c dbctx.Context, orgID uuid.UUID, jobType string, payload json.RawMessage, runAfter *time.Time, maxAttempts int) (*domain.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) Get(c dbctx.Context, orgID, id uuid.UUID) (*domain.Job, error) { return nil, nil }

func (f *fakeJobRepo) List(c dbctx.Context, orgID uuid.UUID, status, jobType *string, limit int) ([]*domain.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) ClaimNext(c dbctx.Context, workerID string, now time.Time) (*domain.Job, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	return job, nil
}

func (f *fakeJobRepo) Succeed(c dbctx.Context, id uuid.UUID) error {
	f.succeeded = append(f.succeeded, id)
	return nil
}

func (f *fakeJobRepo) Requeue(c dbctx.Context, id uuid.UUID, runAfter time.Time, errMsg string) error {
	f.requeued = append(f.requeued, id)
	f.lastError = errMsg
	return nil
}

func (f *fakeJobRepo) DeadLetter(c dbctx.Context, id uuid.UUID, errMsg string) error {
	f.deadLetter = append(f.deadLetter, id)
	f.lastError = errMsg
	return nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newJob(jobType string, attempts, maxAttempts int) *domain.Job {
	return &domain.Job{
		ID:          uuid.New(),
		OrgID:       uuid.New(),
		Type:        jobType,
		Payload:     datatypes.JSON(`{}`),
		Status:      domain.JobStatusRunning,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
	}
}

func TestClaimAndRunDeadLettersUnknownJobType(t *testing.T) {
	job := newJob("does_not_exist", 0, 3)
	jobs := &fakeJobRepo{queue: []*domain.Job{job}}
	reg := registry.New()
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if !claimed || err != nil {
		t.Fatalf("expected claimed=true, err=nil; got claimed=%v err=%v", claimed, err)
	}
	if len(jobs.deadLetter) != 1 || jobs.deadLetter[0] != job.ID {
		t.Fatalf("expected unknown type to be dead-lettered, got %v", jobs.deadLetter)
	}
}

func TestClaimAndRunMarksJobSucceededOnHandlerSuccess(t *testing.T) {
	job := newJob("noop", 0, 3)
	jobs := &fakeJobRepo{queue: []*domain.Job{job}}
	reg := registry.New()
	reg.Register("noop", func(ctx context.Context, orgID, jobID uuid.UUID, payload json.RawMessage) error {
		return nil
	})
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if !claimed || err != nil {
		t.Fatalf("expected claimed=true, err=nil; got claimed=%v err=%v", claimed, err)
	}
	if len(jobs.succeeded) != 1 || jobs.succeeded[0] != job.ID {
		t.Fatalf("expected job marked succeeded, got %v", jobs.succeeded)
	}
}

func TestClaimAndRunRequeuesOnRetryableHandlerError(t *testing.T) {
	job := newJob("flaky", 0, 3)
	jobs := &fakeJobRepo{queue: []*domain.Job{job}}
	reg := registry.New()
	reg.Register("flaky", func(ctx context.Context, orgID, jobID uuid.UUID, payload json.RawMessage) error {
		return errors.New("transient failure")
	})
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if !claimed || err != nil {
		t.Fatalf("expected claimed=true, err=nil; got claimed=%v err=%v", claimed, err)
	}
	if len(jobs.requeued) != 1 || jobs.requeued[0] != job.ID {
		t.Fatalf("expected job requeued under its attempt budget, got requeued=%v dead=%v", jobs.requeued, jobs.deadLetter)
	}
}

func TestClaimAndRunDeadLettersOnFinalAttemptFailure(t *testing.T) {
	job := newJob("flaky", 3, 3) // ClaimNext already incremented Attempts to the limit
	jobs := &fakeJobRepo{queue: []*domain.Job{job}}
	reg := registry.New()
	reg.Register("flaky", func(ctx context.Context, orgID, jobID uuid.UUID, payload json.RawMessage) error {
		return errors.New("still failing")
	})
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if !claimed || err != nil {
		t.Fatalf("expected claimed=true, err=nil; got claimed=%v err=%v", claimed, err)
	}
	if len(jobs.deadLetter) != 1 || jobs.deadLetter[0] != job.ID {
		t.Fatalf("expected job dead-lettered at max attempts, got requeued=%v dead=%v", jobs.requeued, jobs.deadLetter)
	}
}

func TestClaimAndRunRecoversHandlerPanicAsError(t *testing.T) {
	job := newJob("panicky", 0, 3)
	jobs := &fakeJobRepo{queue: []*domain.Job{job}}
	reg := registry.New()
	reg.Register("panicky", func(ctx context.Context, orgID, jobID uuid.UUID, payload json.RawMessage) error {
		panic("boom")
	})
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if !claimed || err != nil {
		t.Fatalf("expected claimed=true, err=nil; got claimed=%v err=%v", claimed, err)
	}
	if len(jobs.requeued) != 1 {
		t.Fatalf("expected a panic to be treated like any other retryable error, got requeued=%v dead=%v", jobs.requeued, jobs.deadLetter)
	}
}

func TestClaimAndRunReturnsFalseWhenQueueIsEmpty(t *testing.T) {
	jobs := &fakeJobRepo{}
	reg := registry.New()
	d := New(jobs, reg, newTestLogger(t), "worker-1")

	claimed, err := d.claimAndRun(context.Background())
	if claimed || err != nil {
		t.Fatalf("expected claimed=false, err=nil on an empty queue; got claimed=%v err=%v", claimed, err)
	}
}
