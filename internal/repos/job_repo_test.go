package repos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
)

func testCtx() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func newJobRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestJobRepoEnqueueAndGet(t *testing.T) {
	db := newJobRepoTestDB(t)
	repo := NewJobRepo(db)
	c := testCtx()
	orgID := uuid.New()

	job, err := repo.Enqueue(c, orgID, "ai_enrich", json.RawMessage(`{"work_order_id":"x"}`), nil, 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.Status != domain.JobStatusQueued {
		t.Fatalf("expected new job queued, got %s", job.Status)
	}

	got, err := repo.Get(c, orgID, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("expected to fetch the enqueued job back")
	}
}

func TestJobRepoGetHidesCrossTenantJobsAsNotFound(t *testing.T) {
	db := newJobRepoTestDB(t)
	repo := NewJobRepo(db)
	c := testCtx()
	owner := uuid.New()
	intruder := uuid.New()

	job, err := repo.Enqueue(c, owner, "ai_enrich", json.RawMessage(`{}`), nil, 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	_, err = repo.Get(c, intruder, job.ID)
	if err != domainerrors.ErrNotFound {
		t.Fatalf("expected ErrNotFound for a cross-tenant lookup, got %v", err)
	}
}

func TestJobRepoListFiltersByStatusAndType(t *testing.T) {
	db := newJobRepoTestDB(t)
	repo := NewJobRepo(db)
	c := testCtx()
	orgID := uuid.New()

	if _, err := repo.Enqueue(c, orgID, "ai_enrich", json.RawMessage(`{}`), nil, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	scheduleJob, err := repo.Enqueue(c, orgID, "schedule_run", json.RawMessage(`{}`), nil, 1)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	jobType := "schedule_run"
	jobs, err := repo.List(c, orgID, nil, &jobType, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != scheduleJob.ID {
		t.Fatalf("expected list filtered to the one schedule_run job, got %d", len(jobs))
	}
}

func TestJobRepoSucceedRequeueAndDeadLetter(t *testing.T) {
	db := newJobRepoTestDB(t)
	repo := NewJobRepo(db)
	c := testCtx()
	orgID := uuid.New()

	job, err := repo.Enqueue(c, orgID, "ai_enrich", json.RawMessage(`{}`), nil, 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := repo.Succeed(c, job.ID); err != nil {
		t.Fatalf("succeed: %v", err)
	}
	got, err := repo.Get(c, orgID, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s", got.Status)
	}

	runAfter := time.Now().UTC().Add(time.Minute)
	if err := repo.Requeue(c, job.ID, runAfter, "transient"); err != nil {
		t.Fatalf("requeue: %v", err)
	}
	got, err = repo.Get(c, orgID, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.JobStatusQueued || got.Error == nil || *got.Error != "transient" {
		t.Fatalf("expected requeued with error recorded, got status=%s error=%v", got.Status, got.Error)
	}

	if err := repo.DeadLetter(c, job.ID, "permanent"); err != nil {
		t.Fatalf("dead letter: %v", err)
	}
	got, err = repo.Get(c, orgID, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.JobStatusFailed || got.Error == nil || *got.Error != "permanent" {
		t.Fatalf("expected dead-lettered with error recorded, got status=%s error=%v", got.Status, got.Error)
	}
}

// ClaimNext's "FOR UPDATE SKIP LOCKED" clause has no sqlite
// equivalent, so it is exercised only against Postgres in practice;
// see DESIGN.md's testing notes.
