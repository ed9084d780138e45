package repos

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
)

// JobRepo is the Job Record Store (spec.md §4.1): enqueue/get/list for
// collaborators, plus the claim/complete/fail primitives the Queue
// Dispatcher uses internally.
type JobRepo interface {
	Enqueue(c dbctx.Context, orgID uuid.UUID, jobType string, payload json.RawMessage, runAfter *time.Time, maxAttempts int) (*domain.Job, error)
	Get(c dbctx.Context, orgID, id uuid.UUID) (*domain.Job, error)
	List(c dbctx.Context, orgID uuid.UUID, status, jobType *string, limit int) ([]*domain.Job, error)

	// ClaimNext atomically claims the next runnable job for workerID
	// using skip-locked semantics (spec.md §4.2 step 1).
	ClaimNext(c dbctx.Context, workerID string, now time.Time) (*domain.Job, error)
	// Succeed transitions a running job to succeeded (spec.md §4.2 step 4).
	Succeed(c dbctx.Context, id uuid.UUID) error
	// Requeue applies the Retry Policy Engine's "retry" decision.
	Requeue(c dbctx.Context, id uuid.UUID, runAfter time.Time, errMsg string) error
	// DeadLetter applies the Retry Policy Engine's "dead" decision.
	DeadLetter(c dbctx.Context, id uuid.UUID, errMsg string) error
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepo {
	return &jobRepo{db: db}
}

func (r *jobRepo) Enqueue(c dbctx.Context, orgID uuid.UUID, jobType string, payload json.RawMessage, runAfter *time.Time, maxAttempts int) (*domain.Job, error) {
	ra := time.Now().UTC()
	if runAfter != nil {
		ra = *runAfter
	}
	job := &domain.Job{
		ID:          uuid.New(),
		OrgID:       orgID,
		Type:        jobType,
		Payload:     datatypes.JSON(payload),
		Status:      domain.JobStatusQueued,
		RunAfter:    ra,
		MaxAttempts: maxAttempts,
	}
	if err := dbctx.Resolve(c, r.db).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) Get(c dbctx.Context, orgID, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := dbctx.Resolve(c, r.db).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Cross-tenant lookups must look identical to not-found
		// (spec.md §4.1 — never probe-able via a distinct status).
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) List(c dbctx.Context, orgID uuid.UUID, status, jobType *string, limit int) ([]*domain.Job, error) {
	q := dbctx.Resolve(c, r.db).Where("org_id = ?", orgID)
	if status != nil && *status != "" {
		q = q.Where("status = ?", *status)
	}
	if jobType != nil && *jobType != "" {
		q = q.Where("type = ?", *jobType)
	}
	if limit <= 0 {
		limit = 100
	}
	var jobs []*domain.Job
	if err := q.Order("run_after ASC, created_at ASC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ClaimNext is the concurrent claim protocol at the heart of spec.md
// §4.2 and §5: a single statement updates one queued-and-runnable job,
// ordered by (run_after, created_at), skipping rows already locked by
// a concurrent claimant (SKIP LOCKED) so parallel workers never
// contend on the same row.
func (r *jobRepo) ClaimNext(c dbctx.Context, workerID string, now time.Time) (*domain.Job, error) {
	var claimed *domain.Job
	err := dbctx.Resolve(c, r.db).Transaction(func(tx *gorm.DB) error {
		var job domain.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND run_after <= ?", domain.JobStatusQueued, now).
			Order("run_after ASC, created_at ASC").
			Limit(1).
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     domain.JobStatusRunning,
			"locked_at":  now,
			"locked_by":  workerID,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": now,
		}
		if err := tx.Model(&domain.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
			return err
		}
		// Re-read so the caller sees the incremented attempts count.
		if err := tx.Where("id = ?", job.ID).First(&job).Error; err != nil {
			return err
		}
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRepo) Succeed(c dbctx.Context, id uuid.UUID) error {
	return dbctx.Resolve(c, r.db).Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusSucceeded,
			"locked_at":  nil,
			"locked_by":  nil,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *jobRepo) Requeue(c dbctx.Context, id uuid.UUID, runAfter time.Time, errMsg string) error {
	return dbctx.Resolve(c, r.db).Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusQueued,
			"run_after":  runAfter,
			"locked_at":  nil,
			"locked_by":  nil,
			"error":      errMsg,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *jobRepo) DeadLetter(c dbctx.Context, id uuid.UUID, errMsg string) error {
	return dbctx.Resolve(c, r.db).Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusFailed,
			"locked_at":  nil,
			"locked_by":  nil,
			"error":      errMsg,
			"updated_at": time.Now().UTC(),
		}).Error
}
