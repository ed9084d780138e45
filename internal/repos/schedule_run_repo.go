package repos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
)

type ScheduleRunRepo interface {
	Create(c dbctx.Context, run *domain.ScheduleRun) error
	Get(c dbctx.Context, orgID, id uuid.UUID) (*domain.ScheduleRun, error)
	List(c dbctx.Context, orgID uuid.UUID, limit int) ([]*domain.ScheduleRun, error)
	SetRunning(c dbctx.Context, id uuid.UUID) error
	SetSucceeded(c dbctx.Context, id uuid.UUID, wallTimeMs int, objective *int, breakdown datatypes.JSON, taskCount int) error
	SetInfeasible(c dbctx.Context, id uuid.UUID, wallTimeMs int, reason string) error
	SetFailed(c dbctx.Context, id uuid.UUID, wallTimeMs *int, reason string) error
}

type scheduleRunRepo struct {
	db *gorm.DB
}

func NewScheduleRunRepo(db *gorm.DB) ScheduleRunRepo {
	return &scheduleRunRepo{db: db}
}

func (r *scheduleRunRepo) Create(c dbctx.Context, run *domain.ScheduleRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = domain.ScheduleRunQueued
	}
	return dbctx.Resolve(c, r.db).Create(run).Error
}

func (r *scheduleRunRepo) Get(c dbctx.Context, orgID, id uuid.UUID) (*domain.ScheduleRun, error) {
	var run domain.ScheduleRun
	err := dbctx.Resolve(c, r.db).Where("id = ? AND org_id = ?", id, orgID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *scheduleRunRepo) List(c dbctx.Context, orgID uuid.UUID, limit int) ([]*domain.ScheduleRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []*domain.ScheduleRun
	err := dbctx.Resolve(c, r.db).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *scheduleRunRepo) SetRunning(c dbctx.Context, id uuid.UUID) error {
	return dbctx.Resolve(c, r.db).Model(&domain.ScheduleRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.ScheduleRunRunning, "updated_at": time.Now().UTC()}).Error
}

func (r *scheduleRunRepo) SetSucceeded(c dbctx.Context, id uuid.UUID, wallTimeMs int, objective *int, breakdown datatypes.JSON, taskCount int) error {
	return dbctx.Resolve(c, r.db).Model(&domain.ScheduleRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":               domain.ScheduleRunSucceeded,
			"solver_wall_time_ms":  wallTimeMs,
			"objective_value":      objective,
			"objective_breakdown":  breakdown,
			"task_count":           taskCount,
			"updated_at":           time.Now().UTC(),
		}).Error
}

func (r *scheduleRunRepo) SetInfeasible(c dbctx.Context, id uuid.UUID, wallTimeMs int, reason string) error {
	status := "INFEASIBLE"
	return dbctx.Resolve(c, r.db).Model(&domain.ScheduleRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              domain.ScheduleRunFailed,
			"solver_status":       status,
			"solver_wall_time_ms": wallTimeMs,
			"infeasible_reason":   reason,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *scheduleRunRepo) SetFailed(c dbctx.Context, id uuid.UUID, wallTimeMs *int, reason string) error {
	updates := map[string]interface{}{
		"status":            domain.ScheduleRunFailed,
		"infeasible_reason": reason,
		"updated_at":        time.Now().UTC(),
	}
	if wallTimeMs != nil {
		updates["solver_wall_time_ms"] = *wallTimeMs
	}
	return dbctx.Resolve(c, r.db).Model(&domain.ScheduleRun{}).Where("id = ?", id).Updates(updates).Error
}
