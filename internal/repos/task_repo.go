package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

type TaskRepo interface {
	// ListSchedulable returns all tasks in {todo, scheduled} for the
	// tenant, ordered by creation (spec.md §4.4).
	ListSchedulable(c dbctx.Context, orgID uuid.UUID) ([]*domain.Task, error)
	// TransitionTodoToScheduled flips status for the given task ids,
	// but only where the current status is still 'todo' (spec.md §4.7
	// step 4 — already-scheduled and other statuses are untouched).
	TransitionTodoToScheduled(c dbctx.Context, ids []uuid.UUID) error
}

type taskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) ListSchedulable(c dbctx.Context, orgID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := dbctx.Resolve(c, r.db).
		Where("org_id = ? AND status IN ?", orgID, []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusScheduled}).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) TransitionTodoToScheduled(c dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbctx.Resolve(c, r.db).Model(&domain.Task{}).
		Where("id IN ? AND status = ?", ids, domain.TaskStatusTodo).
		Updates(map[string]interface{}{
			"status":     domain.TaskStatusScheduled,
			"updated_at": time.Now().UTC(),
		}).Error
}
