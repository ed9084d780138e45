package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

type WorkOrderRepo interface {
	// ListByIDs returns the scheduling projection for the given
	// distinct work-order ids (spec.md §4.4).
	ListByIDs(c dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*domain.WorkOrder, error)
}

type workOrderRepo struct {
	db *gorm.DB
}

func NewWorkOrderRepo(db *gorm.DB) WorkOrderRepo {
	return &workOrderRepo{db: db}
}

func (r *workOrderRepo) ListByIDs(c dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*domain.WorkOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var wos []*domain.WorkOrder
	err := dbctx.Resolve(c, r.db).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&wos).Error
	return wos, err
}
