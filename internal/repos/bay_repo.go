package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

type BayRepo interface {
	// ListActive returns only active bays (spec.md §3, §4.4).
	ListActive(c dbctx.Context, orgID uuid.UUID) ([]*domain.Bay, error)
}

type bayRepo struct {
	db *gorm.DB
}

func NewBayRepo(db *gorm.DB) BayRepo {
	return &bayRepo{db: db}
}

func (r *bayRepo) ListActive(c dbctx.Context, orgID uuid.UUID) ([]*domain.Bay, error) {
	var bays []*domain.Bay
	err := dbctx.Resolve(c, r.db).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("name ASC").
		Find(&bays).Error
	return bays, err
}
