package repos

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

type AuditRepo interface {
	Append(c dbctx.Context, orgID, entityID uuid.UUID, entityType, event string, detail datatypes.JSON) error
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepo {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(c dbctx.Context, orgID, entityID uuid.UUID, entityType, event string, detail datatypes.JSON) error {
	row := &domain.AuditLog{
		ID:         uuid.New(),
		OrgID:      orgID,
		EntityType: entityType,
		EntityID:   entityID,
		Event:      event,
		Detail:     detail,
	}
	return dbctx.Resolve(c, r.db).Create(row).Error
}
