package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

type ScheduleItemRepo interface {
	// ReplaceForRun deletes all prior items for scheduleRunID and
	// inserts items in the same transaction (spec.md §3, §4.7 steps
	// 2-3 — "overwritten atomically"). Must be called within a
	// transaction the caller controls via dbctx.Context.Tx.
	ReplaceForRun(c dbctx.Context, scheduleRunID uuid.UUID, items []*domain.ScheduleItem) error
	ListForRun(c dbctx.Context, orgID, scheduleRunID uuid.UUID) ([]*domain.ScheduleItem, error)
}

type scheduleItemRepo struct {
	db *gorm.DB
}

func NewScheduleItemRepo(db *gorm.DB) ScheduleItemRepo {
	return &scheduleItemRepo{db: db}
}

func (r *scheduleItemRepo) ReplaceForRun(c dbctx.Context, scheduleRunID uuid.UUID, items []*domain.ScheduleItem) error {
	tx := dbctx.Resolve(c, r.db)
	if err := tx.Where("schedule_run_id = ?", scheduleRunID).Delete(&domain.ScheduleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *scheduleItemRepo) ListForRun(c dbctx.Context, orgID, scheduleRunID uuid.UUID) ([]*domain.ScheduleItem, error) {
	var items []*domain.ScheduleItem
	err := dbctx.Resolve(c, r.db).
		Table("schedule_items").
		Select("schedule_items.*, technicians.name AS technician_name").
		Joins("LEFT JOIN technicians ON technicians.id = schedule_items.technician_id").
		Where("schedule_items.org_id = ? AND schedule_items.schedule_run_id = ?", orgID, scheduleRunID).
		Order("schedule_items.start_at ASC, technicians.name ASC").
		Find(&items).Error
	return items, err
}
