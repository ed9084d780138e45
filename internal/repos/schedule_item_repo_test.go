package repos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
)

func newScheduleItemTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ScheduleItem{}, &domain.Technician{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestScheduleItemRepoReplaceForRunOverwritesPriorItems(t *testing.T) {
	db := newScheduleItemTestDB(t)
	repo := NewScheduleItemRepo(db)
	c := testCtx()
	orgID := uuid.New()
	runID := uuid.New()
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	stale := &domain.ScheduleItem{ID: uuid.New(), OrgID: orgID, ScheduleRunID: runID, TaskID: uuid.New(), TechnicianID: uuid.New(), BayID: uuid.New(), StartAt: start, EndAt: start.Add(time.Hour)}
	if err := repo.ReplaceForRun(c, runID, []*domain.ScheduleItem{stale}); err != nil {
		t.Fatalf("seed prior run: %v", err)
	}

	fresh := &domain.ScheduleItem{ID: uuid.New(), OrgID: orgID, ScheduleRunID: runID, TaskID: uuid.New(), TechnicianID: uuid.New(), BayID: uuid.New(), StartAt: start.Add(time.Hour), EndAt: start.Add(2 * time.Hour)}
	if err := repo.ReplaceForRun(c, runID, []*domain.ScheduleItem{fresh}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	items, err := repo.ListForRun(c, orgID, runID)
	if err != nil {
		t.Fatalf("list for run: %v", err)
	}
	if len(items) != 1 || items[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh item to remain, got %v", items)
	}
}

func TestScheduleItemRepoReplaceForRunWithEmptyItemsClearsTheRun(t *testing.T) {
	db := newScheduleItemTestDB(t)
	repo := NewScheduleItemRepo(db)
	c := testCtx()
	orgID := uuid.New()
	runID := uuid.New()
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	prior := &domain.ScheduleItem{ID: uuid.New(), OrgID: orgID, ScheduleRunID: runID, TaskID: uuid.New(), TechnicianID: uuid.New(), BayID: uuid.New(), StartAt: start, EndAt: start.Add(time.Hour)}
	if err := repo.ReplaceForRun(c, runID, []*domain.ScheduleItem{prior}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.ReplaceForRun(c, runID, nil); err != nil {
		t.Fatalf("replace with empty: %v", err)
	}

	items, err := repo.ListForRun(c, orgID, runID)
	if err != nil {
		t.Fatalf("list for run: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected an infeasible/failed re-run to leave no stale items, got %d", len(items))
	}
}

func TestScheduleItemRepoListForRunOrdersByStartTime(t *testing.T) {
	db := newScheduleItemTestDB(t)
	repo := NewScheduleItemRepo(db)
	c := testCtx()
	orgID := uuid.New()
	runID := uuid.New()
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	later := &domain.ScheduleItem{ID: uuid.New(), OrgID: orgID, ScheduleRunID: runID, TaskID: uuid.New(), TechnicianID: uuid.New(), BayID: uuid.New(), StartAt: start.Add(2 * time.Hour), EndAt: start.Add(3 * time.Hour)}
	earlier := &domain.ScheduleItem{ID: uuid.New(), OrgID: orgID, ScheduleRunID: runID, TaskID: uuid.New(), TechnicianID: uuid.New(), BayID: uuid.New(), StartAt: start, EndAt: start.Add(time.Hour)}
	if err := repo.ReplaceForRun(c, runID, []*domain.ScheduleItem{later, earlier}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	items, err := repo.ListForRun(c, orgID, runID)
	if err != nil {
		t.Fatalf("list for run: %v", err)
	}
	if len(items) != 2 || items[0].ID != earlier.ID || items[1].ID != later.ID {
		t.Fatalf("expected items ordered earliest-first, got %v", items)
	}
}
