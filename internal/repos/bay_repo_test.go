package repos

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
)

func TestBayRepoListActiveExcludesInactiveAndOtherTenants(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Bay{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	orgID := uuid.New()
	rows := []*domain.Bay{
		{ID: uuid.New(), OrgID: orgID, Name: "Bay 1", BayType: "standard", IsActive: true},
		{ID: uuid.New(), OrgID: orgID, Name: "Bay 2", BayType: "standard", IsActive: false},
		{ID: uuid.New(), OrgID: uuid.New(), Name: "Bay 3", BayType: "standard", IsActive: true},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewBayRepo(db)
	got, err := repo.ListActive(testCtx(), orgID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bay 1" {
		t.Fatalf("expected only the active bay for this tenant, got %v", got)
	}
}
