package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bay is a physical work bay. Only active bays participate in
// scheduling (spec.md §3).
type Bay struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	Name      string    `gorm:"not null" json:"name"`
	BayType   string    `gorm:"index" json:"bay_type"`
	Capacity  int       `gorm:"not null;default:1" json:"capacity"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bay) TableName() string { return "bays" }
