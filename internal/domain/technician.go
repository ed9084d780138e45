package domain

import (
	"time"

	"github.com/google/uuid"
)

// Technician is read-only to the core (owned by an administrative
// collaborator); the core only reads id/name/efficiency/skills.
type Technician struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID                uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	Name                 string    `gorm:"not null" json:"name"`
	EfficiencyMultiplier float64   `gorm:"not null;default:1" json:"efficiency_multiplier"`
	WipLimit             int       `gorm:"not null;default:1" json:"wip_limit"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Technician) TableName() string { return "technicians" }

type TechnicianSkill struct {
	TechnicianID uuid.UUID `gorm:"type:uuid;primaryKey" json:"technician_id"`
	OrgID        uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	Skill        string    `gorm:"primaryKey" json:"skill"`
}

func (TechnicianSkill) TableName() string { return "technician_skills" }
