package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
)

// TechnicianWithSkills is the Loader's view of a technician: the base
// row plus its skill set, flattened from technician_skills.
type TechnicianWithSkills struct {
	domain.Technician
	Skills []string
}

type TechnicianRepo interface {
	ListWithSkills(c dbctx.Context, orgID uuid.UUID) ([]*TechnicianWithSkills, error)
}

type technicianRepo struct {
	db *gorm.DB
}

func NewTechnicianRepo(db *gorm.DB) TechnicianRepo {
	return &technicianRepo{db: db}
}

func (r *technicianRepo) ListWithSkills(c dbctx.Context, orgID uuid.UUID) ([]*TechnicianWithSkills, error) {
	tx := dbctx.Resolve(c, r.db)

	var techs []*domain.Technician
	if err := tx.Where("org_id = ?", orgID).Order("name ASC").Find(&techs).Error; err != nil {
		return nil, err
	}

	var skillRows []*domain.TechnicianSkill
	if err := tx.Where("org_id = ?", orgID).Order("technician_id ASC, skill ASC").Find(&skillRows).Error; err != nil {
		return nil, err
	}
	skillsByTech := make(map[uuid.UUID][]string, len(techs))
	for _, s := range skillRows {
		skillsByTech[s.TechnicianID] = append(skillsByTech[s.TechnicianID], s.Skill)
	}

	out := make([]*TechnicianWithSkills, 0, len(techs))
	for _, t := range techs {
		out = append(out, &TechnicianWithSkills{Technician: *t, Skills: skillsByTech[t.ID]})
	}
	return out, nil
}
