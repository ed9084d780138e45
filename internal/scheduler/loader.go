package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

// Loader assembles an Input from the persistence layer, grounded on
// the original scheduler's data_loader.py: tasks in {todo, scheduled},
// all technicians with their skills, active bays, and the work orders
// those tasks reference.
type Loader struct {
	tasks   repos.TaskRepo
	techs   repos.TechnicianRepo
	bays    repos.BayRepo
	workOrders repos.WorkOrderRepo
}

func NewLoader(tasks repos.TaskRepo, techs repos.TechnicianRepo, bays repos.BayRepo, workOrders repos.WorkOrderRepo) *Loader {
	return &Loader{tasks: tasks, techs: techs, bays: bays, workOrders: workOrders}
}

func (l *Loader) Load(c dbctx.Context, orgID, scheduleRunID uuid.UUID, horizonStart, horizonEnd time.Time) (*Input, error) {
	taskRows, err := l.tasks.ListSchedulable(c, orgID)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(taskRows))
	woIDSet := make(map[uuid.UUID]bool)
	for _, row := range taskRows {
		tasks = append(tasks, fromDomainTask(row))
		woIDSet[row.WorkOrderID] = true
	}

	techRows, err := l.techs.ListWithSkills(c, orgID)
	if err != nil {
		return nil, err
	}
	technicians := make([]Technician, 0, len(techRows))
	for _, row := range techRows {
		skills := make(map[string]bool, len(row.Skills))
		for _, s := range row.Skills {
			skills[s] = true
		}
		technicians = append(technicians, Technician{
			ID:                   row.ID,
			Name:                 row.Name,
			Skills:               skills,
			EfficiencyMultiplier: row.EfficiencyMultiplier,
			WipLimit:             row.WipLimit,
		})
	}

	bayRows, err := l.bays.ListActive(c, orgID)
	if err != nil {
		return nil, err
	}
	bays := make([]Bay, 0, len(bayRows))
	for _, row := range bayRows {
		bays = append(bays, Bay{ID: row.ID, Name: row.Name, BayType: row.BayType})
	}

	woIDs := make([]uuid.UUID, 0, len(woIDSet))
	for id := range woIDSet {
		woIDs = append(woIDs, id)
	}
	woRows, err := l.workOrders.ListByIDs(c, orgID, woIDs)
	if err != nil {
		return nil, err
	}
	workOrders := make(map[uuid.UUID]WorkOrder, len(woRows))
	for _, row := range woRows {
		workOrders[row.ID] = WorkOrder{
			ID:         row.ID,
			Priority:   row.Priority,
			DueDate:    row.DueDate,
			PartsReady: row.PartsReady,
		}
	}

	return &Input{
		OrgID:         orgID,
		ScheduleRunID: scheduleRunID,
		HorizonStart:  horizonStart,
		HorizonEnd:    horizonEnd,
		Tasks:         tasks,
		Technicians:   technicians,
		Bays:          bays,
		WorkOrders:    workOrders,
	}, nil
}

func fromDomainTask(row *domain.Task) Task {
	return Task{
		ID:                  row.ID,
		WorkOrderID:         row.WorkOrderID,
		RequiredSkill:       row.RequiredSkill,
		RequiredSkillIsHard: row.RequiredSkillIsHard,
		RequiredBayType:     row.RequiredBayType,
		EarliestStart:       row.EarliestStart,
		LatestFinish:        row.LatestFinish,
		DurationMinutes:     row.DurationMinutes(),
		IsLocked:            row.LockFlag,
		LockedTechID:        row.LockedTechID,
		LockedBayID:         row.LockedBayID,
		LockedStartAt:       row.LockedStartAt,
		LockedEndAt:         row.LockedEndAt,
	}
}
