package scheduler

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shopfloor-ops/shopcore/internal/domain"
	"github.com/shopfloor-ops/shopcore/internal/platform/dbctx"
	"github.com/shopfloor-ops/shopcore/internal/repos"
)

// Persister writes a Result back to the store, grounded on the
// original scheduler's persistence.py: one transaction updates the
// schedule run, replaces its schedule_items wholesale, and flips
// placed tasks from todo to scheduled.
type Persister struct {
	db            *gorm.DB
	scheduleRuns  repos.ScheduleRunRepo
	scheduleItems repos.ScheduleItemRepo
	tasks         repos.TaskRepo
}

func NewPersister(db *gorm.DB, scheduleRuns repos.ScheduleRunRepo, scheduleItems repos.ScheduleItemRepo, tasks repos.TaskRepo) *Persister {
	return &Persister{db: db, scheduleRuns: scheduleRuns, scheduleItems: scheduleItems, tasks: tasks}
}

// Save persists result for scheduleRunID under orgID. On any status
// other than Succeeded, it still overwrites schedule_items with
// whatever items the result carries (empty, for Infeasible/Failed)
// so a failed re-run never leaves a stale prior placement behind.
func (p *Persister) Save(ctx dbctx.Context, orgID, scheduleRunID uuid.UUID, result Result) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		c := dbctx.Context{Ctx: ctx.Ctx, Tx: tx}

		switch result.Status {
		case StatusSucceeded:
			var breakdown datatypes.JSON
			if result.Breakdown != nil {
				raw, err := json.Marshal(result.Breakdown)
				if err != nil {
					return err
				}
				breakdown = datatypes.JSON(raw)
			}
			var objective int
			if result.ObjectiveValue != nil {
				objective = *result.ObjectiveValue
			}
			if err := p.scheduleRuns.SetSucceeded(c, scheduleRunID, int(result.SolverWallTime.Milliseconds()), &objective, breakdown, len(result.Items)); err != nil {
				return err
			}
		case StatusInfeasible:
			if err := p.scheduleRuns.SetInfeasible(c, scheduleRunID, int(result.SolverWallTime.Milliseconds()), result.InfeasibleReason); err != nil {
				return err
			}
		default:
			wallTimeMs := int(result.SolverWallTime.Milliseconds())
			if err := p.scheduleRuns.SetFailed(c, scheduleRunID, &wallTimeMs, result.InfeasibleReason); err != nil {
				return err
			}
		}

		rows := make([]*domain.ScheduleItem, 0, len(result.Items))
		taskIDs := make([]uuid.UUID, 0, len(result.Items))
		for _, item := range result.Items {
			why, err := json.Marshal(item.Why)
			if err != nil {
				return err
			}
			rows = append(rows, &domain.ScheduleItem{
				ID:            uuid.New(),
				OrgID:         orgID,
				ScheduleRunID: scheduleRunID,
				TaskID:        item.TaskID,
				TechnicianID:  item.TechnicianID,
				BayID:         item.BayID,
				StartAt:       item.StartAt,
				EndAt:         item.EndAt,
				IsLocked:      item.IsLocked,
				Why:           datatypes.JSON(why),
			})
			taskIDs = append(taskIDs, item.TaskID)
		}
		if err := p.scheduleItems.ReplaceForRun(c, scheduleRunID, rows); err != nil {
			return err
		}

		return p.tasks.TransitionTodoToScheduled(c, taskIDs)
	})
}
