package scheduler

import (
	"fmt"

	"github.com/google/uuid"
)

// interval is a half-open span of minutes from HorizonStart, [Start, End).
type interval struct {
	Start, End int
}

func overlaps(a, b interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Model is Input after the hard-eligibility pass: every unlocked
// task's candidate technicians and bays, and the busy intervals
// locked tasks already impose on each resource. Grounded on the
// original scheduler's SchedulerModel.build() constraint list
// (cp_sat_scheduler.py): _add_skill_constraints and
// _add_bay_type_constraints compute these same candidate sets before
// any search begins.
type Model struct {
	Input Input

	// candidateTechs[taskID] is the set of technician indices allowed
	// to perform that task under its hard-skill constraint (all
	// technicians if the task has no hard skill requirement).
	candidateTechs map[uuid.UUID][]int
	// candidateBays[taskID] mirrors candidateTechs for bay type.
	candidateBays map[uuid.UUID][]int

	techBusy map[uuid.UUID][]interval
	bayBusy  map[uuid.UUID][]interval
}

// InfeasibilityError means the model can never produce a feasible
// schedule regardless of search effort: some task has zero candidate
// technicians or bays under a hard constraint, or the unlocked tasks'
// total duration exceeds the technicians' combined horizon capacity.
type InfeasibilityError struct {
	Reason string
}

func (e *InfeasibilityError) Error() string { return e.Reason }

// Build performs the hard-eligibility pass. It returns an
// *InfeasibilityError (not a plain error) when the input can never be
// scheduled, so callers can route it straight to the "infeasible"
// outcome instead of "failed" (spec.md §4.5 Design Notes §9).
func Build(in Input) (*Model, error) {
	m := &Model{
		Input:          in,
		candidateTechs: make(map[uuid.UUID][]int),
		candidateBays:  make(map[uuid.UUID][]int),
		techBusy:       make(map[uuid.UUID][]interval),
		bayBusy:        make(map[uuid.UUID][]interval),
	}

	for _, t := range in.Technicians {
		m.techBusy[t.ID] = nil
	}
	for _, b := range in.Bays {
		m.bayBusy[b.ID] = nil
	}

	for _, t := range in.LockedTasks() {
		if t.LockedStartAt == nil || t.LockedEndAt == nil {
			continue
		}
		iv := interval{
			Start: int(t.LockedStartAt.Sub(in.HorizonStart).Minutes()),
			End:   int(t.LockedEndAt.Sub(in.HorizonStart).Minutes()),
		}
		if t.LockedTechID != nil {
			m.techBusy[*t.LockedTechID] = append(m.techBusy[*t.LockedTechID], iv)
		}
		if t.LockedBayID != nil {
			m.bayBusy[*t.LockedBayID] = append(m.bayBusy[*t.LockedBayID], iv)
		}
	}

	var reasons []string

	for _, task := range in.UnlockedTasks() {
		techs := make([]int, 0, len(in.Technicians))
		for i, tech := range in.Technicians {
			if task.RequiredSkillIsHard && task.RequiredSkill != nil && !tech.Skills[*task.RequiredSkill] {
				continue
			}
			techs = append(techs, i)
		}
		if task.RequiredSkillIsHard && task.RequiredSkill != nil && len(techs) == 0 {
			reasons = append(reasons, fmt.Sprintf(
				"task %s requires skill %q but no technician has it", task.ID, *task.RequiredSkill))
		}
		m.candidateTechs[task.ID] = techs

		bays := make([]int, 0, len(in.Bays))
		for i, bay := range in.Bays {
			if task.RequiredBayType != nil && bay.BayType != *task.RequiredBayType {
				continue
			}
			bays = append(bays, i)
		}
		if task.RequiredBayType != nil && len(bays) == 0 {
			reasons = append(reasons, fmt.Sprintf(
				"task %s requires bay type %q but no bay has it", task.ID, *task.RequiredBayType))
		}
		m.candidateBays[task.ID] = bays
	}

	if len(reasons) > 0 {
		msg := reasons[0]
		for _, r := range reasons[1:] {
			msg += "; " + r
		}
		return nil, &InfeasibilityError{Reason: msg}
	}

	if cap := totalTechCapacity(in); cap > 0 {
		total := 0
		for _, t := range in.UnlockedTasks() {
			total += t.DurationMinutes
		}
		if total > cap {
			return nil, &InfeasibilityError{Reason: fmt.Sprintf(
				"total task duration (%d min) exceeds total tech capacity (%d min)", total, cap)}
		}
	}

	return m, nil
}

func totalTechCapacity(in Input) int {
	return len(in.Technicians) * in.HorizonMinutes()
}

// CandidateTechs returns the technician indices (into Input.Technicians)
// eligible for taskID under its hard-skill constraint.
func (m *Model) CandidateTechs(taskID uuid.UUID) []int { return m.candidateTechs[taskID] }

// CandidateBays mirrors CandidateTechs for the task's hard bay-type
// constraint.
func (m *Model) CandidateBays(taskID uuid.UUID) []int { return m.candidateBays[taskID] }

// Fits reports whether [start, start+duration) is free on both techID
// and bayID, and within [lower, upper).
func (m *Model) Fits(techID, bayID uuid.UUID, start, duration, lower, upper int) bool {
	end := start + duration
	if start < lower || end > upper {
		return false
	}
	cand := interval{Start: start, End: end}
	for _, iv := range m.techBusy[techID] {
		if overlaps(cand, iv) {
			return false
		}
	}
	for _, iv := range m.bayBusy[bayID] {
		if overlaps(cand, iv) {
			return false
		}
	}
	return true
}

// EarliestFit scans forward from lower for the first start time at
// which techID and bayID are both free for duration minutes, ending
// no later than upper. Returns ok=false if no such slot exists.
func (m *Model) EarliestFit(techID, bayID uuid.UUID, duration, lower, upper int) (start int, ok bool) {
	busy := mergeIntervals(m.techBusy[techID], m.bayBusy[bayID])
	t := lower
	for _, iv := range busy {
		if t+duration <= iv.Start {
			break
		}
		if t < iv.End {
			t = iv.End
		}
	}
	if t+duration > upper {
		return 0, false
	}
	return t, true
}

// Place books a task's interval against its assigned technician and
// bay so subsequent EarliestFit/Fits calls see it as busy.
func (m *Model) Place(techID, bayID uuid.UUID, start, duration int) {
	iv := interval{Start: start, End: start + duration}
	m.techBusy[techID] = append(m.techBusy[techID], iv)
	m.bayBusy[bayID] = append(m.bayBusy[bayID], iv)
}

// Unplace reverses the most recent Place for that exact interval,
// used by the solver to backtrack during local search.
func (m *Model) Unplace(techID, bayID uuid.UUID, start, duration int) {
	iv := interval{Start: start, End: start + duration}
	m.techBusy[techID] = removeInterval(m.techBusy[techID], iv)
	m.bayBusy[bayID] = removeInterval(m.bayBusy[bayID], iv)
}

func removeInterval(ivs []interval, target interval) []interval {
	for i, iv := range ivs {
		if iv == target {
			return append(ivs[:i], ivs[i+1:]...)
		}
	}
	return ivs
}

func mergeIntervals(a, b []interval) []interval {
	all := make([]interval, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].Start > all[j].Start; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}
	merged := make([]interval, 0, len(all))
	for _, iv := range all {
		n := len(merged)
		if n > 0 && iv.Start <= merged[n-1].End {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
