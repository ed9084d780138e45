package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func baseInput() Input {
	horizonStart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	return Input{
		HorizonStart: horizonStart,
		HorizonEnd:   horizonStart.Add(8 * time.Hour),
		Technicians: []Technician{
			{ID: uuid.New(), Name: "Alice", Skills: map[string]bool{"welding": true}},
			{ID: uuid.New(), Name: "Bob", Skills: map[string]bool{}},
		},
		Bays: []Bay{
			{ID: uuid.New(), Name: "Bay 1", BayType: "standard"},
		},
	}
}

func TestBuildExcludesTechniciansWithoutHardSkill(t *testing.T) {
	in := baseInput()
	task := Task{ID: uuid.New(), RequiredSkill: strPtr("welding"), RequiredSkillIsHard: true, DurationMinutes: 30}
	in.Tasks = []Task{task}

	m, err := Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cands := m.CandidateTechs(task.ID)
	if len(cands) != 1 || in.Technicians[cands[0]].Name != "Alice" {
		t.Fatalf("expected only Alice as candidate, got %v", cands)
	}
}

func TestBuildReturnsInfeasibleWhenNoTechnicianHasHardSkill(t *testing.T) {
	in := baseInput()
	task := Task{ID: uuid.New(), RequiredSkill: strPtr("welding"), RequiredSkillIsHard: true, DurationMinutes: 30}
	in.Tasks = []Task{task}
	// Remove the one technician who has the skill.
	in.Technicians = in.Technicians[1:]

	_, err := Build(in)
	var infeasible *InfeasibilityError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected *InfeasibilityError, got %v", err)
	}
}

func TestBuildReturnsInfeasibleOnCapacityOverflow(t *testing.T) {
	in := baseInput()
	// Horizon is 8h = 480 minutes, 2 technicians = 960 min capacity.
	in.Tasks = []Task{
		{ID: uuid.New(), DurationMinutes: 500},
		{ID: uuid.New(), DurationMinutes: 500},
	}
	_, err := Build(in)
	var infeasible *InfeasibilityError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected capacity *InfeasibilityError, got %v", err)
	}
}

func TestBuildDoesNotFlagMissingTechniciansOrBaysAsInfeasible(t *testing.T) {
	// model.go must not decide "no technicians"/"no bays" itself
	// (spec §7 routes that through driver.go as a handler error, not
	// solver infeasibility).
	in := Input{
		HorizonStart: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		HorizonEnd:   time.Date(2026, 1, 1, 16, 0, 0, 0, time.UTC),
		Tasks:        []Task{{ID: uuid.New(), DurationMinutes: 30}},
	}
	m, err := Build(in)
	if err != nil {
		t.Fatalf("expected Build to succeed with no technicians/bays, got %v", err)
	}
	if len(m.CandidateTechs(in.Tasks[0].ID)) != 0 {
		t.Fatalf("expected zero candidates with no technicians")
	}
}

func TestModelPlaceAndEarliestFit(t *testing.T) {
	in := baseInput()
	m, err := Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tech := in.Technicians[0].ID
	bay := in.Bays[0].ID

	start, ok := m.EarliestFit(tech, bay, 60, 0, in.HorizonMinutes())
	if !ok || start != 0 {
		t.Fatalf("expected earliest fit at 0, got start=%d ok=%v", start, ok)
	}
	m.Place(tech, bay, 0, 60)

	start2, ok := m.EarliestFit(tech, bay, 60, 0, in.HorizonMinutes())
	if !ok || start2 != 60 {
		t.Fatalf("expected next fit at 60 after booking [0,60), got start=%d ok=%v", start2, ok)
	}

	m.Unplace(tech, bay, 0, 60)
	start3, ok := m.EarliestFit(tech, bay, 60, 0, in.HorizonMinutes())
	if !ok || start3 != 0 {
		t.Fatalf("expected fit at 0 again after unplace, got start=%d ok=%v", start3, ok)
	}
}

func TestEarliestFitReturnsFalseWhenNoRoomInWindow(t *testing.T) {
	in := baseInput()
	m, err := Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tech := in.Technicians[0].ID
	bay := in.Bays[0].ID

	_, ok := m.EarliestFit(tech, bay, 600, 0, in.HorizonMinutes())
	if ok {
		t.Fatal("expected no fit for a duration longer than the horizon")
	}
}
