package models

import (
	"fmt"
	"slices"
	"strings"
)

// Form options offered on the plan page.
var (
	Goals        = []string{"General Fitness", "Muscle Gain", "Fat loss"}
	Levels       = []string{"Beginner", "Intermediate", "Advanced"}
	Commitments  = []string{"15 Mins", "30 Mins", "45 Mins"}
	WorkoutTypes = []string{"Strength Training", "Yoga", "Cardio", "HIIT"}
	Equipment    = []string{"Bodyweight Only", "Dumbbells", "Resistance Bands", "Full Gym"}
	Durations    = []string{"7 Days", "14 Days", "30 Days"}
)

// FormOptions groups the option sets for templates and the MCP resource.
type FormOptions struct {
	Goals        []string `json:"goals"`
	Levels       []string `json:"levels"`
	Commitments  []string `json:"commitments"`
	WorkoutTypes []string `json:"workout_types"`
	Equipment    []string `json:"equipment"`
	Durations    []string `json:"durations"`
}

// Options returns the current option sets.
func Options() FormOptions {
	return FormOptions{
		Goals:        Goals,
		Levels:       Levels,
		Commitments:  Commitments,
		WorkoutTypes: WorkoutTypes,
		Equipment:    Equipment,
		Durations:    Durations,
	}
}

// PlanRequest carries the user's preferences for plan generation.
type PlanRequest struct {
	Goal         string   `json:"goal"`
	Level        string   `json:"level"`
	Commitment   string   `json:"commitment"`
	WorkoutTypes []string `json:"workout_types"`
	Equipment    string   `json:"equipment"`
	Duration     string   `json:"duration"`
}

// Complete reports whether every field has a value.
func (r PlanRequest) Complete() bool {
	for _, v := range []string{r.Goal, r.Level, r.Commitment, r.Equipment, r.Duration} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return len(r.WorkoutTypes) > 0
}

// Validate requires every field to be filled in with a known option.
func (r PlanRequest) Validate() error {
	single := []struct {
		field, value string
		allowed      []string
	}{
		{"goal", r.Goal, Goals},
		{"level", r.Level, Levels},
		{"commitment", r.Commitment, Commitments},
		{"equipment", r.Equipment, Equipment},
		{"duration", r.Duration, Durations},
	}
	for _, f := range single {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.field)
		}
		if !slices.Contains(f.allowed, f.value) {
			return fmt.Errorf("%s %q is not a valid option", f.field, f.value)
		}
	}

	if len(r.WorkoutTypes) == 0 {
		return fmt.Errorf("workout_types is required")
	}
	for _, wt := range r.WorkoutTypes {
		if !slices.Contains(WorkoutTypes, wt) {
			return fmt.Errorf("workout type %q is not a valid option", wt)
		}
	}
	return nil
}
