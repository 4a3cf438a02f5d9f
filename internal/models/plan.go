package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Defaults for optional exercise fields.
const (
	DefaultDuration     = "N/A"
	DefaultInstructions = "No instructions provided."
)

// ErrPlanParse is wrapped by every PlanParseError.
var ErrPlanParse = errors.New("invalid workout plan")

// PlanParseError reports a payload that cannot be interpreted as a Plan.
// Path locates the offending element, e.g. `"Day 2".exercises[1].name`.
type PlanParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PlanParseError) Error() string {
	msg := "parsing workout plan"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlanParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPlanParse, e.Err}
	}
	return []error{ErrPlanParse}
}

func parseErr(path, reason string, err error) *PlanParseError {
	return &PlanParseError{Path: path, Reason: reason, Err: err}
}

// Plan is an ordered sequence of training days. Order is the order the days
// appeared in the source JSON object.
type Plan struct {
	Days []Day
}

// Day is one labelled entry of a Plan.
type Day struct {
	Label     string
	Exercises []Exercise
}

// Exercise is a single exercise block. Name is required; Duration and
// Instructions fall back to DefaultDuration and DefaultInstructions.
type Exercise struct {
	Name         string `json:"name"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// DurationOrDefault returns the duration text to display.
func (e Exercise) DurationOrDefault() string {
	if e.Duration == "" {
		return DefaultDuration
	}
	return e.Duration
}

// InstructionsOrDefault returns the instructions text to display.
func (e Exercise) InstructionsOrDefault() string {
	if e.Instructions == "" {
		return DefaultInstructions
	}
	return e.Instructions
}

// ExerciseCount returns the total number of exercises across all days.
func (p *Plan) ExerciseCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Exercises)
	}
	return n
}

// Validate applies the same structural rules as ParsePlan to a plan that was
// built in code rather than parsed.
func (p *Plan) Validate() error {
	if p == nil {
		return parseErr("", "plan is nil", nil)
	}
	seen := make(map[string]bool, len(p.Days))
	for _, d := range p.Days {
		if seen[d.Label] {
			return parseErr(quote(d.Label), "duplicate day label", nil)
		}
		seen[d.Label] = true
		for i, ex := range d.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return parseErr(exercisePath(d.Label, i)+".name", "name is required", nil)
			}
		}
	}
	return nil
}

// WithDefaults returns a deep copy of the plan with optional fields filled in.
func (p *Plan) WithDefaults() *Plan {
	out := &Plan{Days: make([]Day, len(p.Days))}
	for i, d := range p.Days {
		exs := make([]Exercise, len(d.Exercises))
		for j, ex := range d.Exercises {
			exs[j] = Exercise{
				Name:         ex.Name,
				Duration:     ex.DurationOrDefault(),
				Instructions: ex.InstructionsOrDefault(),
			}
		}
		out.Days[i] = Day{Label: d.Label, Exercises: exs}
	}
	return out
}

// MarshalJSON writes the plan as {"<label>": {"exercises": [...]}, ...}
// keeping day order.
func (p Plan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range p.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Label)
		if err != nil {
			return nil, err
		}
		exs := d.Exercises
		if exs == nil {
			exs = []Exercise{}
		}
		val, err := json.Marshal(struct {
			Exercises []Exercise `json:"exercises"`
		}{exs})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses via ParsePlan so key order and validation apply.
func (p *Plan) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePlan(data)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// ParsePlan parses a JSON object of the shape
//
//	{"Day 1": {"exercises": [{"name": "...", "duration": "...", "instructions": "..."}]}}
//
// into a Plan. Day order follows the source object. Any structural problem
// yields a *PlanParseError.
func ParsePlan(data []byte) (*Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, parseErr("", "not valid JSON", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, parseErr("", "plan must be a JSON object", nil)
	}

	plan := &Plan{}
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseErr("", "not valid JSON", err)
		}
		label, ok := tok.(string)
		if !ok {
			return nil, parseErr("", "day label must be a string", nil)
		}
		if seen[label] {
			return nil, parseErr(quote(label), "duplicate day label", nil)
		}
		seen[label] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, parseErr(quote(label), "not valid JSON", err)
		}
		day, err := parseDay(label, raw)
		if err != nil {
			return nil, err
		}
		plan.Days = append(plan.Days, day)
	}

	if _, err := dec.Token(); err != nil {
		return nil, parseErr("", "not valid JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, parseErr("", "unexpected data after plan object", err)
	}
	return plan, nil
}

func parseDay(label string, raw json.RawMessage) (Day, error) {
	path := quote(label)
	var fields map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &fields) != nil {
		return Day{}, parseErr(path, "day must be an object", nil)
	}

	exRaw, ok := fields["exercises"]
	if !ok {
		return Day{}, parseErr(path, "exercises is required", nil)
	}
	var items []json.RawMessage
	if isNull(exRaw) || json.Unmarshal(exRaw, &items) != nil {
		return Day{}, parseErr(path+".exercises", "exercises must be an array", nil)
	}

	day := Day{Label: label, Exercises: make([]Exercise, 0, len(items))}
	for i, item := range items {
		ex, err := parseExercise(exercisePath(label, i), item)
		if err != nil {
			return Day{}, err
		}
		day.Exercises = append(day.Exercises, ex)
	}
	return day, nil
}

func parseExercise(path string, raw json.RawMessage) (Exercise, error) {
	var fields map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &fields) != nil {
		return Exercise{}, parseErr(path, "exercise must be an object", nil)
	}

	nameRaw, ok := fields["name"]
	if !ok {
		return Exercise{}, parseErr(path+".name", "name is required", nil)
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil || isNull(nameRaw) {
		return Exercise{}, parseErr(path+".name", "name must be a string", nil)
	}
	if strings.TrimSpace(name) == "" {
		return Exercise{}, parseErr(path+".name", "name is required", nil)
	}

	duration, err := optionalText(path+".duration", fields["duration"])
	if err != nil {
		return Exercise{}, err
	}
	instructions, err := optionalText(path+".instructions", fields["instructions"])
	if err != nil {
		return Exercise{}, err
	}
	return Exercise{Name: name, Duration: duration, Instructions: instructions}, nil
}

// optionalText accepts a string or number. Missing and null yield "".
func optionalText(path string, raw json.RawMessage) (string, error) {
	if raw == nil || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), nil
	}
	return "", parseErr(path, "must be a string", nil)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func quote(label string) string {
	return fmt.Sprintf("%q", label)
}

func exercisePath(label string, i int) string {
	return fmt.Sprintf("%q.exercises[%d]", label, i)
}
