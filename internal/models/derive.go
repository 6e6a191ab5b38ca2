package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Pace returns distance/time formatted to two decimals. A zero time is
// treated as 1 so the result is always finite: Pace(10, 0) == "10.00".
func Pace(distance, time float64) string {
	if time == 0 {
		time = 1
	}
	return strconv.FormatFloat(distance/time, 'f', 2, 64)
}

// Pace returns the pacer's distance value over its time value.
func (w PacerWorkout) Pace() string {
	return Pace(w.Distance.Value, w.Time.Value)
}

// PaceLabel is the unit label for Pace, e.g. "km/min".
func (w PacerWorkout) PaceLabel() string {
	return Abbreviation(w.Distance.Unit) + "/" + Abbreviation(w.Time.Unit)
}

// BlockSummary is the derived view of one interval block.
type BlockSummary struct {
	Iterations       int             `json:"iterations"`
	StepCount        int             `json:"step_count"`
	Purposes         map[Purpose]int `json:"purposes"`
	DistinctPurposes int             `json:"distinct_purposes"`
	Label            string          `json:"label"`
}

// SummarizeBlock counts steps and tallies purposes.
func SummarizeBlock(b IntervalBlock) BlockSummary {
	s := BlockSummary{
		Iterations: b.Iterations,
		StepCount:  len(b.Steps),
		Purposes:   make(map[Purpose]int),
	}
	for _, step := range b.Steps {
		s.Purposes[step.Purpose]++
	}
	s.DistinctPurposes = len(s.Purposes)
	s.Label = blockLabel(b)
	return s
}

func blockLabel(b IntervalBlock) string {
	parts := make([]string, 0, len(b.Steps))
	for _, s := range b.Steps {
		parts = append(parts, purposeLabel(s.Purpose)+": "+s.Step.Display())
	}
	return fmt.Sprintf("%d × (%s)", b.Iterations, strings.Join(parts, ", "))
}

func purposeLabel(p Purpose) string {
	switch p {
	case PurposeWork:
		return "Work"
	case PurposeRecovery:
		return "Recovery"
	}
	return string(p)
}

// PlanSummary is what preview screens render for a plan.
type PlanSummary struct {
	Kind     PlanType `json:"kind"`
	Activity Activity `json:"activity"`
	Location Location `json:"location"`
	Headline string   `json:"headline"`
	Lines    []string `json:"lines"`

	Pace      string `json:"pace,omitempty"`
	PaceLabel string `json:"pace_label,omitempty"`

	Blocks     []BlockSummary `json:"blocks,omitempty"`
	TotalSteps int            `json:"total_steps"`

	// Set only when every step goal is time-based or distance-based respectively.
	EstimatedDurationSec *float64 `json:"estimated_duration_sec,omitempty"`
	TotalDistanceMeters  *float64 `json:"total_distance_meters,omitempty"`
}

// SummarizePlan derives the preview summary for any plan shape.
func SummarizePlan(p WorkoutPlan) PlanSummary {
	s := PlanSummary{
		Kind:     p.Type,
		Activity: p.Activity(),
		Location: p.Location(),
		Headline: p.Headline(),
	}

	switch {
	case p.Goal != nil:
		s.TotalSteps = 1
		s.Lines = []string{"Goal: " + p.Goal.Goal.Display()}
		var t totals
		t.add(p.Goal.Goal, 1)
		t.apply(&s)
	case p.Pacer != nil:
		s.TotalSteps = 1
		s.Pace = p.Pacer.Pace()
		s.PaceLabel = p.Pacer.PaceLabel()
		s.Lines = []string{
			"Distance: " + formatQuantity(p.Pacer.Distance.Value, p.Pacer.Distance.Unit),
			"Time: " + formatQuantity(p.Pacer.Time.Value, p.Pacer.Time.Unit),
			"Pace: " + s.Pace + " " + s.PaceLabel,
		}
		if sec, ok := Seconds(p.Pacer.Time.Value, p.Pacer.Time.Unit); ok {
			s.EstimatedDurationSec = &sec
		}
		if m, ok := Meters(p.Pacer.Distance.Value, p.Pacer.Distance.Unit); ok {
			s.TotalDistanceMeters = &m
		}
	case p.Custom != nil:
		summarizeCustom(p.Custom, &s)
	}
	return s
}

func summarizeCustom(w *CustomWorkout, s *PlanSummary) {
	var t totals
	if w.Warmup != nil {
		s.TotalSteps++
		s.Lines = append(s.Lines, "Warmup: "+w.Warmup.Display())
		t.add(w.Warmup.Goal, 1)
	}
	for _, b := range w.Blocks {
		bs := SummarizeBlock(b)
		s.Blocks = append(s.Blocks, bs)
		s.TotalSteps += bs.StepCount * bs.Iterations
		s.Lines = append(s.Lines, bs.Label)
		for _, step := range b.Steps {
			t.add(step.Step.Goal, b.Iterations)
		}
	}
	if w.Cooldown != nil {
		s.TotalSteps++
		s.Lines = append(s.Lines, "Cooldown: "+w.Cooldown.Display())
		t.add(w.Cooldown.Goal, 1)
	}
	t.apply(s)
}

// totals accumulates time and distance across steps, tracking whether
// every goal seen so far was of that kind.
type totals struct {
	seconds, meters float64
	steps           int
	timeSteps       int
	distanceSteps   int
}

func (t *totals) add(g Goal, times int) {
	t.steps += times
	if sec, ok := Seconds(g.Value, g.Unit); ok && g.Type == GoalTime {
		t.seconds += sec * float64(times)
		t.timeSteps += times
	}
	if m, ok := Meters(g.Value, g.Unit); ok && g.Type == GoalDistance {
		t.meters += m * float64(times)
		t.distanceSteps += times
	}
}

func (t *totals) apply(s *PlanSummary) {
	if t.steps == 0 {
		return
	}
	if t.timeSteps == t.steps {
		sec := t.seconds
		s.EstimatedDurationSec = &sec
	}
	if t.distanceSteps == t.steps {
		m := t.meters
		s.TotalDistanceMeters = &m
	}
}

// Display renders a goal for list rows, e.g. "5 km", "30 min", "Open".
func (g Goal) Display() string {
	if g.Type == GoalOpen || g.Type == "" {
		return "Open"
	}
	return formatQuantity(g.Value, g.Unit)
}

// Display renders a step goal with its alert, e.g. "400 m · HR Zone 4".
func (s WorkoutStep) Display() string {
	if s.Alert == nil {
		return s.Goal.Display()
	}
	return s.Goal.Display() + " · " + s.Alert.Display()
}

// Display renders an alert for list rows.
func (a Alert) Display() string {
	switch a.Type {
	case AlertHeartRateZone:
		return fmt.Sprintf("HR Zone %d", a.Zone)
	case AlertHeartRateRange:
		return fmt.Sprintf("HR %s-%s bpm", formatNumber(a.Min), formatNumber(a.Max))
	case AlertSpeedRange:
		return fmt.Sprintf("Speed %s-%s %s", formatNumber(a.Min), formatNumber(a.Max), unitOr(a.Unit, "km/h"))
	case AlertSpeedThreshold:
		return fmt.Sprintf("Speed ≥ %s %s", formatNumber(a.Target), unitOr(a.Unit, "km/h"))
	case AlertCadenceRange:
		return fmt.Sprintf("Cadence %s-%s %s", formatNumber(a.Min), formatNumber(a.Max), unitOr(a.Unit, "rpm"))
	case AlertCadenceThreshold:
		return fmt.Sprintf("Cadence ≥ %s %s", formatNumber(a.Target), unitOr(a.Unit, "rpm"))
	case AlertPowerRange:
		return fmt.Sprintf("Power %s-%s W", formatNumber(a.Min), formatNumber(a.Max))
	case AlertPowerThreshold:
		return fmt.Sprintf("Power ≥ %s W", formatNumber(a.Target))
	case AlertPowerZone:
		return fmt.Sprintf("Power Zone %d", a.Zone)
	}
	return string(a.Type)
}

// DisplayName is the human label for an activity.
func (a Activity) DisplayName() string {
	switch a {
	case ActivityRunning:
		return "Running"
	case ActivityCycling:
		return "Cycling"
	case ActivityWalking:
		return "Walking"
	case ActivityHiking:
		return "Hiking"
	case ActivitySwimming:
		return "Swimming"
	case ActivityRowing:
		return "Rowing"
	case ActivityElliptical:
		return "Elliptical"
	case ActivityStairClimbing:
		return "Stair Climbing"
	case ActivityHIIT:
		return "HIIT"
	case ActivityFunctionalStrength:
		return "Functional Strength"
	case ActivityYoga:
		return "Yoga"
	case ActivityOther:
		return "Other"
	}
	return string(a)
}

// Headline is a one-line description, e.g. "Running · 5 km".
func (p WorkoutPlan) Headline() string {
	name := p.Activity().DisplayName()
	switch {
	case p.Goal != nil:
		return name + " · " + p.Goal.Goal.Display()
	case p.Pacer != nil:
		return fmt.Sprintf("%s · %s in %s", name,
			formatQuantity(p.Pacer.Distance.Value, p.Pacer.Distance.Unit),
			formatQuantity(p.Pacer.Time.Value, p.Pacer.Time.Unit))
	case p.Custom != nil:
		if p.Custom.DisplayName != "" {
			return name + " · " + p.Custom.DisplayName
		}
		n := len(p.Custom.Blocks)
		if n == 1 {
			return name + " · 1 interval block"
		}
		return fmt.Sprintf("%s · %d interval blocks", name, n)
	}
	return name
}

func formatQuantity(v float64, u Unit) string {
	return formatNumber(v) + " " + Abbreviation(u)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unitOr(u, fallback string) string {
	if u == "" {
		return fallback
	}
	return u
}
