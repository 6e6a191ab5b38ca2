package models

import "fmt"

// PlanForm is the raw input from the plan-building screens. Units are the
// abbreviations shown in the pickers ("km", "min", "cal").
type PlanForm struct {
	Kind     PlanType `json:"kind"`
	Activity Activity `json:"activity"`
	Location Location `json:"location"`

	// goal
	Goal *StepForm `json:"goal,omitempty"`

	// pacer
	Distance     float64 `json:"distance,omitempty"`
	DistanceUnit string  `json:"distanceUnit,omitempty"`
	Time         float64 `json:"time,omitempty"`
	TimeUnit     string  `json:"timeUnit,omitempty"`

	// custom
	DisplayName string      `json:"displayName,omitempty"`
	Warmup      *StepForm   `json:"warmup,omitempty"`
	Blocks      []BlockForm `json:"blocks,omitempty"`
	Cooldown    *StepForm   `json:"cooldown,omitempty"`
}

// StepForm is one goal row with an optional alert.
type StepForm struct {
	GoalType GoalType `json:"goalType"`
	Value    float64  `json:"value,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Alert    *Alert   `json:"alert,omitempty"`
}

// BlockForm is an interval block row. Iterations below 1 are raised to 1.
type BlockForm struct {
	Iterations int                `json:"iterations"`
	Steps      []IntervalStepForm `json:"steps"`
}

// IntervalStepForm is a step row inside a block.
type IntervalStepForm struct {
	Purpose Purpose `json:"purpose"`
	StepForm
}

// BuildPlan normalizes form input into a validated WorkoutPlan. Missing
// activity defaults to running and missing location to outdoor.
func BuildPlan(f PlanForm) (WorkoutPlan, error) {
	activity := f.Activity
	if activity == "" {
		activity = ActivityRunning
	}
	location := f.Location
	if location == "" {
		location = LocationOutdoor
	}

	var plan WorkoutPlan
	switch f.Kind {
	case PlanGoal:
		if f.Goal == nil {
			return WorkoutPlan{}, fmt.Errorf("%w: goal form without goal", ErrInvalidPlan)
		}
		plan = NewGoalPlan(GoalWorkout{
			Activity: activity,
			Location: location,
			Goal:     f.Goal.goal(),
		})
	case PlanPacer:
		plan = NewPacerPlan(PacerWorkout{
			Activity: activity,
			Location: location,
			Distance: Quantity{Value: f.Distance, Unit: CanonicalUnit(GoalDistance, f.DistanceUnit)},
			Time:     Quantity{Value: f.Time, Unit: CanonicalUnit(GoalTime, f.TimeUnit)},
		})
	case PlanCustom:
		w := CustomWorkout{
			Activity:    activity,
			Location:    location,
			DisplayName: f.DisplayName,
		}
		if f.Warmup != nil {
			step := f.Warmup.step()
			w.Warmup = &step
		}
		for _, bf := range f.Blocks {
			iterations := bf.Iterations
			if iterations < 1 {
				iterations = 1
			}
			block := IntervalBlock{Iterations: iterations}
			for _, sf := range bf.Steps {
				purpose := sf.Purpose
				if purpose == "" {
					purpose = PurposeWork
				}
				block.Steps = append(block.Steps, IntervalStep{Purpose: purpose, Step: sf.step()})
			}
			w.Blocks = append(w.Blocks, block)
		}
		if f.Cooldown != nil {
			step := f.Cooldown.step()
			w.Cooldown = &step
		}
		plan = NewCustomPlan(w)
	default:
		return WorkoutPlan{}, fmt.Errorf("%w: unknown plan kind %q", ErrInvalidPlan, f.Kind)
	}

	if err := plan.Validate(); err != nil {
		return WorkoutPlan{}, err
	}
	return plan, nil
}

func (f StepForm) goal() Goal {
	if f.GoalType == GoalOpen {
		return Goal{Type: GoalOpen}
	}
	return Goal{
		Type:  f.GoalType,
		Value: f.Value,
		Unit:  CanonicalUnit(f.GoalType, f.Unit),
	}
}

func (f StepForm) step() WorkoutStep {
	return WorkoutStep{Goal: f.goal(), Alert: f.Alert}
}

// NormalizeUnits rewrites every goal and pacer unit in place to its
// canonical form. Abbreviations, aliases, and canonical names are all
// accepted; anything else falls back to the type default.
func (p *WorkoutPlan) NormalizeUnits() {
	switch {
	case p.Goal != nil:
		p.Goal.Goal.normalize()
	case p.Pacer != nil:
		p.Pacer.Distance.Unit = CanonicalUnit(GoalDistance, string(p.Pacer.Distance.Unit))
		p.Pacer.Time.Unit = CanonicalUnit(GoalTime, string(p.Pacer.Time.Unit))
	case p.Custom != nil:
		if p.Custom.Warmup != nil {
			p.Custom.Warmup.Goal.normalize()
		}
		for i := range p.Custom.Blocks {
			for j := range p.Custom.Blocks[i].Steps {
				p.Custom.Blocks[i].Steps[j].Step.Goal.normalize()
			}
		}
		if p.Custom.Cooldown != nil {
			p.Custom.Cooldown.Goal.normalize()
		}
	}
}

func (g *Goal) normalize() {
	if !g.Type.Valid() {
		return
	}
	g.Unit = CanonicalUnit(g.Type, string(g.Unit))
}
