package models

import "fmt"

// Validate checks the plan invariants: the tag matches the payload, goals
// use units from their type's closed set, pacer quantities have the right
// dimensions, and every interval block has at least one step and one
// iteration.
func (p WorkoutPlan) Validate() error {
	set := 0
	for _, present := range []bool{p.Goal != nil, p.Pacer != nil, p.Custom != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one workout payload, got %d", ErrInvalidPlan, set)
	}

	switch p.Type {
	case PlanGoal:
		if p.Goal == nil {
			return fmt.Errorf("%w: type goal without goal workout", ErrInvalidPlan)
		}
		return p.Goal.validate()
	case PlanPacer:
		if p.Pacer == nil {
			return fmt.Errorf("%w: type pacer without pacer workout", ErrInvalidPlan)
		}
		return p.Pacer.validate()
	case PlanCustom:
		if p.Custom == nil {
			return fmt.Errorf("%w: type custom without custom workout", ErrInvalidPlan)
		}
		return p.Custom.validate()
	}
	return fmt.Errorf("%w: unknown plan type %q", ErrInvalidPlan, p.Type)
}

func validateHeader(a Activity, l Location) error {
	if !a.Valid() {
		return fmt.Errorf("%w: unknown activity %q", ErrInvalidPlan, a)
	}
	if !l.Valid() {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidPlan, l)
	}
	return nil
}

func (w *GoalWorkout) validate() error {
	if err := validateHeader(w.Activity, w.Location); err != nil {
		return err
	}
	return w.Goal.Validate()
}

func (w *PacerWorkout) validate() error {
	if err := validateHeader(w.Activity, w.Location); err != nil {
		return err
	}
	if GoalTypeOf(w.Distance.Unit) != GoalDistance {
		return fmt.Errorf("%w: pacer distance unit %q is not a distance unit", ErrInvalidPlan, w.Distance.Unit)
	}
	if GoalTypeOf(w.Time.Unit) != GoalTime {
		return fmt.Errorf("%w: pacer time unit %q is not a time unit", ErrInvalidPlan, w.Time.Unit)
	}
	// Zero is allowed; Pace treats a zero time as 1.
	if w.Distance.Value < 0 || w.Time.Value < 0 {
		return fmt.Errorf("%w: pacer distance and time must not be negative", ErrInvalidPlan)
	}
	return nil
}

func (w *CustomWorkout) validate() error {
	if err := validateHeader(w.Activity, w.Location); err != nil {
		return err
	}
	if len(w.Blocks) == 0 && w.Warmup == nil && w.Cooldown == nil {
		return fmt.Errorf("%w: custom workout has no steps", ErrInvalidPlan)
	}
	if w.Warmup != nil {
		if err := w.Warmup.Validate(); err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
	}
	for i, b := range w.Blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i+1, err)
		}
	}
	if w.Cooldown != nil {
		if err := w.Cooldown.Validate(); err != nil {
			return fmt.Errorf("cooldown: %w", err)
		}
	}
	return nil
}

// Validate checks that the block repeats at least once and has steps with
// known purposes.
func (b IntervalBlock) Validate() error {
	if b.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidPlan, b.Iterations)
	}
	if len(b.Steps) == 0 {
		return fmt.Errorf("%w: interval block has no steps", ErrInvalidPlan)
	}
	for i, s := range b.Steps {
		if s.Purpose != PurposeWork && s.Purpose != PurposeRecovery {
			return fmt.Errorf("%w: step %d has unknown purpose %q", ErrInvalidPlan, i+1, s.Purpose)
		}
		if err := s.Step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks the step goal and alert.
func (s WorkoutStep) Validate() error {
	if err := s.Goal.Validate(); err != nil {
		return err
	}
	if s.Alert != nil {
		return s.Alert.Validate()
	}
	return nil
}

// Validate checks that the unit belongs to the goal type and the value is usable.
func (g Goal) Validate() error {
	if !g.Type.Valid() {
		return fmt.Errorf("%w: unknown goal type %q", ErrInvalidPlan, g.Type)
	}
	if g.Type == GoalOpen {
		return nil
	}
	if GoalTypeOf(g.Unit) != g.Type {
		return fmt.Errorf("%w: unit %q is not valid for a %s goal", ErrInvalidPlan, g.Unit, g.Type)
	}
	if g.Value < 0 {
		return fmt.Errorf("%w: %s goal value must not be negative", ErrInvalidPlan, g.Type)
	}
	return nil
}

// Validate checks the fields each alert type relies on.
func (a Alert) Validate() error {
	switch a.Type {
	case AlertHeartRateZone, AlertPowerZone:
		if a.Zone < 1 || a.Zone > 5 {
			return fmt.Errorf("%w: %s zone must be 1-5, got %d", ErrInvalidPlan, a.Type, a.Zone)
		}
	case AlertHeartRateRange, AlertSpeedRange, AlertCadenceRange, AlertPowerRange:
		if a.Min <= 0 || a.Max < a.Min {
			return fmt.Errorf("%w: %s needs 0 < min <= max", ErrInvalidPlan, a.Type)
		}
	case AlertSpeedThreshold, AlertCadenceThreshold, AlertPowerThreshold:
		if a.Target <= 0 {
			return fmt.Errorf("%w: %s needs a positive target", ErrInvalidPlan, a.Type)
		}
	default:
		return fmt.Errorf("%w: unknown alert type %q", ErrInvalidPlan, a.Type)
	}
	return nil
}
