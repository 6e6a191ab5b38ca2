package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Activity is the physical activity a plan is built for.
type Activity string

const (
	ActivityRunning            Activity = "running"
	ActivityCycling            Activity = "cycling"
	ActivityWalking            Activity = "walking"
	ActivityHiking             Activity = "hiking"
	ActivitySwimming           Activity = "swimming"
	ActivityRowing             Activity = "rowing"
	ActivityElliptical         Activity = "elliptical"
	ActivityStairClimbing      Activity = "stairClimbing"
	ActivityHIIT               Activity = "highIntensityIntervalTraining"
	ActivityFunctionalStrength Activity = "functionalStrengthTraining"
	ActivityYoga               Activity = "yoga"
	ActivityOther              Activity = "other"
)

// Activities lists every supported activity in picker order.
var Activities = []Activity{
	ActivityRunning, ActivityCycling, ActivityWalking, ActivityHiking,
	ActivitySwimming, ActivityRowing, ActivityElliptical, ActivityStairClimbing,
	ActivityHIIT, ActivityFunctionalStrength, ActivityYoga, ActivityOther,
}

// Valid reports whether a is a known activity.
func (a Activity) Valid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// Location is where the activity takes place.
type Location string

const (
	LocationIndoor  Location = "indoor"
	LocationOutdoor Location = "outdoor"
	LocationUnknown Location = "unknown"
)

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	switch l {
	case LocationIndoor, LocationOutdoor, LocationUnknown:
		return true
	}
	return false
}

// PlanType tags which payload a WorkoutPlan carries.
type PlanType string

const (
	PlanGoal   PlanType = "goal"
	PlanPacer  PlanType = "pacer"
	PlanCustom PlanType = "custom"
)

// Purpose marks an interval step as effort or rest.
type Purpose string

const (
	PurposeWork     Purpose = "work"
	PurposeRecovery Purpose = "recovery"
)

// Goal is a single target for a step or a whole goal workout.
// Open goals carry no value or unit.
type Goal struct {
	Type  GoalType `json:"type"`
	Value float64  `json:"value,omitempty"`
	Unit  Unit     `json:"unit,omitempty"`
}

// Quantity is a value with a canonical unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// AlertType identifies what an in-workout alert monitors.
type AlertType string

const (
	AlertHeartRateZone    AlertType = "heartRateZone"
	AlertHeartRateRange   AlertType = "heartRateRange"
	AlertSpeedRange       AlertType = "speedRange"
	AlertSpeedThreshold   AlertType = "speedThreshold"
	AlertCadenceRange     AlertType = "cadenceRange"
	AlertCadenceThreshold AlertType = "cadenceThreshold"
	AlertPowerRange       AlertType = "powerRange"
	AlertPowerThreshold   AlertType = "powerThreshold"
	AlertPowerZone        AlertType = "powerZone"
)

// Alert is an optional target attached to a step.
// Zone alerts use Zone, range alerts use Min/Max, threshold alerts use Target.
type Alert struct {
	Type   AlertType `json:"type"`
	Zone   int       `json:"zone,omitempty"`
	Min    float64   `json:"min,omitempty"`
	Max    float64   `json:"max,omitempty"`
	Target float64   `json:"target,omitempty"`
	Unit   string    `json:"unit,omitempty"`
}

// WorkoutStep is one goal with an optional alert.
type WorkoutStep struct {
	Goal  Goal   `json:"goal"`
	Alert *Alert `json:"alert,omitempty"`
}

// IntervalStep is a step inside a repeated block.
type IntervalStep struct {
	Purpose Purpose     `json:"purpose"`
	Step    WorkoutStep `json:"step"`
}

// IntervalBlock is a sequence of steps repeated Iterations times.
type IntervalBlock struct {
	Steps      []IntervalStep `json:"steps"`
	Iterations int            `json:"iterations"`
}

// GoalWorkout has a single target for the whole session.
type GoalWorkout struct {
	Activity Activity `json:"activity"`
	Location Location `json:"location"`
	Goal     Goal     `json:"goal"`
}

// PacerWorkout pairs a distance with a time, implying a target pace.
type PacerWorkout struct {
	Activity Activity `json:"activity"`
	Location Location `json:"location"`
	Distance Quantity `json:"distance"`
	Time     Quantity `json:"time"`
}

// CustomWorkout is warmup, repeated interval blocks, and cooldown.
type CustomWorkout struct {
	Activity    Activity        `json:"activity"`
	Location    Location        `json:"location"`
	DisplayName string          `json:"displayName,omitempty"`
	Warmup      *WorkoutStep    `json:"warmup,omitempty"`
	Blocks      []IntervalBlock `json:"blocks"`
	Cooldown    *WorkoutStep    `json:"cooldown,omitempty"`
}

// WorkoutPlan is a tagged union over the three plan shapes. Exactly one
// payload pointer is set, and it matches Type.
type WorkoutPlan struct {
	Type   PlanType
	Goal   *GoalWorkout
	Pacer  *PacerWorkout
	Custom *CustomWorkout
}

// ErrInvalidPlan is wrapped by every plan decoding and validation failure.
var ErrInvalidPlan = errors.New("invalid workout plan")

// NewGoalPlan wraps a goal workout in a plan.
func NewGoalPlan(w GoalWorkout) WorkoutPlan {
	return WorkoutPlan{Type: PlanGoal, Goal: &w}
}

// NewPacerPlan wraps a pacer workout in a plan.
func NewPacerPlan(w PacerWorkout) WorkoutPlan {
	return WorkoutPlan{Type: PlanPacer, Pacer: &w}
}

// NewCustomPlan wraps a custom workout in a plan.
func NewCustomPlan(w CustomWorkout) WorkoutPlan {
	return WorkoutPlan{Type: PlanCustom, Custom: &w}
}

// Activity returns the activity of whichever payload is set.
func (p WorkoutPlan) Activity() Activity {
	switch {
	case p.Goal != nil:
		return p.Goal.Activity
	case p.Pacer != nil:
		return p.Pacer.Activity
	case p.Custom != nil:
		return p.Custom.Activity
	}
	return ""
}

// Location returns the location of whichever payload is set.
func (p WorkoutPlan) Location() Location {
	switch {
	case p.Goal != nil:
		return p.Goal.Location
	case p.Pacer != nil:
		return p.Pacer.Location
	case p.Custom != nil:
		return p.Custom.Location
	}
	return ""
}

type planEnvelope struct {
	Type    PlanType        `json:"type"`
	Workout json.RawMessage `json:"workout"`
}

// MarshalJSON encodes the plan as {"type": ..., "workout": {...}}.
func (p WorkoutPlan) MarshalJSON() ([]byte, error) {
	var payload any
	switch p.Type {
	case PlanGoal:
		if p.Goal == nil {
			return nil, fmt.Errorf("%w: goal plan without goal workout", ErrInvalidPlan)
		}
		payload = p.Goal
	case PlanPacer:
		if p.Pacer == nil {
			return nil, fmt.Errorf("%w: pacer plan without pacer workout", ErrInvalidPlan)
		}
		payload = p.Pacer
	case PlanCustom:
		if p.Custom == nil {
			return nil, fmt.Errorf("%w: custom plan without custom workout", ErrInvalidPlan)
		}
		payload = p.Custom
	default:
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrInvalidPlan, p.Type)
	}

	workout, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(planEnvelope{Type: p.Type, Workout: workout})
}

// UnmarshalJSON decodes the tagged form and rejects payloads whose shape
// does not match the tag.
func (p *WorkoutPlan) UnmarshalJSON(data []byte) error {
	var env planEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if len(env.Workout) == 0 || string(env.Workout) == "null" {
		return fmt.Errorf("%w: missing workout payload", ErrInvalidPlan)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(env.Workout, &keys); err != nil {
		return fmt.Errorf("%w: workout payload: %v", ErrInvalidPlan, err)
	}

	plan := WorkoutPlan{Type: env.Type}
	switch env.Type {
	case PlanGoal:
		if err := requireKeys(keys, "goal"); err != nil {
			return err
		}
		plan.Goal = &GoalWorkout{}
		if err := json.Unmarshal(env.Workout, plan.Goal); err != nil {
			return fmt.Errorf("%w: goal workout: %v", ErrInvalidPlan, err)
		}
	case PlanPacer:
		if err := requireKeys(keys, "distance", "time"); err != nil {
			return err
		}
		plan.Pacer = &PacerWorkout{}
		if err := json.Unmarshal(env.Workout, plan.Pacer); err != nil {
			return fmt.Errorf("%w: pacer workout: %v", ErrInvalidPlan, err)
		}
	case PlanCustom:
		if err := requireKeys(keys, "blocks"); err != nil {
			return err
		}
		plan.Custom = &CustomWorkout{}
		if err := json.Unmarshal(env.Workout, plan.Custom); err != nil {
			return fmt.Errorf("%w: custom workout: %v", ErrInvalidPlan, err)
		}
	default:
		return fmt.Errorf("%w: unknown plan type %q", ErrInvalidPlan, env.Type)
	}

	*p = plan
	return nil
}

func requireKeys(keys map[string]json.RawMessage, names ...string) error {
	for _, name := range names {
		v, ok := keys[name]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: workout payload missing %q", ErrInvalidPlan, name)
		}
	}
	return nil
}
