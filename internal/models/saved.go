package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Origin records how a saved workout was created.
type Origin string

const (
	OriginManual Origin = "manual"
	OriginAI     Origin = "ai"
)

// Status is the lifecycle state of a scheduled workout.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// SavedWorkout is one element of the persisted workout collection.
type SavedWorkout struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	WorkoutPlan   WorkoutPlan `json:"workoutPlan"`
	CreatedAt     time.Time   `json:"createdAt"`
	Activity      Activity    `json:"activity"`
	Location      Location    `json:"location"`
	Origin        Origin      `json:"origin,omitempty"`
	ScheduledDate *time.Time  `json:"scheduledDate,omitempty"`
	Status        Status      `json:"status,omitempty"`
	CompletedDate *time.Time  `json:"completedDate,omitempty"`
}

// NewWorkout is the input for saving a workout. ID and CreatedAt are assigned
// by the store.
type NewWorkout struct {
	Name          string      `json:"name"`
	WorkoutPlan   WorkoutPlan `json:"workoutPlan"`
	Activity      Activity    `json:"activity,omitempty"`
	Location      Location    `json:"location,omitempty"`
	Origin        Origin      `json:"origin,omitempty"`
	ScheduledDate *time.Time  `json:"scheduledDate,omitempty"`
	Status        Status      `json:"status,omitempty"`
}

// WorkoutPatch is a partial update. Nil fields are left untouched;
// ClearSchedule drops scheduledDate, status, and completedDate.
type WorkoutPatch struct {
	Name          *string    `json:"name,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	ClearSchedule bool       `json:"clearSchedule,omitempty"`
}

// Validate rejects empty names and unknown statuses.
func (p WorkoutPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("unknown status %q", *p.Status)
	}
	return nil
}

// Apply mutates w in place.
func (p WorkoutPatch) Apply(w *SavedWorkout) {
	if p.ClearSchedule {
		w.ScheduledDate = nil
		w.Status = ""
		w.CompletedDate = nil
	}
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.ScheduledDate != nil {
		d := *p.ScheduledDate
		w.ScheduledDate = &d
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if p.CompletedDate != nil {
		d := *p.CompletedDate
		w.CompletedDate = &d
	}
}

// ParsedWorkout is the plan-shaped object a language model reply carries.
type ParsedWorkout struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Activity    Activity     `json:"activity"`
	Location    Location     `json:"location,omitempty"`
	WorkoutPlan *WorkoutPlan `json:"workoutPlan"`
}

// ToNewWorkout converts a reconciled AI proposal into save input.
func (p ParsedWorkout) ToNewWorkout() NewWorkout {
	nw := NewWorkout{
		Name:     p.Name,
		Activity: p.Activity,
		Location: p.Location,
		Origin:   OriginAI,
	}
	if p.WorkoutPlan != nil {
		nw.WorkoutPlan = *p.WorkoutPlan
	}
	return nw
}

// DecodeWorkouts decodes a JSON array of saved workouts one record at a
// time. Records that fail to decode are counted in undecodable and dropped;
// only a body that is not a JSON array is an error.
func DecodeWorkouts(data []byte) (workouts []SavedWorkout, undecodable int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decoding workout array: %w", err)
	}
	workouts = make([]SavedWorkout, 0, len(raw))
	for _, r := range raw {
		var w SavedWorkout
		if err := json.Unmarshal(r, &w); err != nil {
			undecodable++
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, undecodable, nil
}
