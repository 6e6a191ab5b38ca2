package fitexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/claude/plancoach/internal/models"
)

var created = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

func decodeSteps(t *testing.T, data []byte) (workouts int, steps []*mesgdef.WorkoutStep) {
	t.Helper()
	fit, err := decoder.New(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decoding FIT: %v", err)
	}
	var fileIDs int
	for i := range fit.Messages {
		msg := fit.Messages[i]
		switch msg.Num {
		case typedef.MesgNumFileId:
			fileIDs++
		case typedef.MesgNumWorkout:
			workouts++
		case typedef.MesgNumWorkoutStep:
			steps = append(steps, mesgdef.NewWorkoutStep(&msg))
		}
	}
	if fileIDs != 1 {
		t.Errorf("file_id messages = %d, want 1", fileIDs)
	}
	return workouts, steps
}

// TestEncodeCustom verifies blocks expand to their steps plus a repeat step.
func TestEncodeCustom(t *testing.T) {
	plan := models.NewCustomPlan(models.CustomWorkout{
		Activity: models.ActivityRunning,
		Location: models.LocationOutdoor,
		Warmup:   &models.WorkoutStep{Goal: models.Goal{Type: models.GoalTime, Value: 10, Unit: models.UnitMinutes}},
		Blocks: []models.IntervalBlock{{
			Iterations: 4,
			Steps: []models.IntervalStep{
				{Purpose: models.PurposeWork, Step: models.WorkoutStep{
					Goal:  models.Goal{Type: models.GoalDistance, Value: 400, Unit: models.UnitMeters},
					Alert: &models.Alert{Type: models.AlertHeartRateZone, Zone: 4},
				}},
				{Purpose: models.PurposeRecovery, Step: models.WorkoutStep{
					Goal: models.Goal{Type: models.GoalTime, Value: 90, Unit: models.UnitSeconds},
				}},
			},
		}},
		Cooldown: &models.WorkoutStep{Goal: models.Goal{Type: models.GoalOpen}},
	})

	data, err := Encode("Track 400s", plan, created)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	workouts, steps := decodeSteps(t, data)
	if workouts != 1 {
		t.Errorf("workout messages = %d, want 1", workouts)
	}
	if len(steps) != 5 {
		t.Fatalf("steps = %d, want 5", len(steps))
	}

	warm := steps[0]
	if warm.Intensity != typedef.IntensityWarmup || warm.DurationType != typedef.WktStepDurationTime || warm.DurationValue != 600000 {
		t.Errorf("warmup = %v/%v/%d", warm.Intensity, warm.DurationType, warm.DurationValue)
	}
	work := steps[1]
	if work.DurationType != typedef.WktStepDurationDistance || work.DurationValue != 40000 {
		t.Errorf("work duration = %v/%d", work.DurationType, work.DurationValue)
	}
	if work.TargetType != typedef.WktStepTargetHeartRate || work.TargetValue != 4 {
		t.Errorf("work target = %v/%d", work.TargetType, work.TargetValue)
	}
	if steps[2].Intensity != typedef.IntensityRecovery {
		t.Errorf("recovery intensity = %v", steps[2].Intensity)
	}
	repeat := steps[3]
	if repeat.DurationType != typedef.WktStepDurationRepeatUntilStepsCmplt || repeat.DurationValue != 1 || repeat.TargetValue != 4 {
		t.Errorf("repeat = %v/%d/%d", repeat.DurationType, repeat.DurationValue, repeat.TargetValue)
	}
	if steps[4].DurationType != typedef.WktStepDurationOpen || steps[4].Intensity != typedef.IntensityCooldown {
		t.Errorf("cooldown = %v/%v", steps[4].DurationType, steps[4].Intensity)
	}
}

// TestEncodePacer verifies a pacer becomes one distance step with a speed range.
func TestEncodePacer(t *testing.T) {
	plan := models.NewPacerPlan(models.PacerWorkout{
		Activity: models.ActivityRunning,
		Location: models.LocationOutdoor,
		Distance: models.Quantity{Value: 10, Unit: models.UnitKilometers},
		Time:     models.Quantity{Value: 50, Unit: models.UnitMinutes},
	})
	data, err := Encode("", plan, created)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, steps := decodeSteps(t, data)
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	s := steps[0]
	if s.DurationValue != 1000000 {
		t.Errorf("distance = %d cm, want 1000000", s.DurationValue)
	}
	if s.TargetType != typedef.WktStepTargetSpeed {
		t.Errorf("target type = %v", s.TargetType)
	}
	// 10 km in 50 min is 3.333 m/s.
	if s.CustomTargetValueLow >= 3333 || s.CustomTargetValueHigh <= 3333 {
		t.Errorf("speed range = %d-%d mm/s", s.CustomTargetValueLow, s.CustomTargetValueHigh)
	}
}

// TestEncodeGoalEnergy verifies energy goals are written in calories.
func TestEncodeGoalEnergy(t *testing.T) {
	plan := models.NewGoalPlan(models.GoalWorkout{
		Activity: models.ActivityCycling,
		Location: models.LocationIndoor,
		Goal:     models.Goal{Type: models.GoalEnergy, Value: 300, Unit: models.UnitKilocalories},
	})
	data, err := Encode("Burn", plan, created)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, steps := decodeSteps(t, data)
	if len(steps) != 1 || steps[0].DurationType != typedef.WktStepDurationCalories || steps[0].DurationValue != 300 {
		t.Fatalf("steps = %+v", steps)
	}
}

// TestEncodeInvalid verifies invalid plans are rejected before encoding.
func TestEncodeInvalid(t *testing.T) {
	if _, err := Encode("x", models.WorkoutPlan{Type: models.PlanGoal}, created); err == nil {
		t.Error("expected error")
	}
}

// TestSportFor spot-checks activity mapping.
func TestSportFor(t *testing.T) {
	sport, sub := sportFor(models.ActivityCycling, models.LocationIndoor)
	if sport != typedef.SportCycling || sub != typedef.SubSportIndoorCycling {
		t.Errorf("indoor cycling = %v/%v", sport, sub)
	}
	sport, _ = sportFor(models.ActivityOther, models.LocationUnknown)
	if sport != typedef.SportGeneric {
		t.Errorf("other = %v", sport)
	}
}

// TestFilename verifies download names are slugged.
func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Track 400s":    "track-400s.fit",
		"  Easy/Run! ":  "easyrun.fit",
		"":              "workout.fit",
		"Über Long Run": "ber-long-run.fit",
	}
	for in, want := range cases {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestEncodeGoalTooLarge verifies goals beyond the uint32 duration field are
// rejected instead of wrapping around.
func TestEncodeGoalTooLarge(t *testing.T) {
	plan := models.NewGoalPlan(models.GoalWorkout{
		Activity: models.ActivityCycling,
		Location: models.LocationOutdoor,
		Goal:     models.Goal{Type: models.GoalDistance, Value: 50000, Unit: models.UnitKilometers},
	})
	if _, err := Encode("Far", plan, created); err == nil {
		t.Error("expected error for 50000 km goal")
	}

	// Just under the limit still encodes.
	plan.Goal.Goal.Value = 40000
	data, err := Encode("Far", plan, created)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, steps := decodeSteps(t, data)
	if steps[0].DurationValue != 4000000000 {
		t.Errorf("distance = %d cm, want 4000000000", steps[0].DurationValue)
	}
}

// TestEncodePacerZeroTime verifies a pacer without a time has no speed target.
func TestEncodePacerZeroTime(t *testing.T) {
	plan := models.NewPacerPlan(models.PacerWorkout{
		Activity: models.ActivityRunning,
		Location: models.LocationOutdoor,
		Distance: models.Quantity{Value: 5, Unit: models.UnitKilometers},
		Time:     models.Quantity{Value: 0, Unit: models.UnitMinutes},
	})
	data, err := Encode("", plan, created)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, steps := decodeSteps(t, data)
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].TargetType != typedef.WktStepTargetOpen {
		t.Errorf("target type = %v, want open", steps[0].TargetType)
	}
	if steps[0].DurationValue != 500000 {
		t.Errorf("distance = %d cm, want 500000", steps[0].DurationValue)
	}
}

// TestClampUint32 verifies alert values stay inside the field range.
func TestClampUint32(t *testing.T) {
	tests := []struct {
		in   float64
		want uint32
	}{
		{-5, 0},
		{140.4, 140},
		{1e12, maxDuration},
	}
	for _, tt := range tests {
		if got := clampUint32(tt.in); got != tt.want {
			t.Errorf("clampUint32(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
