// Package fitexport writes workout plans as FIT workout files that
// watches and head units can load.
package fitexport

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/claude/plancoach/internal/models"
)

// pacerTolerance widens a pacer's target speed into a range.
const pacerTolerance = 0.05

// Encode builds a FIT workout file for the plan.
func Encode(name string, plan models.WorkoutPlan, created time.Time) ([]byte, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		name = plan.Headline()
	}

	steps, err := buildSteps(plan)
	if err != nil {
		return nil, err
	}

	fit := &proto.FIT{
		Messages: []proto.Message{},
	}

	fileID := mesgdef.NewFileId(nil).
		SetType(typedef.FileWorkout).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(created)
	fit.Messages = append(fit.Messages, fileID.ToMesg(nil))

	sport, subSport := sportFor(plan.Activity(), plan.Location())
	workout := mesgdef.NewWorkout(nil).
		SetWktName(name).
		SetSport(sport).
		SetSubSport(subSport).
		SetNumValidSteps(uint16(len(steps)))
	fit.Messages = append(fit.Messages, workout.ToMesg(nil))

	for i, s := range steps {
		s.SetMessageIndex(typedef.MessageIndex(i))
		fit.Messages = append(fit.Messages, s.ToMesg(nil))
	}

	var buf bytes.Buffer
	enc := encoder.New(&buf)
	if err := enc.Encode(fit); err != nil {
		return nil, fmt.Errorf("encoding FIT workout: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeSaved builds a FIT workout file for a saved workout.
func EncodeSaved(w models.SavedWorkout) ([]byte, error) {
	return Encode(w.Name, w.WorkoutPlan, w.CreatedAt)
}

// Filename returns a safe download name for the workout.
func Filename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "workout.fit"
	}
	return b.String() + ".fit"
}

func buildSteps(plan models.WorkoutPlan) ([]*mesgdef.WorkoutStep, error) {
	switch {
	case plan.Goal != nil:
		s, err := goalStep(plan.Goal.Goal, typedef.IntensityActive)
		if err != nil {
			return nil, err
		}
		return []*mesgdef.WorkoutStep{s}, nil
	case plan.Pacer != nil:
		s, err := pacerStep(plan.Pacer)
		if err != nil {
			return nil, err
		}
		return []*mesgdef.WorkoutStep{s}, nil
	case plan.Custom != nil:
		return customSteps(plan.Custom)
	}
	return nil, fmt.Errorf("plan has no workout payload")
}

func customSteps(w *models.CustomWorkout) ([]*mesgdef.WorkoutStep, error) {
	var steps []*mesgdef.WorkoutStep

	if w.Warmup != nil {
		s, err := workoutStep(*w.Warmup, typedef.IntensityWarmup)
		if err != nil {
			return nil, fmt.Errorf("warmup: %w", err)
		}
		steps = append(steps, s.SetWktStepName("Warmup"))
	}

	for bi, b := range w.Blocks {
		first := len(steps)
		for si, is := range b.Steps {
			s, err := workoutStep(is.Step, intensityFor(is.Purpose))
			if err != nil {
				return nil, fmt.Errorf("block %d step %d: %w", bi, si, err)
			}
			steps = append(steps, s.SetWktStepName(purposeName(is.Purpose)))
		}
		if b.Iterations > 1 {
			repeat := mesgdef.NewWorkoutStep(nil).
				SetDurationType(typedef.WktStepDurationRepeatUntilStepsCmplt).
				SetDurationValue(uint32(first)).
				SetTargetValue(uint32(b.Iterations))
			steps = append(steps, repeat)
		}
	}

	if w.Cooldown != nil {
		s, err := workoutStep(*w.Cooldown, typedef.IntensityCooldown)
		if err != nil {
			return nil, fmt.Errorf("cooldown: %w", err)
		}
		steps = append(steps, s.SetWktStepName("Cooldown"))
	}
	return steps, nil
}

func workoutStep(ws models.WorkoutStep, intensity typedef.Intensity) (*mesgdef.WorkoutStep, error) {
	s, err := goalStep(ws.Goal, intensity)
	if err != nil {
		return nil, err
	}
	if ws.Alert != nil {
		applyAlert(s, *ws.Alert)
	}
	return s, nil
}

func goalStep(g models.Goal, intensity typedef.Intensity) (*mesgdef.WorkoutStep, error) {
	s := mesgdef.NewWorkoutStep(nil).
		SetIntensity(intensity).
		SetTargetType(typedef.WktStepTargetOpen).
		SetTargetValue(0)

	switch g.Type {
	case models.GoalOpen:
		s.SetDurationType(typedef.WktStepDurationOpen)
	case models.GoalTime:
		sec, ok := models.Seconds(g.Value, g.Unit)
		if !ok {
			return nil, fmt.Errorf("unsupported time unit %q", g.Unit)
		}
		v, err := durationValue(sec*1000, g)
		if err != nil {
			return nil, err
		}
		s.SetDurationType(typedef.WktStepDurationTime).SetDurationValue(v)
	case models.GoalDistance:
		m, ok := models.Meters(g.Value, g.Unit)
		if !ok {
			return nil, fmt.Errorf("unsupported distance unit %q", g.Unit)
		}
		v, err := durationValue(m*100, g)
		if err != nil {
			return nil, err
		}
		s.SetDurationType(typedef.WktStepDurationDistance).SetDurationValue(v)
	case models.GoalEnergy:
		kcal, ok := models.Kilocalories(g.Value, g.Unit)
		if !ok {
			return nil, fmt.Errorf("unsupported energy unit %q", g.Unit)
		}
		v, err := durationValue(kcal, g)
		if err != nil {
			return nil, err
		}
		s.SetDurationType(typedef.WktStepDurationCalories).SetDurationValue(v)
	default:
		return nil, fmt.Errorf("unknown goal type %q", g.Type)
	}
	return s, nil
}

func pacerStep(p *models.PacerWorkout) (*mesgdef.WorkoutStep, error) {
	m, ok := models.Meters(p.Distance.Value, p.Distance.Unit)
	if !ok {
		return nil, fmt.Errorf("unsupported distance unit %q", p.Distance.Unit)
	}
	sec, ok := models.Seconds(p.Time.Value, p.Time.Unit)
	if !ok {
		return nil, fmt.Errorf("unsupported time unit %q", p.Time.Unit)
	}
	cm, err := durationValue(m*100, models.Goal{Type: models.GoalDistance, Value: p.Distance.Value, Unit: p.Distance.Unit})
	if err != nil {
		return nil, err
	}

	s := mesgdef.NewWorkoutStep(nil).
		SetWktStepName("Pace").
		SetIntensity(typedef.IntensityActive).
		SetDurationType(typedef.WktStepDurationDistance).
		SetDurationValue(cm).
		SetTargetType(typedef.WktStepTargetOpen).
		SetTargetValue(0)

	// A zero distance or time has no target speed.
	if m > 0 && sec > 0 {
		speed := m / sec // m/s
		s.SetTargetType(typedef.WktStepTargetSpeed).
			SetCustomTargetValueLow(mmPerSecond(speed * (1 - pacerTolerance))).
			SetCustomTargetValueHigh(mmPerSecond(speed * (1 + pacerTolerance)))
	}
	return s, nil
}

// maxDuration is the largest valid uint32 field value; 0xFFFFFFFF means
// "invalid" in FIT.
const maxDuration = math.MaxUint32 - 1

// durationValue rounds a scaled goal value into a FIT duration field.
func durationValue(scaled float64, g models.Goal) (uint32, error) {
	v := math.Round(scaled)
	if v > maxDuration {
		return 0, fmt.Errorf("%s goal of %v %s is too large for a FIT workout step", g.Type, g.Value, g.Unit)
	}
	return uint32(v), nil
}

// clampUint32 rounds v into the uint32 range. Used for alert targets, which
// are bounded by the sensor anyway.
func clampUint32(v float64) uint32 {
	v = math.Round(v)
	switch {
	case v <= 0:
		return 0
	case v > maxDuration:
		return maxDuration
	}
	return uint32(v)
}

// applyAlert sets the step target. Zones go in target_value; ranges use the
// custom low/high fields with FIT's offsets (+100 bpm, +1000 W).
func applyAlert(s *mesgdef.WorkoutStep, a models.Alert) {
	switch a.Type {
	case models.AlertHeartRateZone:
		s.SetTargetType(typedef.WktStepTargetHeartRate).SetTargetValue(uint32(a.Zone))
	case models.AlertHeartRateRange:
		s.SetTargetType(typedef.WktStepTargetHeartRate).
			SetCustomTargetValueLow(clampUint32(a.Min+100)).
			SetCustomTargetValueHigh(clampUint32(a.Max+100))
	case models.AlertSpeedRange:
		s.SetTargetType(typedef.WktStepTargetSpeed).
			SetCustomTargetValueLow(mmPerSecond(metersPerSecond(a.Min, a.Unit))).
			SetCustomTargetValueHigh(mmPerSecond(metersPerSecond(a.Max, a.Unit)))
	case models.AlertSpeedThreshold:
		s.SetTargetType(typedef.WktStepTargetSpeed).
			SetCustomTargetValueLow(mmPerSecond(metersPerSecond(a.Target, a.Unit)))
	case models.AlertCadenceRange:
		s.SetTargetType(typedef.WktStepTargetCadence).
			SetCustomTargetValueLow(clampUint32(a.Min)).
			SetCustomTargetValueHigh(clampUint32(a.Max))
	case models.AlertCadenceThreshold:
		s.SetTargetType(typedef.WktStepTargetCadence).
			SetCustomTargetValueLow(clampUint32(a.Target))
	case models.AlertPowerRange:
		s.SetTargetType(typedef.WktStepTargetPower).
			SetCustomTargetValueLow(clampUint32(a.Min+1000)).
			SetCustomTargetValueHigh(clampUint32(a.Max+1000))
	case models.AlertPowerThreshold:
		s.SetTargetType(typedef.WktStepTargetPower).
			SetCustomTargetValueLow(clampUint32(a.Target+1000))
	case models.AlertPowerZone:
		s.SetTargetType(typedef.WktStepTargetPower).SetTargetValue(uint32(a.Zone))
	}
}

func metersPerSecond(v float64, unit string) float64 {
	switch strings.ToLower(unit) {
	case "m/s":
		return v
	case "mph", "mi/h":
		return v * 1609.344 / 3600
	default: // km/h
		return v / 3.6
	}
}

func mmPerSecond(v float64) uint32 {
	return clampUint32(v * 1000)
}

func intensityFor(p models.Purpose) typedef.Intensity {
	if p == models.PurposeRecovery {
		return typedef.IntensityRecovery
	}
	return typedef.IntensityActive
}

func purposeName(p models.Purpose) string {
	if p == models.PurposeRecovery {
		return "Recovery"
	}
	return "Work"
}

func sportFor(a models.Activity, l models.Location) (typedef.Sport, typedef.SubSport) {
	indoor := l == models.LocationIndoor
	switch a {
	case models.ActivityRunning:
		if indoor {
			return typedef.SportRunning, typedef.SubSportTreadmill
		}
		return typedef.SportRunning, typedef.SubSportGeneric
	case models.ActivityCycling:
		if indoor {
			return typedef.SportCycling, typedef.SubSportIndoorCycling
		}
		return typedef.SportCycling, typedef.SubSportGeneric
	case models.ActivityWalking:
		return typedef.SportWalking, typedef.SubSportGeneric
	case models.ActivityHiking:
		return typedef.SportHiking, typedef.SubSportGeneric
	case models.ActivitySwimming:
		if indoor {
			return typedef.SportSwimming, typedef.SubSportLapSwimming
		}
		return typedef.SportSwimming, typedef.SubSportOpenWater
	case models.ActivityRowing:
		return typedef.SportRowing, typedef.SubSportGeneric
	case models.ActivityElliptical:
		return typedef.SportFitnessEquipment, typedef.SubSportElliptical
	case models.ActivityStairClimbing:
		return typedef.SportFitnessEquipment, typedef.SubSportStairClimbing
	case models.ActivityHIIT:
		return typedef.SportTraining, typedef.SubSportCardioTraining
	case models.ActivityFunctionalStrength:
		return typedef.SportTraining, typedef.SubSportStrengthTraining
	case models.ActivityYoga:
		return typedef.SportTraining, typedef.SubSportYoga
	}
	return typedef.SportGeneric, typedef.SubSportGeneric
}
