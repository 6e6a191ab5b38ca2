package coach

import (
	"encoding/json"
	"regexp"

	"github.com/claude/plancoach/internal/models"
)

// objectPattern spans from the first '{' to the last '}' in the text.
var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type parsedEnvelope struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Activity    models.Activity `json:"activity"`
	Location    models.Location `json:"location"`
	WorkoutPlan json.RawMessage `json:"workoutPlan"`
}

// Extract finds a workout object embedded in model output. It returns nil
// when there is no object, the object is not valid JSON, a required field
// (name, activity, workoutPlan) is missing, or the plan does not validate.
func Extract(text string) *models.ParsedWorkout {
	span := objectPattern.FindString(text)
	if span == "" {
		return nil
	}

	var env parsedEnvelope
	if err := json.Unmarshal([]byte(span), &env); err != nil {
		return nil
	}
	if env.Name == "" || env.Activity == "" || len(env.WorkoutPlan) == 0 || string(env.WorkoutPlan) == "null" {
		return nil
	}
	if !env.Activity.Valid() {
		return nil
	}

	var plan models.WorkoutPlan
	if err := json.Unmarshal(env.WorkoutPlan, &plan); err != nil {
		return nil
	}
	plan.NormalizeUnits()
	if err := plan.Validate(); err != nil {
		return nil
	}

	loc := env.Location
	if loc == "" {
		loc = plan.Location()
	}
	if !loc.Valid() {
		return nil
	}

	return &models.ParsedWorkout{
		Name:        env.Name,
		Description: env.Description,
		Activity:    env.Activity,
		Location:    loc,
		WorkoutPlan: &plan,
	}
}
