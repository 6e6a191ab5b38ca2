package coach

import (
	"fmt"
	"strings"

	"github.com/claude/plancoach/internal/models"
)

// SystemPrompt frames the conversation for the model.
const SystemPrompt = `You are a running and endurance coach inside a workout planning app.
Answer briefly and practically. When the athlete asks for a workout, include
exactly one JSON object describing it, using the shape given in their message.
Do not include more than one JSON object in a reply.`

const schemaExample = `{
  "name": "Track 400s",
  "description": "Short speed session",
  "activity": "running",
  "location": "outdoor",
  "workoutPlan": {
    "type": "custom",
    "workout": {
      "activity": "running",
      "location": "outdoor",
      "displayName": "Track 400s",
      "warmup": {"goal": {"type": "time", "value": 10, "unit": "minutes"}},
      "blocks": [
        {
          "iterations": 4,
          "steps": [
            {"purpose": "work", "step": {"goal": {"type": "distance", "value": 400, "unit": "meters"}, "alert": {"type": "heartRateZone", "zone": 4}}},
            {"purpose": "recovery", "step": {"goal": {"type": "time", "value": 90, "unit": "seconds"}}}
          ]
        }
      ],
      "cooldown": {"goal": {"type": "open"}}
    }
  }
}`

// BuildPrompt embeds the athlete's text in the fixed request template.
func BuildPrompt(userText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Athlete request: %s\n\n", strings.TrimSpace(userText))
	b.WriteString("If you propose a workout, reply with a short explanation followed by one JSON object of this shape:\n")
	b.WriteString(schemaExample)
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "- workoutPlan.type is one of: %s, %s, %s.\n", models.PlanGoal, models.PlanPacer, models.PlanCustom)
	b.WriteString(`- goal workouts: {"activity","location","goal"}. pacer workouts: {"activity","location","distance":{"value","unit"},"time":{"value","unit"}}.` + "\n")
	fmt.Fprintf(&b, "- activity is one of: %s.\n", joinActivities())
	fmt.Fprintf(&b, "- goal types and units: %s.\n", joinUnits())
	b.WriteString("- every block needs at least one step and iterations of 1 or more.\n")
	return b.String()
}

func joinActivities() string {
	names := make([]string, len(models.Activities))
	for i, a := range models.Activities {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func joinUnits() string {
	var parts []string
	for _, gt := range []models.GoalType{models.GoalTime, models.GoalDistance, models.GoalEnergy} {
		units := models.UnitsFor(gt)
		names := make([]string, len(units))
		for i, u := range units {
			names[i] = string(u)
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", gt, strings.Join(names, "/")))
	}
	parts = append(parts, string(models.GoalOpen)+" (no value)")
	return strings.Join(parts, "; ")
}
