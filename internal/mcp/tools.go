package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// upcomingRange returns start/end defaulting to the next 7 days.
func upcomingRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = start.AddDate(0, 0, 7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListSavedWorkouts = mcp.NewTool("list_saved_workouts",
	mcp.WithDescription("List saved workout plans. Optionally filter by lifecycle status or by how the workout was created."),
	mcp.WithString("status", mcp.Description("Only workouts with this status"), mcp.Enum("scheduled", "completed", "skipped")),
	mcp.WithString("origin", mcp.Description("Only workouts created this way"), mcp.Enum("manual", "ai")),
)

var toolGetSavedWorkout = mcp.NewTool("get_saved_workout",
	mcp.WithDescription("Get one saved workout by id, with its plan summary (headline, step lines, totals)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Saved workout id")),
)

var toolUpcomingWorkouts = mcp.NewTool("get_upcoming_workouts",
	mcp.WithDescription("Workouts scheduled in a date window, ordered by date. Defaults to the next 7 days."),
	mcp.WithString("start", mcp.Description("Window start (RFC3339 or YYYY-MM-DD). Default: today")),
	mcp.WithString("end", mcp.Description("Window end, exclusive (RFC3339 or YYYY-MM-DD). Default: start + 7 days")),
)

var toolScheduleWorkout = mcp.NewTool("schedule_workout",
	mcp.WithDescription("Schedule a saved workout on a date. Clears any previous completion."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Saved workout id")),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date to schedule (RFC3339 or YYYY-MM-DD)")),
)

var toolCompleteWorkout = mcp.NewTool("complete_workout",
	mcp.WithDescription("Mark a saved workout completed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Saved workout id")),
	mcp.WithString("date", mcp.Description("Completion time (RFC3339 or YYYY-MM-DD). Default: now")),
)

var toolSummarizePlan = mcp.NewTool("summarize_plan",
	mcp.WithDescription("Summarize a workout plan: headline, per-step lines, interval block totals, pace, estimated duration and distance. Pass either the id of a saved workout or a plan as JSON."),
	mcp.WithString("id", mcp.Description("Saved workout id")),
	mcp.WithString("plan", mcp.Description(`Workout plan JSON, e.g. {"type":"goal","workout":{...}}`)),
)

var toolComputePace = mcp.NewTool("compute_pace",
	mcp.WithDescription("Compute pace as distance per time unit, formatted to two decimals. A zero time is treated as 1."),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance value")),
	mcp.WithNumber("time", mcp.Description("Time value. Default: 0")),
	mcp.WithString("distance_unit", mcp.Description("Distance unit or abbreviation (km, mi, m, yd). Default: km")),
	mcp.WithString("time_unit", mcp.Description("Time unit or abbreviation (min, sec, hr). Default: min")),
)

// --- Tool handlers ---

func (h *handlers) listSavedWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := models.Status(req.GetString("status", ""))
	origin := models.Origin(req.GetString("origin", ""))

	list, err := h.ds.List(ctx)
	if err != nil {
		h.log.Error("mcp list_saved_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]models.SavedWorkout, 0, len(list))
	for _, w := range list {
		if status != "" && w.Status != status {
			continue
		}
		if origin != "" && w.Origin != origin {
			continue
		}
		out = append(out, w)
	}

	return jsonResult(out)
}

type workoutDetail struct {
	Workout *models.SavedWorkout `json:"workout"`
	Summary models.PlanSummary   `json:"summary"`
}

func (h *handlers) getSavedWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	w, err := h.ds.Get(ctx, id)
	if err != nil {
		return h.storeError("get_saved_workout", err), nil
	}

	return jsonResult(workoutDetail{Workout: w, Summary: models.SummarizePlan(w.WorkoutPlan)})
}

func (h *handlers) upcomingWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := upcomingRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if !end.After(start) {
		return mcp.NewToolResultError("end must be after start"), nil
	}

	list, err := h.ds.Scheduled(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_upcoming_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list)
}

func (h *handlers) scheduleWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	dateStr, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	date, err := parseFlexTime(dateStr)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	w, err := h.ds.Schedule(ctx, id, date)
	if err != nil {
		return h.storeError("schedule_workout", err), nil
	}
	return jsonResult(w)
}

func (h *handlers) completeWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	at := time.Now().UTC()
	if s := req.GetString("date", ""); s != "" {
		at, err = parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	w, err := h.ds.Complete(ctx, id, at)
	if err != nil {
		return h.storeError("complete_workout", err), nil
	}
	return jsonResult(w)
}

func (h *handlers) summarizePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	raw := req.GetString("plan", "")

	var plan models.WorkoutPlan
	switch {
	case id != "":
		w, err := h.ds.Get(ctx, id)
		if err != nil {
			return h.storeError("summarize_plan", err), nil
		}
		plan = w.WorkoutPlan
	case raw != "":
		if err := json.Unmarshal([]byte(raw), &plan); err != nil {
			return mcp.NewToolResultError("invalid plan: " + err.Error()), nil
		}
		plan.NormalizeUnits()
		if err := plan.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	default:
		return mcp.NewToolResultError("either id or plan is required"), nil
	}

	return jsonResult(models.SummarizePlan(plan))
}

func (h *handlers) computePace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	distance, err := req.RequireFloat("distance")
	if err != nil {
		return mcp.NewToolResultError("distance parameter is required"), nil
	}
	t := req.GetFloat("time", 0)

	du := models.CanonicalUnit(models.GoalDistance, req.GetString("distance_unit", "km"))
	tu := models.CanonicalUnit(models.GoalTime, req.GetString("time_unit", "min"))

	return jsonResult(map[string]string{
		"pace":  models.Pace(distance, t),
		"label": models.Abbreviation(du) + "/" + models.Abbreviation(tu),
	})
}

// storeError turns a store failure into a tool error. Missing workouts are
// reported plainly; anything else is logged.
func (h *handlers) storeError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("workout not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
