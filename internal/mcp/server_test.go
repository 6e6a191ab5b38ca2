package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestHandlers(t *testing.T) (*handlers, *storage.WorkoutStore) {
	t.Helper()
	store := storage.NewWorkoutStore(storage.NewMemory(), "", slog.Default())
	return &handlers{ds: store, log: slog.Default()}, store
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestUpcomingRange verifies window defaults (next 7 days) and parsing.
func TestUpcomingRange(t *testing.T) {
	// Both empty → today through 7 days out
	start, end, err := upcomingRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h := end.Sub(start).Hours(); h != 168 {
		t.Errorf("default range = %.0f hours, want 168", h)
	}
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("start = %v, want midnight", start)
	}

	// Explicit dates
	start, end, err = upcomingRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Day() != 1 || end.Day() != 31 {
		t.Errorf("range = %v..%v", start, end)
	}

	// RFC3339
	start, _, err = upcomingRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	if _, _, err = upcomingRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestListSavedWorkoutsFilter verifies the status filter.
func TestListSavedWorkoutsFilter(t *testing.T) {
	h, store := newTestHandlers(t)
	ctx := context.Background()
	plan := testWorkout("").WorkoutPlan

	a, err := store.Save(ctx, models.NewWorkout{Name: "A", WorkoutPlan: plan})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, models.NewWorkout{Name: "B", WorkoutPlan: plan}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Complete(ctx, a.ID, time.Now()); err != nil {
		t.Fatal(err)
	}

	res := callTool(t, h.listSavedWorkouts, map[string]any{"status": "completed"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var list []models.SavedWorkout
	if err := json.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "A" {
		t.Errorf("filtered list = %+v", list)
	}
}

// TestGetSavedWorkoutSummary verifies the detail includes the derived summary
// and a missing id is a tool error, not a protocol error.
func TestGetSavedWorkoutSummary(t *testing.T) {
	h, store := newTestHandlers(t)
	saved, err := store.Save(context.Background(), models.NewWorkout{Name: "Easy", WorkoutPlan: testWorkout("").WorkoutPlan})
	if err != nil {
		t.Fatal(err)
	}

	res := callTool(t, h.getSavedWorkout, map[string]any{"id": saved.ID})
	var detail workoutDetail
	if err := json.Unmarshal([]byte(resultText(t, res)), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Summary.Headline != "Running · 5 km" {
		t.Errorf("headline = %q", detail.Summary.Headline)
	}

	res = callTool(t, h.getSavedWorkout, map[string]any{"id": "nope"})
	if !res.IsError {
		t.Error("expected tool error for missing workout")
	}
	res = callTool(t, h.getSavedWorkout, nil)
	if !res.IsError {
		t.Error("expected tool error without id")
	}
}

// TestScheduleWorkoutTool verifies scheduling through the tool updates the store.
func TestScheduleWorkoutTool(t *testing.T) {
	h, store := newTestHandlers(t)
	ctx := context.Background()
	saved, err := store.Save(ctx, models.NewWorkout{Name: "Easy", WorkoutPlan: testWorkout("").WorkoutPlan})
	if err != nil {
		t.Fatal(err)
	}

	res := callTool(t, h.scheduleWorkout, map[string]any{"id": saved.ID, "date": "2026-03-04"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusScheduled || got.ScheduledDate == nil || got.ScheduledDate.Day() != 4 {
		t.Errorf("stored workout = %+v", got)
	}

	res = callTool(t, h.scheduleWorkout, map[string]any{"id": saved.ID, "date": "soon"})
	if !res.IsError {
		t.Error("expected tool error for bad date")
	}
}

// TestSummarizePlanFromJSON verifies abbreviated units are normalized before
// the summary is derived.
func TestSummarizePlanFromJSON(t *testing.T) {
	h, _ := newTestHandlers(t)
	plan := `{"type":"pacer","workout":{"activity":"running","location":"outdoor",` +
		`"distance":{"value":10,"unit":"km"},"time":{"value":50,"unit":"min"}}}`

	res := callTool(t, h.summarizePlan, map[string]any{"plan": plan})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var s models.PlanSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &s); err != nil {
		t.Fatal(err)
	}
	if s.Pace != "0.20" || s.PaceLabel != "km/min" {
		t.Errorf("pace = %s %s, want 0.20 km/min", s.Pace, s.PaceLabel)
	}

	res = callTool(t, h.summarizePlan, map[string]any{"plan": `{"type":"goal","workout":{"activity":"running"}}`})
	if !res.IsError {
		t.Error("expected tool error for shape mismatch")
	}
	res = callTool(t, h.summarizePlan, nil)
	if !res.IsError {
		t.Error("expected tool error without id or plan")
	}
}

// TestComputePaceTool verifies the zero-time guard and unit label.
func TestComputePaceTool(t *testing.T) {
	h, _ := newTestHandlers(t)

	tests := []struct {
		args      map[string]any
		wantPace  string
		wantLabel string
	}{
		{map[string]any{"distance": 5.0, "time": 25.0}, "0.20", "km/min"},
		{map[string]any{"distance": 10.0, "time": 0.0}, "10.00", "km/min"},
		{map[string]any{"distance": 3.0, "time": 30.0, "distance_unit": "mi"}, "0.10", "mi/min"},
	}
	for _, tt := range tests {
		res := callTool(t, h.computePace, tt.args)
		var body map[string]string
		if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
			t.Fatal(err)
		}
		if body["pace"] != tt.wantPace || body["label"] != tt.wantLabel {
			t.Errorf("%v: got %v, want %s %s", tt.args, body, tt.wantPace, tt.wantLabel)
		}
	}
}

// TestUnitCatalogResource verifies the catalog resource is JSON text.
func TestUnitCatalogResource(t *testing.T) {
	h, _ := newTestHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "plancoach://unit_catalog"

	contents, err := h.unitCatalog(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}
	var catalog []models.UnitCatalogEntry
	if err := json.Unmarshal([]byte(tc.Text), &catalog); err != nil {
		t.Fatal(err)
	}
	if len(catalog) == 0 {
		t.Error("empty catalog")
	}
}

// TestNewRegistersTools verifies the server builds with the workout store as
// its data source.
func TestNewRegistersTools(t *testing.T) {
	_, store := newTestHandlers(t)
	if s := New(store, "test", slog.Default()); s == nil {
		t.Fatal("New returned nil")
	}
}
