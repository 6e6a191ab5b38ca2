package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore(kv KV) *WorkoutStore {
	s := NewWorkoutStore(kv, "", testLogger)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("w-%d", n)
	}
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func goalPlan(km float64) models.WorkoutPlan {
	return models.NewGoalPlan(models.GoalWorkout{
		Activity: models.ActivityRunning,
		Location: models.LocationOutdoor,
		Goal:     models.Goal{Type: models.GoalDistance, Value: km, Unit: models.UnitKilometers},
	})
}

// TestSaveThenList verifies origin defaults to manual and activity comes from the plan.
func TestSaveThenList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())

	saved, err := s.Save(ctx, models.NewWorkout{Name: "Easy 5k", WorkoutPlan: goalPlan(5)})
	require.NoError(t, err)
	assert.Equal(t, "w-1", saved.ID)
	assert.Equal(t, models.OriginManual, saved.Origin)
	assert.Equal(t, models.ActivityRunning, saved.Activity)
	assert.Equal(t, models.LocationOutdoor, saved.Location)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, models.OriginManual, list[0].Origin)
	require.NotNil(t, list[0].WorkoutPlan.Goal)
	assert.Equal(t, 5.0, list[0].WorkoutPlan.Goal.Goal.Value)
}

// TestSaveKeepsAIOrigin verifies an explicit origin is preserved.
func TestSaveKeepsAIOrigin(t *testing.T) {
	s := newTestStore(NewMemory())
	saved, err := s.Save(context.Background(), models.NewWorkout{
		Name: "Coach pick", WorkoutPlan: goalPlan(8), Origin: models.OriginAI,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OriginAI, saved.Origin)
}

// TestSaveRejectsInvalid verifies invalid plans and empty names are not stored.
func TestSaveRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())

	_, err := s.Save(ctx, models.NewWorkout{Name: "Broken", WorkoutPlan: models.WorkoutPlan{Type: models.PlanGoal}})
	assert.ErrorIs(t, err, models.ErrInvalidPlan)

	_, err = s.Save(ctx, models.NewWorkout{WorkoutPlan: goalPlan(5)})
	assert.Error(t, err)

	_, err = s.Save(ctx, models.NewWorkout{Name: "Joust", WorkoutPlan: goalPlan(5), Activity: "jousting"})
	assert.ErrorIs(t, err, ErrInvalidWorkout)

	_, err = s.Save(ctx, models.NewWorkout{Name: "Lunar", WorkoutPlan: goalPlan(5), Location: "moon"})
	assert.ErrorIs(t, err, ErrInvalidWorkout)

	_, err = s.Save(ctx, models.NewWorkout{Name: "Who", WorkoutPlan: goalPlan(5), Origin: "robot"})
	assert.ErrorIs(t, err, ErrInvalidWorkout)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// TestDeleteRemovesExactlyOne verifies delete by id leaves the rest intact.
func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	for i := 1; i <= 3; i++ {
		_, err := s.Save(ctx, models.NewWorkout{Name: fmt.Sprintf("Run %d", i), WorkoutPlan: goalPlan(float64(i))})
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, "w-2"))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "w-1", list[0].ID)
	assert.Equal(t, "w-3", list[1].ID)

	assert.ErrorIs(t, s.Delete(ctx, "w-2"), ErrNotFound)
}

// TestScheduleAndComplete walks a workout through its lifecycle.
func TestScheduleAndComplete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	w, err := s.Save(ctx, models.NewWorkout{Name: "Tempo", WorkoutPlan: goalPlan(10)})
	require.NoError(t, err)

	day := time.Date(2026, 3, 4, 6, 30, 0, 0, time.UTC)
	got, err := s.Schedule(ctx, w.ID, day)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, got.Status)
	require.NotNil(t, got.ScheduledDate)
	assert.True(t, got.ScheduledDate.Equal(day))

	done := day.Add(50 * time.Minute)
	got, err = s.Complete(ctx, w.ID, done)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedDate)
	assert.True(t, got.CompletedDate.Equal(done))
	assert.True(t, got.ScheduledDate.Equal(day))

	hist, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, w.ID, hist[0].ID)

	_, err = s.Complete(ctx, "missing", done)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestScheduledRange verifies the half-open window and date ordering.
func TestScheduledRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	days := []time.Time{
		time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 20, 7, 0, 0, 0, time.UTC),
	}
	for i, d := range days {
		w, err := s.Save(ctx, models.NewWorkout{Name: fmt.Sprintf("Run %d", i), WorkoutPlan: goalPlan(5)})
		require.NoError(t, err)
		_, err = s.Schedule(ctx, w.ID, d)
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, models.NewWorkout{Name: "Unscheduled", WorkoutPlan: goalPlan(5)})
	require.NoError(t, err)

	got, err := s.Scheduled(ctx,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 20, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "w-2", got[0].ID)
	assert.Equal(t, "w-1", got[1].ID)
}

// TestUpdateName verifies a partial update leaves other fields alone.
func TestUpdateName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	w, err := s.Save(ctx, models.NewWorkout{Name: "Old", WorkoutPlan: goalPlan(5)})
	require.NoError(t, err)

	name := "New"
	got, err := s.Update(ctx, w.ID, models.WorkoutPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, w.CreatedAt, got.CreatedAt)
	assert.Equal(t, models.OriginManual, got.Origin)

	empty := ""
	_, err = s.Update(ctx, w.ID, models.WorkoutPatch{Name: &empty})
	assert.Error(t, err)
}

// TestCorruptCollection verifies unreadable stored JSON surfaces as an error.
func TestCorruptCollection(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte("{not json")))
	s := newTestStore(kv)

	_, err := s.List(ctx)
	assert.Error(t, err)
	_, err = s.Save(ctx, models.NewWorkout{Name: "Run", WorkoutPlan: goalPlan(5)})
	assert.Error(t, err)
}

// TestImportSkipsExisting verifies ids already present are not duplicated.
func TestImportSkipsExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	w, err := s.Save(ctx, models.NewWorkout{Name: "Existing", WorkoutPlan: goalPlan(5)})
	require.NoError(t, err)

	res, err := s.Import(ctx, []models.SavedWorkout{
		{ID: w.ID, Name: "Dup", WorkoutPlan: goalPlan(5)},
		{ID: "ext-1", Name: "Imported", WorkoutPlan: goalPlan(12), Origin: models.OriginAI},
		{Name: "No id", WorkoutPlan: goalPlan(3)},
		{ID: "ext-2", Name: "Bad", WorkoutPlan: models.WorkoutPlan{Type: models.PlanPacer}},
		{ID: "ext-3", Name: "Bad activity", WorkoutPlan: goalPlan(4), Activity: "jousting"},
		{ID: "ext-4", Name: "Bad location", WorkoutPlan: goalPlan(4), Location: "moon"},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 1, Invalid: 3}, res)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Existing", list[0].Name)
	assert.Equal(t, models.OriginAI, list[1].Origin)
	assert.Equal(t, "w-2", list[2].ID)
	assert.Equal(t, models.OriginManual, list[2].Origin)
}

func newWorkout(name string, km float64) models.NewWorkout {
	return models.NewWorkout{Name: name, WorkoutPlan: goalPlan(km)}
}

// TestLoadDefaultsOrigin verifies records stored without an origin read back
// as manual.
func TestLoadDefaultsOrigin(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	legacy := `[{"id":"old-1","name":"Old run","createdAt":"2025-01-02T08:00:00Z",` +
		`"workoutPlan":{"type":"goal","workout":{"activity":"running","location":"outdoor","goal":{"type":"open"}}}}]`
	require.NoError(t, kv.Set(ctx, DefaultKey, []byte(legacy)))
	s := newTestStore(kv)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.OriginManual, list[0].Origin)

	got, err := s.Get(ctx, "old-1")
	require.NoError(t, err)
	assert.Equal(t, models.OriginManual, got.Origin)
}

// TestImportJSONMixed verifies one malformed record does not sink the batch.
func TestImportJSONMixed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemory())
	batch := `[
		{"id":"ok-1","name":"Tempo","workoutPlan":{"type":"goal","workout":{"activity":"running","location":"outdoor","goal":{"type":"time","value":30,"unit":"min"}}}},
		{"id":"bad-1","name":"Broken","workoutPlan":{"type":"pacer","workout":{"goal":{"type":"open"}}}},
		{"id":"bad-2","name":17}
	]`

	res, err := s.ImportJSON(ctx, []byte(batch))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Invalid)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok-1", list[0].ID)

	_, err = s.ImportJSON(ctx, []byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidWorkout)
}
