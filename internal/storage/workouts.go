package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/google/uuid"
)

// DefaultKey is the storage key holding the saved workout array.
const DefaultKey = "saved_workouts"

// WorkoutStore persists saved workouts as one JSON array under a single key.
// Every mutation reads the whole array, changes it, and writes it back.
type WorkoutStore struct {
	kv     KV
	key    string
	logger *slog.Logger

	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewWorkoutStore creates a store over kv. An empty key selects DefaultKey.
func NewWorkoutStore(kv KV, key string, logger *slog.Logger) *WorkoutStore {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkoutStore{
		kv:     kv,
		key:    key,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Key returns the storage key this store reads and writes.
func (s *WorkoutStore) Key() string { return s.key }

func (s *WorkoutStore) load(ctx context.Context) ([]models.SavedWorkout, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.key, err)
	}
	if len(raw) == 0 {
		return []models.SavedWorkout{}, nil
	}
	var list []models.SavedWorkout
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.key, err)
	}
	if list == nil {
		list = []models.SavedWorkout{}
	}
	for i := range list {
		if list[i].Origin == "" {
			list[i].Origin = models.OriginManual
		}
	}
	return list, nil
}

func (s *WorkoutStore) store(ctx context.Context, list []models.SavedWorkout) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

// List returns every saved workout in stored order.
func (s *WorkoutStore) List(ctx context.Context) ([]models.SavedWorkout, error) {
	return s.load(ctx)
}

// Get returns the workout with the given id, or ErrNotFound.
func (s *WorkoutStore) Get(ctx context.Context, id string) (*models.SavedWorkout, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

// Save validates the plan, assigns an id and creation time, and appends the
// workout. Origin defaults to manual; activity and location default to the
// plan's own.
func (s *WorkoutStore) Save(ctx context.Context, in models.NewWorkout) (models.SavedWorkout, error) {
	if in.Name == "" {
		return models.SavedWorkout{}, fmt.Errorf("%w: name is required", ErrInvalidWorkout)
	}
	if err := in.WorkoutPlan.Validate(); err != nil {
		return models.SavedWorkout{}, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return models.SavedWorkout{}, fmt.Errorf("%w: unknown status %q", ErrInvalidWorkout, in.Status)
	}

	w := models.SavedWorkout{
		ID:            s.newID(),
		Name:          in.Name,
		WorkoutPlan:   in.WorkoutPlan,
		CreatedAt:     s.now(),
		Activity:      in.Activity,
		Location:      in.Location,
		Origin:        in.Origin,
		ScheduledDate: in.ScheduledDate,
		Status:        in.Status,
	}
	if w.Origin == "" {
		w.Origin = models.OriginManual
	}
	if w.Activity == "" {
		w.Activity = in.WorkoutPlan.Activity()
	}
	if w.Location == "" {
		w.Location = in.WorkoutPlan.Location()
	}
	if w.ScheduledDate != nil && w.Status == "" {
		w.Status = models.StatusScheduled
	}
	if err := checkHeader(w); err != nil {
		return models.SavedWorkout{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	list = append(list, w)
	if err := s.store(ctx, list); err != nil {
		return models.SavedWorkout{}, err
	}

	s.logger.Info("workout saved", "id", w.ID, "name", w.Name, "type", w.WorkoutPlan.Type, "origin", w.Origin)
	return w, nil
}

// Update applies a partial update to the workout with the given id.
func (s *WorkoutStore) Update(ctx context.Context, id string, patch models.WorkoutPatch) (models.SavedWorkout, error) {
	if err := patch.Validate(); err != nil {
		return models.SavedWorkout{}, fmt.Errorf("%w: %v", ErrInvalidWorkout, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		patch.Apply(&list[i])
		if err := s.store(ctx, list); err != nil {
			return models.SavedWorkout{}, err
		}
		s.logger.Debug("workout updated", "id", id)
		return list[i], nil
	}
	return models.SavedWorkout{}, ErrNotFound
}

// Delete removes exactly one workout by id.
func (s *WorkoutStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if err := s.store(ctx, list); err != nil {
			return err
		}
		s.logger.Info("workout deleted", "id", id)
		return nil
	}
	return ErrNotFound
}

// Schedule sets the scheduled date and marks the workout scheduled. Any
// previous completion is cleared.
func (s *WorkoutStore) Schedule(ctx context.Context, id string, date time.Time) (models.SavedWorkout, error) {
	st := models.StatusScheduled
	d := date.UTC()
	return s.Update(ctx, id, models.WorkoutPatch{
		ClearSchedule: true,
		ScheduledDate: &d,
		Status:        &st,
	})
}

// Complete marks the workout completed at the given time.
func (s *WorkoutStore) Complete(ctx context.Context, id string, at time.Time) (models.SavedWorkout, error) {
	st := models.StatusCompleted
	d := at.UTC()
	return s.Update(ctx, id, models.WorkoutPatch{Status: &st, CompletedDate: &d})
}

// Scheduled returns workouts whose scheduled date falls in [start, end),
// ordered by date.
func (s *WorkoutStore) Scheduled(ctx context.Context, start, end time.Time) ([]models.SavedWorkout, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.SavedWorkout{}
	for _, w := range list {
		if w.ScheduledDate == nil {
			continue
		}
		if w.ScheduledDate.Before(start) || !w.ScheduledDate.Before(end) {
			continue
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(*out[j].ScheduledDate)
	})
	return out, nil
}

// History returns completed workouts, most recent completion first.
func (s *WorkoutStore) History(ctx context.Context) ([]models.SavedWorkout, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.SavedWorkout{}
	for _, w := range list {
		if w.Status == models.StatusCompleted {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return completedAt(out[i]).After(completedAt(out[j]))
	})
	return out, nil
}

func completedAt(w models.SavedWorkout) time.Time {
	if w.CompletedDate != nil {
		return *w.CompletedDate
	}
	return w.CreatedAt
}

// checkHeader validates the record-level activity and location, which may
// differ from the plan's own.
func checkHeader(w models.SavedWorkout) error {
	if !w.Activity.Valid() {
		return fmt.Errorf("%w: unknown activity %q", ErrInvalidWorkout, w.Activity)
	}
	if !w.Location.Valid() {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidWorkout, w.Location)
	}
	if w.Origin != models.OriginManual && w.Origin != models.OriginAI {
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidWorkout, w.Origin)
	}
	return nil
}

// ImportResult reports how an import was applied.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// ImportJSON decodes an exported JSON array record by record and imports the
// records that decode. Undecodable records are counted as invalid.
func (s *WorkoutStore) ImportJSON(ctx context.Context, data []byte) (ImportResult, error) {
	workouts, undecodable, err := models.DecodeWorkouts(data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidWorkout, err)
	}
	res, err := s.Import(ctx, workouts)
	res.Invalid += undecodable
	return res, err
}

// Import merges workouts into the collection. Records whose id already
// exists are skipped, as are records with an invalid plan. Records without
// an id are assigned one.
func (s *WorkoutStore) Import(ctx context.Context, in []models.SavedWorkout) (ImportResult, error) {
	var res ImportResult

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(list))
	for _, w := range list {
		seen[w.ID] = true
	}

	for _, w := range in {
		if w.ID != "" && seen[w.ID] {
			res.Skipped++
			continue
		}
		if w.Name == "" || w.WorkoutPlan.Validate() != nil {
			s.logger.Warn("skipping invalid workout", "id", w.ID, "name", w.Name)
			res.Invalid++
			continue
		}
		if w.ID == "" {
			w.ID = s.newID()
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = s.now()
		}
		if w.Origin == "" {
			w.Origin = models.OriginManual
		}
		if w.Activity == "" {
			w.Activity = w.WorkoutPlan.Activity()
		}
		if w.Location == "" {
			w.Location = w.WorkoutPlan.Location()
		}
		if err := checkHeader(w); err != nil {
			s.logger.Warn("skipping invalid workout", "id", w.ID, "error", err)
			res.Invalid++
			continue
		}
		seen[w.ID] = true
		list = append(list, w)
		res.Imported++
	}

	if res.Imported > 0 {
		if err := s.store(ctx, list); err != nil {
			return res, err
		}
	}
	s.logger.Info("import complete", "imported", res.Imported, "skipped", res.Skipped, "invalid", res.Invalid)
	return res, nil
}
