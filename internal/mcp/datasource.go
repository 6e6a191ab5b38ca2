package mcp

import (
	"context"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
)

// DataSource abstracts the workout store for MCP tools. Both
// *storage.WorkoutStore (local) and HTTPClient (remote via REST API)
// satisfy this interface.
type DataSource interface {
	List(ctx context.Context) ([]models.SavedWorkout, error)
	Get(ctx context.Context, id string) (*models.SavedWorkout, error)
	Scheduled(ctx context.Context, start, end time.Time) ([]models.SavedWorkout, error)
	Schedule(ctx context.Context, id string, date time.Time) (models.SavedWorkout, error)
	Complete(ctx context.Context, id string, at time.Time) (models.SavedWorkout, error)
}

// Compile-time check: *storage.WorkoutStore satisfies DataSource.
var _ DataSource = (*storage.WorkoutStore)(nil)
