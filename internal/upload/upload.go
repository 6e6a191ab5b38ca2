// Package upload reads saved-workout exports and pushes them into a
// workout store, either locally or through a remote server.
package upload

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
)

// Importer is the destination of an upload. *storage.WorkoutStore
// satisfies it directly; RemoteImporter wraps a Client.
type Importer interface {
	Import(ctx context.Context, workouts []models.SavedWorkout) (storage.ImportResult, error)
}

var _ Importer = (*storage.WorkoutStore)(nil)

// RemoteImporter adapts Client to Importer.
type RemoteImporter struct {
	Client *Client
}

func (r RemoteImporter) Import(ctx context.Context, workouts []models.SavedWorkout) (storage.ImportResult, error) {
	return r.Client.SendBatch(ctx, workouts)
}

// Stats tracks upload progress across batches.
type Stats struct {
	Read     int
	Valid    int
	Imported int
	Skipped  int
	Invalid  int
	Batches  int
}

// Export is a decoded export file. Undecodable counts records that were not
// valid saved-workout JSON and were dropped.
type Export struct {
	Workouts    []models.SavedWorkout
	Undecodable int
}

// ReadExport reads a JSON array of saved workouts. Files ending in .gz are
// decompressed first. Records are decoded one at a time so a single bad
// record does not fail the file.
func ReadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip export: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}
	workouts, undecodable, err := models.DecodeWorkouts(data)
	if err != nil {
		return nil, fmt.Errorf("decoding export %s: %w", path, err)
	}
	return &Export{Workouts: workouts, Undecodable: undecodable}, nil
}

// Uploader pushes workouts to an Importer in batches.
type Uploader struct {
	dest      Importer
	dryRun    bool
	batchSize int
	log       *slog.Logger
	stats     Stats
}

// New creates an Uploader. dest may be nil in dry-run mode.
func New(dest Importer, dryRun bool, batchSize int, log *slog.Logger) *Uploader {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Uploader{dest: dest, dryRun: dryRun, batchSize: batchSize, log: log}
}

// Run uploads an export. Undecodable records count as invalid. In dry-run
// mode plans are only validated and counted.
func (u *Uploader) Run(ctx context.Context, exp *Export) (*Stats, error) {
	workouts := exp.Workouts
	u.stats.Read = len(workouts) + exp.Undecodable
	u.stats.Invalid = exp.Undecodable
	for _, w := range workouts {
		if w.Name != "" && w.WorkoutPlan.Validate() == nil {
			u.stats.Valid++
		}
	}

	if u.dryRun {
		u.stats.Invalid = u.stats.Read - u.stats.Valid
		u.log.Info("dry run: nothing written", "read", u.stats.Read, "valid", u.stats.Valid)
		return &u.stats, nil
	}

	for start := 0; start < len(workouts); start += u.batchSize {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		end := min(start+u.batchSize, len(workouts))
		res, err := u.dest.Import(ctx, workouts[start:end])
		if err != nil {
			return &u.stats, fmt.Errorf("batch %d: %w", u.stats.Batches+1, err)
		}
		u.stats.Batches++
		u.stats.Imported += res.Imported
		u.stats.Skipped += res.Skipped
		u.stats.Invalid += res.Invalid
		u.log.Debug("batch imported", "batch", u.stats.Batches, "imported", res.Imported, "skipped", res.Skipped)
	}

	return &u.stats, nil
}
