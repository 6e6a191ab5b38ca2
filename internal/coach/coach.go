// Package coach asks a language model for workout suggestions and
// reconciles the plan objects embedded in its replies.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/plancoach/internal/models"
)

// ErrNoWorkout is returned by Accept when there is no usable plan to save.
var ErrNoWorkout = errors.New("no workout to accept")

// Completer sends a conversation and returns the assistant's text.
type Completer interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Saver persists an accepted workout.
type Saver interface {
	Save(ctx context.Context, in models.NewWorkout) (models.SavedWorkout, error)
}

// Reply is the result of one Ask round trip.
type Reply struct {
	Text    string                `json:"text"`
	Workout *models.ParsedWorkout `json:"workout,omitempty"`
	Summary *models.PlanSummary   `json:"summary,omitempty"`
}

// Coach wires a Completer to a Saver.
type Coach struct {
	llm    Completer
	store  Saver
	logger *slog.Logger
}

// New creates a Coach.
func New(llm Completer, store Saver, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{llm: llm, store: store, logger: logger}
}

// Ask sends the athlete's message, with prior turns, and reconciles any
// workout object in the reply. A reply without a usable workout is not an
// error; Workout is nil.
func (c *Coach) Ask(ctx context.Context, message string, history []Message) (*Reply, error) {
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: SystemPrompt})
	for _, m := range history {
		if m.Role == RoleSystem {
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: BuildPrompt(message)})

	text, err := c.llm.Chat(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("asking coach: %w", err)
	}

	reply := &Reply{Text: text}
	if w := Extract(text); w != nil {
		summary := models.SummarizePlan(*w.WorkoutPlan)
		reply.Workout = w
		reply.Summary = &summary
		c.logger.Info("coach proposed workout", "name", w.Name, "type", w.WorkoutPlan.Type)
	} else {
		c.logger.Debug("coach reply without workout", "chars", len(text))
	}
	return reply, nil
}

// Accept saves a reconciled workout with origin ai.
func (c *Coach) Accept(ctx context.Context, w *models.ParsedWorkout) (models.SavedWorkout, error) {
	if w == nil || w.WorkoutPlan == nil || w.Name == "" {
		return models.SavedWorkout{}, ErrNoWorkout
	}
	saved, err := c.store.Save(ctx, w.ToNewWorkout())
	if err != nil {
		return models.SavedWorkout{}, fmt.Errorf("saving accepted workout: %w", err)
	}
	return saved, nil
}
