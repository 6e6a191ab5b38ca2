package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/plancoach/internal/coach"
	"github.com/claude/plancoach/internal/metrics"
	"github.com/claude/plancoach/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   *storage.WorkoutStore
	coach   *coach.Coach
	metrics *metrics.Manager
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured. A nil coach
// disables the chat endpoints.
func New(store *storage.WorkoutStore, c *coach.Coach, m *metrics.Manager, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		coach:   c,
		metrics: m,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Post("/", s.handleCreateWorkout)
		r.Post("/import", s.handleImportWorkouts)
		r.Get("/{id}", s.handleGetWorkout)
		r.Patch("/{id}", s.handleUpdateWorkout)
		r.Delete("/{id}", s.handleDeleteWorkout)
		r.Post("/{id}/schedule", s.handleScheduleWorkout)
		r.Post("/{id}/complete", s.handleCompleteWorkout)
		r.Get("/{id}/summary", s.handleWorkoutSummary)
		r.Get("/{id}/fit", s.handleWorkoutFIT)
	})
	s.router.Get("/api/v1/calendar", s.handleCalendar)
	s.router.Get("/api/v1/history", s.handleHistory)

	s.router.Post("/api/v1/plans/build", s.handleBuildPlan)
	s.router.Post("/api/v1/plans/preview", s.handlePreviewPlan)
	s.router.Get("/api/v1/pace", s.handlePace)
	s.router.Get("/api/v1/units", s.handleUnits)

	s.router.Post("/api/v1/chat", s.handleChat)
	s.router.Post("/api/v1/chat/accept", s.handleChatAccept)
}

// Mount attaches an extra handler (metrics exporter, MCP endpoint) at pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}
