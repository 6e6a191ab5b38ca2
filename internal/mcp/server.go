package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PlanCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PlanCoach workout planner. List, inspect, schedule, and complete saved workout plans, and summarize or pace a plan before saving it."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListSavedWorkouts, Handler: h.listSavedWorkouts},
		server.ServerTool{Tool: toolGetSavedWorkout, Handler: h.getSavedWorkout},
		server.ServerTool{Tool: toolUpcomingWorkouts, Handler: h.upcomingWorkouts},
		server.ServerTool{Tool: toolScheduleWorkout, Handler: h.scheduleWorkout},
		server.ServerTool{Tool: toolCompleteWorkout, Handler: h.completeWorkout},
		server.ServerTool{Tool: toolSummarizePlan, Handler: h.summarizePlan},
		server.ServerTool{Tool: toolComputePace, Handler: h.computePace},
	)

	s.AddResources(
		server.ServerResource{Resource: resSavedWorkouts, Handler: h.savedWorkouts},
		server.ServerResource{Resource: resUnitCatalog, Handler: h.unitCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resSavedWorkouts = mcp.NewResource(
	"plancoach://saved_workouts",
	"Saved Workouts",
	mcp.WithResourceDescription("Every saved workout plan with its schedule and completion state"),
	mcp.WithMIMEType("application/json"),
)

var resUnitCatalog = mcp.NewResource(
	"plancoach://unit_catalog",
	"Unit Catalog",
	mcp.WithResourceDescription("Canonical units per goal type with their display abbreviations"),
	mcp.WithMIMEType("application/json"),
)
