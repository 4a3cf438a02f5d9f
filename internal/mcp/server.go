package mcp

import (
	"log/slog"

	"github.com/aithlete/aithlete/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(c Coach, renderer *render.Renderer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Aithlete", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Aithlete workout planner. Generate structured workout plans from fitness preferences, ask a fitness expert, and summarize or render plans as PDF. Read aithlete://form_options for the allowed preference values."),
	)

	h := &handlers{coach: c, renderer: renderer, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkoutPlan, Handler: h.generateWorkoutPlan},
		server.ServerTool{Tool: toolAskFitnessExpert, Handler: h.askFitnessExpert},
		server.ServerTool{Tool: toolSummarizePlan, Handler: h.summarizePlan},
		server.ServerTool{Tool: toolRenderWorkoutPDF, Handler: h.renderWorkoutPDF},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resFormOptions, Handler: h.formOptions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	coach    Coach
	renderer *render.Renderer
	log      *slog.Logger
}

// --- Resource definitions ---

var resFormOptions = mcp.NewResource(
	"aithlete://form_options",
	"Form Options",
	mcp.WithResourceDescription("Allowed values for goal, level, commitment, workout types, equipment and plan duration"),
	mcp.WithMIMEType("application/json"),
)
