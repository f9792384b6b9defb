// Package mcp exposes the execution plan engine to MCP clients so agents
// can read the plan, run the gate, and record progress over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/workbench/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

type Server struct {
	mcpServer *mcp.Server
	planSvc   *application.PlanService
	root      string
}

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted — only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}

	info := mcp.ServerInfo{
		Name:    "workbench",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Workbench MCP Server"),
			mcp.WithDescription("Workbench exposes the execution plan, step gate, and checkpoint log of a task workspace to MCP clients."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/workbench"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Read the plan with workbench_get_plan, find work with workbench_next_step, verify with workbench_check_step before completing, and record progress with workbench_update_step and workbench_checkpoint."),
		),
		planSvc: services.Plan,
		root:    root,
	}

	s.registerTools()
	return s, nil
}

type UpdateStepArgs struct {
	StepID string `json:"step_id" jsonschema:"description=The id of the step to transition"`
	Event  string `json:"event" jsonschema:"description=The transition event: start or complete"`
	Force  bool   `json:"force,omitempty" jsonschema:"description=Apply the transition even when the gate reports issues"`
}

type CheckStepArgs struct {
	StepID string `json:"step_id" jsonschema:"description=The id of the step to check"`
}

type CheckpointArgs struct {
	Message   string   `json:"message" jsonschema:"description=What this checkpoint marks"`
	Artifacts []string `json:"artifacts,omitempty" jsonschema:"description=Artifact paths associated with the checkpoint"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("workbench_get_plan").
		Description("Retrieve the full execution plan with phase and step statuses").
		Handler(s.handleGetPlan)

	s.mcpServer.Tool("workbench_next_step").
		Description("Return the first pending step in canonical plan order").
		Handler(s.handleNextStep)

	s.mcpServer.Tool("workbench_update_step").
		Description("Apply a start or complete event to a step, gate-checked and persisted").
		Handler(s.handleUpdateStep)

	s.mcpServer.Tool("workbench_check_step").
		Description("Run the dependency and artifact gate for a step without changing state").
		Handler(s.handleCheckStep)

	s.mcpServer.Tool("workbench_checkpoint").
		Description("Append a manual checkpoint at the plan's current position").
		Handler(s.handleCheckpoint)

	s.mcpServer.Tool("workbench_status").
		Description("Render the human-readable plan summary").
		Handler(s.handleStatus)
}

func (s *Server) handleGetPlan(ctx context.Context, args struct{}) (any, error) {
	state, err := s.planSvc.LoadState()
	if err != nil {
		return nil, mcpErr("No execution plan found. Generate one with 'workbench plan generate' or 'workbench task new'.")
	}
	return state.ExecutionPlan, nil
}

func (s *Server) handleNextStep(ctx context.Context, args struct{}) (any, error) {
	next, err := s.planSvc.Next()
	if err != nil {
		return nil, mcpErr("No execution plan found. Generate one with 'workbench plan generate' or 'workbench task new'.")
	}
	if next == nil {
		return map[string]any{"done": true}, nil
	}
	return next, nil
}

func (s *Server) handleUpdateStep(ctx context.Context, args UpdateStepArgs) (any, error) {
	result, err := s.planSvc.TransitionStep(args.StepID, args.Event, args.Force)
	if err != nil {
		if result != nil && !result.Gate.CanProceed {
			return map[string]any{
				"applied": false,
				"issues":  result.Gate.Issues,
			}, nil
		}
		return nil, mcpErr(fmt.Sprintf("Cannot %s step %s: %v", args.Event, args.StepID, err))
	}

	response := map[string]any{
		"applied":     true,
		"plan_status": result.Plan.Status,
	}
	if result.Checkpoint != nil {
		response["checkpoint_id"] = result.Checkpoint.ID
	}
	return response, nil
}

func (s *Server) handleCheckStep(ctx context.Context, args CheckStepArgs) (any, error) {
	result, err := s.planSvc.CheckStep(args.StepID)
	if err != nil {
		if errors.Is(err, execution.ErrStepNotFound) {
			return nil, mcpErr(fmt.Sprintf("Step %s does not exist in the plan.", args.StepID))
		}
		return nil, mcpErr("No execution plan found. Generate one with 'workbench plan generate' or 'workbench task new'.")
	}
	return result, nil
}

func (s *Server) handleCheckpoint(ctx context.Context, args CheckpointArgs) (any, error) {
	cp, err := s.planSvc.CreateCheckpoint(args.Message, args.Artifacts)
	if err != nil {
		return nil, mcpErr("No execution plan found. Generate one with 'workbench plan generate' or 'workbench task new'.")
	}
	return cp, nil
}

func (s *Server) handleStatus(ctx context.Context, args struct{}) (string, error) {
	summary, err := s.planSvc.Summary()
	if err != nil {
		return "", mcpErr("No execution plan found. Generate one with 'workbench plan generate' or 'workbench task new'.")
	}
	return summary, nil
}

// ServeStdio runs the server over stdin/stdout until the context ends.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}
