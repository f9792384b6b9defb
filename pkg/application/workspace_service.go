package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

// IssueFetcher retrieves tracker records for plan metadata.
type IssueFetcher interface {
	FetchIssues(ctx context.Context, numbers []int) ([]execution.IssueRecord, error)
}

// WorktreeProvisioner creates an isolated working directory for a branch.
type WorktreeProvisioner interface {
	Provision(ctx context.Context, parentDir, branch string) (string, error)
}

// PromptWriter renders the task prompt into a provisioned worktree.
type PromptWriter interface {
	WriteTo(worktree string, plan *execution.ExecutionPlan) (string, error)
}

// StateRepositoryFactory opens the persistence store rooted at a workspace.
// Each provisioned worktree gets its own store so plans never collide.
type StateRepositoryFactory func(root string) execution.StateRepository

// WorkspaceService runs the full task setup flow: fetch issues, provision a
// worktree, generate the plan inside it, render the prompt.
type WorkspaceService struct {
	fetcher     IssueFetcher
	provisioner WorktreeProvisioner
	prompts     PromptWriter
	catalogs    execution.CatalogRepository
	newRepo     StateRepositoryFactory
}

func NewWorkspaceService(
	fetcher IssueFetcher,
	provisioner WorktreeProvisioner,
	prompts PromptWriter,
	catalogs execution.CatalogRepository,
	newRepo StateRepositoryFactory,
) *WorkspaceService {
	return &WorkspaceService{
		fetcher:     fetcher,
		provisioner: provisioner,
		prompts:     prompts,
		catalogs:    catalogs,
		newRepo:     newRepo,
	}
}

// ProvisionRequest describes one new task workspace.
type ProvisionRequest struct {
	WorkflowType execution.WorkflowType
	IssueIDs     []int
	BranchName   string
	WorktreeDir  string
	ProjectKey   string
}

// ProvisionResult is the outcome of a successful setup flow.
type ProvisionResult struct {
	WorktreePath string
	PromptPath   string
	Plan         *execution.ExecutionPlan
	Issues       []execution.IssueRecord
}

// Provision executes the setup flow. Issue fetching happens first so a dead
// tracker aborts before any filesystem state is created.
func (s *WorkspaceService) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionResult, error) {
	if req.BranchName == "" {
		return nil, fmt.Errorf("branch name cannot be empty")
	}

	var issues []execution.IssueRecord
	if s.fetcher != nil && len(req.IssueIDs) > 0 {
		fetched, err := s.fetcher.FetchIssues(ctx, req.IssueIDs)
		if err != nil {
			return nil, err
		}
		issues = fetched
	}

	worktree, err := s.provisioner.Provision(ctx, req.WorktreeDir, req.BranchName)
	if err != nil {
		return nil, err
	}

	planSvc := NewPlanService(s.newRepo(worktree), s.catalogs, worktree)
	plan, err := planSvc.GeneratePlan(execution.GenerateRequest{
		WorkflowType:  req.WorkflowType,
		WorkspacePath: worktree,
		BranchName:    req.BranchName,
		IssueIDs:      req.IssueIDs,
		ProjectKey:    req.ProjectKey,
		Issues:        issues,
	})
	if err != nil {
		return nil, err
	}

	result := &ProvisionResult{WorktreePath: worktree, Plan: plan, Issues: issues}
	if s.prompts != nil {
		promptPath, err := s.prompts.WriteTo(worktree, plan)
		if err != nil {
			return nil, err
		}
		result.PromptPath = promptPath
	}
	return result, nil
}
