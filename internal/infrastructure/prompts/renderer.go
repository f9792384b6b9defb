// Package prompts renders per-workflow prompt templates into a worktree.
// A built-in template ships for every workflow type; a project can override
// any of them by placing <workflow-type>.md in its configured prompt
// directory.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
)

//go:embed templates/*.md
var builtinTemplates embed.FS

// PromptFile is the rendered prompt's filename inside the worktree.
const PromptFile = "TASK_PROMPT.md"

// Renderer selects and renders prompt templates. overrideDir may be empty.
type Renderer struct {
	overrideDir string
}

func NewRenderer(overrideDir string) *Renderer {
	return &Renderer{overrideDir: overrideDir}
}

// Template returns the raw template for a workflow type, preferring a
// project override over the built-in.
func (r *Renderer) Template(wt execution.WorkflowType) (string, error) {
	name := string(wt) + ".md"

	if r.overrideDir != "" {
		// #nosec G304 -- overrideDir comes from project config
		data, err := os.ReadFile(filepath.Join(r.overrideDir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt override: %w", err)
		}
	}

	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("no prompt template for workflow type %s", wt)
	}
	return string(data), nil
}

// Render fills a workflow's template with values from the plan.
func (r *Renderer) Render(plan *execution.ExecutionPlan) (string, error) {
	tmpl, err := r.Template(plan.WorkflowType)
	if err != nil {
		return "", err
	}
	return Substitute(tmpl, Placeholders(plan)), nil
}

// WriteTo renders the plan's prompt into the worktree and returns its path.
func (r *Renderer) WriteTo(worktree string, plan *execution.ExecutionPlan) (string, error) {
	rendered, err := r.Render(plan)
	if err != nil {
		return "", err
	}
	path := filepath.Join(worktree, PromptFile)
	if err := os.WriteFile(path, []byte(rendered), 0600); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return path, nil
}

// Placeholders derives the substitution map from a plan. The first issue
// supplies title and body; all issue numbers are joined for ISSUE_NUMBERS.
func Placeholders(plan *execution.ExecutionPlan) map[string]string {
	values := map[string]string{
		"WORKFLOW_TYPE":  string(plan.WorkflowType),
		"BRANCH_NAME":    plan.BranchName,
		"WORKSPACE_PATH": plan.WorkspacePath,
		"PROJECT_KEY":    plan.Metadata.ProjectKey,
		"ISSUE_TITLE":    "",
		"ISSUE_BODY":     "",
		"ISSUE_NUMBERS":  "none",
	}

	if len(plan.Metadata.Issues) > 0 {
		first := plan.Metadata.Issues[0]
		values["ISSUE_TITLE"] = first.Title
		values["ISSUE_BODY"] = first.Body
	}
	if len(plan.IssueIDs) > 0 {
		parts := make([]string, len(plan.IssueIDs))
		for i, id := range plan.IssueIDs {
			parts[i] = fmt.Sprintf("#%d", id)
		}
		values["ISSUE_NUMBERS"] = strings.Join(parts, ", ")
	}
	return values
}

// Substitute replaces {{KEY}} markers with their values. Unknown markers are
// left in place so a typo in a template stays visible in the output.
func Substitute(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
