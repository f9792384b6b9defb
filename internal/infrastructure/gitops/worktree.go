// Package gitops shells out to git for worktree provisioning and runs
// batches of independent git operations in parallel.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const gitTimeout = 30 * time.Second

// Provisioner creates per-task worktrees off a source repository.
type Provisioner struct {
	repoPath string
}

func NewProvisioner(repoPath string) *Provisioner {
	return &Provisioner{repoPath: repoPath}
}

// Provision creates a worktree for branch under parentDir and returns its
// path. If the branch already exists it is checked out into the worktree
// instead of created; if the target directory already exists, a numeric
// suffix is appended to both directory and branch name.
func (p *Provisioner) Provision(ctx context.Context, parentDir, branch string) (string, error) {
	if branch == "" {
		return "", fmt.Errorf("branch name cannot be empty")
	}
	if err := os.MkdirAll(parentDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create worktree parent directory: %w", err)
	}

	name := SanitizeBranchName(branch)
	dir := filepath.Join(parentDir, name)
	useBranch := branch

	for n := 2; pathExists(dir); n++ {
		if n > 20 {
			return "", fmt.Errorf("too many existing worktrees for branch %s", branch)
		}
		dir = filepath.Join(parentDir, fmt.Sprintf("%s-%d", name, n))
		useBranch = fmt.Sprintf("%s-%d", branch, n)
	}

	var err error
	if p.branchExists(ctx, useBranch) {
		err = p.run(ctx, "worktree", "add", dir, useBranch)
	} else {
		err = p.run(ctx, "worktree", "add", "-b", useBranch, dir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to add worktree for %s: %w", useBranch, err)
	}
	return dir, nil
}

// Remove detaches the worktree at dir and prunes stale records.
func (p *Provisioner) Remove(ctx context.Context, dir string) error {
	if err := p.run(ctx, "worktree", "remove", "--force", dir); err != nil {
		return fmt.Errorf("failed to remove worktree %s: %w", dir, err)
	}
	return p.run(ctx, "worktree", "prune")
}

// Fetch updates remote refs in the source repository.
func (p *Provisioner) Fetch(ctx context.Context) error {
	return p.run(ctx, "fetch", "--prune", "origin")
}

// Prune drops worktree records whose directories no longer exist.
func (p *Provisioner) Prune(ctx context.Context) error {
	return p.run(ctx, "worktree", "prune")
}

func (p *Provisioner) branchExists(ctx context.Context, branch string) bool {
	err := p.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

func (p *Provisioner) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	full := append([]string{"-C", p.repoPath}, args...)
	// #nosec G204 -- args are fixed git subcommands plus validated paths
	cmd := exec.CommandContext(ctx, "git", full...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("git %s timed out after %s", args[0], gitTimeout)
		}
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SanitizeBranchName maps a branch name to a filesystem-safe directory name.
func SanitizeBranchName(branch string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, branch)
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "worktree"
	}
	return name
}

// BranchNameForIssues derives a branch name like fix/issue-2312 or
// fix/issues-12-15 from a workflow type and issue numbers.
func BranchNameForIssues(workflowType string, issueIDs []int) string {
	prefix := "task"
	switch workflowType {
	case "issue-fix":
		prefix = "fix"
	case "feature-development":
		prefix = "feature"
	case "maintenance":
		prefix = "chore"
	case "exploration":
		prefix = "spike"
	}

	if len(issueIDs) == 0 {
		return fmt.Sprintf("%s/%s", prefix, time.Now().Format("20060102-150405"))
	}
	if len(issueIDs) == 1 {
		return fmt.Sprintf("%s/issue-%d", prefix, issueIDs[0])
	}
	parts := make([]string, len(issueIDs))
	for i, id := range issueIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s/issues-%s", prefix, strings.Join(parts, "-"))
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
