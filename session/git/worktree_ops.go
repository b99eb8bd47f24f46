package git

import (
	"encoding/json"
	"fmt"
	"league/log"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ClaudeSettings mirrors .claude/settings.local.json so the assistant
// auto-approves the git/gh commands league itself needs inside a worktree.
type ClaudeSettings struct {
	Permissions ClaudePermissions `json:"permissions"`
}

type ClaudePermissions struct {
	Allow []string `json:"allow"`
}

var DefaultAllowedCommands = []string{
	"Bash(git:*)",
	"Bash(gh:*)",
}

func (g *GitWorktree) createClaudeSettingsFile() error {
	claudeDir := filepath.Join(g.worktreePath, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return fmt.Errorf("failed to create .claude directory: %w", err)
	}

	settings := ClaudeSettings{Permissions: ClaudePermissions{Allow: DefaultAllowedCommands}}
	settingsJSON, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(filepath.Join(claudeDir, "settings.local.json"), settingsJSON, 0644)
}

// Setup materializes the worktree on disk: if branchName already exists it
// attaches the worktree to it, otherwise it creates a fresh branch from
// HEAD, per spec.md §4.3.
func (g *GitWorktree) Setup() error {
	g.reportProgress("Preparing worktree directory...")

	worktreesDir, err := getWorktreeDirectory()
	if err != nil {
		return fmt.Errorf("failed to get worktree directory: %w", err)
	}
	if err := os.MkdirAll(worktreesDir, 0755); err != nil {
		return fmt.Errorf("failed to create worktrees directory: %w", err)
	}

	branchExists, err := g.branchExists()
	if err != nil {
		return err
	}

	if branchExists {
		g.reportProgress(fmt.Sprintf("Setting up worktree from existing branch '%s'...", g.branchName))
		return g.setupFromExistingBranch()
	}
	g.reportProgress(fmt.Sprintf("Creating new worktree with branch '%s'...", g.branchName))
	return g.setupNewWorktree()
}

func (g *GitWorktree) branchExists() (bool, error) {
	repo, err := gogit.PlainOpen(g.repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(g.branchName), false)
	return err == nil, nil
}

// setupFromExistingBranch implements the "branch already exists" path: any
// stale worktrees pointing at this branch are removed first so git doesn't
// refuse to attach it twice.
func (g *GitWorktree) setupFromExistingBranch() error {
	g.reportProgress("Cleaning up stale worktrees for this branch...")
	if err := g.removeOtherWorktreesForBranch(); err != nil {
		log.WarningLog.Printf("could not remove stale worktrees for branch %s: %v", g.branchName, err)
	}
	_, _ = g.runGitCommand(g.repoPath, "worktree", "remove", "-f", g.worktreePath)
	_, _ = g.runGitCommand(g.repoPath, "worktree", "prune")

	g.reportProgress("Creating worktree...")
	if _, err := g.runGitCommand(g.repoPath, "worktree", "add", g.worktreePath, g.branchName); err != nil {
		return fmt.Errorf("failed to create worktree from branch %s: %w", g.branchName, err)
	}

	g.reportProgress("Computing base commit for diff...")
	if err := g.computeBaseCommitSHA(); err != nil {
		log.WarningLog.Printf("could not compute base commit SHA: %v", err)
	}

	if err := g.createClaudeSettingsFile(); err != nil {
		log.WarningLog.Printf("failed to create Claude settings file: %v", err)
	}

	g.reportProgress("Worktree ready")
	return nil
}

// removeOtherWorktreesForBranch scans `git worktree list --porcelain` for
// worktrees other than ours already attached to branchName and removes
// them, per spec.md §4.3's setup() step (b).
func (g *GitWorktree) removeOtherWorktreesForBranch() error {
	out, err := g.runGitCommand(g.repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return err
	}

	var current string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			current = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			branch := strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			if branch == g.branchName && current != g.worktreePath && current != "" {
				_, _ = g.runGitCommand(g.repoPath, "worktree", "remove", "-f", current)
			}
		}
	}
	return nil
}

// setupNewWorktree creates a brand new branch from HEAD.
func (g *GitWorktree) setupNewWorktree() error {
	g.reportProgress("Cleaning up existing worktree...")
	_, _ = g.runGitCommand(g.repoPath, "worktree", "remove", "-f", g.worktreePath)

	if err := g.cleanupExistingBranch(); err != nil {
		log.WarningLog.Printf("failed to cleanup stale branch ref for %s: %v", g.branchName, err)
	}

	g.reportProgress("Getting HEAD commit...")
	headCommit, err := g.runGitCommand(g.repoPath, "rev-parse", "HEAD")
	if err != nil {
		if strings.Contains(err.Error(), "ambiguous argument 'HEAD'") ||
			strings.Contains(err.Error(), "not a valid object name") {
			return fmt.Errorf("this appears to be a brand new repository: please create an initial commit before creating an instance")
		}
		return fmt.Errorf("failed to get HEAD commit hash: %w", err)
	}
	g.baseCommitSHA = headCommit

	g.reportProgress("Creating worktree...")
	if _, err := g.runGitCommand(g.repoPath, "worktree", "add", "-b", g.branchName, g.worktreePath, headCommit); err != nil {
		return fmt.Errorf("failed to create worktree from commit %s: %w", headCommit, err)
	}

	if err := g.createClaudeSettingsFile(); err != nil {
		log.WarningLog.Printf("failed to create Claude settings file: %v", err)
	}

	g.reportProgress("Worktree ready")
	return nil
}

// cleanupExistingBranch deletes a stale branch ref/config section so a
// fresh branch of the same name can be created without git complaining
// that the ref already exists.
func (g *GitWorktree) cleanupExistingBranch() error {
	var errs []error

	if _, err := g.runGitCommand(g.repoPath, "update-ref", "-d", "refs/heads/"+g.branchName); err != nil {
		errs = append(errs, fmt.Errorf("delete branch ref: %w", err))
	}

	if _, err := g.runGitCommand(g.repoPath, "update-ref", "-d", "refs/worktree/"+g.branchName); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "not found") && !strings.Contains(msg, "does not exist") {
			errs = append(errs, fmt.Errorf("delete worktree ref: %w", err))
		}
	}

	if _, err := g.runGitCommand(g.repoPath, "config", "--remove-section", "branch."+g.branchName); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "No such section") && !strings.Contains(msg, "does not exist") {
			errs = append(errs, fmt.Errorf("remove branch config: %w", err))
		}
	}

	return combineErrors(errs)
}

// Cleanup removes both the worktree directory and the branch (best effort).
func (g *GitWorktree) Cleanup() error {
	var errs []error

	if _, err := os.Stat(g.worktreePath); err == nil {
		if _, err := g.runGitCommand(g.repoPath, "worktree", "remove", "-f", g.worktreePath); err != nil {
			errs = append(errs, err)
		}
	} else if !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to check worktree path: %w", err))
	}

	repo, err := gogit.PlainOpen(g.repoPath)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists || strings.Contains(err.Error(), "repository does not exist") {
			log.InfoLog.Printf("repository %s does not exist, cleanup already complete", g.repoPath)
			return combineErrors(errs)
		}
		errs = append(errs, fmt.Errorf("failed to open repository for cleanup: %w", err))
		return combineErrors(errs)
	}

	branchRef := plumbing.NewBranchReferenceName(g.branchName)
	if _, err := repo.Reference(branchRef, false); err == nil {
		if err := repo.Storer.RemoveReference(branchRef); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove branch %s: %w", g.branchName, err))
		}
	} else if err != plumbing.ErrReferenceNotFound {
		errs = append(errs, fmt.Errorf("error checking branch %s existence: %w", g.branchName, err))
	}

	if err := g.Prune(); err != nil {
		errs = append(errs, err)
	}

	return combineErrors(errs)
}

// Remove deletes only the worktree directory, keeping the branch — used
// on Pause.
func (g *GitWorktree) Remove() error {
	if _, err := g.runGitCommand(g.repoPath, "worktree", "remove", "-f", g.worktreePath); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	return nil
}

func (g *GitWorktree) Prune() error {
	if _, err := g.runGitCommand(g.repoPath, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// CommitChanges stages and commits any pending changes with --no-verify,
// used by Pause's auto-save and by the Push action.
func (g *GitWorktree) CommitChanges(title string) error {
	dirty, err := g.IsDirty()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	if _, err := g.runGitCommand(g.worktreePath, "add", "."); err != nil {
		return err
	}
	_, err = g.runGitCommand(g.worktreePath, "commit", "--no-verify", "-m", title)
	return err
}

// PushChanges commits then tries `gh repo sync`, falling back to
// `git push -u origin {branch}` when the gh CLI or upstream is unavailable.
func (g *GitWorktree) PushChanges(title string) error {
	if err := g.CommitChanges(title); err != nil {
		return err
	}

	if _, err := g.exec.Output("gh", "-C", g.worktreePath, "repo", "sync"); err != nil {
		if _, err := g.runGitCommand(g.worktreePath, "push", "-u", "origin", g.branchName); err != nil {
			return fmt.Errorf("failed to push changes: %w", err)
		}
	}
	return nil
}

// CleanupWorktrees removes every worktree directory under the config
// directory and best-effort deletes their branches; used by `league reset`.
func CleanupWorktrees(exec interface {
	Output(name string, args ...string) (string, error)
}) error {
	worktreesDir, err := getWorktreeDirectory()
	if err != nil {
		return fmt.Errorf("failed to get worktree directory: %w", err)
	}

	entries, err := os.ReadDir(worktreesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read worktree directory: %w", err)
	}

	output, err := exec.Output("git", "worktree", "list", "--porcelain")
	if err != nil {
		return fmt.Errorf("failed to list worktrees: %w", err)
	}

	worktreeBranches := make(map[string]string)
	current := ""
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			current = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			branch := strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
			if current != "" {
				worktreeBranches[current] = branch
			}
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		worktreePath := filepath.Join(worktreesDir, entry.Name())
		for path, branch := range worktreeBranches {
			if strings.Contains(path, entry.Name()) {
				if _, err := exec.Output("git", "branch", "-D", branch); err != nil {
					log.ErrorLog.Printf("failed to delete branch %s: %v", branch, err)
				}
				break
			}
		}
		os.RemoveAll(worktreePath)
	}

	if _, err := exec.Output("git", "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// computeBaseCommitSHA finds the merge-base between branchName and the
// repo's default branch, used when resuming a worktree attached to a
// pre-existing branch.
func (g *GitWorktree) computeBaseCommitSHA() error {
	defaultBranch, err := g.findDefaultBranch()
	if err != nil {
		return fmt.Errorf("could not find default branch: %w", err)
	}

	mergeBase, err := g.runGitCommand(g.repoPath, "merge-base", g.branchName, defaultBranch)
	if err != nil {
		return fmt.Errorf("could not find merge-base: %w", err)
	}

	g.baseCommitSHA = mergeBase
	return nil
}

func (g *GitWorktree) findDefaultBranch() (string, error) {
	if output, err := g.runGitCommand(g.repoPath, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		parts := strings.Split(output, "/")
		if len(parts) > 0 {
			return parts[len(parts)-1], nil
		}
	}

	if _, err := g.runGitCommand(g.repoPath, "rev-parse", "--verify", "main"); err == nil {
		return "main", nil
	}
	if _, err := g.runGitCommand(g.repoPath, "rev-parse", "--verify", "master"); err == nil {
		return "master", nil
	}

	return "", fmt.Errorf("could not find default branch (tried origin/HEAD, main, master)")
}
