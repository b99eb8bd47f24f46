// Package git implements the Worktree Manager: it creates, repairs and
// destroys the per-session git branch + worktree pair, and computes diff
// statistics against the base commit. Grounded on the teacher's
// session/git package, filled out where the retrieved snapshot was
// incomplete using the original Rust implementation's
// session/git/{util,worktree,worktree_branch,worktree_git}.rs.
package git

import (
	"fmt"
	"league/cmd"
	"league/config"
	"league/log"
	"path/filepath"
	"strings"
	"time"
)

func getWorktreeDirectory() (string, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "worktrees"), nil
}

// ProgressCallback is invoked with human-readable status messages during Setup.
type ProgressCallback func(message string)

// GitWorktree manages the git worktree for a single session.
type GitWorktree struct {
	exec cmd.Executor

	repoPath      string
	worktreePath  string
	sessionName   string
	branchName    string
	baseCommitSHA string

	progressCallback ProgressCallback

	cachedDiffStats   *DiffStats
	diffCacheTime     time.Time
	diffCacheDuration time.Duration
}

// NewGitWorktreeFromStorage reconstructs a GitWorktree from its persisted
// fields, without touching disk. Used when loading instances at startup.
func NewGitWorktreeFromStorage(exec cmd.Executor, repoPath, worktreePath, sessionName, branchName, baseCommitSHA string) *GitWorktree {
	return &GitWorktree{
		exec:          exec,
		repoPath:      repoPath,
		worktreePath:  worktreePath,
		sessionName:   sessionName,
		branchName:    branchName,
		baseCommitSHA: baseCommitSHA,
	}
}

// NewGitWorktree computes the in-memory shape of a new worktree: the
// branch name, the unique worktree directory, and the repo root. Nothing
// is written to disk; call Setup to materialize it.
func NewGitWorktree(exec cmd.Executor, repoPath, sessionName string, cfg *config.Config) (tree *GitWorktree, branchName string, err error) {
	branchName = sanitizeBranchName(cfg.BranchPrefix + sessionName)

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		log.ErrorLog.Printf("git worktree path abs error, falling back to repoPath %s: %s", repoPath, err)
		absPath = repoPath
	}

	root, err := findGitRepoRoot(exec, absPath)
	if err != nil {
		return nil, "", err
	}

	worktreeDir, err := getWorktreeDirectory()
	if err != nil {
		return nil, "", err
	}

	worktreePath := filepath.Join(worktreeDir, branchName+"_"+fmt.Sprintf("%x", uniqueSuffix(sessionName)))

	return &GitWorktree{
		exec:         exec,
		repoPath:     root,
		sessionName:  sessionName,
		branchName:   branchName,
		worktreePath: worktreePath,
	}, branchName, nil
}

// uniqueSuffix derives a disambiguating suffix for the worktree directory
// name from the session's creation time, since two instances may sanitize
// to the same branch name.
func uniqueSuffix(sessionName string) int64 {
	return time.Now().UnixNano()
}

func (g *GitWorktree) GetWorktreePath() string   { return g.worktreePath }
func (g *GitWorktree) GetBranchName() string     { return g.branchName }
func (g *GitWorktree) GetRepoPath() string       { return g.repoPath }
func (g *GitWorktree) GetRepoName() string       { return filepath.Base(g.repoPath) }
func (g *GitWorktree) GetBaseCommitSHA() string  { return g.baseCommitSHA }
func (g *GitWorktree) GetSessionName() string    { return g.sessionName }

func (g *GitWorktree) SetProgressCallback(callback ProgressCallback) {
	g.progressCallback = callback
}

func (g *GitWorktree) reportProgress(message string) {
	if g.progressCallback != nil {
		g.progressCallback(message)
	}
}

// sanitizeBranchName implements spec.md §4.3: lowercase, spaces to hyphens,
// drop anything outside [a-z0-9/_.-], collapse hyphen runs, trim leading
// and trailing hyphens/slashes. Empty input maps to empty output, and the
// function is idempotent.
func sanitizeBranchName(name string) string {
	if name == "" {
		return ""
	}

	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, c := range lowered {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '/', c == '_', c == '.', c == '-':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('-')
		}
	}

	collapsed := collapseHyphenRuns(b.String())
	return strings.Trim(collapsed, "-/")
}

func collapseHyphenRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, c := range s {
		if c == '-' {
			if !prevHyphen {
				b.WriteRune(c)
			}
			prevHyphen = true
		} else {
			b.WriteRune(c)
			prevHyphen = false
		}
	}
	return b.String()
}

// runGitCommand runs `git -C path <gitArgs...>` via the injected executor
// and returns trimmed stdout.
func (g *GitWorktree) runGitCommand(path string, gitArgs ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, gitArgs...)
	out, err := g.exec.Output("git", fullArgs...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// findGitRepoRoot resolves the repository root containing path.
func findGitRepoRoot(exec cmd.Executor, path string) (string, error) {
	out, err := exec.Output("git", "-C", path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to find git repo root for %s: %w", path, err)
	}
	return strings.TrimSpace(out), nil
}

// combineErrors joins best-effort cleanup errors into one message, mirroring
// the original implementation's combine_errors.
func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
