package git

import (
	"strings"
	"time"
)

// defaultDiffCacheDuration bounds how often Diff recomputes from git.
const defaultDiffCacheDuration = 5 * time.Second

// DiffStats holds the add/remove line counts and raw diff text for an
// instance's worktree, computed against its base commit.
type DiffStats struct {
	Content string
	Added   int
	Removed int
	Error   error
}

func (d *DiffStats) IsEmpty() bool {
	return d.Added == 0 && d.Removed == 0 && d.Content == ""
}

// IsDirty reports whether the worktree has uncommitted changes.
func (g *GitWorktree) IsDirty() (bool, error) {
	output, err := g.runGitCommand(g.worktreePath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(output) > 0, nil
}

// IsBranchCheckedOut reports whether branchName is the main repo's
// current HEAD, which Resume must check before re-attaching a worktree to
// a branch that is already checked out there.
func (g *GitWorktree) IsBranchCheckedOut() (bool, error) {
	headRef, err := g.runGitCommand(g.repoPath, "symbolic-ref", "HEAD")
	if err != nil {
		return false, err
	}
	return headRef == "refs/heads/"+g.branchName, nil
}

// Diff returns the diff between the worktree and its base commit, caching
// results for up to diffCacheDuration to avoid repeated expensive git
// invocations from the background pipeline's per-tick diff worker.
func (g *GitWorktree) Diff() *DiffStats {
	if g.diffCacheDuration == 0 {
		g.diffCacheDuration = defaultDiffCacheDuration
	}

	if g.cachedDiffStats != nil && time.Since(g.diffCacheTime) < g.diffCacheDuration {
		if g.cachedDiffStats.IsEmpty() {
			if dirty, err := g.IsDirty(); err == nil && !dirty {
				return g.cachedDiffStats
			}
		} else {
			return g.cachedDiffStats
		}
	}

	stats := g.diffUncached()
	g.cachedDiffStats = stats
	g.diffCacheTime = time.Now()
	return stats
}

func (g *GitWorktree) diffUncached() *DiffStats {
	stats := &DiffStats{}

	// -N stages untracked files (intent to add) so they appear in the diff.
	if _, err := g.runGitCommand(g.worktreePath, "add", "-N", "."); err != nil {
		stats.Error = err
		return stats
	}

	content, err := g.runGitCommand(g.worktreePath, "--no-pager", "diff", g.baseCommitSHA)
	if err != nil {
		stats.Error = err
		return stats
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			stats.Added++
		case strings.HasPrefix(line, "-"):
			stats.Removed++
		}
	}
	stats.Content = content
	return stats
}

// InvalidateDiffCache forces the next Diff call to recompute, used after
// Resume since the worktree contents may have changed underneath the cache.
func (g *GitWorktree) InvalidateDiffCache() {
	g.cachedDiffStats = nil
	g.diffCacheTime = time.Time{}
}
