package session

import (
	"fmt"
	"io"
	"time"

	"league/cmd"
	"league/config"
	"league/pty"
	"league/session/git"
)

// Status is the Instance lifecycle state.
type Status int

const (
	// Running is the status when the instance is running and the program is working.
	Running Status = iota
	// Ready is when the program is ready to be interacted with (waiting for user input).
	Ready
	// Loading is when the instance is starting up.
	Loading
	// Paused is when the instance is paused (worktree removed but branch preserved).
	Paused
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Ready:
		return "Ready"
	case Loading:
		return "Loading"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Instance is a running instance of an AI coding assistant: a worktree +
// multiplexer session pair plus the lifecycle state machine around it.
type Instance struct {
	Title  string
	Path   string
	Branch string
	Status Status

	Program string
	AutoYes bool
	Prompt  string

	Height int
	Width  int

	// Summary is a short AI-generated description of the current session
	// state, refreshed on a cooldown by Summarizer.
	Summary          string
	SummaryUpdatedAt time.Time

	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastOpenedAt *time.Time

	diffStats *git.DiffStats

	lastDiffUpdate time.Time
	lastActivity   time.Time

	// The below fields are initialized upon calling Start().

	started     bool
	session     Multiplexer
	gitWorktree *git.GitWorktree
}

// ToInstanceData converts an Instance to its serializable form.
func (i *Instance) ToInstanceData() InstanceData {
	data := InstanceData{
		Title:        i.Title,
		Path:         i.Path,
		Branch:       i.Branch,
		Status:       i.Status,
		Height:       i.Height,
		Width:        i.Width,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    time.Now(),
		LastOpenedAt: i.LastOpenedAt,
		Program:      i.Program,
		AutoYes:      i.AutoYes,
		Prompt:       i.Prompt,
		Summary:      i.Summary,
		SummaryUpdatedAt: i.SummaryUpdatedAt,
	}

	if i.gitWorktree != nil {
		data.Worktree = GitWorktreeData{
			RepoPath:      i.gitWorktree.GetRepoPath(),
			WorktreePath:  i.gitWorktree.GetWorktreePath(),
			SessionName:   i.gitWorktree.GetSessionName(),
			BranchName:    i.gitWorktree.GetBranchName(),
			BaseCommitSHA: i.gitWorktree.GetBaseCommitSHA(),
		}
	}

	if i.diffStats != nil {
		data.DiffStats = DiffStatsData{
			Added:   i.diffStats.Added,
			Removed: i.diffStats.Removed,
			Content: i.diffStats.Content,
		}
	}

	return data
}

// FromInstanceData creates a new Instance from serialized data. Paused
// instances are only marked started; every other instance is reattached to
// its existing multiplexer session via Start(false), and an error is
// returned if that session cannot be restored.
func FromInstanceData(data InstanceData, exec cmd.Executor, ptys pty.Factory) (*Instance, error) {
	instance := &Instance{
		Title:        data.Title,
		Path:         data.Path,
		Branch:       data.Branch,
		Status:       data.Status,
		Height:       data.Height,
		Width:        data.Width,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
		LastOpenedAt: data.LastOpenedAt,
		Program:          data.Program,
		AutoYes:          data.AutoYes,
		Prompt:           data.Prompt,
		Summary:          data.Summary,
		SummaryUpdatedAt: data.SummaryUpdatedAt,
		diffStats: &git.DiffStats{
			Added:   data.DiffStats.Added,
			Removed: data.DiffStats.Removed,
			Content: data.DiffStats.Content,
		},
	}

	if data.Worktree.WorktreePath != "" {
		instance.gitWorktree = git.NewGitWorktreeFromStorage(
			exec,
			data.Worktree.RepoPath,
			data.Worktree.WorktreePath,
			data.Worktree.SessionName,
			data.Worktree.BranchName,
			data.Worktree.BaseCommitSHA,
		)
	}

	if instance.Paused() {
		instance.started = true
		return instance, nil
	}

	if err := instance.Start(false, exec, ptys); err != nil {
		return nil, err
	}
	return instance, nil
}

// InstanceOptions are the operator-supplied parameters for a new instance.
type InstanceOptions struct {
	Title   string
	Path    string
	Program string
	AutoYes bool
	Prompt  string
}

func NewInstance(opts InstanceOptions) (*Instance, error) {
	t := time.Now()
	return &Instance{
		Title:     opts.Title,
		Status:    Ready,
		Path:      opts.Path,
		Program:   opts.Program,
		CreatedAt: t,
		UpdatedAt: t,
		AutoYes:   opts.AutoYes,
		Prompt:    opts.Prompt,
	}, nil
}

func (i *Instance) RepoName() (string, error) {
	if !i.started || i.gitWorktree == nil {
		return "", fmt.Errorf("cannot get repo name for instance that has not been started")
	}
	return i.gitWorktree.GetRepoName(), nil
}

func (i *Instance) SetStatus(status Status) {
	i.Status = status
	i.lastActivity = time.Now()
}

// Start sets the status to Running on success; it does not set Loading
// while it works. It rejects an empty title. On first start it creates
// and sets up a worktree, then starts a multiplexer session in the
// worktree. On restore (firstTimeSetup=false) it only reattaches the
// multiplexer session, using the worktree handle already present on i.
func (i *Instance) Start(firstTimeSetup bool, exec cmd.Executor, ptys pty.Factory) error {
	if i.Title == "" {
		return fmt.Errorf("instance title cannot be empty")
	}

	if firstTimeSetup {
		cfg := config.LoadConfig()
		gitWorktree, branchName, err := git.NewGitWorktree(exec, i.Path, i.Title, cfg)
		if err != nil {
			return fmt.Errorf("failed to create git worktree: %w", err)
		}
		i.gitWorktree = gitWorktree
		i.Branch = branchName
	}

	var session Multiplexer
	if i.session != nil {
		session = i.session
	} else {
		sessionName := i.Title
		if i.gitWorktree != nil {
			sessionName = i.gitWorktree.GetSessionName()
		}
		session = NewMultiplexer(sessionName, i.Program, exec, ptys)
	}
	i.session = session

	var setupErr error
	defer func() {
		if setupErr != nil {
			if cleanupErr := i.Kill(exec); cleanupErr != nil {
				setupErr = fmt.Errorf("%v (cleanup error: %v)", setupErr, cleanupErr)
			}
		} else {
			i.started = true
		}
	}()

	if !firstTimeSetup {
		if err := session.Restore(); err != nil {
			setupErr = fmt.Errorf("failed to restore existing session: %w", err)
			return setupErr
		}
	} else {
		if err := i.gitWorktree.Setup(); err != nil {
			setupErr = fmt.Errorf("failed to setup git worktree: %w", err)
			return setupErr
		}

		if err := i.session.Start(i.gitWorktree.GetWorktreePath()); err != nil {
			if cleanupErr := i.gitWorktree.Cleanup(); cleanupErr != nil {
				err = fmt.Errorf("%v (cleanup error: %v)", err, cleanupErr)
			}
			setupErr = fmt.Errorf("failed to start new session: %w", err)
			return setupErr
		}
	}

	i.SetStatus(Running)
	return nil
}

// Kill terminates the instance and cleans up all resources.
func (i *Instance) Kill(exec cmd.Executor) error {
	if !i.started {
		return nil
	}

	var errs []error

	if i.session != nil {
		if err := i.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close session: %w", err))
		}
	}
	if i.gitWorktree != nil {
		if err := i.gitWorktree.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("failed to cleanup git worktree: %w", err))
		}
	}

	return combineErrors(errs)
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msg := "multiple cleanup errors occurred:"
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return fmt.Errorf("%s", msg)
}

func (i *Instance) Preview() (string, error) {
	if !i.started || i.Status == Paused {
		return "", nil
	}
	return i.session.CapturePaneContent(false)
}

// PreviewFullHistory captures the entire pane output including scrollback.
func (i *Instance) PreviewFullHistory() (string, error) {
	if !i.started || i.Status == Paused {
		return "", nil
	}
	return i.session.CapturePaneContent(true)
}

func (i *Instance) HasUpdated() (bool, error) {
	if !i.started {
		return false, nil
	}
	return i.session.HasUpdated()
}

// Attach hands the operator's terminal to the session until detach.
func (i *Instance) Attach(stdin io.Reader, stdout io.Writer, pollSize func() (int, int)) error {
	if !i.started {
		return fmt.Errorf("cannot attach instance that has not been started")
	}
	now := time.Now()
	i.LastOpenedAt = &now
	return i.session.AttachInteractive(stdin, stdout, pollSize)
}

func (i *Instance) SetPreviewSize(width, height int) error {
	if !i.started || i.Status == Paused {
		return fmt.Errorf("cannot set preview size for instance that has not been started or is paused")
	}
	i.Width, i.Height = width, height
	return i.session.SetSize(uint16(width), uint16(height))
}

// GetGitWorktree returns the git worktree for the instance.
func (i *Instance) GetGitWorktree() (*git.GitWorktree, error) {
	if !i.started {
		return nil, fmt.Errorf("cannot get git worktree for instance that has not been started")
	}
	return i.gitWorktree, nil
}

func (i *Instance) Started() bool { return i.started }

// SetTitle sets the title of the instance. Returns an error if the instance
// has started: we can't change the title once it's been used for a session.
func (i *Instance) SetTitle(title string) error {
	if i.started {
		return fmt.Errorf("cannot change title of a started instance")
	}
	i.Title = title
	return nil
}

// Rename changes the display title of the instance. Unlike SetTitle, this
// can be called after the instance has started: it only changes the
// display name, the underlying session name and worktree path are fixed.
func (i *Instance) Rename(newTitle string) error {
	if newTitle == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(newTitle) > 32 {
		return fmt.Errorf("title cannot be longer than 32 characters")
	}
	i.Title = newTitle
	i.UpdatedAt = time.Now()
	return nil
}

func (i *Instance) Paused() bool { return i.Status == Paused }

// Pause commits any pending changes, removes the worktree (keeping the
// branch) and closes the multiplexer session.
func (i *Instance) Pause() error {
	if !i.started {
		return fmt.Errorf("cannot pause instance that has not been started")
	}
	if i.Status == Paused {
		return fmt.Errorf("instance is already paused")
	}

	var errs []error

	if dirty, err := i.gitWorktree.IsDirty(); err != nil {
		errs = append(errs, fmt.Errorf("failed to check if worktree is dirty: %w", err))
	} else if dirty {
		commitMsg := fmt.Sprintf("%supdate from %q on %s (paused)", config.NamespacePrefix, i.Title, time.Now().Format(time.RFC822))
		if err := i.gitWorktree.CommitChanges(commitMsg); err != nil {
			errs = append(errs, fmt.Errorf("failed to commit changes: %w", err))
			return combineErrors(errs)
		}
	}

	if i.session != nil {
		_ = i.session.Close()
		i.session = nil
	}

	if err := i.gitWorktree.Remove(); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove git worktree: %w", err))
		return combineErrors(errs)
	}
	if err := i.gitWorktree.Prune(); err != nil {
		errs = append(errs, fmt.Errorf("failed to prune git worktrees: %w", err))
		return combineErrors(errs)
	}

	if err := combineErrors(errs); err != nil {
		return err
	}

	i.SetStatus(Paused)
	return nil
}

// Resume recreates the worktree and restarts the session.
func (i *Instance) Resume(exec cmd.Executor, ptys pty.Factory) error {
	if !i.started {
		return fmt.Errorf("cannot resume instance that has not been started")
	}
	if i.Status != Paused {
		return fmt.Errorf("can only resume paused instances")
	}

	if checked, err := i.gitWorktree.IsBranchCheckedOut(); err != nil {
		return fmt.Errorf("failed to check if branch is checked out: %w", err)
	} else if checked {
		return fmt.Errorf("cannot resume: branch is checked out, please switch to a different branch")
	}

	if err := i.gitWorktree.Setup(); err != nil {
		return fmt.Errorf("failed to setup git worktree: %w", err)
	}
	i.gitWorktree.InvalidateDiffCache()

	session := NewMultiplexer(i.gitWorktree.GetSessionName(), i.Program, exec, ptys)
	i.session = session

	if err := session.Start(i.gitWorktree.GetWorktreePath()); err != nil {
		if cleanupErr := i.gitWorktree.Cleanup(); cleanupErr != nil {
			err = fmt.Errorf("%v (cleanup error: %v)", err, cleanupErr)
		}
		return fmt.Errorf("failed to start new session: %w", err)
	}

	i.SetStatus(Running)
	return nil
}

// UpdateDiffStats updates the cached git diff statistics for this instance.
func (i *Instance) UpdateDiffStats() error {
	if !i.started {
		i.diffStats = nil
		return nil
	}
	if i.Status == Paused {
		return nil
	}

	stats := i.gitWorktree.Diff()
	if stats.Error != nil {
		return fmt.Errorf("failed to get diff stats: %w", stats.Error)
	}
	i.diffStats = stats
	i.lastDiffUpdate = time.Now()
	return nil
}

// GetDiffStats returns the most recently cached diff stats, or nil.
func (i *Instance) GetDiffStats() *git.DiffStats { return i.diffStats }

// ShouldUpdateDiff reports whether the instance is due for a diff refresh.
// Rate limited to once per 30s, and only once 10s have passed since the
// last status change.
func (i *Instance) ShouldUpdateDiff() bool {
	if !i.started || i.Status == Paused {
		return false
	}
	now := time.Now()
	if !i.lastDiffUpdate.IsZero() && now.Sub(i.lastDiffUpdate) < 30*time.Second {
		return false
	}
	if !i.lastActivity.IsZero() && now.Sub(i.lastActivity) < 10*time.Second {
		return false
	}
	return true
}

// SendPrompt types text into the session and submits it.
func (i *Instance) SendPrompt(prompt string) error {
	if !i.started {
		return fmt.Errorf("instance not started")
	}
	if i.session == nil {
		return fmt.Errorf("session not initialized")
	}
	if err := i.session.SendKeys(prompt); err != nil {
		return fmt.Errorf("error sending keys to session: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := i.session.SendKeys("Enter"); err != nil {
		return fmt.Errorf("error tapping enter: %w", err)
	}
	return nil
}

// SetSession sets the multiplexer session for testing purposes.
func (i *Instance) SetSession(session Multiplexer) { i.session = session }

// MarkAsStartedForTesting marks the instance as started for testing
// purposes, bypassing the real session startup.
func (i *Instance) MarkAsStartedForTesting() { i.started = true }

// SendKeys sends keys to the session.
func (i *Instance) SendKeys(keys string) error {
	if !i.started || i.Status == Paused {
		return fmt.Errorf("cannot send keys to instance that has not been started or is paused")
	}
	return i.session.SendKeys(keys)
}
