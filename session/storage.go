package session

import (
	"encoding/json"
	"fmt"
	"time"

	"league/cmd"
	"league/config"
	"league/log"
	"league/pty"
)

// InstanceData is the serializable form of an Instance.
type InstanceData struct {
	Title        string     `json:"title"`
	Path         string     `json:"path"`
	Branch       string     `json:"branch"`
	Status       Status     `json:"status"`
	Height       int        `json:"height"`
	Width        int        `json:"width"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastOpenedAt *time.Time `json:"last_opened_at,omitempty"`
	AutoYes      bool       `json:"auto_yes"`
	Prompt       string     `json:"prompt,omitempty"`

	Summary          string    `json:"summary,omitempty"`
	SummaryUpdatedAt time.Time `json:"summary_updated_at,omitempty"`

	Program   string          `json:"program"`
	Worktree  GitWorktreeData `json:"worktree"`
	DiffStats DiffStatsData   `json:"diff_stats"`
}

// GitWorktreeData is the serializable form of a GitWorktree.
type GitWorktreeData struct {
	RepoPath      string `json:"repo_path"`
	WorktreePath  string `json:"worktree_path"`
	SessionName   string `json:"session_name"`
	BranchName    string `json:"branch_name"`
	BaseCommitSHA string `json:"base_commit_sha"`
}

// DiffStatsData is the serializable form of a DiffStats.
type DiffStatsData struct {
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Content string `json:"content"`
}

// Storage handles saving and loading instances via the state interface.
type Storage struct {
	state config.InstanceStorage
	exec  cmd.Executor
	ptys  pty.Factory
}

// NewStorage creates a new Storage. exec and ptys are used to reattach
// multiplexer sessions when instances are loaded from disk.
func NewStorage(state config.InstanceStorage, exec cmd.Executor, ptys pty.Factory) (*Storage, error) {
	return &Storage{state: state, exec: exec, ptys: ptys}, nil
}

// SaveInstances saves the list of instances to disk, deduplicating by title
// and skipping instances that never reached Running.
func (s *Storage) SaveInstances(instances []*Instance) error {
	data := make([]InstanceData, 0)
	seenTitles := make(map[string]bool)
	for _, instance := range instances {
		if !instance.Started() {
			continue
		}
		instanceData := instance.ToInstanceData()
		if seenTitles[instanceData.Title] {
			log.WarningLog.Printf("skipping duplicate instance when saving: %s", instanceData.Title)
			continue
		}
		seenTitles[instanceData.Title] = true
		data = append(data, instanceData)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal instances: %w", err)
	}

	return s.state.SaveInstances(jsonData)
}

// LoadInstances loads the list of instances from disk. Invalid instances
// (e.g. ones whose multiplexer session no longer exists) are filtered out
// and the cleaned state is saved back to disk.
func (s *Storage) LoadInstances() ([]*Instance, error) {
	jsonData := s.state.GetInstances()

	var instancesData []InstanceData
	if err := json.Unmarshal(jsonData, &instancesData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instances: %w", err)
	}

	instances := make([]*Instance, 0, len(instancesData))
	skippedCount := 0
	for _, data := range instancesData {
		instance, err := FromInstanceData(data, s.exec, s.ptys)
		if err != nil {
			log.WarningLog.Printf("skipping invalid instance %q: %v", data.Title, err)
			skippedCount++
			continue
		}
		instances = append(instances, instance)
	}

	if skippedCount > 0 {
		log.InfoLog.Printf("removed %d invalid instance(s) from state", skippedCount)
		if err := s.SaveInstances(instances); err != nil {
			log.WarningLog.Printf("failed to save cleaned state: %v", err)
		}
	}

	return instances, nil
}

// DeleteInstance removes an instance from storage.
func (s *Storage) DeleteInstance(title string) error {
	instances, err := s.LoadInstances()
	if err != nil {
		return fmt.Errorf("failed to load instances: %w", err)
	}

	found := false
	newInstances := make([]*Instance, 0)
	for _, instance := range instances {
		if instance.Title != title {
			newInstances = append(newInstances, instance)
		} else {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("instance not found: %s", title)
	}

	return s.SaveInstances(newInstances)
}

// UpdateInstance updates an existing instance in storage.
func (s *Storage) UpdateInstance(instance *Instance) error {
	instances, err := s.LoadInstances()
	if err != nil {
		return fmt.Errorf("failed to load instances: %w", err)
	}

	found := false
	for i, existing := range instances {
		if existing.Title == instance.Title {
			instances[i] = instance
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("instance not found: %s", instance.Title)
	}

	return s.SaveInstances(instances)
}

// DeleteAllInstances removes all stored instances.
func (s *Storage) DeleteAllInstances() error {
	return s.state.DeleteAllInstances()
}

// StateSyncer is an optional interface for states that support sync from disk.
type StateSyncer interface {
	RefreshFromDisk() (bool, error)
}

// SyncFromDisk checks if the state file has been modified by another
// process and reloads instances if so. The caller is responsible for
// merging the result with any in-memory instances.
func (s *Storage) SyncFromDisk() ([]*Instance, bool, error) {
	syncer, ok := s.state.(StateSyncer)
	if !ok {
		return nil, false, nil
	}

	refreshed, err := syncer.RefreshFromDisk()
	if err != nil {
		return nil, false, fmt.Errorf("failed to refresh state from disk: %w", err)
	}
	if !refreshed {
		return nil, false, nil
	}

	log.InfoLog.Printf("state file changed, reloading instances from disk")
	instances, err := s.LoadInstances()
	if err != nil {
		return nil, true, fmt.Errorf("failed to load instances after refresh: %w", err)
	}

	return instances, true, nil
}
