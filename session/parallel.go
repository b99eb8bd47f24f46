package session

import (
	"runtime"
	"sync"
)

// UpdateResult contains the result of updating a single instance.
type UpdateResult struct {
	Instance *Instance
	Updated  bool
	Error    error
}

// ParallelUpdate polls HasUpdated on all started, non-paused instances
// concurrently, limiting concurrency to the number of CPUs, and returns the
// results in the same order as instances. This is the poll half of the
// background pipeline: the Controller sets each polled instance to Running
// when its pane changed and to Ready otherwise, and logs poll errors.
func ParallelUpdate(instances []*Instance) []UpdateResult {
	results := make([]UpdateResult, len(instances))
	var wg sync.WaitGroup

	sem := make(chan struct{}, runtime.NumCPU())

	for i, instance := range instances {
		if instance == nil || !instance.Started() || instance.Paused() {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, inst *Instance) {
			defer wg.Done()
			defer func() { <-sem }()

			updated, err := inst.HasUpdated()
			results[idx] = UpdateResult{Instance: inst, Updated: updated, Error: err}
		}(i, instance)
	}

	wg.Wait()
	return results
}

// BackgroundUpdateDiffStats spawns a goroutine per instance that is due for
// a diff refresh (see Instance.ShouldUpdateDiff). Non-blocking: returns
// immediately, leaving each instance's diffStats to update in place.
func BackgroundUpdateDiffStats(instances []*Instance) {
	for _, instance := range instances {
		if instance == nil || !instance.ShouldUpdateDiff() {
			continue
		}

		go func(inst *Instance) {
			_ = inst.UpdateDiffStats()
		}(instance)
	}
}
