package session

import (
	"bytes"
	"context"
	"fmt"
	"league/log"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// SummaryRefreshInterval is how often to check for instances needing summary updates
	SummaryRefreshInterval = 5 * time.Second
	// SummaryPerInstanceCooldown is the minimum time between updates for a single instance
	SummaryPerInstanceCooldown = 60 * time.Second
	// SummaryMaxLength is the maximum length of a summary
	SummaryMaxLength = 80
	// SummaryTimeout is the timeout for generating a summary
	SummaryTimeout = 30 * time.Second
)

// Summarizer handles generating AI-powered summaries for instances
type Summarizer struct {
	mu sync.Mutex
	// lastUpdateIndex tracks which instance was last updated for staggered refresh
	lastUpdateIndex int
}

// NewSummarizer creates a new Summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// UpdateNextSummary updates the summary for the next instance in the rotation
// Returns the instance that was updated, or nil if no update was performed
// Each instance is only updated at most once per SummaryPerInstanceCooldown
func (s *Summarizer) UpdateNextSummary(instances []*Instance) *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(instances) == 0 {
		return nil
	}

	now := time.Now()

	// Find the next eligible instance (not paused, started, and not recently updated)
	startIdx := s.lastUpdateIndex
	for i := 0; i < len(instances); i++ {
		idx := (startIdx + i) % len(instances)
		instance := instances[idx]

		// Skip paused or not-started instances
		if !instance.Started() || instance.Paused() {
			continue
		}

		// Skip if this instance was updated within the cooldown period
		if !instance.SummaryUpdatedAt.IsZero() && now.Sub(instance.SummaryUpdatedAt) < SummaryPerInstanceCooldown {
			continue
		}

		// Update the index for next time
		s.lastUpdateIndex = (idx + 1) % len(instances)

		// Generate summary for this instance
		if err := s.generateSummary(instance); err != nil {
			log.WarningLog.Printf("Failed to generate summary for %s: %v", instance.Title, err)
			return nil
		}

		return instance
	}

	return nil
}

// generateSummary generates a summary for the given instance using Claude CLI
func (s *Summarizer) generateSummary(instance *Instance) error {
	// Get the current terminal content
	content, err := instance.Preview()
	if err != nil {
		return fmt.Errorf("failed to get preview: %w", err)
	}

	if content == "" {
		instance.Summary = "No output yet"
		instance.SummaryUpdatedAt = time.Now()
		return nil
	}

	// Truncate content if it's too long (keep last part which is more relevant)
	const maxContentLen = 4000
	if len(content) > maxContentLen {
		content = content[len(content)-maxContentLen:]
	}

	// Only Claude supports non-interactive summarization via --print; every
	// other assistant falls back to the local content heuristic.
	if !strings.Contains(instance.Program, "claude") {
		instance.Summary = extractSummaryFromContent(content)
		instance.SummaryUpdatedAt = time.Now()
		return nil
	}

	prompt := fmt.Sprintf(`Summarize what's happening in this %s terminal session in 10 words or less. Focus on the current action or state. Be concise. Only output the summary, nothing else.

Terminal output:
%s`, instance.Program, content)

	ctx, cancel := context.WithTimeout(context.Background(), SummaryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "claude", "--print", prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Fall back to the heuristic rather than leaving no summary at all.
		instance.Summary = extractSummaryFromContent(content)
		instance.SummaryUpdatedAt = time.Now()
		return nil
	}

	summary := strings.TrimSpace(stdout.String())
	summary = strings.Trim(summary, "\"'")
	instance.Summary = truncateSummary(summary)
	instance.SummaryUpdatedAt = time.Now()

	return nil
}

var (
	callingPattern = regexp.MustCompile(`Calling (\w+)\(([^)]*)\)`)
	filePattern    = regexp.MustCompile(`\b[\w-]+\.[a-zA-Z]{1,4}\b`)
)

// extractSummaryFromContent derives a cheap heuristic summary from raw pane
// output without spawning an assistant CLI, used when a CLI-backed
// generateSummary call isn't available or desirable (e.g. tests, or a
// program other than claude that doesn't support --print).
func extractSummaryFromContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Active"
	}

	lower := strings.ToLower(content)
	hasFail := strings.Contains(content, "FAIL:") || strings.Contains(lower, "failing")
	hasError := strings.Contains(lower, "error")

	if hasFail {
		return truncateSummary("Error detected - Tests failing")
	}
	if strings.Contains(content, "PASS:") {
		return truncateSummary("Tests passing")
	}
	if m := callingPattern.FindStringSubmatch(content); m != nil {
		return truncateSummary(fmt.Sprintf("%s - %s", m[1], m[2]))
	}
	if hasError {
		return truncateSummary("Error detected")
	}
	if strings.Contains(content, "git ") {
		return truncateSummary("Git operations")
	}
	if strings.Contains(content, "Building") {
		return truncateSummary("Building")
	}
	if strings.Contains(content, "Thinking") || strings.Contains(content, "Analyzing") {
		return truncateSummary("Processing")
	}
	if files := filePattern.FindAllString(content, -1); len(files) > 0 {
		return truncateSummary(strings.Join(dedupeStrings(files), ", "))
	}
	if strings.Contains(content, "Ready for input") {
		return truncateSummary("Waiting for input")
	}
	if strings.Contains(content, "completed successfully") {
		return truncateSummary("Completed")
	}

	return "Active"
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func truncateSummary(s string) string {
	if len(s) > SummaryMaxLength {
		return s[:SummaryMaxLength-3] + "..."
	}
	return s
}

// GetSummary returns the summary for an instance, or a placeholder if none exists
func GetSummary(instance *Instance) string {
	if instance == nil {
		return ""
	}
	if instance.Summary == "" {
		return ""
	}
	return instance.Summary
}
