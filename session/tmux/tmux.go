// Package tmux implements the Multiplexer Session (C4): a single named
// tmux session wrapping an assistant process, reached through the
// injected Command Executor and PTY Factory. Grounded line-for-line on
// _examples/original_source/src/session/tmux/mod.rs (itself tmux, unlike
// the teacher's zellij migration), with the PTY-reader/content-cache
// shape and trust-prompt polling idiom borrowed from the teacher's
// session/zellij/zellij.go.
package tmux

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"league/cmd"
	"league/log"
	"league/pty"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Prefix namespaces every session this tool creates so cleanup never
// touches sessions it doesn't own.
const Prefix = "league_"

// SanitizeName derives a tmux session name from an operator-chosen title:
// non-alphanumeric, non-hyphen characters become underscores, consecutive
// underscores collapse, trailing underscores are trimmed, and the result
// is namespaced. Matches spec.md §4.4 and testable-property scenario 7.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevUnderscore := false
	for _, c := range name {
		var out rune
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			out = c
		default:
			out = '_'
		}
		if out == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(out)
	}
	trimmed := strings.TrimRight(b.String(), "_")
	return Prefix + trimmed
}

// ErrSessionNotFound is returned by Restore when has-session reports the
// session is gone. Callers do not treat it specially: the instance being
// restored fails to load and is dropped from storage, rather than being
// kept as Ready.
var ErrSessionNotFound = fmt.Errorf("tmux session not found")

// trustPrompt describes a one-shot first-launch prompt for a given program.
type trustPrompt struct {
	match   string
	keys    []string
	timeout time.Duration
}

var trustPrompts = map[string]trustPrompt{
	"claude": {match: "Do you trust the files in this folder?", keys: []string{"Enter"}, timeout: 30 * time.Second},
	"aider":  {match: "Open documentation url", keys: []string{"d", "Enter"}, timeout: 45 * time.Second},
	"gemini": {match: "Open documentation url", keys: []string{"d", "Enter"}, timeout: 45 * time.Second},
}

// attentionStrings are substrings of a captured pane that indicate the
// assistant is blocked on operator confirmation.
var attentionStrings = map[string][]string{
	"claude": {"No, and tell Claude what to do differently"},
	"aider":  {"(Y)es/(N)o/(D)on't ask again"},
	"gemini": {"Yes, allow once"},
}

func hasAttentionPrompt(content, program string) bool {
	if program == "amp" {
		return strings.Contains(content, "Allow") && strings.Contains(content, "Deny")
	}
	for _, s := range attentionStrings[program] {
		if strings.Contains(content, s) {
			return true
		}
	}
	return false
}

// Session wraps a single named tmux session.
type Session struct {
	name    string // sanitized, namespaced
	program string

	exec cmd.Executor
	ptys pty.Factory

	ptmx       *os.File
	statusHash [sha256.Size]byte
	width      uint16
	height     uint16

	mu sync.Mutex
}

// New constructs a Session wrapper around title, not yet started.
func New(title, program string, exec cmd.Executor, ptys pty.Factory) *Session {
	return &Session{
		name:    SanitizeName(title),
		program: program,
		exec:    exec,
		ptys:    ptys,
	}
}

func (s *Session) Name() string { return s.name }

func (s *Session) hasSession() bool {
	return s.exec.Run("tmux", "has-session", "-t", s.name) == nil
}

// Start creates a detached tmux session running program in workDir, then
// opens a persistent monitoring PTY attached to it, and runs the
// trust-prompt handler. If a session of this name already exists it is
// killed first.
func (s *Session) Start(workDir string) error {
	if s.hasSession() {
		_ = s.exec.Run("tmux", "kill-session", "-t", s.name)
	}

	// The first PTY only exists to force tmux to materialize the session;
	// it's dropped immediately after.
	createCmd := exec.Command("tmux", "new-session", "-d", "-s", s.name, "-c", workDir, s.program)
	creator, err := s.ptys.Start(createCmd, pty.Size{Rows: s.height, Cols: s.width})
	if err != nil {
		return fmt.Errorf("failed to start tmux session: %w", err)
	}
	_ = pty.Close(creator)

	if err := s.openMonitorPTY(); err != nil {
		return err
	}

	s.handleTrustPrompt()
	return nil
}

// Restore reattaches to an already-running session, used on controller
// startup to reconnect to sessions persisted across restarts.
func (s *Session) Restore() error {
	if !s.hasSession() {
		return ErrSessionNotFound
	}
	return s.openMonitorPTY()
}

func (s *Session) openMonitorPTY() error {
	attachCmd := exec.Command("tmux", "attach-session", "-t", s.name)
	master, err := s.ptys.Start(attachCmd, pty.Size{Rows: s.height, Cols: s.width})
	if err != nil {
		return fmt.Errorf("failed to attach tmux session: %w", err)
	}
	s.mu.Lock()
	s.ptmx = master
	s.mu.Unlock()
	return nil
}

// handleTrustPrompt polls the captured pane for the program's trust prompt
// with exponential backoff (100ms x1.2, capped at 1s) until its timeout.
// Timing out is not an error: the assistant may not show a prompt at all.
func (s *Session) handleTrustPrompt() {
	prompt, ok := trustPrompts[s.program]
	if !ok {
		return
	}

	deadline := time.Now().Add(prompt.timeout)
	backoff := 100 * time.Millisecond
	for time.Now().Before(deadline) {
		content, err := s.CapturePaneContent(false)
		if err == nil && strings.Contains(content, prompt.match) {
			for _, key := range prompt.keys {
				_ = s.SendKeys(key)
			}
			return
		}
		time.Sleep(backoff)
		backoff = time.Duration(float64(backoff) * 1.2)
		if backoff > time.Second {
			backoff = time.Second
		}
	}
}

// CapturePaneContent invokes `tmux capture-pane -p -e -J`, adding `-S -`
// when fullHistory requests scrollback too.
func (s *Session) CapturePaneContent(fullHistory bool) (string, error) {
	args := []string{"capture-pane", "-t", s.name, "-p", "-e", "-J"}
	if fullHistory {
		args = append(args, "-S", "-")
	}
	return s.exec.Output("tmux", args...)
}

// HasUpdated reports whether the pane content changed since the last call,
// or whether it shows the assistant's attention/confirmation prompt.
func (s *Session) HasUpdated() (bool, error) {
	content, err := s.CapturePaneContent(false)
	if err != nil {
		return false, err
	}

	hash := sha256.Sum256([]byte(content))
	changed := hash != s.statusHash
	s.statusHash = hash

	return changed || hasAttentionPrompt(content, s.program), nil
}

// SendKeys passes keys through to `tmux send-keys`, where keys is a single
// literal: a tmux key name like "Enter" or a bare character.
func (s *Session) SendKeys(keys string) error {
	return s.exec.Run("tmux", "send-keys", "-t", s.name, keys)
}

// Detach drops the current monitoring PTY and opens a fresh one, without
// touching the underlying tmux session.
func (s *Session) Detach() {
	s.mu.Lock()
	old := s.ptmx
	s.ptmx = nil
	s.mu.Unlock()
	_ = pty.Close(old)

	if err := s.openMonitorPTY(); err != nil {
		log.WarningLog.Printf("tmux: failed to reattach monitoring pty for %s: %v", s.name, err)
	}
}

// Close drops the PTY and kills the tmux session outright.
func (s *Session) Close() error {
	s.mu.Lock()
	old := s.ptmx
	s.ptmx = nil
	s.mu.Unlock()
	_ = pty.Close(old)

	return s.exec.Run("tmux", "kill-session", "-t", s.name)
}

// SetSize resizes the tmux window.
func (s *Session) SetSize(width, height uint16) error {
	s.width, s.height = width, height
	return s.exec.Run("tmux", "resize-window", "-t", s.name, "-x", fmt.Sprint(width), "-y", fmt.Sprint(height))
}

// AttachInteractive hands the operator's terminal to the session until
// Ctrl-Q (0x11) is read from stdin. The caller (the Controller, per
// spec.md §5) is responsible for the raw-mode/alternate-screen choreography
// around this call; AttachInteractive itself only manages the PTY<->stdio
// copy and the size-monitor loop.
func (s *Session) AttachInteractive(stdin io.Reader, stdout io.Writer, pollSize func() (width, height int)) error {
	s.mu.Lock()
	master := s.ptmx
	s.mu.Unlock()
	if master == nil {
		if err := s.openMonitorPTY(); err != nil {
			return err
		}
		s.mu.Lock()
		master = s.ptmx
		s.mu.Unlock()
	}

	detachCh := make(chan struct{}, 1)
	stopSizeMonitor := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdout, master)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.forwardStdin(stdin, master, detachCh)
	}()

	if pollSize != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.monitorSize(pollSize, stopSizeMonitor)
		}()
	}

	<-detachCh
	close(stopSizeMonitor)
	s.Detach()
	return nil
}

// forwardStdin copies stdin to the PTY master, dropping the first 50ms of
// input to swallow terminal-init reply sequences, and watches for the
// single-byte Ctrl-Q (0x11) detach sentinel.
func (s *Session) forwardStdin(stdin io.Reader, master io.Writer, detachCh chan<- struct{}) {
	const detachByte = 0x11
	swallowUntil := time.Now().Add(50 * time.Millisecond)

	buf := make([]byte, 4096)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			if time.Now().Before(swallowUntil) {
				// drop terminal-init replies
			} else if idx := bytes.IndexByte(buf[:n], detachByte); idx >= 0 {
				if idx > 0 {
					_, _ = master.Write(buf[:idx])
				}
				select {
				case detachCh <- struct{}{}:
				default:
				}
				return
			} else {
				_, _ = master.Write(buf[:n])
			}
		}
		if err != nil {
			select {
			case detachCh <- struct{}{}:
			default:
			}
			return
		}
	}
}

// monitorSize polls the host terminal size every 200ms and pushes a resize
// to tmux when it changes, until stop is closed.
func (s *Session) monitorSize(pollSize func() (int, int), stop <-chan struct{}) {
	lastW, lastH := -1, -1
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w, h := pollSize()
			if w != lastW || h != lastH {
				if err := s.SetSize(uint16(w), uint16(h)); err != nil {
					log.WarningLog.Printf("tmux: resize failed: %v", err)
				}
				lastW, lastH = w, h
			}
		}
	}
}

// CleanupAll kills every tmux session whose name carries the league
// namespace prefix. A server that isn't running is treated as success.
func CleanupAll(exec cmd.Executor) error {
	out, err := exec.Output("tmux", "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if strings.Contains(err.Error(), "no server running") || strings.Contains(err.Error(), "error connecting") {
			return nil
		}
		return fmt.Errorf("failed to list tmux sessions: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		name := strings.TrimSpace(line)
		if strings.HasPrefix(name, Prefix) {
			if err := exec.Run("tmux", "kill-session", "-t", name); err != nil {
				log.WarningLog.Printf("tmux: failed to kill session %s: %v", name, err)
			}
		}
	}
	return nil
}
