package app

import (
	"league/config"
	"league/log"
	"league/session"
	"league/ui"
	"league/ui/overlay"

	tea "github.com/charmbracelet/bubbletea"
)

// helpType is a dismissible help screen. flagBit is the config.Flag* bit
// tracking whether it has been seen; zero means "always show" (the general
// help screen, shown on demand via '?').
type helpType interface {
	Title() string
	Body() string
	flagBit() uint32
}

type helpTypeGeneral struct{}

func (helpTypeGeneral) Title() string { return "Help" }
func (helpTypeGeneral) Body() string {
	return "↑/↓ or j/k: navigate instances\n" +
		"n: new instance    N: new instance with prompt\n" +
		"enter/a: attach    tab: toggle preview/diff\n" +
		"K/J: scroll preview\n" +
		"D: kill instance    P: push branch\n" +
		"p: pause and checkout (resume when paused)\n" +
		"r: rename instance    ctrl+↑/↓: move instance\n" +
		"q or ctrl+c: quit"
}
func (helpTypeGeneral) flagBit() uint32 { return 0 }

type helpTypeInstanceCheckout struct{}

func (helpTypeInstanceCheckout) Title() string { return "Checking out" }
func (helpTypeInstanceCheckout) Body() string {
	return "This pauses the instance: pending changes are committed to its\n" +
		"branch and the worktree is removed, so you can check the branch out\n" +
		"in the original repo to inspect or run it directly.\n\n" +
		"Press p to resume the instance once you're done."
}
func (helpTypeInstanceCheckout) flagBit() uint32 { return config.FlagCheckoutHelpSeen }

type helpTypeInstanceAttach struct{}

func (helpTypeInstanceAttach) Title() string { return "Attaching" }
func (helpTypeInstanceAttach) Body() string {
	return "You're attaching to the instance's terminal session.\n\n" +
		"Press ctrl+q to detach and return to the instance list."
}
func (helpTypeInstanceAttach) flagBit() uint32 { return config.FlagAttachHelpSeen }

// helpTypeInstanceStart is shown once a newly created instance finishes its
// first start.
type helpTypeInstanceStart struct{}

func (helpTypeInstanceStart) Title() string { return "Instance started" }
func (helpTypeInstanceStart) Body() string {
	return "The instance is running in the background. Press enter to attach,\n" +
		"or keep browsing - its preview updates automatically."
}
func (helpTypeInstanceStart) flagBit() uint32 { return config.FlagHelpSeen }

// helpStart picks the help screen to show right after an instance finishes
// starting. instance is unused today but kept so future start-specific help
// (e.g. program-specific tips) has somewhere to branch from.
func helpStart(instance *session.Instance) helpType {
	return helpTypeInstanceStart{}
}

// showHelpScreen displays t as a text overlay, unless its flag bit has
// already been marked seen, in which case onDismiss runs immediately. When
// the user dismisses a shown screen, onDismiss runs and (for screens with a
// non-zero flag bit) the bit is persisted so it won't show again.
func (m *home) showHelpScreen(t helpType, onDismiss func()) (tea.Model, tea.Cmd) {
	bit := t.flagBit()
	if bit != 0 && m.appState.GetHelpScreensSeen()&bit != 0 {
		if onDismiss != nil {
			onDismiss()
		}
		return m, nil
	}

	m.helpOnDismiss = onDismiss
	m.helpFlagBit = bit
	m.textOverlay = overlay.NewTextOverlay(t.Title(), t.Body())
	m.state = stateHelp
	return m, nil
}

// handleHelpState processes key input while a help screen is displayed.
// Any key dismisses it.
func (m *home) handleHelpState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpFlagBit != 0 {
		seen := m.appState.GetHelpScreensSeen() | m.helpFlagBit
		if err := m.appState.SetHelpScreensSeen(seen); err != nil {
			log.ErrorLog.Printf("failed to persist help screens seen: %v", err)
		}
	}

	m.textOverlay = nil
	m.state = stateDefault
	m.menu.SetState(ui.StateDefault)

	cb := m.helpOnDismiss
	m.helpOnDismiss = nil
	m.helpFlagBit = 0
	if cb != nil {
		cb()
	}
	return m, nil
}
