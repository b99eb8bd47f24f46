package keys

import "github.com/charmbracelet/bubbles/key"

// KeyName identifies a single league keybinding, independent of which
// physical key(s) trigger it.
type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyShiftUp
	KeyShiftDown
	KeyMoveUp
	KeyMoveDown
	KeyEnter
	KeyNew
	KeyPrompt
	KeyDelete
	KeyKill
	KeyResume
	KeyCheckout
	KeyPush
	KeyRename
	KeyTab
	KeyFilterLeft
	KeyFilterRight
	KeyHelp
	KeyQuit
	KeySubmitName
)

// GlobalkeyBindings is the canonical bubbles/key binding for every KeyName,
// used both for input matching (via GlobalKeyStringsMap) and for rendering
// help text in the menu and help overlay.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyLeft: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	KeyRight: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	KeyShiftUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "scroll up"),
	),
	KeyShiftDown: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "scroll down"),
	),
	KeyMoveUp: key.NewBinding(
		key.WithKeys("ctrl+up"),
		key.WithHelp("ctrl+↑", "move up"),
	),
	KeyMoveDown: key.NewBinding(
		key.WithKeys("ctrl+down"),
		key.WithHelp("ctrl+↓", "move down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter", "a"),
		key.WithHelp("enter/a", "attach"),
	),
	KeyNew: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	KeyPrompt: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "new with prompt"),
	),
	KeyDelete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	KeyKill: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "kill"),
	),
	KeyResume: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "resume"),
	),
	KeyCheckout: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause+checkout"),
	),
	KeyPush: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "push"),
	),
	KeyRename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "preview/diff"),
	),
	KeyFilterLeft: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "left"),
	),
	KeyFilterRight: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "right"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	KeySubmitName: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
}

// GlobalKeyStringsMap maps a raw key message string (tea.KeyMsg.String())
// to the KeyName it triggers in the default (non-text-input) state.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":       KeyUp,
	"k":        KeyUp,
	"down":     KeyDown,
	"j":        KeyDown,
	"left":     KeyLeft,
	"h":        KeyLeft,
	"right":    KeyRight,
	"l":        KeyRight,
	"K":        KeyShiftUp,
	"J":        KeyShiftDown,
	"ctrl+up":   KeyMoveUp,
	"ctrl+down": KeyMoveDown,
	"enter":    KeyEnter,
	"a":        KeyEnter,
	"n":        KeyNew,
	"N":        KeyPrompt,
	"d":        KeyDelete,
	"D":        KeyKill,
	"p":        KeyCheckout, // retargeted to KeyResume at dispatch when the instance is paused
	"P":        KeyPush,
	"r":        KeyRename,
	"tab":      KeyTab,
	"?":        KeyHelp,
	"q":        KeyQuit,
	"ctrl+c":   KeyQuit,
}
