package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the app-level bindings. List movement inside a view is
// handled by the view itself.
type KeyMap struct {
	mode string

	Prev      key.Binding
	Next      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

// NewKeyMap builds the bindings for "vim" (the default) or "standard" mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}

	prev := []string{"left", "shift+tab"}
	next := []string{"right", "tab"}
	if mode == "vim" {
		prev = append(prev, "h")
		next = append(next, "l")
	}

	return &KeyMap{
		mode:      mode,
		Prev:      key.NewBinding(key.WithKeys(prev...), key.WithHelp(helpKeys(mode, "h", "←"), "previous tab")),
		Next:      key.NewBinding(key.WithKeys(next...), key.WithHelp(helpKeys(mode, "l", "→"), "next tab")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp(helpKeys(mode, "esc", "Esc"), "back to actions")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp(helpKeys(mode, "ctrl+c", "Ctrl+C"), "cancel a running install and quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	}
}

func helpKeys(mode, vim, standard string) string {
	if mode == "vim" {
		return vim
	}
	return standard
}

// Mode returns the keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

func (k *KeyMap) IsLeft(msg tea.KeyMsg) bool      { return key.Matches(msg, k.Prev) }
func (k *KeyMap) IsRight(msg tea.KeyMsg) bool     { return key.Matches(msg, k.Next) }
func (k *KeyMap) IsCancel(msg tea.KeyMsg) bool    { return key.Matches(msg, k.Back) }
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool      { return key.Matches(msg, k.Quit) }
func (k *KeyMap) IsForceQuit(msg tea.KeyMsg) bool { return key.Matches(msg, k.ForceQuit) }
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool      { return key.Matches(msg, k.Help) }

// NavigationHelp is the one-line footer hint
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  h/l: tabs"
	}
	return "↑/↓: navigate  ←/→: tabs"
}

// FullHelp renders the help screen
func (k *KeyMap) FullHelp() string {
	move := [][2]string{
		{helpKeys(k.mode, "j/k", "↑/↓"), "move down/up"},
		{helpKeys(k.mode, "g/G", "Home/End"), "first/last item"},
		{"1-3", "jump to tab"},
	}
	for _, b := range []key.Binding{k.Prev, k.Next} {
		move = append(move, [2]string{b.Help().Key, b.Help().Desc})
	}

	act := [][2]string{{helpKeys(k.mode, "enter", "Enter"), "Run the selected action"}}
	for _, b := range []key.Binding{k.Back, k.Help, k.Quit, k.ForceQuit} {
		act = append(act, [2]string{b.Help().Key, b.Help().Desc})
	}

	var b strings.Builder
	section := func(title string, rows [][2]string) {
		b.WriteString(title + ":\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %-9s %s\n", r[0], r[1])
		}
	}
	section("Navigation", move)
	b.WriteString("\n")
	section("Actions", act)
	return strings.TrimRight(b.String(), "\n")
}
