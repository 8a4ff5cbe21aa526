package tui_test

import (
	"testing"

	"bepinstall/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestKeyMap_VimMode(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsLeft(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}))
	assert.True(t, km.IsRight(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}))
	assert.True(t, km.IsCancel(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
	assert.True(t, km.IsHelp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}))
}

func TestKeyMap_StandardMode(t *testing.T) {
	km := tui.NewKeyMap("standard")

	assert.True(t, km.IsLeft(tea.KeyMsg{Type: tea.KeyLeft}))
	assert.True(t, km.IsRight(tea.KeyMsg{Type: tea.KeyRight}))

	// But not vim keys for navigation
	assert.False(t, km.IsLeft(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}))
	assert.False(t, km.IsRight(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}))
}

func TestKeyMap_TabKeysWorkInBothModes(t *testing.T) {
	for _, mode := range []string{"vim", "standard"} {
		km := tui.NewKeyMap(mode)
		assert.True(t, km.IsRight(tea.KeyMsg{Type: tea.KeyTab}), mode)
		assert.True(t, km.IsLeft(tea.KeyMsg{Type: tea.KeyShiftTab}), mode)
	}
}

func TestKeyMap_ForceQuit(t *testing.T) {
	km := tui.NewKeyMap("vim")
	assert.True(t, km.IsForceQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.False(t, km.IsForceQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
}

func TestKeyMap_Help(t *testing.T) {
	assert.Contains(t, tui.NewKeyMap("vim").NavigationHelp(), "j/k")
	assert.Contains(t, tui.NewKeyMap("standard").NavigationHelp(), "↑/↓")
	assert.Contains(t, tui.NewKeyMap("vim").FullHelp(), "esc")
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	km := tui.NewKeyMap("")
	assert.Equal(t, "vim", km.Mode())
	assert.True(t, km.IsLeft(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}))
}
