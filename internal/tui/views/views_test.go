package views_test

import (
	"fmt"
	"testing"
	"time"

	"bepinstall/internal/domain"
	"bepinstall/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActions_Navigate(t *testing.T) {
	model := views.NewActions("Valheim", "/games/Valheim", views.DefaultActions())
	assert.Equal(t, 0, model.Selected())

	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.(views.Actions).Selected())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, len(views.DefaultActions())-1, m.(views.Actions).Selected(), "wraps to the last action")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, m.(views.Actions).Selected())
}

func TestActions_Select(t *testing.T) {
	model := views.NewActions("Valheim", "/games/Valheim", views.DefaultActions())
	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(views.ActionSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, domain.RunUninstall, msg.Action.Kind)
	assert.False(t, msg.Action.Tracked)
}

func TestActions_Disabled(t *testing.T) {
	model := views.NewActions("Valheim", "/games/Valheim", views.DefaultActions()).SetDisabled(true)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "a run is in progress")
}

func TestActions_View(t *testing.T) {
	view := views.NewActions("Valheim", "", views.DefaultActions()).View()
	assert.Contains(t, view, "Valheim")
	assert.Contains(t, view, "not found")
	assert.Contains(t, view, "Install and initialize")
}

func TestProgress_Events(t *testing.T) {
	p := views.NewProgress(domain.RunInstall, time.Now())
	assert.NotNil(t, p.Init())

	m, _ := p.Update(views.EventMsg{Event: domain.Event{State: domain.StateRunning, Step: 1, Total: 2, Message: "installed BepInExPack"}})
	p = m.(views.Progress)
	assert.False(t, p.Done())
	view := p.View()
	assert.Contains(t, view, "Installing")
	assert.Contains(t, view, "step 1 of 2")
	assert.Contains(t, view, "installed BepInExPack")

	m, _ = p.Update(views.EventMsg{Event: domain.Event{State: domain.StatePartial, Step: 2, Total: 2, Message: "finished with 1 warning(s)"}})
	p = m.(views.Progress)
	assert.True(t, p.Done())
	assert.Equal(t, domain.StatePartial, p.State())
	assert.Contains(t, p.View(), "PARTIAL")
}

func TestProgress_FailedShowsError(t *testing.T) {
	p := views.NewProgress(domain.RunUninstall, time.Now())
	m, _ := p.Update(views.EventMsg{Event: domain.Event{State: domain.StateFailed, Err: domain.ErrGameNotFound, Message: "x"}})
	view := m.(views.Progress).View()
	assert.Contains(t, view, "Uninstalling")
	assert.Contains(t, view, "FAILED")
	assert.Contains(t, view, domain.ErrGameNotFound.Error())
}

func TestProgress_LogIsCapped(t *testing.T) {
	var m tea.Model = views.NewProgress(domain.RunInstall, time.Now())
	for i := 0; i < 20; i++ {
		m, _ = m.Update(views.EventMsg{Event: domain.Event{State: domain.StateRunning, Message: fmt.Sprintf("line %d", i)}})
	}
	// Repeated messages are not logged twice
	m, _ = m.Update(views.EventMsg{Event: domain.Event{State: domain.StateRunning, Message: "line 19"}})

	log := m.(views.Progress).Log()
	assert.Len(t, log, 8)
	assert.Equal(t, "line 12", log[0])
	assert.Equal(t, "line 19", log[len(log)-1])
}

func TestInstalled_View(t *testing.T) {
	mods := []domain.InstalledMod{
		{Key: "manifest:a", Name: "Jotunn 2.20.0", Files: 1200, DownloadURL: "https://example.com/a.zip", InstalledAt: time.Now()},
		{Key: "manifest:b", Name: "ValheimPlus", Files: 3},
	}
	model := views.NewInstalled("/games/Valheim", mods)
	assert.Equal(t, 2, model.ModCount())

	view := model.View()
	assert.Contains(t, view, "2 tracked")
	assert.Contains(t, view, "Jotunn 2.20.0")
	assert.Contains(t, view, "1,200 files")
	assert.Contains(t, view, "https://example.com/a.zip")

	m, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "ValheimPlus", m.(views.Installed).SelectedMod().Name)
}

func TestInstalled_Scroll(t *testing.T) {
	var mods []domain.InstalledMod
	for i := range 30 {
		mods = append(mods, domain.InstalledMod{Name: fmt.Sprintf("mod-%02d", i), Files: 1})
	}
	var model tea.Model = views.NewInstalled("/games/Valheim", mods)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	view := model.View()
	assert.Contains(t, view, "30 tracked mods, 30 files")
	assert.Contains(t, view, "mod-00")
	assert.NotContains(t, view, "mod-29")
	assert.Contains(t, view, "more")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnd})
	view = model.View()
	assert.Equal(t, "mod-29", model.(views.Installed).SelectedMod().Name)
	assert.Contains(t, view, "mod-29")
	assert.NotContains(t, view, "mod-00")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "mod-00", model.(views.Installed).SelectedMod().Name, "wraps to the top")
}

func TestInstalled_Empty(t *testing.T) {
	assert.Contains(t, views.NewInstalled("/games/Valheim", nil).View(), "No tracked mods")
	assert.Contains(t, views.NewInstalled("", nil).View(), "not found")
	assert.Nil(t, views.NewInstalled("", nil).SelectedMod())
}
