package tui

import (
	"context"
	"fmt"
	"time"

	"bepinstall/internal/core"
	"bepinstall/internal/domain"
	"bepinstall/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewActions ViewType = iota
	ViewProgress
	ViewInstalled
)

const viewCount = 3

// NavigateMsg is sent to change views
type NavigateMsg struct {
	View ViewType
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// runClosedMsg is sent when the event channel of a run closes
type runClosedMsg struct{}

// Backend is what the TUI needs from the core service
type Backend interface {
	Game() (*domain.Game, error)
	Locate() (string, error)
	DefaultInstallOptions() core.InstallOptions
	StartInstall(ctx context.Context, opts core.InstallOptions) (<-chan domain.Event, error)
	StartUninstall(ctx context.Context, tracked bool) (<-chan domain.Event, error)
	InstalledMods(root string) ([]domain.InstalledMod, error)
}

// App is the main TUI application model
type App struct {
	backend     Backend
	keys        *KeyMap
	ctx         context.Context
	cancel      context.CancelFunc
	currentView ViewType
	width       int
	height      int
	err         error
	showHelp    bool

	gameName    string
	installRoot string
	events      <-chan domain.Event
	running     bool

	actions   views.Actions
	progress  views.Progress
	installed views.Installed
}

// NewApp creates a new TUI application. backend may be nil.
func NewApp(backend Backend) App {
	ctx, cancel := context.WithCancel(context.Background())
	a := App{
		backend:     backend,
		keys:        NewKeyMap(""),
		ctx:         ctx,
		cancel:      cancel,
		currentView: ViewActions,
		width:       80,
		height:      24,
		gameName:    "bepinstall",
		progress:    views.NewProgress(domain.RunInstall, time.Now()),
	}

	if backend != nil {
		if game, err := backend.Game(); err == nil {
			a.gameName = game.Name
		}
		if root, err := backend.Locate(); err == nil {
			a.installRoot = root
		}
	}
	a.actions = views.NewActions(a.gameName, a.installRoot, views.DefaultActions())
	a.installed = a.loadInstalled()
	return a
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Running reports whether a run is in progress
func (a App) Running() bool {
	return a.running
}

// Progress returns the progress view of the current or last run
func (a App) Progress() views.Progress {
	return a.progress
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		m, cmd := a.progress.Update(msg)
		a.progress = m.(views.Progress)
		return a, cmd

	case NavigateMsg:
		a.currentView = msg.View
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil

	case views.ActionSelectedMsg:
		return a.startRun(msg.Action)

	case views.EventMsg:
		m, cmd := a.progress.Update(msg)
		a.progress = m.(views.Progress)
		if msg.Event.State.Terminal() {
			a.installed = a.loadInstalled()
		}
		return a, tea.Batch(cmd, waitForEvent(a.events))

	case runClosedMsg:
		a.running = false
		a.events = nil
		a.actions = a.actions.SetDisabled(false)
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keys.IsForceQuit(msg) {
		a.cancel()
		return a, tea.Quit
	}

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case a.keys.IsQuit(msg):
		if a.running {
			return a, nil
		}
		a.cancel()
		return a, tea.Quit

	case a.keys.IsHelp(msg):
		a.showHelp = true
		return a, nil

	case a.keys.IsCancel(msg):
		a.currentView = ViewActions
		return a, nil

	case a.keys.IsLeft(msg):
		a.currentView = (a.currentView + viewCount - 1) % viewCount
		return a, nil

	case a.keys.IsRight(msg):
		a.currentView = (a.currentView + 1) % viewCount
		return a, nil
	}

	switch msg.String() {
	case "1":
		a.currentView = ViewActions
		return a, nil
	case "2":
		a.currentView = ViewProgress
		return a, nil
	case "3":
		a.currentView = ViewInstalled
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) startRun(action views.Action) (tea.Model, tea.Cmd) {
	if a.backend == nil || a.running {
		return a, nil
	}

	var events <-chan domain.Event
	var err error
	switch action.Kind {
	case domain.RunInstall:
		opts := a.backend.DefaultInstallOptions()
		if action.InitLoader {
			opts.InitLoader = true
		}
		events, err = a.backend.StartInstall(a.ctx, opts)
	case domain.RunUninstall:
		events, err = a.backend.StartUninstall(a.ctx, action.Tracked)
	default:
		err = fmt.Errorf("unknown action %q", action.Kind)
	}
	if err != nil {
		a.err = err
		return a, nil
	}

	a.events = events
	a.running = true
	a.err = nil
	a.actions = a.actions.SetDisabled(true)
	a.progress = views.NewProgress(action.Kind, time.Now())
	a.currentView = ViewProgress
	return a, tea.Batch(a.progress.Init(), waitForEvent(events))
}

// waitForEvent reads the next run event; the App re-issues it after every event
func waitForEvent(events <-chan domain.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return runClosedMsg{}
		}
		return views.EventMsg{Event: ev}
	}
}

func (a App) loadInstalled() views.Installed {
	if a.backend == nil || a.installRoot == "" {
		return views.NewInstalled(a.installRoot, nil)
	}
	mods, err := a.backend.InstalledMods(a.installRoot)
	if err != nil {
		return views.NewInstalled(a.installRoot, nil)
	}
	return views.NewInstalled(a.installRoot, mods)
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var m tea.Model

	switch a.currentView {
	case ViewActions:
		m, cmd = a.actions.Update(msg)
		a.actions = m.(views.Actions)
	case ViewProgress:
		m, cmd = a.progress.Update(msg)
		a.progress = m.(views.Progress)
	case ViewInstalled:
		m, cmd = a.installed.Update(msg)
		a.installed = m.(views.Installed)
	}

	return a, cmd
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("bepinstall - BepInEx installer")

	tabs := []string{"[1]Actions", "[2]Progress", "[3]Installed"}
	tabBar := ""
	for i, tab := range tabs {
		if ViewType(i) == a.currentView {
			tabBar += activeTabStyle.Render(tab) + "  "
		} else {
			tabBar += tabStyle.Render(tab) + "  "
		}
	}

	content := a.renderCurrentView()
	if a.showHelp {
		content = a.keys.FullHelp()
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content = errStyle.Render(fmt.Sprintf("Error: %v", a.err)) + "\n\n" + content
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(a.keys.NavigationHelp() + "  q: quit  ?: help")

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, tabBar, content, footer)
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewActions:
		return a.actions.View()
	case ViewProgress:
		if !a.running && !a.progress.Done() {
			return "Progress\n\nNo run yet. Pick an action with [1]."
		}
		return a.progress.View()
	case ViewInstalled:
		return a.installed.View()
	default:
		return "Unknown view"
	}
}

// Run starts the TUI application
func Run(service *core.Service) error {
	app := NewApp(service)
	defer app.cancel()
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
