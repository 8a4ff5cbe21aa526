package views

import (
	"fmt"

	"bepinstall/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action is one entry of the actions menu
type Action struct {
	Label       string
	Description string
	Kind        domain.RunKind
	InitLoader  bool // Install: launch the game once after the loader
	Tracked     bool // Uninstall: also remove ledger-tracked mod files
}

// DefaultActions returns the install and uninstall variants
func DefaultActions() []Action {
	return []Action{
		{Label: "Install", Description: "Install BepInEx and every mod in the manifest", Kind: domain.RunInstall},
		{Label: "Install and initialize", Description: "Install, then launch the game once so BepInEx writes its config", Kind: domain.RunInstall, InitLoader: true},
		{Label: "Uninstall", Description: "Remove BepInEx files, keep mod files placed elsewhere", Kind: domain.RunUninstall},
		{Label: "Uninstall everything", Description: "Remove BepInEx and every file recorded at install time", Kind: domain.RunUninstall, Tracked: true},
	}
}

// ActionSelectedMsg is sent when an action is chosen
type ActionSelectedMsg struct {
	Action Action
}

// Actions is the main menu view model
type Actions struct {
	gameName    string
	installRoot string
	actions     []Action
	selected    int
	disabled    bool
	width       int
	height      int
}

// NewActions creates the menu. An empty installRoot means the game was not found.
func NewActions(gameName, installRoot string, actions []Action) Actions {
	return Actions{
		gameName:    gameName,
		installRoot: installRoot,
		actions:     actions,
		width:       80,
		height:      24,
	}
}

// SetDisabled blocks selection while a run is active
func (a Actions) SetDisabled(disabled bool) Actions {
	a.disabled = disabled
	return a
}

// Selected returns the currently selected index
func (a Actions) Selected() int {
	return a.selected
}

// SelectedAction returns the currently selected action
func (a Actions) SelectedAction() *Action {
	if len(a.actions) == 0 || a.selected >= len(a.actions) {
		return nil
	}
	return &a.actions[a.selected]
}

// Init implements tea.Model
func (a Actions) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a Actions) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil
	}

	return a, nil
}

func (a Actions) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(a.actions) == 0 {
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.selected--
		if a.selected < 0 {
			a.selected = len(a.actions) - 1
		}
		return a, nil

	case "down", "j":
		a.selected++
		if a.selected >= len(a.actions) {
			a.selected = 0
		}
		return a, nil

	case "enter", " ":
		if a.disabled {
			return a, nil
		}
		action := a.SelectedAction()
		if action != nil {
			return a, func() tea.Msg {
				return ActionSelectedMsg{Action: *action}
			}
		}
		return a, nil

	case "home", "g":
		a.selected = 0
		return a, nil

	case "end", "G":
		a.selected = len(a.actions) - 1
		return a, nil
	}

	return a, nil
}

// View implements tea.Model
func (a Actions) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	output := titleStyle.Render(a.gameName) + "\n"
	if a.installRoot != "" {
		output += infoStyle.Render(fmt.Sprintf("Path: %s", a.installRoot)) + "\n\n"
	} else {
		output += warnStyle.Render("Game directory not found. Set install_path in config.yaml.") + "\n\n"
	}

	for i, action := range a.actions {
		cursor := "  "
		style := itemStyle
		if i == a.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		output += style.Render(cursor+action.Label) + "\n"
		if i == a.selected && action.Description != "" {
			output += detailStyle.Render(action.Description) + "\n"
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	if a.disabled {
		output += helpStyle.Render("a run is in progress")
	} else {
		output += helpStyle.Render("↑/↓: navigate  enter: run")
	}

	return output
}
