package views

import (
	"fmt"
	"strings"
	"time"

	"bepinstall/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// maxLogLines is how many status lines the progress view keeps
const maxLogLines = 8

// EventMsg carries one run event into the TUI
type EventMsg struct {
	Event domain.Event
}

// Progress shows a running install or uninstall
type Progress struct {
	kind    domain.RunKind
	started time.Time
	spinner spinner.Model
	bar     progress.Model
	last    domain.Event
	log     []string
	done    bool
	width   int
}

// NewProgress creates a progress view for a run of the given kind
func NewProgress(kind domain.RunKind, started time.Time) Progress {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(50))

	return Progress{
		kind:    kind,
		started: started,
		spinner: s,
		bar:     bar,
		width:   80,
	}
}

// Done reports whether the terminal event arrived
func (p Progress) Done() bool {
	return p.done
}

// State returns the state of the newest event
func (p Progress) State() domain.RunState {
	return p.last.State
}

// Log returns the recent status lines, oldest first
func (p Progress) Log() []string {
	return p.log
}

// Init implements tea.Model
func (p Progress) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update implements tea.Model
func (p Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		p.last = msg.Event
		if msg.Event.Message != "" && (len(p.log) == 0 || p.log[len(p.log)-1] != msg.Event.Message) {
			p.log = append(p.log, msg.Event.Message)
			if len(p.log) > maxLogLines {
				p.log = p.log[len(p.log)-maxLogLines:]
			}
		}
		if msg.Event.State.Terminal() {
			p.done = true
		}
		return p, nil

	case spinner.TickMsg:
		if p.done {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.bar.Width = min(max(msg.Width-10, 10), 60)
		return p, nil
	}

	return p, nil
}

// View implements tea.Model
func (p Progress) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	title := "Installing"
	if p.kind == domain.RunUninstall {
		title = "Uninstalling"
	}
	output := titleStyle.Render(title) + "\n"
	output += infoStyle.Render(fmt.Sprintf("started %s", humanize.Time(p.started))) + "\n\n"

	output += p.bar.ViewAs(p.last.Fraction()) + "\n"
	if p.last.Total > 0 {
		output += infoStyle.Render(fmt.Sprintf("step %d of %d", p.last.Step, p.last.Total)) + "\n"
	}
	output += "\n"

	if p.done {
		output += stateStyle(p.last.State).Render(strings.ToUpper(p.last.State.String()))
		if p.last.Err != nil {
			output += " " + p.last.Err.Error()
		}
		output += "\n\n"
	} else {
		output += p.spinner.View() + " " + p.last.Message + "\n\n"
	}

	logStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		PaddingLeft(2)
	for _, line := range p.log {
		output += logStyle.Render(line) + "\n"
	}

	return output
}

func stateStyle(s domain.RunState) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch s {
	case domain.StateSucceeded:
		return style.Foreground(lipgloss.Color("42"))
	case domain.StatePartial:
		return style.Foreground(lipgloss.Color("214"))
	case domain.StateFailed:
		return style.Foreground(lipgloss.Color("196"))
	default:
		return style
	}
}
