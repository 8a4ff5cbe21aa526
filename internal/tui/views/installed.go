package views

import (
	"fmt"
	"strings"

	"bepinstall/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	ledgerTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	ledgerMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ledgerRow    = lipgloss.NewStyle().PaddingLeft(2)
	ledgerActive = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("205")).Bold(true)
	ledgerPanel  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// chromeLines is the header, totals, detail panel and help space around the list
const chromeLines = 12

// Installed lists the mods the ledger recorded for the install root
type Installed struct {
	installRoot string
	mods        []domain.InstalledMod
	totalFiles  int
	cursor      int
	offset      int // First visible row
	height      int
}

// NewInstalled creates the ledger view for one install root
func NewInstalled(installRoot string, mods []domain.InstalledMod) Installed {
	total := 0
	for _, mod := range mods {
		total += mod.Files
	}
	return Installed{installRoot: installRoot, mods: mods, totalFiles: total, height: 24}
}

// ModCount returns the number of tracked mods
func (m Installed) ModCount() int {
	return len(m.mods)
}

// SelectedMod returns the mod under the cursor, or nil
func (m Installed) SelectedMod() *domain.InstalledMod {
	if m.cursor < 0 || m.cursor >= len(m.mods) {
		return nil
	}
	return &m.mods[m.cursor]
}

// Init implements tea.Model
func (m Installed) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Installed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		if len(m.mods) == 0 {
			break
		}
		switch msg.String() {
		case "up", "k":
			m.cursor = (m.cursor - 1 + len(m.mods)) % len(m.mods)
		case "down", "j":
			m.cursor = (m.cursor + 1) % len(m.mods)
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.mods) - 1
		}
	}
	m.offset = m.scroll()
	return m, nil
}

func (m Installed) visibleRows() int {
	return max(m.height-chromeLines, 3)
}

// scroll keeps the cursor inside the visible window
func (m Installed) scroll() int {
	rows := m.visibleRows()
	switch {
	case m.cursor < m.offset:
		return m.cursor
	case m.cursor >= m.offset+rows:
		return m.cursor - rows + 1
	}
	return m.offset
}

// View implements tea.Model
func (m Installed) View() string {
	var b strings.Builder
	b.WriteString(ledgerTitle.Render("Installed Mods") + "\n\n")

	if m.installRoot == "" {
		b.WriteString(ledgerRow.Render("Game directory not found.") + "\n")
		return b.String()
	}
	b.WriteString(ledgerMuted.Render(m.installRoot) + "\n")

	if len(m.mods) == 0 {
		b.WriteString("\n" + ledgerRow.Render("No tracked mods. Run an install first.") + "\n")
		return b.String()
	}
	b.WriteString(ledgerMuted.Render(fmt.Sprintf("%d tracked mods, %s files", len(m.mods), humanize.Comma(int64(m.totalFiles)))) + "\n\n")

	end := min(m.offset+m.visibleRows(), len(m.mods))
	if m.offset > 0 {
		b.WriteString(ledgerMuted.Render(fmt.Sprintf("  ↑ %d more", m.offset)) + "\n")
	}
	for i := m.offset; i < end; i++ {
		if i == m.cursor {
			b.WriteString(ledgerActive.Render("▸ "+m.mods[i].Name) + "\n")
		} else {
			b.WriteString(ledgerRow.Render("  "+m.mods[i].Name) + "\n")
		}
	}
	if rest := len(m.mods) - end; rest > 0 {
		b.WriteString(ledgerMuted.Render(fmt.Sprintf("  ↓ %d more", rest)) + "\n")
	}

	if mod := m.SelectedMod(); mod != nil {
		detail := []string{fmt.Sprintf("%s files, installed %s", humanize.Comma(int64(mod.Files)), humanize.Time(mod.InstalledAt))}
		if mod.DownloadURL != "" {
			detail = append(detail, mod.DownloadURL)
		}
		b.WriteString("\n" + ledgerPanel.Render(strings.Join(detail, "\n")) + "\n")
	}

	b.WriteString("\n" + ledgerMuted.Render("↑/↓: navigate"))
	return b.String()
}
