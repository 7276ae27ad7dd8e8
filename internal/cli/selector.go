package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	normalStyle   = lipgloss.NewStyle()
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const selectorMaxVisible = 10

// SelectorModel is a small type-to-filter picker over saved profiles, used
// by the headless commands when no host was given.
type SelectorModel struct {
	profiles        []config.Profile
	filteredIndices []int
	cursor          int
	filter          string
	choice          *config.Profile
	quitting        bool
}

func NewSelector(profiles []config.Profile) *SelectorModel {
	m := &SelectorModel{profiles: profiles}
	m.updateFilter()
	return m
}

func (m *SelectorModel) Init() tea.Cmd {
	return nil
}

func (m *SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		if m.cursor < len(m.filteredIndices) {
			p := m.profiles[m.filteredIndices[m.cursor]]
			m.choice = &p
		}
		return m, tea.Quit

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case tea.KeyDown:
		if m.cursor < len(m.filteredIndices)-1 {
			m.cursor++
		}

	case tea.KeyBackspace, tea.KeyDelete:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
			m.updateFilter()
		}

	case tea.KeySpace:
		m.filter += " "
		m.updateFilter()

	case tea.KeyRunes:
		m.filter += string(keyMsg.Runes)
		m.updateFilter()
	}
	return m, nil
}

// updateFilter matches the filter against name, host and user.
func (m *SelectorModel) updateFilter() {
	m.cursor = 0
	m.filteredIndices = m.filteredIndices[:0]
	needle := strings.ToLower(m.filter)
	for i, p := range m.profiles {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Host), needle) ||
			strings.Contains(strings.ToLower(p.Username), needle) {
			m.filteredIndices = append(m.filteredIndices, i)
		}
	}
}

func (m *SelectorModel) View() string {
	if m.choice != nil || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a connection"))
	b.WriteString("\n\n")

	if m.filter != "" {
		b.WriteString(filterStyle.Render("Filter: " + m.filter))
	} else {
		b.WriteString(helpStyle.Render("Type to filter..."))
	}
	b.WriteString("\n\n")

	if len(m.filteredIndices) == 0 {
		b.WriteString(helpStyle.Render("No matches found"))
		b.WriteString("\n")
	} else {
		start := 0
		if m.cursor >= selectorMaxVisible {
			start = m.cursor - selectorMaxVisible + 1
		}
		end := min(start+selectorMaxVisible, len(m.filteredIndices))

		for i := start; i < end; i++ {
			line := m.profiles[m.filteredIndices[i]].Label()
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(normalStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}

		if len(m.filteredIndices) > selectorMaxVisible {
			b.WriteString("\n")
			b.WriteString(helpStyle.Render(fmt.Sprintf("Showing %d-%d of %d connections",
				start+1, end, len(m.filteredIndices))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓: navigate • Enter: select • Esc/Ctrl+C: quit"))
	return b.String()
}

// Choice is the selected profile, or nil when the picker was dismissed.
func (m *SelectorModel) Choice() *config.Profile {
	return m.choice
}

// selectProfile runs the picker on the given terminal streams.
func selectProfile(profiles []config.Profile, in io.Reader, out io.Writer) (*config.Profile, error) {
	sel := NewSelector(profiles)
	if _, err := tea.NewProgram(sel, tea.WithInput(in), tea.WithOutput(out)).Run(); err != nil {
		return nil, fmt.Errorf("failed to run connection selector: %w", err)
	}
	return sel.Choice(), nil
}
