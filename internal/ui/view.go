package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9")).
			MarginTop(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View renders the UI model
func (m *Model) View() string {
	// The transfer manager draws its own header and footer over the full screen.
	if m.state == StateTransfer && m.transfer != nil {
		return m.transfer.View()
	}

	var content strings.Builder

	content.WriteString(titleStyle.Render("SSH-X-Transfer"))
	content.WriteString("\n")

	if activeComponent := m.getActiveComponent(); activeComponent != nil {
		content.WriteString(activeComponent.View())
	}

	if m.connecting != "" {
		content.WriteString("\n")
		content.WriteString(hintStyle.Render("Connecting to " + m.connecting + "..."))
	}

	if m.errorMessage != "" {
		content.WriteString("\n")
		content.WriteString(errorStyle.Render(m.errorMessage))
		m.errorMessage = ""
	}

	content.WriteString("\n")
	switch m.state {
	case StateConnectionList:
		content.WriteString(hintStyle.Render("\nPress 'n' to connect, 'enter' to open a saved connection, 'e' to edit, 'd' to delete, 'q' to quit"))
	case StateConnectionForm:
		content.WriteString(hintStyle.Render("\nPress 'tab' to move, 'enter' on Connect to submit, 'esc' to go back"))
	}

	return appStyle.Render(content.String())
}
