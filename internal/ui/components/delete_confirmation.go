package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DeleteConfirmation asks before a saved connection and its stored password
// are removed.
type DeleteConfirmation struct {
	profileID   string
	profileName string
	confirmed   bool
	canceled    bool
	width       int
	height      int
}

func NewDeleteConfirmation(profileID, profileName string) *DeleteConfirmation {
	return &DeleteConfirmation{
		profileID:   profileID,
		profileName: profileName,
	}
}

func (d *DeleteConfirmation) Init() tea.Cmd {
	return nil
}

func (d *DeleteConfirmation) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if d.confirmed || d.canceled {
		return d, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.SetSize(msg.Width, msg.Height)
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			d.confirmed = true
		case "n", "N", "esc", "ctrl+c":
			d.canceled = true
		}
	}

	return d, nil
}

var (
	colorDanger = lipgloss.Color("196")

	deleteTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	deleteNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	deleteBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDanger).
				Padding(1, 3).
				Width(60).
				Align(lipgloss.Center)
)

func (d *DeleteConfirmation) View() string {
	if d.canceled {
		return ""
	}

	box := deleteBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		deleteTitleStyle.Render("⚠ Delete saved connection"),
		"",
		deleteNameStyle.Render(d.profileName),
		mutedTextStyle.Render("Its keyring password goes with it."),
		"",
		lipgloss.NewStyle().Foreground(colorInactive).Render("y: delete • n/esc: keep"),
	))
	return lipgloss.Place(d.width, max(d.height-3, 0), lipgloss.Center, lipgloss.Center, box)
}

func (d *DeleteConfirmation) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *DeleteConfirmation) ProfileID() string {
	return d.profileID
}

func (d *DeleteConfirmation) IsConfirmed() bool {
	return d.confirmed
}

func (d *DeleteConfirmation) IsCanceled() bool {
	return d.canceled
}
