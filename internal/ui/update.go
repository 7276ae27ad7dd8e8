package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ui/components"
)

// Update handles updates to the UI model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.connectionList.SetSize(m.contentSize())
		if m.connectionForm != nil {
			m.connectionForm.SetSize(m.contentSize())
		}
		if m.deleteConfirm != nil {
			m.deleteConfirm.SetSize(m.contentSize())
		}
		if m.transfer != nil {
			m.transfer.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case components.JobEventMsg:
		var cmd tea.Cmd
		if m.transfer != nil {
			_, cmd = m.transfer.Update(msg)
		} else if msg.Event.Type == transfer.EventFinished {
			m.deps.Logger.Info().Str("job", msg.Event.JobID.String()).Msg("job finished after disconnect")
		}
		return m, tea.Batch(cmd, waitForEvent(m.deps.Dispatcher.Events()))

	case eventsClosedMsg:
		return m, nil

	case connectedMsg:
		return m, m.handleConnected(msg)

	case ConnectivityMsg:
		m.handleConnectivity(msg.Connected)
		return m, nil

	case components.DisconnectedMsg:
		m.transfer = nil
		m.backToList()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.deps.Dispatcher.Cancel()
			return m, tea.Quit
		}
		if m.connecting != "" {
			return m, nil
		}

		if m.state == StateConnectionList && !m.connectionList.Filtering() {
			switch msg.String() {
			case "q":
				return m, tea.Quit

			case "n":
				m.connectionForm = components.NewConnectionForm(nil, "")
				m.connectionForm.SetSize(m.contentSize())
				m.state = StateConnectionForm
				return m, m.connectionForm.Init()

			case "e":
				if p := m.connectionList.HighlightedProfile(); p != nil {
					password, _ := m.deps.Profiles.Password(p.ID)
					m.connectionForm = components.NewConnectionForm(p, password)
					m.connectionForm.SetSize(m.contentSize())
					m.state = StateConnectionForm
					return m, m.connectionForm.Init()
				}
				return m, nil

			case "d":
				if p := m.connectionList.HighlightedProfile(); p != nil {
					m.deleteConfirm = components.NewDeleteConfirmation(p.ID, p.Name)
					m.deleteConfirm.SetSize(m.contentSize())
					m.state = StateDeleteConfirm
				}
				return m, nil
			}
		}
	}

	// Pass message to active component
	if activeComponent := m.getActiveComponent(); activeComponent != nil {
		_, cmd := activeComponent.Update(msg)
		return m, m.handleComponentResult(cmd)
	}
	return m, nil
}
