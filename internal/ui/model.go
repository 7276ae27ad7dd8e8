package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/metrics"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ui/components"
)

type AppState int

const (
	StateConnectionList AppState = iota
	StateConnectionForm
	StateDeleteConfirm
	StateTransfer
	headerHeight = 3
	footerHeight = 3
)

// Deps are the long-lived collaborators the TUI drives. Session and
// Dispatcher outlive individual connections.
type Deps struct {
	Session    *ssh.Session
	Dispatcher *transfer.Dispatcher
	Profiles   config.Storage
	Settings   config.Settings
	Metrics    *metrics.Collector
	Logger     zerolog.Logger

	// Initial, when set, is connected to on start with InitialPassword.
	Initial         *config.Profile
	InitialPassword string
}

type Model struct {
	deps   Deps
	state  AppState
	width  int
	height int

	connectionList *components.ConnectionList
	connectionForm *components.ConnectionForm
	deleteConfirm  *components.DeleteConfirmation
	transfer       *components.TransferManager

	// connecting names the target while a connect is in flight.
	connecting   string
	errorMessage string
}

func NewModel(deps Deps) *Model {
	return &Model{
		deps:           deps,
		state:          StateConnectionList,
		connectionList: components.NewConnectionList(deps.Profiles.ListProfiles(), 60, 20),
	}
}

// Init starts the event pump and, when requested, the first connection.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.deps.Dispatcher.Events())}
	if p := m.deps.Initial; p != nil {
		m.connectionForm = components.NewConnectionForm(p, m.deps.InitialPassword)
		m.state = StateConnectionForm
		// Without a password the form asks for one first.
		if m.deps.InitialPassword == "" {
			cmds = append(cmds, m.connectionForm.Init())
		} else {
			cmds = append(cmds, m.connect(*p, m.deps.InitialPassword))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) LoadProfiles() {
	m.connectionList.SetProfiles(m.deps.Profiles.ListProfiles())
}

func (m *Model) contentSize() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 20
	}
	return width, max(height-headerHeight-footerHeight, 5)
}

func (m *Model) getActiveComponent() tea.Model {
	switch m.state {
	case StateConnectionList:
		return m.connectionList
	case StateConnectionForm:
		return m.connectionForm
	case StateDeleteConfirm:
		return m.deleteConfirm
	case StateTransfer:
		return m.transfer
	default:
		return nil
	}
}

func (m *Model) backToList() {
	m.connectionForm = nil
	m.deleteConfirm = nil
	m.state = StateConnectionList
	m.LoadProfiles()
	m.connectionList.Reset()
}

func (m *Model) handleComponentResult(cmd tea.Cmd) tea.Cmd {
	switch m.state {
	case StateConnectionList:
		if p := m.connectionList.SelectedProfile(); p != nil {
			m.connectionList.Reset()
			return m.handleSelectedProfile(*p)
		}

	case StateConnectionForm:
		if m.connectionForm.IsCanceled() {
			m.backToList()
			return nil
		}
		if m.connectionForm.IsSubmitted() && m.connecting == "" {
			return m.handleFormSubmit()
		}

	case StateDeleteConfirm:
		if m.deleteConfirm.IsCanceled() {
			m.backToList()
			return nil
		}
		if m.deleteConfirm.IsConfirmed() {
			if err := m.deps.Profiles.DeleteProfile(m.deleteConfirm.ProfileID()); err != nil {
				m.errorMessage = err.Error()
			}
			m.backToList()
			return nil
		}
	}
	return cmd
}
