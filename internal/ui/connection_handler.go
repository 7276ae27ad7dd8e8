package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/remotepath"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ui/components"
)

// connectedMsg reports the end of a connect attempt.
type connectedMsg struct {
	profile   config.Profile
	label     string
	remoteDir string
	err       error
}

// ConnectivityMsg carries a connectivity change reported by the session.
type ConnectivityMsg struct {
	Connected bool
}

// eventsClosedMsg is sent when the dispatcher has shut down.
type eventsClosedMsg struct{}

// waitForEvent delivers the next dispatcher event as a message. It is re-armed
// after every event so the stream is read one message at a time.
func waitForEvent(events <-chan transfer.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return components.JobEventMsg{Event: ev}
	}
}

// handleSelectedProfile connects with the password stored in the keyring, or
// opens the form to ask for one.
func (m *Model) handleSelectedProfile(p config.Profile) tea.Cmd {
	password, err := m.deps.Profiles.Password(p.ID)
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("profile", p.ID).Msg("failed to read password from keyring")
	}

	m.connectionForm = components.NewConnectionForm(&p, password)
	m.connectionForm.SetSize(m.contentSize())
	m.state = StateConnectionForm
	if password == "" {
		return m.connectionForm.Init()
	}
	return m.connect(p, password)
}

// handleFormSubmit saves the profile when it is named, then connects.
func (m *Model) handleFormSubmit() tea.Cmd {
	form := m.connectionForm
	p := form.Profile()
	password := form.Password()

	if form.ShouldSave() {
		saved, err := m.deps.Profiles.AddProfile(p)
		if err != nil {
			form.SetError(fmt.Sprintf("Failed to save connection: %s", err))
			return nil
		}
		p = saved
		stored := ""
		if form.RememberPassword() {
			stored = password
		}
		if err := m.deps.Profiles.SetPassword(p.ID, stored); err != nil {
			m.deps.Logger.Warn().Err(err).Str("profile", p.ID).Msg("failed to store password in keyring")
		}
	}
	return m.connect(p, password)
}

// connect dials in the background. The session is shared, so a successful
// connect replaces any previous connection.
func (m *Model) connect(p config.Profile, password string) tea.Cmd {
	settings := m.deps.Settings
	ep := settings.Endpoint(p, password)
	session, collector, logger := m.deps.Session, m.deps.Metrics, m.deps.Logger

	label := fmt.Sprintf("%s@%s:%d", ep.Username, ep.Host, ep.Port)
	if p.Name != "" {
		label += " - " + p.Name
	}
	m.connecting = label

	return func() tea.Msg {
		ctx := context.Background()
		if ep.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, ep.Timeout)
			defer cancel()
		}

		err := session.Connect(ctx, ep)
		collector.RecordConnect(err)
		if err != nil {
			return connectedMsg{profile: p, label: label, err: err}
		}

		dir := p.RemoteDir
		if dir == "" {
			dir = settings.RemoteDir
		}
		if dir == "" {
			wd, err := session.Getwd()
			if err != nil {
				logger.Warn().Err(err).Msg("failed to resolve remote working directory")
				wd = remotepath.Root
			}
			dir = wd
		}
		return connectedMsg{profile: p, label: label, remoteDir: dir}
	}
}

func (m *Model) handleConnected(msg connectedMsg) tea.Cmd {
	m.connecting = ""
	if msg.err != nil {
		m.deps.Logger.Error().Err(msg.err).Str("target", msg.label).Msg("connect failed")
		if m.connectionForm == nil {
			p := msg.profile
			m.connectionForm = components.NewConnectionForm(&p, "")
			m.connectionForm.SetSize(m.contentSize())
		}
		m.connectionForm.SetError(msg.err.Error())
		m.state = StateConnectionForm
		return nil
	}

	if msg.profile.ID != "" {
		if err := m.deps.Profiles.MarkUsed(msg.profile.ID); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("failed to record last used profile")
		}
	}

	m.connectionForm = nil
	m.transfer = components.NewTransferManager(m.deps.Session, m.deps.Dispatcher, m.deps.Settings, m.deps.Logger, msg.label, msg.remoteDir)
	m.transfer.SetSize(m.width, m.height)
	m.state = StateTransfer
	return m.transfer.Init()
}

// handleConnectivity follows the session state. A connection lost without a
// disconnect request drops the transfer view.
func (m *Model) handleConnectivity(connected bool) {
	if m.transfer == nil {
		return
	}
	m.transfer.SetConnected(connected)
	if connected || m.transfer.Disconnecting() {
		return
	}

	m.deps.Logger.Warn().Msg("connection closed without a disconnect request")
	m.deps.Dispatcher.Cancel()
	m.transfer = nil
	m.backToList()
	m.errorMessage = "Connection closed"
}
