package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ui"
)

// runTUI starts the interactive UI. One session and one dispatcher serve
// every connection made from it.
func (a *app) runTUI(cmd *cobra.Command) error {
	// Connects and disconnects happen after the program starts, so prog is
	// set before the listener first runs.
	var prog *tea.Program
	session := ssh.NewSession(ssh.NewDialer(ssh.DialerOptions{
		KnownHostsPath: a.settings.KnownHostsPath,
		Logger:         a.logger,
	}), a.logger, ssh.WithConnectivityListener(func(connected bool) {
		if prog != nil {
			prog.Send(ui.ConnectivityMsg{Connected: connected})
		}
	}))
	dispatcher := transfer.NewDispatcher(session, a.settings.TransferOptions(), a.logger, a.metrics)
	dispatcher.Start()
	defer func() {
		if err := dispatcher.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("dispatcher stopped with error")
		}
		session.Disconnect()
	}()

	deps := ui.Deps{
		Session:    session,
		Dispatcher: dispatcher,
		Profiles:   a.profiles,
		Settings:   a.settings,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}
	initial, err := a.initialProfile()
	if err != nil {
		return err
	}
	if initial != nil {
		deps.Initial = initial
		deps.InitialPassword = a.settings.Password
		if deps.InitialPassword == "" && initial.ID != "" {
			if deps.InitialPassword, err = a.profiles.Password(initial.ID); err != nil {
				a.logger.Warn().Err(err).Str("profile", initial.ID).Msg("failed to read password from keyring")
			}
		}
	}

	a.logger.Info().Msg("starting ui")
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx := cmd.Context(); ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}
	prog = tea.NewProgram(ui.NewModel(deps), opts...)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("failed to run ui: %w", err)
	}
	return nil
}

// initialProfile is the connection requested on the command line, if any.
func (a *app) initialProfile() (*config.Profile, error) {
	s := a.settings
	switch {
	case s.Profile != "":
		p, ok := a.profiles.GetProfile(s.Profile)
		if !ok {
			return nil, fmt.Errorf("profile %s not found", s.Profile)
		}
		return &p, nil
	case s.Host != "":
		return &config.Profile{Host: s.Host, Port: s.Port, Username: s.User}, nil
	default:
		return nil, nil
	}
}
