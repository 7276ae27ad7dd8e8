package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/remotepath"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
)

// ErrNoHost is returned when neither a host nor a profile was given.
var ErrNoHost = errors.New("no host given: use --host or --profile")

// remote is a connected session plus the directory relative remote paths
// are resolved against.
type remote struct {
	*ssh.Session
	cwd string
}

// resolve turns a command-line remote path into an absolute one.
func (r *remote) resolve(p string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "" || p == ".":
		return r.cwd
	case strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`):
		return remotepath.Normalize(p)
	default:
		return remotepath.Normalize(remotepath.Join(r.cwd, p))
	}
}

// connect resolves the target, asks for a missing password and opens the
// session. The caller disconnects.
func (a *app) connect(cmd *cobra.Command) (*remote, error) {
	in, prompt := cmd.InOrStdin(), cmd.ErrOrStderr()

	p, err := a.target(in, prompt)
	if err != nil {
		return nil, err
	}
	ep := a.settings.Endpoint(p, "")
	if ep.Host == "" {
		return nil, ErrNoHost
	}
	if ep.Username == "" {
		return nil, errors.New("no user given: use --user or a profile")
	}

	label := fmt.Sprintf("%s@%s:%d", ep.Username, ep.Host, ep.Port)
	if ep.Password == "" {
		if ep.Password, err = a.password(p, label, in, prompt); err != nil {
			return nil, err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if ep.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ep.Timeout)
		defer cancel()
	}

	session := ssh.NewSession(ssh.NewDialer(ssh.DialerOptions{
		KnownHostsPath: a.settings.KnownHostsPath,
		Logger:         a.logger,
	}), a.logger)
	err = session.Connect(ctx, ep)
	a.metrics.RecordConnect(err)
	if err != nil {
		return nil, err
	}

	if p.ID != "" {
		if err := a.profiles.MarkUsed(p.ID); err != nil {
			a.logger.Warn().Err(err).Msg("failed to record last used profile")
		}
	}

	cwd := p.RemoteDir
	if cwd == "" {
		cwd = a.settings.RemoteDir
	}
	if cwd == "" {
		if cwd, err = session.Getwd(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to resolve remote working directory")
			cwd = remotepath.Root
		}
	}
	return &remote{Session: session, cwd: remotepath.Normalize(cwd)}, nil
}

// target picks the profile to connect to: --profile by name or ID, or the
// interactive selector when no host is given and stdin is a terminal. An
// empty profile means the connection flags alone describe the target.
func (a *app) target(in io.Reader, out io.Writer) (config.Profile, error) {
	if ref := a.settings.Profile; ref != "" {
		p, ok := a.profiles.GetProfile(ref)
		if !ok {
			return config.Profile{}, fmt.Errorf("profile %s not found", ref)
		}
		return p, nil
	}
	if a.settings.Host != "" {
		return config.Profile{}, nil
	}

	profiles := a.profiles.ListProfiles()
	if len(profiles) == 0 || !isTerminal(in) {
		return config.Profile{}, ErrNoHost
	}
	p, err := selectProfile(profiles, in, out)
	if err != nil {
		return config.Profile{}, err
	}
	if p == nil {
		return config.Profile{}, errors.New("no profile selected")
	}
	return *p, nil
}

// password returns the keyring password of p, or prompts for one.
func (a *app) password(p config.Profile, label string, in io.Reader, out io.Writer) (string, error) {
	if p.ID != "" {
		password, err := a.profiles.Password(p.ID)
		if err != nil {
			a.logger.Warn().Err(err).Str("profile", p.ID).Msg("failed to read password from keyring")
		}
		if password != "" {
			return password, nil
		}
	}
	return readPassword(in, out, label)
}

// readPassword prompts on out and reads without echo. It refuses to read
// from anything but a terminal.
func readPassword(in io.Reader, out io.Writer, label string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New("password required: use --password, SXTX_PASSWORD or a saved profile")
	}

	fmt.Fprintf(out, "Password for %s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
