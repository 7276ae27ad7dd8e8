package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

const defaultConnectTimeout = 12 * time.Second

// DialerOptions configures the default SSH dialer.
type DialerOptions struct {
	// KnownHostsPath records accepted host keys. Empty accepts any key.
	KnownHostsPath string
	Logger         zerolog.Logger
}

type sshDialer struct {
	knownHostsPath string
	logger         zerolog.Logger
}

// NewDialer returns a Dialer that authenticates with a password over SSH and
// opens SFTP as the file-transfer channel.
func NewDialer(opts DialerOptions) Dialer {
	return &sshDialer{
		knownHostsPath: opts.KnownHostsPath,
		logger:         opts.Logger,
	}
}

// Dial connects and authenticates. The context bounds the TCP connect and the
// SSH handshake.
func (d *sshDialer) Dial(ctx context.Context, ep Endpoint) (Transport, error) {
	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	hostKeys, err := hostKeyCallback(d.knownHostsPath, d.logger)
	if err != nil {
		return nil, err
	}

	password := ep.Password
	sshConfig := &ssh.ClientConfig{
		User: ep.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
	d.logger.Debug().Str("addr", addr).Str("user", ep.Username).Msg("dialing")

	netDialer := net.Dialer{Timeout: timeout}
	conn, err := netDialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", addr, err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	stop()
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	d.logger.Info().Str("addr", addr).Str("user", ep.Username).Msg("ssh connection established")
	return &sshTransport{client: ssh.NewClient(c, chans, reqs)}, nil
}

type sshTransport struct {
	client *ssh.Client
}

func (t *sshTransport) OpenFileChannel() (FileChannel, error) {
	client, err := sftp.NewClient(t.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}
	return &sftpChannel{client: client}, nil
}

// Run executes command in a fresh exec channel. A non-zero exit status is
// reported in the result, not as an error; an error means the command did not
// run to completion.
func (t *sshTransport) Run(ctx context.Context, command string) (CommandResult, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to open exec channel: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		return CommandResult{}, fmt.Errorf("failed to start remote command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			return result, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("remote command did not complete: %w", err)
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return CommandResult{ExitCode: -1}, ctx.Err()
	}
}

func (t *sshTransport) Close() error {
	return t.client.Close()
}
