package ssh

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session owns zero or one live connection to a remote host: the transport
// and the file-transfer channel opened on it. Both handles are present or
// both are absent outside of Connect and Disconnect.
type Session struct {
	dialer   Dialer
	logger   zerolog.Logger
	listener func(connected bool)

	// lifecycle serializes Connect and Disconnect; mu guards the handles so
	// readers are never blocked behind a slow dial.
	lifecycle sync.Mutex
	mu        sync.RWMutex
	endpoint  Endpoint
	transport Transport
	files     FileChannel
}

// Option configures a Session.
type Option func(*Session)

// WithConnectivityListener registers fn to be called after every transition,
// including repeated disconnects. fn runs on the goroutine that changed state.
func WithConnectivityListener(fn func(connected bool)) Option {
	return func(s *Session) {
		s.listener = fn
	}
}

// NewSession creates a disconnected session that dials through dialer.
func NewSession(dialer Dialer, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		dialer: dialer,
		logger: logger.With().Str("component", "session").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect replaces any existing connection with a new one to ep. On failure
// the session is left disconnected and a *ConnectError is returned.
func (s *Session) Connect(ctx context.Context, ep Endpoint) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.IsConnected() {
		s.disconnect()
	}

	s.logger.Info().Str("host", ep.Host).Int("port", ep.Port).Str("user", ep.Username).Msg("connecting")

	transport, err := s.dialer.Dial(ctx, ep)
	if err != nil {
		s.logger.Error().Err(err).Str("host", ep.Host).Msg("connect failed")
		return &ConnectError{Host: ep.Host, Port: ep.Port, Err: err}
	}

	files, err := transport.OpenFileChannel()
	if err != nil {
		if closeErr := transport.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Msg("failed to close transport after channel error")
		}
		s.logger.Error().Err(err).Str("host", ep.Host).Msg("failed to open file-transfer channel")
		return &ConnectError{Host: ep.Host, Port: ep.Port, Err: err}
	}

	s.mu.Lock()
	ep.Password = ""
	s.endpoint = ep
	s.transport = transport
	s.files = files
	s.mu.Unlock()

	s.logger.Info().Str("host", ep.Host).Msg("connected")
	s.notify(true)
	return nil
}

// Disconnect closes the file-transfer channel, then the transport. Close
// errors are logged and dropped. It is safe to call on a disconnected session
// and always notifies the listener.
func (s *Session) Disconnect() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.disconnect()
}

func (s *Session) disconnect() {
	s.mu.Lock()
	files, transport := s.files, s.transport
	s.files = nil
	s.transport = nil
	s.mu.Unlock()

	if files != nil {
		if err := files.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close file-transfer channel")
		}
	}
	if transport != nil {
		if err := transport.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close transport")
		}
		s.logger.Info().Str("host", s.endpoint.Host).Msg("disconnected")
	}
	s.notify(false)
}

func (s *Session) notify(connected bool) {
	if s.listener != nil {
		s.listener(connected)
	}
}

// IsConnected reports whether both handles are present.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transport != nil && s.files != nil
}

// Host returns the host of the current or most recent connection.
func (s *Session) Host() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint.Host
}

// Username returns the user of the current or most recent connection.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint.Username
}

func (s *Session) handles() (Transport, FileChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.transport == nil || s.files == nil {
		return nil, nil, ErrNotConnected
	}
	return s.transport, s.files, nil
}

// Execute runs a shell command on the remote host and waits for it to exit or
// for timeout to elapse. A zero timeout means no limit beyond ctx.
func (s *Session) Execute(ctx context.Context, command string, timeout time.Duration) (CommandResult, error) {
	transport, _, err := s.handles()
	if err != nil {
		return CommandResult{}, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.logger.Debug().Str("command", command).Msg("exec")
	result, err := transport.Run(ctx, command)
	if err != nil {
		return result, fmt.Errorf("remote command %q: %w", command, err)
	}
	s.logger.Debug().Str("command", command).Int("exit", result.ExitCode).Msg("exec finished")
	return result, nil
}

// MakeDir creates path and its parents with mkdir -p.
func (s *Session) MakeDir(ctx context.Context, path string, timeout time.Duration) error {
	command := MkdirCommand(path)
	result, err := s.Execute(ctx, command, timeout)
	if err != nil {
		return err
	}
	return result.CheckExit(command)
}

// List returns the entries of a remote directory in server order.
func (s *Session) List(ctx context.Context, path string) ([]Entry, error) {
	_, files, err := s.handles()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := files.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		entries = append(entries, EntryFromFileInfo(fi))
	}
	return entries, nil
}

// Stat returns metadata for a remote path.
func (s *Session) Stat(path string) (os.FileInfo, error) {
	_, files, err := s.handles()
	if err != nil {
		return nil, err
	}
	return files.Stat(path)
}

// Open opens a remote file for reading.
func (s *Session) Open(path string) (io.ReadCloser, error) {
	_, files, err := s.handles()
	if err != nil {
		return nil, err
	}
	return files.Open(path)
}

// Create creates or truncates a remote file for writing.
func (s *Session) Create(path string) (io.WriteCloser, error) {
	_, files, err := s.handles()
	if err != nil {
		return nil, err
	}
	return files.Create(path)
}

// Remove deletes a remote file.
func (s *Session) Remove(path string) error {
	_, files, err := s.handles()
	if err != nil {
		return err
	}
	return files.Remove(path)
}

// Getwd returns the remote login directory.
func (s *Session) Getwd() (string, error) {
	_, files, err := s.handles()
	if err != nil {
		return "", err
	}
	return files.Getwd()
}
