package ssh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConnected is returned by every remote operation attempted while the
// session is disconnected.
var ErrNotConnected = errors.New("not connected")

// ConnectError indicates that authentication or the network failed while
// establishing a session.
type ConnectError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// CommandError reports a remote command that exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" {
		return fmt.Sprintf("remote command exited with status %d", e.ExitCode)
	}
	return detail
}

// CheckExit turns a non-zero exit status into a *CommandError.
func (r CommandResult) CheckExit(command string) error {
	if r.ExitCode == 0 {
		return nil
	}
	return &CommandError{
		Command:  command,
		ExitCode: r.ExitCode,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
	}
}
