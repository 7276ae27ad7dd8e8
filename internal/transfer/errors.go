package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is the cause of every job stopped through cancellation.
	ErrCancelled = errors.New("cancelled")

	// ErrJobInFlight is returned when a job is submitted while another runs.
	ErrJobInFlight = errors.New("a transfer job is already in progress")

	// ErrInvalidSelection matches every *SelectionError.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrDispatcherClosed is returned by Submit after Close.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// SelectionError reports a precondition the caller should have checked.
// Its text is shown to the user as is.
type SelectionError struct {
	Reason string
}

func (e *SelectionError) Error() string {
	return e.Reason
}

func (e *SelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// Side tells which end of a transfer an I/O error came from.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// IOError wraps a filesystem or file-transfer channel failure.
type IOError struct {
	Side Side
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Side, e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func localErr(op, path string, err error) error {
	return &IOError{Side: SideLocal, Op: op, Path: path, Err: err}
}

func remoteErr(op, path string, err error) error {
	return &IOError{Side: SideRemote, Op: op, Path: path, Err: err}
}
