package ssh

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"
)

// Endpoint describes where and as whom to connect.
type Endpoint struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// CommandResult is the outcome of a remote shell command that ran to completion.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Dialer opens authenticated transports to remote hosts.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Transport, error)
}

// Transport is an authenticated connection able to run commands and carry a
// file-transfer channel.
type Transport interface {
	OpenFileChannel() (FileChannel, error)
	Run(ctx context.Context, command string) (CommandResult, error)
	Close() error
}

// FileChannel is the file-transfer channel opened on top of a Transport.
type FileChannel interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Stat(path string) (os.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	Remove(path string) error
	Getwd() (string, error)
	Close() error
}

// Entry is one row of a remote directory listing.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time // zero when the server did not report it
	Mode    uint32    // raw permission and type bits
}

// FileMode converts the raw mode bits into an os.FileMode.
func (e Entry) FileMode() os.FileMode {
	stat := sftp.FileStat{Mode: e.Mode}
	return stat.FileMode()
}

// EntryFromFileInfo builds an Entry from a remote or local file info.
func EntryFromFileInfo(fi os.FileInfo) Entry {
	e := Entry{
		Name:    fi.Name(),
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Mode:    posixMode(fi.Mode()),
	}
	if stat, ok := fi.Sys().(*sftp.FileStat); ok {
		e.Mode = stat.Mode
		if stat.Mtime == 0 {
			e.ModTime = time.Time{}
		}
	}
	if e.IsDir {
		e.Size = 0
	}
	return e
}

// posixMode rebuilds st_mode style bits for file infos that did not come
// straight off the wire.
func posixMode(m os.FileMode) uint32 {
	bits := uint32(m.Perm())
	switch {
	case m.IsDir():
		bits |= 0o040000
	case m&os.ModeSymlink != 0:
		bits |= 0o120000
	case m.IsRegular():
		bits |= 0o100000
	}
	return bits
}
