package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh/sshtest"
)

// connectedSession returns a session connected to a fresh in-process server.
// Remote paths are paths on the local filesystem.
func connectedSession(t *testing.T) *ssh.Session {
	t.Helper()
	srv := sshtest.NewServer(t)
	s := ssh.NewSession(ssh.NewDialer(ssh.DialerOptions{Logger: zerolog.Nop()}), zerolog.Nop())
	err := s.Connect(context.Background(), ssh.Endpoint{
		Host:     srv.Host,
		Port:     srv.Port,
		Username: srv.User,
		Password: srv.Password,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(s.Disconnect)
	return s
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	hook   func(Event)
}

func (r *recorder) emit(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	if r.hook != nil {
		r.hook(ev)
	}
}

func (r *recorder) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Type == EventStatus {
			out = append(out, ev.Status)
		}
	}
	return out
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return out
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// fakeRemote is an in-memory Remote for failure paths that a real server
// cannot produce on demand.
type fakeRemote struct {
	mu        sync.Mutex
	connected bool
	files     map[string][]byte
	commands  []string

	mkdirErr   error
	execResult ssh.CommandResult
	createGate chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{connected: true, files: map[string][]byte{}}
}

func (f *fakeRemote) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeRemote) Execute(ctx context.Context, command string, _ time.Duration) (ssh.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	return f.execResult, nil
}

func (f *fakeRemote) MakeDir(ctx context.Context, path string, timeout time.Duration) error {
	f.mu.Lock()
	f.commands = append(f.commands, ssh.MkdirCommand(path))
	f.mu.Unlock()
	return f.mkdirErr
}

func (f *fakeRemote) Stat(path string) (os.FileInfo, error) {
	return nil, errors.New("stat unsupported")
}

func (f *fakeRemote) Open(path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeRemote) Create(path string) (io.WriteCloser, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	return &memFile{remote: f, path: path}, nil
}

func (f *fakeRemote) recordedCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

type memFile struct {
	remote *fakeRemote
	path   string
	buf    bytes.Buffer
}

func (m *memFile) Write(b []byte) (int, error) {
	return m.buf.Write(b)
}

func (m *memFile) Close() error {
	m.remote.mu.Lock()
	defer m.remote.mu.Unlock()
	m.remote.files[m.path] = m.buf.Bytes()
	return nil
}
