// Package browser holds the remote directory being viewed and the navigation
// rules over it.
package browser

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/remotepath"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
)

// Lister lists a remote directory. *ssh.Session satisfies it.
type Lister interface {
	List(ctx context.Context, path string) ([]ssh.Entry, error)
}

// NotADirectoryError is returned by Descend when name does not refer to a
// directory in the current listing.
type NotADirectoryError struct {
	Name string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Name)
}

// Directory is the current remote path and its sorted entries. Path and
// entries are replaced together, so a reader sees either the old pair or the
// new one.
type Directory struct {
	mu      sync.RWMutex
	path    string
	entries []ssh.Entry
}

// NewDirectory starts at path with no entries loaded.
func NewDirectory(path string) *Directory {
	return &Directory{path: remotepath.Normalize(path)}
}

// Path returns the current normalized path.
func (d *Directory) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Entries returns a copy of the current listing.
func (d *Directory) Entries() []ssh.Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]ssh.Entry(nil), d.entries...)
}

// Lookup finds an entry of the current listing by name.
func (d *Directory) Lookup(name string) (ssh.Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entries {
		if e.Name == name {
			return e, true
		}
	}
	return ssh.Entry{}, false
}

// Refresh re-lists the current path. On error the previous listing is kept.
func (d *Directory) Refresh(ctx context.Context, lister Lister) error {
	return d.ChangeDir(ctx, lister, d.Path())
}

// ChangeDir lists path and, on success, makes it the current directory.
func (d *Directory) ChangeDir(ctx context.Context, lister Lister, path string) error {
	path = remotepath.Normalize(path)
	entries, err := lister.List(ctx, path)
	if err != nil {
		return err
	}
	SortEntries(entries)

	d.mu.Lock()
	d.path = path
	d.entries = entries
	d.mu.Unlock()
	return nil
}

// Descend returns the path of the child directory name. It does not change
// the current directory; navigation goes through ChangeDir.
func (d *Directory) Descend(name string) (string, error) {
	e, ok := d.Lookup(name)
	if !ok || !e.IsDir {
		return "", &NotADirectoryError{Name: name}
	}
	return remotepath.Join(d.Path(), name), nil
}

// Up returns the parent of the current path, or the path itself at the root.
func (d *Directory) Up() string {
	return remotepath.Parent(d.Path())
}

// SortEntries orders directories before files, then by case-insensitive name.
func SortEntries(entries []ssh.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

// ListLocal lists a local directory with the same ordering as remote ones.
func ListLocal(dir string) ([]ssh.Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]ssh.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, ssh.EntryFromFileInfo(info))
	}
	SortEntries(entries)
	return entries, nil
}
