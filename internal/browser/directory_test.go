package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
)

type fakeLister struct {
	listings map[string][]ssh.Entry
	calls    []string
	err      error
}

func (f *fakeLister) List(_ context.Context, path string) ([]ssh.Entry, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return nil, f.err
	}
	return append([]ssh.Entry(nil), f.listings[path]...), nil
}

func names(entries []ssh.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRefreshSortsDirectoriesFirst(t *testing.T) {
	lister := &fakeLister{listings: map[string][]ssh.Entry{
		"/": {
			{Name: "z", IsDir: true},
			{Name: "a", IsDir: false},
			{Name: "B", IsDir: true},
		},
	}}
	d := NewDirectory("/")
	if err := d.Refresh(context.Background(), lister); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	want := []string{"B", "z", "a"}
	if got := names(d.Entries()); !equal(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}
}

func TestRefreshNotConnected(t *testing.T) {
	lister := &fakeLister{
		listings: map[string][]ssh.Entry{"/srv": {{Name: "keep"}}},
	}
	d := NewDirectory("/srv")
	if err := d.Refresh(context.Background(), lister); err != nil {
		t.Fatal(err)
	}

	lister.err = ssh.ErrNotConnected
	if err := d.Refresh(context.Background(), lister); !errors.Is(err, ssh.ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected, got %v", err)
	}
	if got := names(d.Entries()); !equal(got, []string{"keep"}) {
		t.Errorf("Expected previous listing to survive a failed refresh, got %v", got)
	}
}

func TestChangeDirCommitsPathAndEntries(t *testing.T) {
	lister := &fakeLister{listings: map[string][]ssh.Entry{
		"/home/u": {{Name: "docs", IsDir: true}},
	}}
	d := NewDirectory("/")
	if err := d.ChangeDir(context.Background(), lister, `\home\\u`); err != nil {
		t.Fatal(err)
	}
	if d.Path() != "/home/u" {
		t.Errorf("Expected path /home/u, got %s", d.Path())
	}
	if got := names(d.Entries()); !equal(got, []string{"docs"}) {
		t.Errorf("Expected [docs], got %v", got)
	}

	lister.err = errors.New("permission denied")
	if err := d.ChangeDir(context.Background(), lister, "/root"); err == nil {
		t.Fatal("Expected error")
	}
	if d.Path() != "/home/u" {
		t.Errorf("Expected path to stay /home/u after failure, got %s", d.Path())
	}
}

func TestDescend(t *testing.T) {
	lister := &fakeLister{listings: map[string][]ssh.Entry{
		"/a/": {{Name: "b", IsDir: true}, {Name: "f.txt"}},
	}}
	d := NewDirectory("/a/")
	if err := d.Refresh(context.Background(), lister); err != nil {
		t.Fatal(err)
	}

	got, err := d.Descend("b")
	if err != nil {
		t.Fatalf("Descend failed: %v", err)
	}
	if got != "/a/b" {
		t.Errorf("Expected /a/b, got %s", got)
	}
	if d.Path() != "/a/" {
		t.Errorf("Expected Descend not to move, path is %s", d.Path())
	}

	var notDir *NotADirectoryError
	if _, err := d.Descend("f.txt"); !errors.As(err, &notDir) {
		t.Errorf("Expected NotADirectoryError for a file, got %v", err)
	}
	if _, err := d.Descend("missing"); !errors.As(err, &notDir) {
		t.Errorf("Expected NotADirectoryError for a missing name, got %v", err)
	}
}

func TestUp(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/a/b", "/a"},
		{"/a", "/"},
		{"/a/b/", "/a"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := NewDirectory(tt.path)
			if got := d.Up(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	lister := &fakeLister{listings: map[string][]ssh.Entry{"/": {{Name: "x"}}}}
	d := NewDirectory("/")
	if err := d.Refresh(context.Background(), lister); err != nil {
		t.Fatal(err)
	}
	entries := d.Entries()
	entries[0].Name = "mutated"
	if _, ok := d.Lookup("x"); !ok {
		t.Error("Expected caller mutation not to leak into the directory")
	}
}

func TestListLocal(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "Zeta"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"beta.txt", "Alpha.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := ListLocal(dir)
	if err != nil {
		t.Fatalf("ListLocal failed: %v", err)
	}
	want := []string{"Zeta", "Alpha.txt", "beta.txt"}
	if got := names(entries); !equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if entries[1].Size != 4 {
		t.Errorf("Expected size 4, got %d", entries[1].Size)
	}
	if !entries[0].FileMode().IsDir() {
		t.Error("Expected directory mode bits on Zeta")
	}
}
