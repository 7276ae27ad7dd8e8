package archive

import (
	"archive/tar"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeTree(t *testing.T, root string, files map[string]string) {
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

func TestCreateExtractRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	files := map[string]string{
		"README.md":         "hello",
		"src/main.go":       "package main\n",
		"src/deep/x/y.txt":  strings.Repeat("y", 100000),
		"name with space.c": "int main;",
	}
	writeTree(t, src, files)
	if err := os.MkdirAll(filepath.Join(src, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "project.tar.gz")
	if err := Create(src, archivePath); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dst := t.TempDir()
	if err := Extract(archivePath, dst); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dst, "project", filepath.FromSlash(name)))
		if err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("Content mismatch for %s", name)
		}
	}
	if info, err := os.Stat(filepath.Join(dst, "project", "empty")); err != nil || !info.IsDir() {
		t.Errorf("Expected empty directory to be preserved, err=%v", err)
	}
}

func TestCreateReadableBySystemTar(t *testing.T) {
	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar not available")
	}
	src := filepath.Join(t.TempDir(), "docs")
	writeTree(t, src, map[string]string{"a/b.txt": "bee"})

	archivePath := filepath.Join(t.TempDir(), "docs.tar.gz")
	if err := Create(src, archivePath); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dst := t.TempDir()
	out, err := exec.Command("tar", "-xzf", archivePath, "-C", dst).CombinedOutput()
	if err != nil {
		t.Fatalf("tar failed: %v: %s", err, out)
	}
	got, err := os.ReadFile(filepath.Join(dst, "docs", "a", "b.txt"))
	if err != nil || string(got) != "bee" {
		t.Errorf("Expected docs/a/b.txt = bee, got %q (%v)", got, err)
	}
}

func TestCreateRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Create(f, filepath.Join(t.TempDir(), "out.tar.gz")); err == nil {
		t.Error("Expected error archiving a regular file")
	}
}

// writeArchive builds a tar.gz from raw headers. Regular files get body as
// content.
func writeArchive(t *testing.T, headers []*tar.Header, body string) string {
	t.Helper()
	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	for _, h := range headers {
		if h.Typeflag == tar.TypeReg {
			h.Size = int64(len(body))
		}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
		if h.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return archivePath
}

func TestExtractRejectsTraversal(t *testing.T) {
	outside := t.TempDir()

	tests := []struct {
		name    string
		headers []*tar.Header
	}{
		{"dot-dot name", []*tar.Header{
			{Name: "../escaped.txt", Mode: 0644, Typeflag: tar.TypeReg},
		}},
		{"file through symlinked dir", []*tar.Header{
			{Name: "proj/", Mode: 0755, Typeflag: tar.TypeDir},
			{Name: "proj/link", Linkname: outside, Typeflag: tar.TypeSymlink},
			{Name: "proj/link/escaped.txt", Mode: 0644, Typeflag: tar.TypeReg},
		}},
		{"relative symlink out of destination", []*tar.Header{
			{Name: "proj/link", Linkname: "../../..", Typeflag: tar.TypeSymlink},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := writeArchive(t, tt.headers, "pwned")
			parent := t.TempDir()
			dst := filepath.Join(parent, "inside")

			if err := Extract(archivePath, dst); err == nil {
				t.Fatal("Expected the archive to be rejected")
			}
			for _, dir := range []string{parent, outside} {
				if _, err := os.Stat(filepath.Join(dir, "escaped.txt")); !os.IsNotExist(err) {
					t.Errorf("Expected no file written to %s, got %v", dir, err)
				}
			}
		})
	}
}

func TestExtractKeepsInternalSymlink(t *testing.T) {
	archivePath := writeArchive(t, []*tar.Header{
		{Name: "proj/", Mode: 0755, Typeflag: tar.TypeDir},
		{Name: "proj/real.txt", Mode: 0644, Typeflag: tar.TypeReg},
		{Name: "proj/alias.txt", Linkname: "real.txt", Typeflag: tar.TypeSymlink},
	}, "data")

	dst := t.TempDir()
	if err := Extract(archivePath, dst); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	target, err := os.Readlink(filepath.Join(dst, "proj", "alias.txt"))
	if err != nil || target != "real.txt" {
		t.Errorf("Expected alias.txt -> real.txt, got %q (%v)", target, err)
	}
}

func TestExtractReplacesSymlinkWithFile(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(outside, []byte("safe"), 0644); err != nil {
		t.Fatal(err)
	}
	dst := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dst, "proj"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dst, "proj", "note.txt")); err != nil {
		t.Fatal(err)
	}

	archivePath := writeArchive(t, []*tar.Header{
		{Name: "proj/note.txt", Mode: 0644, Typeflag: tar.TypeReg},
	}, "new")
	if err := Extract(archivePath, dst); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got, _ := os.ReadFile(outside); string(got) != "safe" {
		t.Errorf("Expected file behind the symlink untouched, got %q", got)
	}
	if got, _ := os.ReadFile(filepath.Join(dst, "proj", "note.txt")); string(got) != "new" {
		t.Errorf("Expected note.txt replaced, got %q", got)
	}
}
