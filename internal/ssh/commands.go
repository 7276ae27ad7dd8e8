package ssh

import (
	"fmt"

	"al.essio.dev/pkg/shellescape"
)

// The only shell commands ever sent to the remote host. Every path is quoted
// so names containing quotes or metacharacters reach the shell intact.

// MkdirCommand creates dir and any missing parents.
func MkdirCommand(dir string) string {
	return fmt.Sprintf("mkdir -p %s", shellescape.Quote(dir))
}

// ExtractCommand unpacks archive into dir, then deletes the archive.
func ExtractCommand(archive, dir string) string {
	return fmt.Sprintf("tar -xzf %s -C %s && rm -f %s",
		shellescape.Quote(archive), shellescape.Quote(dir), shellescape.Quote(archive))
}

// ArchiveCommand packs parent/base into archive with base as the root entry.
func ArchiveCommand(archive, parent, base string) string {
	return fmt.Sprintf("tar -czf %s -C %s %s",
		shellescape.Quote(archive), shellescape.Quote(parent), shellescape.Quote(base))
}

// RemoveCommand deletes a single file, ignoring a missing one.
func RemoveCommand(path string) string {
	return fmt.Sprintf("rm -f %s", shellescape.Quote(path))
}
