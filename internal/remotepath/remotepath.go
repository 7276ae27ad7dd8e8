// Package remotepath normalizes and joins POSIX-style paths on the remote host.
//
// Remote paths are never run through filepath: the local separator may differ
// from the remote one, and "." / ".." segments are left for the server to resolve.
package remotepath

import (
	"path"
	"strings"
)

// Root is the remote filesystem root.
const Root = "/"

// Normalize converts backslashes to slashes, collapses runs of slashes and
// makes the path absolute. An empty path normalizes to Root.
func Normalize(p string) string {
	if p == "" {
		return Root
	}
	p = strings.ReplaceAll(p, `\`, "/")

	var b strings.Builder
	b.Grow(len(p) + 1)
	if p[0] != '/' {
		b.WriteByte('/')
	}
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Join appends a single path segment to base. The name is not normalized.
func Join(base, name string) string {
	base = Normalize(base)
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

// Parent returns the directory containing p. The parent of Root is Root.
func Parent(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	parent := path.Dir(strings.TrimRight(p, "/"))
	if parent == "" || parent == "." {
		return Root
	}
	return Normalize(parent)
}

// Base returns the last element of p, ignoring trailing slashes.
func Base(p string) string {
	trimmed := strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}
