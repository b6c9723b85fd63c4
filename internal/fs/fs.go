// Package fs provides the filesystem abstraction used by the patcher.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the patcher needs
//   - [Real]: production implementation using [os] and atomic renames
//   - [Chaos]: testing implementation that injects random or sticky failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("agents/agileflow-ci.md")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("agents/agileflow-ci.md", data, 0o644)
package fs

import (
	"os"
)

// FS defines the filesystem operations for reading and rewriting documents.
//
// Two implementations are provided:
//   - [Real]: production use, wraps [os] package
//   - [Chaos]: testing use, injects failures
//
// Paths use OS semantics (like the os package and path/filepath).
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces the file at path with data.
	// Uses a temp file + rename, so readers observe either the old or the
	// new content, never a partial write. The file ends up with mode perm.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)
}
