// Package fs provides a thin filesystem abstraction over [os], sized for the
// container writers and readers in this module: open/create a single file,
// stat it, rename or remove it. It exists so the direct-I/O disk thread in
// internal/blockio and the v5 writers can be exercised against a fake in
// tests without touching the real filesystem.
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
//
// Implementations must be safe for concurrent use by multiple goroutines.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for low-level operations like O_DIRECT alignment checks.
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// FS defines the filesystem operations the container writers/readers need.
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenDirect opens path for reading, requesting O_DIRECT from the OS.
	// The bool result reports whether direct I/O is actually in effect;
	// callers that can't get it (tmpfs, network filesystems, sandboxes)
	// get a buffered handle back instead of an error. See [OpenDirect].
	OpenDirect(path string) (File, bool, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Rename moves/renames a file. See [os.Rename].
	Rename(oldpath, newpath string) error
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
