package filesystem

import (
	"io"
	"os"
)

// Locker grants scoped exclusive access to the protocol session shared by
// every handle. The returned release function must be called on every exit
// path; calling it more than once is safe.
//
// The session is not reentrant, even for a single goroutine: code holding a
// permit must not call anything that acquires again on the same call chain.
type Locker interface {
	Acquire() func()
}

// Conn is the narrow remote-filesystem protocol surface consumed by this
// package. Implementations perform exactly one protocol round trip per call
// and report failures as *errors.Error values; callers serialise access via
// a Locker.
type Conn interface {
	// OpenFile opens path with os-style flags (os.O_RDONLY, os.O_CREATE,
	// os.O_TRUNC, os.O_EXCL, os.O_APPEND, ...). perm applies only when the
	// call creates the file.
	OpenFile(path string, flags int, perm os.FileMode) (RawHandle, error)

	// OpenDir opens path for entry enumeration.
	OpenDir(path string) (RawDir, error)

	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	ReadLink(path string) (string, error)
	RealPath(path string) (string, error)

	// Rename moves oldPath to newPath. When overwrite is false the call
	// fails if newPath already exists.
	Rename(oldPath, newPath string, overwrite bool) error

	Remove(path string) error
	RemoveDirectory(path string) error
	Mkdir(path string, perm os.FileMode) error
	Symlink(target, link string) error

	// Close shuts down the protocol channel. Handles opened through the
	// connection are invalid afterwards.
	Close() error
}

// RawHandle is an open remote file. Its primitives are offset-based and may
// complete partially: ReadAt and WriteAt are permitted to transfer fewer
// bytes than requested without that being a failure. The reliable-I/O layer
// above hides this from stream callers.
type RawHandle interface {
	io.ReaderAt
	io.WriterAt

	// Stat fetches the current remote attributes of the open file.
	Stat() (os.FileInfo, error)

	Close() error
}

// RawDir yields the entries of an open remote directory one at a time.
// Next returns io.EOF when the listing is exhausted.
type RawDir interface {
	Next() (os.FileInfo, error)
	Close() error
}
