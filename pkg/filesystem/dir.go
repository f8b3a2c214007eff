package filesystem

import (
	"errors"
	"io"
	"os"
	gopath "path"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
	"github.com/charlesng35/remotefs/pkg/metrics"
)

// Entry is one name in a directory listing.
type Entry struct {
	// Name is the entry's name within its directory. Servers typically
	// include the "." and ".." entries; callers walking a tree must skip
	// them.
	Name string

	// Path is the entry's full remote path, the directory joined with Name.
	Path string

	// Info carries the attributes the server sent along with the name.
	Info os.FileInfo
}

// DirIterator walks the entries of one remote directory. Entries arrive in
// server order, which is not sorted, and reflect the directory as the server
// listed it; changes made after the open are not picked up. The iterator is
// not safe for concurrent use; the session-level serialisation below it is.
type DirIterator struct {
	raw    RawDir
	root   string
	lk     Locker
	closed bool
}

// ReadDir opens the directory at path for iteration. The returned iterator
// must be closed unless it is drained to the end, which closes it
// automatically.
func (fs *FileSystem) ReadDir(path string) (*DirIterator, error) {
	release := fs.lk.Acquire()
	metrics.RemoteCalls.WithLabelValues("opendir").Inc()
	raw, err := fs.conn.OpenDir(path)
	release()
	if err != nil {
		return nil, remoteerr.FromError("opendir", path, err)
	}

	return &DirIterator{raw: raw, root: path, lk: fs.lk}, nil
}

// Next returns the next entry. It returns io.EOF once the listing is
// exhausted, at which point the iterator has already released its remote
// handle.
func (it *DirIterator) Next() (Entry, error) {
	if it.closed {
		return Entry{}, io.EOF
	}

	release := it.lk.Acquire()
	metrics.RemoteCalls.WithLabelValues("readdir").Inc()
	info, err := it.raw.Next()
	release()

	if err != nil {
		if errors.Is(err, io.EOF) {
			it.Close()
			return Entry{}, io.EOF
		}
		return Entry{}, remoteerr.FromError("readdir", it.root, err)
	}

	return Entry{
		Name: info.Name(),
		Path: gopath.Join(it.root, info.Name()),
		Info: info,
	}, nil
}

// Close releases the directory handle. Closing an exhausted or already
// closed iterator is harmless.
func (it *DirIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true

	release := it.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("closedir").Inc()
	return it.raw.Close()
}
