package filesystem

import (
	"io"
	"os"
	gopath "path"
	"sort"
	"strings"
	"sync"
	"time"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// fakeLocker tracks acquisition so tests can assert that every remote call
// happens while the session is held.
type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	acquires int
}

func (l *fakeLocker) Acquire() func() {
	l.mu.Lock()
	l.held = true
	l.acquires++

	var once sync.Once
	return func() {
		once.Do(func() {
			l.held = false
			l.mu.Unlock()
		})
	}
}

type fakeFile struct {
	data  []byte
	mode  os.FileMode
	isDir bool
}

type fakeInfo struct {
	name string
	size int64
	mode os.FileMode
	dir  bool
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return i.size }
func (i fakeInfo) Mode() os.FileMode  { return i.mode }
func (i fakeInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (i fakeInfo) IsDir() bool        { return i.dir }
func (i fakeInfo) Sys() any           { return nil }

// fakeConn is an in-memory Conn. It honours the open-flag semantics the real
// server applies, zero-fills writes past the end of a file, and can be told
// to complete reads and writes partially.
type fakeConn struct {
	lk    *fakeLocker
	files map[string]*fakeFile

	// Per-call transfer caps; zero means unlimited.
	readLimit  int
	writeLimit int

	readCalls  int
	writeCalls int

	// unlockedCall is set if any remote call ran without the session held.
	unlockedCall bool

	closed bool
}

func newFakeConn(lk *fakeLocker) *fakeConn {
	return &fakeConn{lk: lk, files: map[string]*fakeFile{}}
}

func (c *fakeConn) put(path, content string) {
	c.files[path] = &fakeFile{data: []byte(content), mode: 0o644}
}

func (c *fakeConn) putDir(path string) {
	c.files[path] = &fakeFile{mode: os.ModeDir | 0o755, isDir: true}
}

func (c *fakeConn) content(path string) string {
	f, ok := c.files[path]
	if !ok {
		return ""
	}
	return string(f.data)
}

func (c *fakeConn) checkLock() {
	if c.lk != nil && !c.lk.held {
		c.unlockedCall = true
	}
}

func notExist(op, path string) error {
	return remoteerr.NewFilesystem(op, path, remoteerr.FxNoSuchFile, os.ErrNotExist)
}

func (c *fakeConn) OpenFile(path string, flags int, perm os.FileMode) (RawHandle, error) {
	c.checkLock()

	f, exists := c.files[path]
	switch {
	case exists && flags&os.O_EXCL != 0:
		return nil, remoteerr.NewFilesystem("open", path, remoteerr.FxFileAlreadyExists, os.ErrExist)
	case !exists && flags&os.O_CREATE == 0:
		return nil, notExist("open", path)
	case !exists:
		f = &fakeFile{mode: perm}
		c.files[path] = f
	}

	if flags&os.O_TRUNC != 0 {
		f.data = nil
	}

	return &fakeHandle{conn: c, file: f, name: gopath.Base(path)}, nil
}

func (c *fakeConn) OpenDir(path string) (RawDir, error) {
	c.checkLock()

	dir, ok := c.files[path]
	if !ok {
		return nil, notExist("opendir", path)
	}
	if !dir.isDir {
		return nil, remoteerr.NewFilesystem("opendir", path, remoteerr.FxNotADirectory, nil)
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	var names []string
	for p := range c.files {
		if !strings.HasPrefix(p, prefix) || p == path {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	sort.Strings(names)

	entries := make([]os.FileInfo, 0, len(names))
	for _, name := range names {
		f := c.files[prefix+name]
		entries = append(entries, fakeInfo{
			name: name, size: int64(len(f.data)), mode: f.mode, dir: f.isDir,
		})
	}
	return &fakeDir{conn: c, entries: entries}, nil
}

func (c *fakeConn) Stat(path string) (os.FileInfo, error)  { return c.Lstat(path) }
func (c *fakeConn) Lstat(path string) (os.FileInfo, error) {
	c.checkLock()

	f, ok := c.files[path]
	if !ok {
		return nil, notExist("stat", path)
	}
	return fakeInfo{
		name: gopath.Base(path), size: int64(len(f.data)), mode: f.mode, dir: f.isDir,
	}, nil
}

func (c *fakeConn) ReadLink(path string) (string, error) {
	c.checkLock()
	return "", remoteerr.NewFilesystem("readlink", path, remoteerr.FxOpUnsupported, nil)
}

func (c *fakeConn) RealPath(path string) (string, error) {
	c.checkLock()
	return gopath.Clean("/" + path), nil
}

func (c *fakeConn) Rename(oldpath, newpath string, overwrite bool) error {
	c.checkLock()

	f, ok := c.files[oldpath]
	if !ok {
		return notExist("rename", oldpath)
	}
	if _, exists := c.files[newpath]; exists && !overwrite {
		return remoteerr.NewFilesystem("rename", newpath, remoteerr.FxFileAlreadyExists, os.ErrExist)
	}
	delete(c.files, oldpath)
	c.files[newpath] = f
	return nil
}

func (c *fakeConn) Remove(path string) error {
	c.checkLock()

	if _, ok := c.files[path]; !ok {
		return notExist("remove", path)
	}
	delete(c.files, path)
	return nil
}

func (c *fakeConn) RemoveDirectory(path string) error { return c.Remove(path) }

func (c *fakeConn) Mkdir(path string, perm os.FileMode) error {
	c.checkLock()

	if _, ok := c.files[path]; ok {
		return remoteerr.NewFilesystem("mkdir", path, remoteerr.FxFailure, os.ErrExist)
	}
	c.files[path] = &fakeFile{mode: os.ModeDir | perm, isDir: true}
	return nil
}

func (c *fakeConn) Symlink(target, link string) error {
	c.checkLock()
	c.files[link] = &fakeFile{data: []byte(target), mode: os.ModeSymlink | 0o777}
	return nil
}

func (c *fakeConn) Close() error {
	c.checkLock()
	c.closed = true
	return nil
}

type fakeHandle struct {
	conn   *fakeConn
	file   *fakeFile
	name   string
	closed bool

	readErr  error // returned by the next ReadAt
	writeErr error // returned by the next WriteAt
}

func (h *fakeHandle) ReadAt(p []byte, off int64) (int, error) {
	h.conn.checkLock()
	h.conn.readCalls++

	if h.readErr != nil {
		err := h.readErr
		h.readErr = nil
		return 0, err
	}

	if off >= int64(len(h.file.data)) {
		return 0, io.EOF
	}

	n := copy(p, h.file.data[off:])
	if h.conn.readLimit > 0 && n > h.conn.readLimit {
		n = h.conn.readLimit
	}
	if off+int64(n) == int64(len(h.file.data)) && n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *fakeHandle) WriteAt(p []byte, off int64) (int, error) {
	h.conn.checkLock()
	h.conn.writeCalls++

	if h.writeErr != nil {
		err := h.writeErr
		h.writeErr = nil
		return 0, err
	}

	n := len(p)
	if h.conn.writeLimit > 0 && n > h.conn.writeLimit {
		n = h.conn.writeLimit
	}

	end := off + int64(n)
	if end > int64(len(h.file.data)) {
		// Writes past the end of file zero-fill the gap.
		grown := make([]byte, end)
		copy(grown, h.file.data)
		h.file.data = grown
	}
	copy(h.file.data[off:end], p[:n])
	return n, nil
}

func (h *fakeHandle) Stat() (os.FileInfo, error) {
	h.conn.checkLock()
	return fakeInfo{name: h.name, size: int64(len(h.file.data)), mode: h.file.mode}, nil
}

func (h *fakeHandle) Close() error {
	h.conn.checkLock()
	h.closed = true
	return nil
}

type fakeDir struct {
	conn    *fakeConn
	entries []os.FileInfo
	next    int
	closed  bool
}

func (d *fakeDir) Next() (os.FileInfo, error) {
	d.conn.checkLock()

	if d.next >= len(d.entries) {
		return nil, io.EOF
	}
	info := d.entries[d.next]
	d.next++
	return info, nil
}

func (d *fakeDir) Close() error {
	d.conn.checkLock()
	d.closed = true
	return nil
}

func newTestFS(opts ...Option) (*FileSystem, *fakeConn, *fakeLocker) {
	lk := &fakeLocker{}
	conn := newFakeConn(lk)
	fs := New(conn, lk, opts...)
	return fs, conn, lk
}
