package filesystem

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
	"github.com/charlesng35/remotefs/pkg/metrics"
)

// FileSystem is a connection to the filesystem on a remote server. All of
// its operations, and all operations of the streams and iterators it hands
// out, are serialised onto the single underlying protocol session via the
// Locker supplied at construction.
type FileSystem struct {
	conn    Conn
	lk      Locker
	log     *zap.Logger
	bufSize int
}

// Option customises a FileSystem.
type Option func(*FileSystem)

// WithLogger attaches a logger to the filesystem and its streams.
func WithLogger(log *zap.Logger) Option {
	return func(fs *FileSystem) {
		if log != nil {
			fs.log = log
		}
	}
}

// WithBufferSize sets the default stream batching buffer. Zero disables
// batching for streams that do not choose their own size.
func WithBufferSize(size int) Option {
	return func(fs *FileSystem) {
		if size >= 0 {
			fs.bufSize = size
		}
	}
}

// New creates a filesystem over an established protocol connection. The
// Locker must be the one guarding the session the connection runs on.
func New(conn Conn, lk Locker, opts ...Option) *FileSystem {
	fs := &FileSystem{
		conn:    conn,
		lk:      lk,
		log:     zap.NewNop(),
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Close shuts down the protocol channel. Streams and iterators opened
// through the filesystem are invalid afterwards.
func (fs *FileSystem) Close() error {
	release := fs.lk.Acquire()
	defer release()

	return fs.conn.Close()
}

func (fs *FileSystem) open(op, path string, intent Intent, bufSize int) (*stream, error) {
	// Local validation happens before any remote call.
	flags, perm, err := resolveOpenFlags(op, path, intent)
	if err != nil {
		return nil, err
	}
	if bufSize < 0 {
		bufSize = fs.bufSize
	}

	release := fs.lk.Acquire()
	metrics.RemoteCalls.WithLabelValues("open").Inc()
	raw, err := fs.conn.OpenFile(path, flags, perm)
	release()
	if err != nil {
		return nil, remoteerr.FromError(op, path, err)
	}

	fs.log.Debug("opened remote file",
		zap.String("path", path), zap.Int("flags", flags))

	return &stream{
		h:       newHandle(raw, path, fs.lk, fs.log),
		bufSize: bufSize,
	}, nil
}

// OpenInput opens path for reading with the default buffer size. The file
// is opened as if In were set regardless of intent.
func (fs *FileSystem) OpenInput(path string, intent Intent) (*InputStream, error) {
	return fs.OpenInputBuffered(path, intent, -1)
}

// OpenInputBuffered is OpenInput with an explicit batching buffer size.
// A size of zero issues one remote call per caller read.
func (fs *FileSystem) OpenInputBuffered(path string, intent Intent, bufferSize int) (*InputStream, error) {
	s, err := fs.open("open", path, intent|In, bufferSize)
	if err != nil {
		return nil, err
	}
	return &InputStream{stream: *s}, nil
}

// OpenOutput opens path for writing with the default buffer size. The file
// is opened as if Out were set regardless of intent.
func (fs *FileSystem) OpenOutput(path string, intent Intent) (*OutputStream, error) {
	return fs.OpenOutputBuffered(path, intent, -1)
}

// OpenOutputBuffered is OpenOutput with an explicit batching buffer size.
// A size of zero issues one remote call per caller write.
func (fs *FileSystem) OpenOutputBuffered(path string, intent Intent, bufferSize int) (*OutputStream, error) {
	s, err := fs.open("open", path, intent|Out, bufferSize)
	if err != nil {
		return nil, err
	}
	return &OutputStream{stream: *s}, nil
}

// OpenFile opens path for reading and writing through one shared cursor.
// A zero intent defaults to In|Out.
func (fs *FileSystem) OpenFile(path string, intent Intent) (*FileStream, error) {
	return fs.OpenFileBuffered(path, intent, -1)
}

// OpenFileBuffered is OpenFile with an explicit batching buffer size.
func (fs *FileSystem) OpenFileBuffered(path string, intent Intent, bufferSize int) (*FileStream, error) {
	if intent == 0 {
		intent = In | Out
	}
	s, err := fs.open("open", path, intent, bufferSize)
	if err != nil {
		return nil, err
	}
	return &FileStream{stream: *s}, nil
}

// Attributes queries a path for its attributes. When followLinks is true the
// queried file is the target of any chain of links, otherwise the link
// itself.
func (fs *FileSystem) Attributes(path string, followLinks bool) (os.FileInfo, error) {
	release := fs.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("stat").Inc()
	if followLinks {
		return fs.conn.Stat(path)
	}
	return fs.conn.Lstat(path)
}

// Exists reports whether a file exists at path.
func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := fs.Attributes(path, false)
	if err != nil {
		if remoteerr.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadLink returns the target a symbolic link points at, without resolving
// further links.
func (fs *FileSystem) ReadLink(path string) (string, error) {
	release := fs.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("readlink").Inc()
	return fs.conn.ReadLink(path)
}

// RealPath canonicalises path on the server, resolving every link.
func (fs *FileSystem) RealPath(path string) (string, error) {
	release := fs.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("realpath").Inc()
	return fs.conn.RealPath(path)
}

// Symlink creates a symbolic link at link pointing at target. Many servers,
// OpenSSH included, swap the argument order of the underlying request;
// callers talking to such servers must swap the arguments themselves.
func (fs *FileSystem) Symlink(target, link string) error {
	release := fs.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("symlink").Inc()
	return fs.conn.Symlink(target, link)
}

// OverwriteBehaviour states what Rename should do when the destination
// already exists.
type OverwriteBehaviour int

const (
	// PreventOverwrite fails the rename if the destination exists.
	PreventOverwrite OverwriteBehaviour = iota

	// AllowOverwrite replaces an existing destination. The server may not
	// support overwriting, in which case this acts like PreventOverwrite.
	AllowOverwrite

	// AtomicOverwrite replaces an existing destination using only atomic
	// methods where the server offers them.
	AtomicOverwrite
)

// Rename moves the file at source to destination.
func (fs *FileSystem) Rename(source, destination string, behaviour OverwriteBehaviour) error {
	overwrite := behaviour == AllowOverwrite || behaviour == AtomicOverwrite

	release := fs.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("rename").Inc()
	return fs.conn.Rename(source, destination, overwrite)
}

// Remove deletes the file at path. A symlink is removed, not its target; a
// directory is removed only if empty. It returns false without error when
// nothing exists at path.
//
// The protocol needs to be told whether it is removing a directory, so this
// costs one extra stat round trip over a plain unlink.
func (fs *FileSystem) Remove(path string) (bool, error) {
	info, err := fs.Attributes(path, false)
	if err != nil {
		if remoteerr.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	if info.IsDir() {
		return fs.removeOne(path, true)
	}
	return fs.removeOne(path, false)
}

// RemoveAll deletes path and, if it is a directory, everything below it.
// It returns the number of files removed.
func (fs *FileSystem) RemoveAll(path string) (uint64, error) {
	info, err := fs.Attributes(path, false)
	if err != nil {
		if remoteerr.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	if !info.IsDir() {
		removed, err := fs.removeOne(path, false)
		if err != nil || !removed {
			return 0, err
		}
		return 1, nil
	}

	return fs.removeTree(path)
}

func (fs *FileSystem) removeTree(root string) (uint64, error) {
	var count uint64

	it, err := fs.ReadDir(root)
	if err != nil {
		return count, err
	}
	defer it.Close()

	for {
		entry, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return count, err
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}

		if entry.Info.IsDir() {
			n, err := fs.removeTree(entry.Path)
			count += n
			if err != nil {
				return count, err
			}
		} else {
			removed, err := fs.removeOne(entry.Path, false)
			if err != nil {
				return count, err
			}
			if removed {
				count++
			}
		}
	}

	removed, err := fs.removeOne(root, true)
	if err != nil {
		return count, err
	}
	if removed {
		count++
	}
	return count, nil
}

func (fs *FileSystem) removeOne(path string, isDirectory bool) (bool, error) {
	release := fs.lk.Acquire()
	defer release()

	var err error
	if isDirectory {
		metrics.RemoteCalls.WithLabelValues("rmdir").Inc()
		err = fs.conn.RemoveDirectory(path)
	} else {
		metrics.RemoteCalls.WithLabelValues("remove").Inc()
		err = fs.conn.Remove(path)
	}
	if err != nil {
		// Something else removed it first; not an error.
		if remoteerr.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Directories are created group- and world-readable but writable only by
// the owner.
const defaultDirectoryMode os.FileMode = 0o755

// Mkdir makes a directory accessible at path. It returns true if a new
// directory was created and false if one already existed there.
func (fs *FileSystem) Mkdir(path string) (bool, error) {
	release := fs.lk.Acquire()
	metrics.RemoteCalls.WithLabelValues("mkdir").Inc()
	err := fs.conn.Mkdir(path, defaultDirectoryMode)
	release()

	if err == nil {
		return true, nil
	}

	// The failure might just be that the directory already exists. Servers
	// commonly report a generic failure for that, so the only way to know
	// is to check. Checking after the attempt keeps the common case to a
	// single round trip.
	info, statErr := fs.Attributes(path, false)
	if statErr == nil && info.IsDir() {
		return false, nil
	}
	return false, err
}
