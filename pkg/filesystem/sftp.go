package filesystem

import (
	"errors"
	"io"
	"os"

	"github.com/pkg/sftp"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// sftpConn adapts an *sftp.Client to the Conn interface. Every error leaving
// the adapter is already categorised, carrying the server's status code where
// one was received.
type sftpConn struct {
	client *sftp.Client
}

// NewSFTPConn wraps an established SFTP client. The caller remains
// responsible for serialising access via the session's Locker; the adapter
// performs no locking of its own.
func NewSFTPConn(client *sftp.Client) Conn {
	return &sftpConn{client: client}
}

func (c *sftpConn) OpenFile(path string, flags int, perm os.FileMode) (RawHandle, error) {
	// The client applies the server's default mode to created files; perm
	// is accepted for interface compatibility but not transmitted.
	_ = perm

	f, err := c.client.OpenFile(path, flags)
	if err != nil {
		return nil, translateSFTPError("open", path, err)
	}
	return &sftpHandle{file: f, path: path}, nil
}

func (c *sftpConn) OpenDir(path string) (RawDir, error) {
	// The listing is fetched eagerly so that a missing or unreadable
	// directory fails at open rather than on the first entry.
	infos, err := c.client.ReadDir(path)
	if err != nil {
		return nil, translateSFTPError("opendir", path, err)
	}
	return &sftpDir{entries: infos}, nil
}

func (c *sftpConn) Stat(path string) (os.FileInfo, error) {
	info, err := c.client.Stat(path)
	if err != nil {
		return nil, translateSFTPError("stat", path, err)
	}
	return info, nil
}

func (c *sftpConn) Lstat(path string) (os.FileInfo, error) {
	info, err := c.client.Lstat(path)
	if err != nil {
		return nil, translateSFTPError("lstat", path, err)
	}
	return info, nil
}

func (c *sftpConn) ReadLink(path string) (string, error) {
	target, err := c.client.ReadLink(path)
	if err != nil {
		return "", translateSFTPError("readlink", path, err)
	}
	return target, nil
}

func (c *sftpConn) RealPath(path string) (string, error) {
	resolved, err := c.client.RealPath(path)
	if err != nil {
		return "", translateSFTPError("realpath", path, err)
	}
	return resolved, nil
}

func (c *sftpConn) Rename(oldpath, newpath string, overwrite bool) error {
	var err error
	if overwrite {
		err = c.client.PosixRename(oldpath, newpath)
	} else {
		err = c.client.Rename(oldpath, newpath)
	}
	if err != nil {
		return translateSFTPError("rename", oldpath, err)
	}
	return nil
}

func (c *sftpConn) Remove(path string) error {
	if err := c.client.Remove(path); err != nil {
		return translateSFTPError("remove", path, err)
	}
	return nil
}

func (c *sftpConn) RemoveDirectory(path string) error {
	if err := c.client.RemoveDirectory(path); err != nil {
		return translateSFTPError("rmdir", path, err)
	}
	return nil
}

func (c *sftpConn) Mkdir(path string, perm os.FileMode) error {
	// As with OpenFile, the creation mode is left to the server.
	_ = perm

	if err := c.client.Mkdir(path); err != nil {
		return translateSFTPError("mkdir", path, err)
	}
	return nil
}

func (c *sftpConn) Symlink(target, link string) error {
	if err := c.client.Symlink(target, link); err != nil {
		return translateSFTPError("symlink", link, err)
	}
	return nil
}

func (c *sftpConn) Close() error {
	if err := c.client.Close(); err != nil {
		return translateSFTPError("close", "", err)
	}
	return nil
}

type sftpHandle struct {
	file *sftp.File
	path string
}

func (h *sftpHandle) ReadAt(p []byte, off int64) (int, error) {
	n, err := h.file.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, translateSFTPError("read", h.path, err)
	}
	return n, err
}

func (h *sftpHandle) WriteAt(p []byte, off int64) (int, error) {
	n, err := h.file.WriteAt(p, off)
	if err != nil {
		return n, translateSFTPError("write", h.path, err)
	}
	return n, nil
}

func (h *sftpHandle) Stat() (os.FileInfo, error) {
	info, err := h.file.Stat()
	if err != nil {
		return nil, translateSFTPError("fstat", h.path, err)
	}
	return info, nil
}

func (h *sftpHandle) Close() error {
	if err := h.file.Close(); err != nil {
		return translateSFTPError("close", h.path, err)
	}
	return nil
}

// sftpDir serves a snapshot listing taken when the directory was opened.
type sftpDir struct {
	entries []os.FileInfo
	next    int
}

func (d *sftpDir) Next() (os.FileInfo, error) {
	if d.next >= len(d.entries) {
		return nil, io.EOF
	}
	info := d.entries[d.next]
	d.next++
	return info, nil
}

func (d *sftpDir) Close() error {
	d.entries = nil
	return nil
}

// translateSFTPError maps a client error onto the error taxonomy. A status
// reply from the server becomes a filesystem error carrying the status code;
// anything else is a transport failure.
func translateSFTPError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var status *sftp.StatusError
	if errors.As(err, &status) {
		return remoteerr.NewFilesystem(op, path, remoteerr.FxCode(status.Code), err)
	}
	if errors.Is(err, os.ErrNotExist) {
		return remoteerr.NewFilesystem(op, path, remoteerr.FxNoSuchFile, err)
	}
	if errors.Is(err, os.ErrPermission) {
		return remoteerr.NewFilesystem(op, path, remoteerr.FxPermissionDenied, err)
	}

	return remoteerr.NewTransport(op, path, err)
}
