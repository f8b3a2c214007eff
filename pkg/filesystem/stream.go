package filesystem

import (
	"io"
	"os"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// DefaultBufferSize is the batching buffer used by streams unless the caller
// chooses another size. A size of zero disables batching entirely: every
// caller read or write becomes at least one remote call.
const DefaultBufferSize = 32 * 1024

// stream is the state shared by the input, output and duplex façades. Reads
// and writes share one logical cursor: a write moves the position a
// subsequent read continues from and vice versa, mirroring conventional
// random-access file semantics.
//
// Streams are not safe for concurrent use by multiple goroutines; the
// session-level serialisation below them is.
type stream struct {
	h       *handle
	pos     int64
	bufSize int

	// Pending written bytes not yet sent. Invariant while non-empty:
	// wstart + len(wbuf) == pos.
	wbuf   []byte
	wstart int64

	// Read-ahead. Invariant while roff < len(rbuf): the remote offset of
	// rbuf[roff] is pos.
	rbuf []byte
	roff int

	closed bool
}

func (s *stream) errClosed(op string) error {
	return remoteerr.NewTransport(op, s.h.path, os.ErrClosed)
}

func (s *stream) discardReadAhead() {
	s.rbuf = s.rbuf[:0]
	s.roff = 0
}

// flush sends any buffered written bytes. The buffer is dropped whether or
// not the write succeeds; on failure the already-accepted prefix is lost.
func (s *stream) flush() error {
	if len(s.wbuf) == 0 {
		return nil
	}

	data := s.wbuf
	s.wbuf = s.wbuf[:0]

	_, err := writeFull(s.h, data, s.wstart)
	return err
}

func (s *stream) read(p []byte) (int, error) {
	if s.closed {
		return 0, s.errClosed("read")
	}
	if err := s.flush(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(p) {
		if avail := len(s.rbuf) - s.roff; avail > 0 {
			n := copy(p[total:], s.rbuf[s.roff:])
			s.roff += n
			s.pos += int64(n)
			total += n
			continue
		}

		need := len(p) - total
		if s.bufSize == 0 || need >= s.bufSize {
			n, err := readFull(s.h, p[total:], s.pos)
			s.pos += int64(n)
			total += n
			if err != nil {
				return total, err
			}
			// readFull returns short only at end of file.
			break
		}

		if cap(s.rbuf) < s.bufSize {
			s.rbuf = make([]byte, 0, s.bufSize)
		}
		fill := s.rbuf[:s.bufSize]
		n, err := readFull(s.h, fill, s.pos)
		s.rbuf = fill[:n]
		s.roff = 0
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}

	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

func (s *stream) write(p []byte) (int, error) {
	if s.closed {
		return 0, s.errClosed("write")
	}

	// Writing invalidates any read-ahead: the shared cursor means the next
	// read continues from wherever this write finishes.
	s.discardReadAhead()

	if s.bufSize == 0 {
		n, err := writeFull(s.h, p, s.pos)
		s.pos += int64(n)
		return n, err
	}

	if len(s.wbuf) > 0 && s.wstart+int64(len(s.wbuf)) != s.pos {
		if err := s.flush(); err != nil {
			return 0, err
		}
	}

	total := 0
	for total < len(p) {
		if len(s.wbuf) == 0 {
			s.wstart = s.pos

			// Large writes bypass the buffer once it is empty.
			if len(p)-total >= s.bufSize {
				n, err := writeFull(s.h, p[total:], s.pos)
				s.pos += int64(n)
				total += n
				if err != nil {
					return total, err
				}
				continue
			}
		}

		room := s.bufSize - len(s.wbuf)
		if room == 0 {
			if err := s.flush(); err != nil {
				return total, err
			}
			continue
		}

		n := room
		if rest := len(p) - total; rest < n {
			n = rest
		}
		s.wbuf = append(s.wbuf, p[total:total+n]...)
		s.pos += int64(n)
		total += n
	}

	return total, nil
}

func (s *stream) seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, s.errClosed("seek")
	}

	// Flush first so an end-relative seek observes what was written.
	if err := s.flush(); err != nil {
		return 0, err
	}
	s.discardReadAhead()

	next, err := resolveSeek(s.h, s.pos, offset, whence)
	if err != nil {
		return 0, err
	}

	s.pos = next
	return next, nil
}

// close flushes pending writes and releases the handle. The flush failure,
// if any, is surfaced; a failure to release the remote handle is swallowed.
// Closing twice is harmless.
func (s *stream) close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.flush()
	s.discardReadAhead()
	s.h.close()
	return flushErr
}

// InputStream provides seekable read access to a remote file. The file is
// opened as if In had been specified whether or not it was.
type InputStream struct {
	stream
}

var (
	_ io.ReadCloser = (*InputStream)(nil)
	_ io.Seeker     = (*InputStream)(nil)
)

// Read fills p from the current position. It returns fewer bytes than
// requested only when end-of-file has been reached, and returns io.EOF only
// when no bytes at all remain.
func (s *InputStream) Read(p []byte) (int, error) { return s.read(p) }

// Seek moves the stream's cursor and returns the new absolute offset.
func (s *InputStream) Seek(offset int64, whence int) (int64, error) {
	return s.seek(offset, whence)
}

// Close releases the remote handle.
func (s *InputStream) Close() error { return s.close() }

// OutputStream provides seekable write access to a remote file. The file is
// opened as if Out had been specified whether or not it was.
type OutputStream struct {
	stream
}

var (
	_ io.WriteCloser = (*OutputStream)(nil)
	_ io.Seeker      = (*OutputStream)(nil)
)

// Write sends all of p at the current position. It never reports a short
// write without an error.
func (s *OutputStream) Write(p []byte) (int, error) { return s.write(p) }

// Flush forces any batched writes to the server.
func (s *OutputStream) Flush() error {
	if s.closed {
		return s.errClosed("flush")
	}
	return s.flush()
}

// Seek moves the stream's cursor and returns the new absolute offset.
func (s *OutputStream) Seek(offset int64, whence int) (int64, error) {
	return s.seek(offset, whence)
}

// Close flushes batched writes and releases the remote handle. A flush
// failure is returned; a release failure is swallowed.
func (s *OutputStream) Close() error { return s.close() }

// FileStream provides read and write access to a remote file through one
// shared cursor: writing moves the position a subsequent read continues
// from, and vice versa. By default the file is opened as if both In and Out
// were specified.
type FileStream struct {
	stream
}

var (
	_ io.ReadWriteCloser = (*FileStream)(nil)
	_ io.Seeker          = (*FileStream)(nil)
)

// Read fills p from the shared cursor. End-of-file is the only legal short
// read.
func (s *FileStream) Read(p []byte) (int, error) { return s.read(p) }

// Write sends all of p at the shared cursor.
func (s *FileStream) Write(p []byte) (int, error) { return s.write(p) }

// Flush forces any batched writes to the server.
func (s *FileStream) Flush() error {
	if s.closed {
		return s.errClosed("flush")
	}
	return s.flush()
}

// Seek moves the shared cursor and returns the new absolute offset.
func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	return s.seek(offset, whence)
}

// Close flushes batched writes and releases the remote handle.
func (s *FileStream) Close() error { return s.close() }
