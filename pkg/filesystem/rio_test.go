package filesystem

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// The transport is allowed to complete a read or write partially. Callers of
// the stream layer must never observe that.

func TestReadRetriesPartialCompletions(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", strings.Repeat("x", 100))
	conn.readLimit = 7 // every remote read returns at most 7 bytes

	in, err := fs.OpenInputBuffered("/f", 0, 0)
	require.NoError(t, err)
	defer in.Close()

	buf := make([]byte, 100)
	n, err := in.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 100, n, "a short read is only legal at end of file")
}

func TestReadShortOnlyAtEndOfFile(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", "abcde")

	in, err := fs.OpenInputBuffered("/f", 0, 0)
	require.NoError(t, err)
	defer in.Close()

	buf := make([]byte, 10)
	n, err := in.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "abcde", string(buf[:n]))

	// Fully consumed: the next read reports end of file.
	n, err = in.Read(buf)
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestWriteRetriesPartialCompletions(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.writeLimit = 9 // every remote write accepts at most 9 bytes

	out, err := fs.OpenOutputBuffered("/f", 0, 0)
	require.NoError(t, err)

	payload := strings.Repeat("y", 100)
	n, err := out.Write([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, 100, n, "a short write without an error is never reported")
	require.NoError(t, out.Close())

	require.Equal(t, payload, conn.content("/f"))
}

func TestReadSurfacesTransportFailure(t *testing.T) {
	lk := &fakeLocker{}
	conn := newFakeConn(lk)
	conn.put("/f", "abc")
	fs := New(conn, lk)

	in, err := fs.OpenInputBuffered("/f", 0, 0)
	require.NoError(t, err)
	defer in.Close()

	in.h.raw.(*fakeHandle).readErr = errors.New("connection lost")

	_, err = in.Read(make([]byte, 3))
	require.True(t, remoteerr.IsKind(err, remoteerr.KindTransport))

	var fsErr *remoteerr.Error
	require.ErrorAs(t, err, &fsErr)
	require.Equal(t, "/f", fsErr.Path)
	require.Equal(t, "read", fsErr.Op)
}

func TestWriteSurfacesTransportFailure(t *testing.T) {
	lk := &fakeLocker{}
	conn := newFakeConn(lk)
	fs := New(conn, lk)

	out, err := fs.OpenOutputBuffered("/f", 0, 0)
	require.NoError(t, err)
	defer out.Close()

	out.h.raw.(*fakeHandle).writeErr = errors.New("connection lost")

	_, err = out.Write([]byte("abc"))
	require.True(t, remoteerr.IsKind(err, remoteerr.KindTransport))
}

func TestOperationsRunUnderSessionLock(t *testing.T) {
	fs, conn, lk := newTestFS()
	conn.putDir("/dir")
	conn.put("/dir/a", "aaa")

	in, err := fs.OpenInput("/dir/a", 0)
	require.NoError(t, err)

	_, err = in.Read(make([]byte, 3))
	require.NoError(t, err)
	_, err = in.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.NoError(t, in.Close())

	it, err := fs.ReadDir("/dir")
	require.NoError(t, err)
	for {
		if _, err := it.Next(); err != nil {
			break
		}
	}

	require.False(t, conn.unlockedCall, "every remote call must hold the session")
	require.False(t, lk.held, "the session must be released after every operation")
	require.Positive(t, lk.acquires)
}
