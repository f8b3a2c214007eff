package filesystem

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

func TestSeekResolution(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", "0123456789")

	in, err := fs.OpenInput("/f", 0)
	require.NoError(t, err)
	defer in.Close()

	pos, err := in.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	pos, err = in.Seek(3, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(7), pos)

	pos, err = in.Seek(-2, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)

	// End-relative seeks consult the remote size.
	pos, err = in.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(6), pos)

	buf := make([]byte, 4)
	n, err := in.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "6789", string(buf))
}

func TestSeekBeforeStartFails(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", "abc")

	in, err := fs.OpenInput("/f", 0)
	require.NoError(t, err)
	defer in.Close()

	_, err = in.Seek(-1, io.SeekStart)
	require.True(t, remoteerr.IsKind(err, remoteerr.KindInvalidSeek))

	_, err = in.Seek(-10, io.SeekEnd)
	require.True(t, remoteerr.IsKind(err, remoteerr.KindInvalidSeek))

	// A failed seek leaves the cursor where it was.
	buf := make([]byte, 3)
	_, err = in.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf))
}

func TestSeekUnknownWhence(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", "abc")

	in, err := fs.OpenInput("/f", 0)
	require.NoError(t, err)
	defer in.Close()

	_, err = in.Seek(0, 42)
	require.True(t, remoteerr.IsKind(err, remoteerr.KindInvalidSeek))
}

func TestSeekPastEndIsLegal(t *testing.T) {
	fs, conn, _ := newTestFS()
	conn.put("/f", "ab")

	f, err := fs.OpenFile("/f", In|Out)
	require.NoError(t, err)
	defer f.Close()

	pos, err := f.Seek(4, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	// Reading in the gap hits end-of-file.
	_, err = f.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)

	// Writing there zero-fills the gap.
	_, err = f.Write([]byte("zz"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "ab\x00\x00zz", conn.content("/f"))
}
