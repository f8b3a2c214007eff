package filesystem

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

func TestResolveOpenFlags(t *testing.T) {
	cases := []struct {
		name   string
		intent Intent
		want   int
	}{
		{"read only", In, os.O_RDONLY},
		{"read write suppresses creation", In | Out, os.O_RDWR},
		{"read write trunc creates", In | Out | Trunc, os.O_RDWR | os.O_CREATE | os.O_TRUNC},
		{"read write trunc nocreate", In | Out | Trunc | NoCreate, os.O_RDWR | os.O_TRUNC},
		{"read write trunc noreplace", In | Out | Trunc | NoReplace, os.O_RDWR | os.O_CREATE | os.O_EXCL | os.O_TRUNC},
		{"write only truncates", Out, os.O_WRONLY | os.O_CREATE | os.O_TRUNC},
		{"write append", Out | Append, os.O_WRONLY | os.O_CREATE | os.O_APPEND},
		{"write nocreate", Out | NoCreate, os.O_WRONLY | os.O_TRUNC},
		{"write noreplace", Out | NoReplace, os.O_WRONLY | os.O_CREATE | os.O_EXCL | os.O_TRUNC},
		{"write append nocreate", Out | Append | NoCreate, os.O_WRONLY | os.O_APPEND},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flags, perm, err := resolveOpenFlags("open", "/f", tc.intent)
			require.NoError(t, err)
			require.Equal(t, tc.want, flags)
			require.Equal(t, defaultCreateMode, perm)
		})
	}
}

func TestResolveOpenFlagsRejectsContradiction(t *testing.T) {
	// The combination is contradictory for every access mode, including
	// read-only opens where neither flag would otherwise matter.
	for _, intent := range []Intent{
		NoCreate | NoReplace,
		In | NoCreate | NoReplace,
		Out | NoCreate | NoReplace,
		In | Out | NoCreate | NoReplace,
	} {
		_, _, err := resolveOpenFlags("open", "/f", intent)
		require.Error(t, err)
		require.True(t, remoteerr.IsKind(err, remoteerr.KindInvalidCombination))
	}
}

func TestOpenValidatesBeforeRemoteCall(t *testing.T) {
	fs, _, lk := newTestFS()

	_, err := fs.OpenFile("/f", NoCreate|NoReplace)
	require.True(t, remoteerr.IsKind(err, remoteerr.KindInvalidCombination))
	require.Zero(t, lk.acquires, "validation failure must not touch the session")
}
