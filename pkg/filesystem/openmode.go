package filesystem

import (
	"os"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// Intent describes how a caller wants a remote file opened, independently of
// the protocol's flag encoding. The standard flags carry the conventional
// stream-library meaning; NoCreate and NoReplace map to protocol open modes
// that have no portable equivalent.
type Intent uint8

const (
	// In opens the file for reading. Input streams behave as if In is set
	// whether or not it is.
	In Intent = 1 << iota

	// Out opens the file for writing. Output streams behave as if Out is
	// set whether or not it is. Without In or Append, any existing content
	// is truncated.
	Out

	// Append positions every write at the end of the file where the server
	// supports it.
	Append

	// Trunc empties the file on open. Only meaningful together with Out.
	Trunc

	// NoCreate fails the open if the file does not already exist.
	NoCreate

	// NoReplace fails the open if the file already exists.
	NoReplace
)

// Newly created files are readable by everyone and writable by the owner.
const defaultCreateMode os.FileMode = 0o644

// resolveOpenFlags maps a portable open intent to os-style open flags and
// the permission bits for any file the open creates.
//
// SFTP files opened only for writing are not created if missing and not
// truncated if present, unlike the C and C++ file APIs. The mapping below
// adds the create/truncate flags explicitly so streams behave the way
// conventional file streams do:
//
//   - In alone requires the file to exist.
//   - In|Out suppresses creation; adding Trunc re-enables it unless
//     NoCreate is given, in which case the existing file is truncated.
//   - Out without In implies creation (unless NoCreate) and truncation
//     (unless Append).
//   - NoReplace requests exclusive creation.
//
// NoCreate combined with NoReplace is self-contradictory and fails before
// any remote call is made.
func resolveOpenFlags(op, path string, intent Intent) (int, os.FileMode, error) {
	if intent&NoCreate != 0 && intent&NoReplace != 0 {
		return 0, 0, remoteerr.NewInvalidCombination(op, path, "cannot combine nocreate and noreplace")
	}

	read := intent&In != 0
	write := intent&Out != 0

	var flags int
	switch {
	case read && write:
		flags = os.O_RDWR
	case write:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}

	if !write {
		return flags, defaultCreateMode, nil
	}

	if read {
		// In suppresses creation; Trunc re-enables it.
		if intent&Trunc != 0 {
			if intent&NoCreate == 0 {
				flags |= os.O_CREATE
				if intent&NoReplace != 0 {
					flags |= os.O_EXCL
				}
			}
			flags |= os.O_TRUNC
		}
		return flags, defaultCreateMode, nil
	}

	if intent&NoCreate == 0 {
		flags |= os.O_CREATE
		if intent&NoReplace != 0 {
			flags |= os.O_EXCL
		}
	}

	if intent&Append != 0 {
		flags |= os.O_APPEND
	} else {
		// Opening for output alone truncates, matching conventional
		// output-stream semantics.
		flags |= os.O_TRUNC
	}

	return flags, defaultCreateMode, nil
}
