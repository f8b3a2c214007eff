package filesystem

import (
	"io"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
)

// resolveSeek computes the absolute offset a seek request lands on. Seeks
// relative to the end of the file need the current remote size, which costs
// one extra round trip under the session lock. Seeking past the current end
// of file is legal; the gap is zero-filled by the server if something is
// later written there.
func resolveSeek(h *handle, pos, offset int64, whence int) (int64, error) {
	var next int64

	switch whence {
	case io.SeekStart:
		next = offset

	case io.SeekCurrent:
		next = pos + offset

	case io.SeekEnd:
		size, err := h.size()
		if err != nil {
			return 0, err
		}
		next = size + offset

	default:
		return 0, &remoteerr.Error{
			Kind:    remoteerr.KindInvalidSeek,
			Op:      "seek",
			Path:    h.path,
			Message: "unknown seek origin",
		}
	}

	if next < 0 {
		return 0, remoteerr.NewInvalidSeek("seek", h.path)
	}

	return next, nil
}
