package filesystem

import (
	"errors"
	"io"

	remoteerr "github.com/charlesng35/remotefs/pkg/errors"
	"github.com/charlesng35/remotefs/pkg/metrics"
)

// The protocol read and write primitives are allowed to complete partially
// even when the caller asked for a blocking, complete transfer. readFull and
// writeFull hide that: no layer above them ever sees a partial result except
// end-of-file on read.

// readFull reads into p starting at remote offset off until p is full or the
// end of the file is reached. Reaching end-of-file is the only condition
// under which the returned count may be less than len(p) without an error.
// The session lock is held for the whole operation.
func readFull(h *handle, p []byte, off int64) (int, error) {
	release := h.lk.Acquire()
	defer release()

	var n int
	for n < len(p) {
		metrics.RemoteCalls.WithLabelValues("read").Inc()
		rc, err := h.raw.ReadAt(p[n:], off+int64(n))
		n += rc
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			metrics.TransferredBytes.WithLabelValues("read").Add(float64(n))
			return n, remoteerr.FromError("read", h.path, err)
		}
		if rc == 0 {
			break
		}
	}

	metrics.TransferredBytes.WithLabelValues("read").Add(float64(n))
	return n, nil
}

// writeFull writes all of p at remote offset off. It never reports a short
// write without an error: it retries partial completions until the whole
// buffer has been accepted or a failure occurs. On failure the
// already-written prefix is lost to the caller. The session lock is held for
// the whole operation.
func writeFull(h *handle, p []byte, off int64) (int, error) {
	release := h.lk.Acquire()
	defer release()

	var n int
	for n < len(p) {
		metrics.RemoteCalls.WithLabelValues("write").Inc()
		rc, err := h.raw.WriteAt(p[n:], off+int64(n))
		n += rc
		if err != nil {
			metrics.TransferredBytes.WithLabelValues("write").Add(float64(n))
			return n, remoteerr.FromError("write", h.path, err)
		}
		if rc == 0 {
			// A zero-progress success would loop forever.
			metrics.TransferredBytes.WithLabelValues("write").Add(float64(n))
			return n, remoteerr.NewTransport("write", h.path, errors.New("write made no progress"))
		}
	}

	metrics.TransferredBytes.WithLabelValues("write").Add(float64(n))
	return n, nil
}
