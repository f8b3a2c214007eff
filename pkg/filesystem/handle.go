package filesystem

import (
	"os"

	"go.uber.org/zap"

	"github.com/charlesng35/remotefs/pkg/metrics"
)

// handle owns one open remote file. It is owned by exactly one stream
// façade, is never shared, and is released exactly once; all remote calls
// against it happen under the session lock.
type handle struct {
	raw    RawHandle
	path   string
	lk     Locker
	log    *zap.Logger
	closed bool
}

func newHandle(raw RawHandle, path string, lk Locker, log *zap.Logger) *handle {
	metrics.OpenHandles.Inc()
	return &handle{raw: raw, path: path, lk: lk, log: log}
}

// stat fetches the current remote attributes, holding the session lock for
// the duration of the round trip.
func (h *handle) stat() (os.FileInfo, error) {
	release := h.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("fstat").Inc()
	return h.raw.Stat()
}

func (h *handle) size() (int64, error) {
	info, err := h.stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// close releases the remote handle under the session lock. Closing a file
// must be serialised exactly like opening or reading one. Release failures
// are swallowed: there is nothing actionable at that point.
func (h *handle) close() {
	if h.closed {
		return
	}
	h.closed = true

	release := h.lk.Acquire()
	defer release()

	metrics.RemoteCalls.WithLabelValues("close").Inc()
	metrics.OpenHandles.Dec()
	if err := h.raw.Close(); err != nil {
		h.log.Debug("failed to release remote handle",
			zap.String("path", h.path), zap.Error(err))
	}
}
