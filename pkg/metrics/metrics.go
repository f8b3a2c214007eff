package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionLockWait measures how long operations wait for exclusive
	// access to the shared session.
	SessionLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remotefs_session_lock_wait_seconds",
			Help:    "Time spent waiting for the session lock",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RemoteCalls counts remote protocol calls by operation.
	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotefs_remote_calls_total",
			Help: "Total number of remote protocol calls",
		},
		[]string{"op"},
	)

	// TransferredBytes counts bytes moved over the session by direction
	// (read|write).
	TransferredBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotefs_transferred_bytes_total",
			Help: "Total bytes transferred over remote sessions",
		},
		[]string{"direction"},
	)

	// OpenHandles tracks remote file and directory handles currently open.
	OpenHandles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remotefs_open_handles",
			Help: "Number of open remote handles",
		},
	)
)
