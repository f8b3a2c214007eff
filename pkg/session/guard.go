package session

import (
	"sync"
	"time"

	"github.com/charlesng35/remotefs/pkg/metrics"
)

// Guard serialises every remote operation onto the session. The underlying
// protocol session is not reentrant: concurrent requests on it corrupt the
// wire state, so each operation, including releasing a remote handle, runs
// while holding the guard.
//
// The guard is a plain mutual-exclusion lock. An operation never acquires it
// twice; composite operations take it once for their whole critical section.
type Guard struct {
	mu sync.Mutex
}

// Acquire blocks until the session is exclusively held and returns the
// release function. Calling the release function more than once is harmless.
func (g *Guard) Acquire() func() {
	start := time.Now()
	g.mu.Lock()
	metrics.SessionLockWait.Observe(time.Since(start).Seconds())

	var once sync.Once
	return func() {
		once.Do(g.mu.Unlock)
	}
}
