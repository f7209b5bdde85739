package cartintent

import (
	"sync"
	"time"
)

// DefaultGateTimeout is how long a Gate stays held after TryAcquire.
const DefaultGateTimeout = 10 * time.Second

// Gate allows at most one analysis to start per timeout window.
//
// The gate is released by a timer, not by the end of the analysis, so it
// only approximates mutual exclusion. A click while the gate is held is
// dropped, not queued.
type Gate struct {
	mu      sync.Mutex
	held    bool
	timeout time.Duration
	timer   *time.Timer

	// generation identifies the current hold so a stale timer cannot
	// release a later one.
	generation uint64
}

// NewGate creates a Gate. A non-positive timeout uses DefaultGateTimeout.
func NewGate(timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultGateTimeout
	}
	return &Gate{timeout: timeout}
}

// TryAcquire takes the gate and schedules its release. It returns false
// without side effects when the gate is already held.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return false
	}
	g.held = true
	g.generation++
	gen := g.generation
	g.timer = time.AfterFunc(g.timeout, func() { g.expire(gen) })
	return true
}

// expire releases the hold identified by gen if it is still current.
func (g *Gate) expire(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.generation == gen {
		g.held = false
		g.timer = nil
	}
}

// Held reports whether the gate is currently held.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Release frees the gate immediately and cancels the pending timer.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.held = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Timeout returns the auto-release delay.
func (g *Gate) Timeout() time.Duration {
	return g.timeout
}
