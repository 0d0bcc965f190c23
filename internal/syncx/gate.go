package syncx

import "sync"

// Gate is a one-shot readiness latch. It starts closed and stays open once
// opened.
type Gate struct {
	once sync.Once
	done chan struct{}
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Open opens the gate. Calls after the first are no-ops.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.done) })
}

// IsOpen reports whether Open has been called.
func (g *Gate) IsOpen() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}
