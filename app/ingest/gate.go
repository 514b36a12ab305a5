package ingest

import (
	"sync"
)

// State of the busy gate. The gate has exactly two states; there is no
// queueing and no intermediate condition.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Operation labels shown by status polls while the gate is held.
const (
	OperationPull    = "pull"
	OperationRefresh = "refresh"
)

// Status is a point-in-time snapshot of the gate for read-only polling.
type Status struct {
	State     State
	Operation string
	Message   string
}

// Gate is the process-wide single-flight guard serializing ingestion and
// analysis-refresh operations. Every transition happens under one mutex;
// a second operation observing Running is rejected immediately, never
// queued. A process crash while Running leaves the flag stuck until
// restart; that is the accepted failure mode.
type Gate struct {
	mu        sync.Mutex
	state     State
	operation string
	message   string
}

func NewGate() *Gate {
	return &Gate{state: StateIdle}
}

// TryStart atomically moves the gate from Idle to Running for the named
// operation. Returns false without side effects when another operation
// already holds the gate.
func (g *Gate) TryStart(operation string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateRunning {
		return false
	}

	g.state = StateRunning
	g.operation = operation
	g.message = ""

	return true
}

// SetMessage updates the progress text reported by status polls. Only
// meaningful while the gate is held.
func (g *Gate) SetMessage(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.message = message
}

// Finish returns the gate to Idle, keeping message as the last-run result
// for subsequent polls. Callers defer it on every exit path.
func (g *Gate) Finish(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = StateIdle
	g.operation = ""
	g.message = message
}

// Status reports the current gate state. Read-only, no side effects.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Status{
		State:     g.state,
		Operation: g.operation,
		Message:   g.message,
	}
}
