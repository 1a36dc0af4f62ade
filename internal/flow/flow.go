// Package flow guards user-facing submissions. Each form has one Guard that
// moves Idle -> Submitting -> Idle; a second submission while Submitting is
// rejected, never queued.
package flow

import (
	"errors"
	"sync"
	"time"
)

// ErrInProgress is returned when a submission is attempted while the
// previous one has not completed.
var ErrInProgress = errors.New("submission already in progress")

// State of a Guard.
type State int

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "idle"
}

// Guard is the in-flight flag of one submission flow.
type Guard struct {
	name  string
	mu    sync.Mutex
	state State
}

// NewGuard creates an idle guard.
func NewGuard(name string) *Guard {
	return &Guard{name: name}
}

// Name of the flow.
func (g *Guard) Name() string { return g.name }

// State reports the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Begin moves the guard to Submitting, or fails with ErrInProgress.
func (g *Guard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Submitting {
		return ErrInProgress
	}
	g.state = Submitting
	return nil
}

// End returns the guard to Idle.
func (g *Guard) End() {
	g.mu.Lock()
	g.state = Idle
	g.mu.Unlock()
}

// Scheduler runs fn after delay. The delay is cosmetic feedback for the
// user and carries no ordering guarantees.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

// Schedule runs fn on its own goroutine once delay has elapsed.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// ImmediateScheduler ignores the delay and runs fn before returning.
type ImmediateScheduler struct{}

// Schedule runs fn synchronously.
func (ImmediateScheduler) Schedule(_ time.Duration, fn func()) {
	fn()
}

// ManualScheduler holds callbacks until RunPending is called.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

// Schedule queues fn.
func (m *ManualScheduler) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	m.delays = append(m.delays, delay)
}

// Pending is the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Delays lists the delays requested so far, in order.
func (m *ManualScheduler) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.delays...)
}

// RunPending runs and clears every queued callback.
func (m *ManualScheduler) RunPending() {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
