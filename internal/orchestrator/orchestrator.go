// Package orchestrator holds process-wide trading state: whether the
// system is live, winding down, or emergency-halted, and the current risk
// throttle. It is mutated only through a small set of named commands and
// is read far more often than it is written, so access is guarded by a
// single RWMutex (writers take the write lock, health checks and gating
// reads take the read lock).
package orchestrator

import (
	"sync"
	"time"
)

// State is a point-in-time snapshot of the orchestrator's fields. It is
// returned by value so callers can't mutate it behind the Orchestrator's
// back.
type State struct {
	Live               bool
	WindingDown        bool
	WindDownStartedAt  *time.Time
	WindDownDuration   time.Duration
	EmergencyHalt      bool
	HaltReason         string
	RiskThrottle       float64
	UpdatedAt          time.Time
}

// Orchestrator guards State behind an RWMutex. It is created once at
// startup and never destroyed.
type Orchestrator struct {
	mu    sync.RWMutex
	state State
}

// New creates an Orchestrator in its default state: not live, throttle at
// 1.0 (100%), matching original_source's OrchestratorState::default().
func New() *Orchestrator {
	return &Orchestrator{
		state: State{
			RiskThrottle: 1.0,
			UpdatedAt:    time.Now(),
		},
	}
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Engage clears any emergency halt, resets the risk throttle to 1.0, and
// marks the system live. Idempotent: calling Engage twice in a row leaves
// the same state (property 6 / round-trip idempotence in spec.md §8).
func (o *Orchestrator) Engage() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.EmergencyHalt = false
	o.state.HaltReason = ""
	o.state.Live = true
	o.state.WindingDown = false
	o.state.WindDownStartedAt = nil
	o.state.WindDownDuration = 0
	o.state.RiskThrottle = 1.0
	o.state.UpdatedAt = time.Now()
	return o.state
}

// WindDown marks the system as winding down and records duration on the
// state for observability only; nothing in this module enforces it — the
// order bridge (internal/bridge) gates only on EmergencyHalt and scales
// by RiskThrottle.
func (o *Orchestrator) WindDown(duration time.Duration) State {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	o.state.WindingDown = true
	o.state.WindDownStartedAt = &now
	o.state.WindDownDuration = duration
	o.state.UpdatedAt = now
	return o.state
}

// EmergencyHalt sets live=false, halt=true, and throttle=0.0 atomically —
// the transition is a single critical section so no reader ever observes
// a partial halt.
func (o *Orchestrator) EmergencyHalt(reason string) State {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.Live = false
	o.state.WindingDown = false
	o.state.WindDownStartedAt = nil
	o.state.WindDownDuration = 0
	o.state.EmergencyHalt = true
	o.state.HaltReason = reason
	o.state.RiskThrottle = 0.0
	o.state.UpdatedAt = time.Now()
	return o.state
}

// SetRiskThrottle clamps value to [0,1] and stores it.
func (o *Orchestrator) SetRiskThrottle(value float64) State {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case value < 0:
		value = 0
	case value > 1:
		value = 1
	}
	o.state.RiskThrottle = value
	o.state.UpdatedAt = time.Now()
	return o.state
}
