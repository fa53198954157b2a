package adminclient

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Phase is where a single operation stands.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// OpState is the status of one operation. Operations are tracked
// independently so one row's failure never masks another row's progress.
type OpState struct {
	Phase     Phase
	Err       error
	StartedAt time.Time
	EndedAt   time.Time
}

// Tracker records an OpState per operation id, typically "<verb>:<certificate id>".
type Tracker struct {
	mu     sync.Mutex
	states map[string]OpState
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]OpState), now: time.Now}
}

// Do runs fn under opID. A second call for an operation already running
// returns ErrInFlight without invoking fn.
func (t *Tracker) Do(ctx context.Context, opID string, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	if t.states[opID].Phase == PhaseRunning {
		t.mu.Unlock()
		return ErrInFlight
	}
	t.states[opID] = OpState{Phase: PhaseRunning, StartedAt: t.now()}
	t.mu.Unlock()

	err := fn(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.states[opID]
	st.EndedAt = t.now()
	if err != nil {
		st.Phase, st.Err = PhaseFailed, err
	} else {
		st.Phase = PhaseSucceeded
	}
	t.states[opID] = st
	return err
}

// State returns the operation's state; unknown operations are idle.
func (t *Tracker) State(opID string) OpState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[opID]
	if !ok {
		return OpState{Phase: PhaseIdle}
	}
	return st
}

// Snapshot copies every tracked state.
func (t *Tracker) Snapshot() map[string]OpState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.states)
}

// Failed lists the ids of failed operations in sorted order.
func (t *Tracker) Failed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for opID, st := range t.states {
		if st.Phase == PhaseFailed {
			out = append(out, opID)
		}
	}
	slices.Sort(out)
	return out
}

// Reset forgets an operation so it reads as idle again.
func (t *Tracker) Reset(opID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, opID)
}
