package trigger

import (
	"sync"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// Table is the ordered registry of (MidiTrigger, Action) bindings. It is
// append-only during the Initializer phase and effectively read-only
// afterwards: Match never mutates it, so once the Initializer stops
// calling Insert no further synchronization is needed, but the mutex is
// kept because the type itself does not prevent a caller from running
// Insert and Match concurrently. In this bridge the Supervisor installs
// the MIDI matching handler only after the Initializer is done, so Match
// is not called while the table is still being populated.
type Table struct {
	mu       sync.RWMutex
	bindings []contracts.TriggerBinding
}

// NewTable returns an empty trigger table.
func NewTable() *Table {
	return &Table{}
}

// Insert appends a binding. Duplicates are permitted; a later duplicate
// is simply unreachable because Match returns on first match.
func (t *Table) Insert(trig contracts.MidiTrigger, action contracts.Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings = append(t.bindings, contracts.TriggerBinding{Trigger: trig, Action: action})
}

// Match returns the action of the first inserted binding whose trigger
// matches msg, or ok=false if none does.
func (t *Table) Match(msg contracts.MidiMessage) (action contracts.Action, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.bindings {
		if b.Trigger.Matches(msg) {
			return b.Action, true
		}
	}
	return contracts.Action{}, false
}

// Snapshot returns a copy of every binding inserted so far, in
// insertion order. Used to populate ReadyInfo.Triggers.
func (t *Table) Snapshot() []contracts.TriggerBinding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]contracts.TriggerBinding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Len reports the number of bindings currently registered.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.bindings)
}
