package contracts

import "fmt"

// MessageKind tags the shape of a MidiMessage. MIDI messages the bridge
// does not act on (aftertouch, pitch bend, clock, sysex, ...) are folded
// into OtherMessage and never match a trigger.
type MessageKind int

const (
	OtherMessage MessageKind = iota
	ControlChange
	ProgramChange
	NoteOnMessage
)

// MidiMessage is the normalized, value-equal shape every MIDI driver
// callback is translated into before it reaches a TriggerTable. Channels
// are 1-based here; the wire is 0-based, and internal/midi is the single
// place that performs the translation (spec invariant: every 0-based /
// 1-based conversion must be explicit).
type MidiMessage struct {
	Kind MessageKind

	Channel int // 1..16

	Control int // ControlChange: 0..127
	Value   int // ControlChange: 0..127

	Program int // ProgramChange: 0..127

	Note     int // NoteOnMessage: 0..127
	Velocity int // NoteOnMessage: 0..127
}

func (m MidiMessage) String() string {
	switch m.Kind {
	case ControlChange:
		return fmt.Sprintf("CC ch=%d control=%d value=%d", m.Channel, m.Control, m.Value)
	case ProgramChange:
		return fmt.Sprintf("PC ch=%d program=%d", m.Channel, m.Program)
	case NoteOnMessage:
		return fmt.Sprintf("NoteOn ch=%d note=%d velocity=%d", m.Channel, m.Note, m.Velocity)
	default:
		return "other"
	}
}

// TriggerKind tags the shape of a MidiTrigger.
type TriggerKind int

const (
	TriggerCC TriggerKind = iota
	TriggerPC
	TriggerNoteOn
)

// pressedVelocityThreshold is the velocity at or above which a velocity-less
// NoteOn trigger is considered "pressed" (spec §3).
const pressedVelocityThreshold = 64

// MidiTrigger is a parsed pattern extracted from the tail of a scene or
// filter name. NoteOn triggers carry an optional velocity: HasVelocity
// false means "match any velocity >= 64".
type MidiTrigger struct {
	Kind    TriggerKind
	Channel int // 1..16
	Number  int // CC control number, PC program, or NoteOn note: 0..127

	Value       int // CC only: 0..127
	Velocity    int // NoteOn only, when HasVelocity: 0..127
	HasVelocity bool
}

// Matches reports whether msg satisfies this trigger, per spec §4.1.
func (t MidiTrigger) Matches(msg MidiMessage) bool {
	switch t.Kind {
	case TriggerCC:
		return msg.Kind == ControlChange &&
			msg.Channel == t.Channel &&
			msg.Control == t.Number &&
			msg.Value == t.Value
	case TriggerPC:
		return msg.Kind == ProgramChange &&
			msg.Channel == t.Channel &&
			msg.Program == t.Number
	case TriggerNoteOn:
		if msg.Kind != NoteOnMessage || msg.Channel != t.Channel || msg.Note != t.Number {
			return false
		}
		if t.HasVelocity {
			return msg.Velocity == t.Velocity
		}
		return msg.Velocity >= pressedVelocityThreshold
	default:
		return false
	}
}

// String returns the canonical textual form of the trigger. NoteOn
// canonicalization always omits velocity, even when the trigger was
// parsed with one — this is a documented, intentional loss of
// information (spec §9 open question 3), so parse(String()) does not
// round-trip for velocity-bearing NoteOn triggers.
func (t MidiTrigger) String() string {
	switch t.Kind {
	case TriggerCC:
		return fmt.Sprintf("CC%d#%d@%d", t.Number, t.Value, t.Channel)
	case TriggerPC:
		return fmt.Sprintf("PC%d@%d", t.Number, t.Channel)
	case TriggerNoteOn:
		return fmt.Sprintf("On%d@%d", t.Number, t.Channel)
	default:
		return ""
	}
}

// ActionKind tags the shape of an Action.
type ActionKind int

const (
	SwitchScene ActionKind = iota
	EnableFilter
)

// Action is the remote-control effect bound to a MidiTrigger.
type Action struct {
	Kind ActionKind

	SceneName string // SwitchScene only

	SourceName string // EnableFilter only
	FilterName string // EnableFilter only
}

// TriggerBinding pairs a trigger with the action it fires.
type TriggerBinding struct {
	Trigger MidiTrigger
	Action  Action
}

// ReadyInfo is delivered to Supervisor.OnReady once startup completes:
// the MIDI port the bridge ended up listening on, and a snapshot of
// every binding the Initializer discovered.
type ReadyInfo struct {
	MIDIPortName string
	Triggers     []TriggerBinding
}
