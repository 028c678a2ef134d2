package contracts

// Scope represents a held MIDI input port. Closing it synchronously
// stops further callback delivery before returning — spec §9 requires
// this so a closed TriggerTable can never be touched by a late callback.
type Scope interface {
	Close() error

	// PortName reports the port name actually bound: the caller-supplied
	// name when one was given, or the generated virtual port name
	// otherwise. Callers that only care whether a name was requested
	// should keep using their own copy of that request instead.
	PortName() string
}

// MidiInputOpener is a scoped resource factory for a MIDI input port:
// Open binds a port and starts invoking onMessage for every message
// received for the lifetime of the returned Scope. The core never
// assumes what thread runs onMessage; implementations typically invoke
// it from a driver callback thread, so subscribers must be safe to call
// from an arbitrary goroutine.
//
// If portName is empty and the backend supports virtual ports, Open
// creates one instead of binding to a named hardware port. The portable
// backend names that port "Midi In"; its client name is the one the
// rtmidi driver registered itself with, not "OBS MIDI".
type MidiInputOpener interface {
	Open(portName string, onMessage func(MidiMessage)) (Scope, error)

	// ListPorts enumerates the input port names this opener can bind to.
	ListPorts() ([]string, error)
}
