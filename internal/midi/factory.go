// Package midi provides the GOOS-dispatched MidiInputOpener factory and
// the MidiInput activity that drives it (spec §4.3).
package midi

import (
	"runtime"

	"github.com/florimondmanca/obs-midi/internal/midi/mididarwin"
	"github.com/florimondmanca/obs-midi/internal/midi/midiportable"
	"github.com/florimondmanca/obs-midi/internal/midi/midiwindows"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// coreMIDIClientName is the CoreMIDI client name the darwin backend uses
// when connecting to real hardware ports. The windows backend accepts it
// and ignores it. It is not passed to the portable rtmidi backend, so a
// virtual port is created under the rtmidi driver's own client name.
const coreMIDIClientName = "OBS MIDI"

// openerInitializers maps GOOS to a MidiInputOpener constructor,
// following the same dispatch-by-map shape the teacher's
// midi_client_factory.go uses for its own per-OS clients.
var openerInitializers = map[string]func(contracts.Logger, string) contracts.MidiInputOpener{
	"darwin":  func(l contracts.Logger, name string) contracts.MidiInputOpener { return mididarwin.New(l, name) },
	"windows": func(l contracts.Logger, name string) contracts.MidiInputOpener { return midiwindows.New(l, name) },
}

// NewOpener returns the MidiInputOpener for the current platform:
// CoreMIDI on darwin, winmm on windows, rtmidi everywhere else.
func NewOpener(logger contracts.Logger) contracts.MidiInputOpener {
	if init, ok := openerInitializers[runtime.GOOS]; ok {
		return init(logger, coreMIDIClientName)
	}
	return midiportable.New(logger)
}
