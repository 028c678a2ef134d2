// Package midiwire translates raw 3-byte channel-voice messages off the
// wire into contracts.MidiMessage values. It is the single place where
// the 0-based wire channel becomes the 1-based channel the rest of the
// bridge stores and displays (spec §3).
package midiwire

import "github.com/florimondmanca/obs-midi/sdk/contracts"

const (
	statusControlChange = 0xB0
	statusProgramChange = 0xC0
	statusNoteOn        = 0x90
)

// Decode interprets a MIDI status byte plus up to two data bytes.
// Messages this bridge does not act on — including a zero-velocity
// NoteOn, which is conventionally a NoteOff — come back as
// contracts.OtherMessage, which never matches a trigger.
func Decode(status, data1, data2 byte) contracts.MidiMessage {
	channel := int(status&0x0F) + 1

	switch status & 0xF0 {
	case statusControlChange:
		return contracts.MidiMessage{
			Kind:    contracts.ControlChange,
			Channel: channel,
			Control: int(data1),
			Value:   int(data2),
		}
	case statusProgramChange:
		return contracts.MidiMessage{
			Kind:    contracts.ProgramChange,
			Channel: channel,
			Program: int(data1),
		}
	case statusNoteOn:
		if data2 == 0 {
			return contracts.MidiMessage{Kind: contracts.OtherMessage, Channel: channel}
		}
		return contracts.MidiMessage{
			Kind:     contracts.NoteOnMessage,
			Channel:  channel,
			Note:     int(data1),
			Velocity: int(data2),
		}
	default:
		return contracts.MidiMessage{Kind: contracts.OtherMessage, Channel: channel}
	}
}
