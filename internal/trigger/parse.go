// Package trigger parses MIDI triggers out of OBS scene/filter names and
// matches incoming MIDI messages against the registered bindings.
package trigger

import (
	"strconv"
	"strings"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

const separator = "::"

const (
	minChannel = 1
	maxChannel = 16
	minByte    = 0
	maxByte    = 127
)

// Parse extracts a MidiTrigger from the tail of an OBS object name, per
// spec §4.1. It reports ok=false (never an error) when the name carries
// no "::" suffix, or when the suffix is present but does not parse —
// both are "no binding", not a failure.
func Parse(name string) (trigger contracts.MidiTrigger, ok bool) {
	idx := strings.LastIndex(name, separator)
	if idx < 0 {
		return contracts.MidiTrigger{}, false
	}

	suffix := strings.TrimSpace(name[idx+len(separator):])
	if suffix == "" {
		return contracts.MidiTrigger{}, false
	}

	// Fixed dispatch order: PC, CC, NoteOn. The grammars are not
	// mutually prefix-free ("On9@1" and a hypothetical "On"-prefixed CC
	// number could collide under a different order) — spec §4.1 and §9
	// require this exact order.
	if t, ok := parsePC(suffix); ok {
		return t, true
	}
	if t, ok := parseCC(suffix); ok {
		return t, true
	}
	if t, ok := parseNoteOn(suffix); ok {
		return t, true
	}
	return contracts.MidiTrigger{}, false
}

// parseCC matches "CC<number>#<value>@<channel>".
func parseCC(s string) (contracts.MidiTrigger, bool) {
	rest, ok := cutPrefix(s, "CC")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	number, rest, ok := takeDigits(rest)
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	rest, ok = cutPrefix(rest, "#")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	value, rest, ok := takeDigits(rest)
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	rest, ok = cutPrefix(rest, "@")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	channel, rest, ok := takeDigits(rest)
	if !ok || rest != "" {
		return contracts.MidiTrigger{}, false
	}

	if !inRange(number, minByte, maxByte) || !inRange(value, minByte, maxByte) || !inRange(channel, minChannel, maxChannel) {
		return contracts.MidiTrigger{}, false
	}

	return contracts.MidiTrigger{
		Kind:    contracts.TriggerCC,
		Channel: channel,
		Number:  number,
		Value:   value,
	}, true
}

// parsePC matches "PC<number>@<channel>".
func parsePC(s string) (contracts.MidiTrigger, bool) {
	rest, ok := cutPrefix(s, "PC")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	number, rest, ok := takeDigits(rest)
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	rest, ok = cutPrefix(rest, "@")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	channel, rest, ok := takeDigits(rest)
	if !ok || rest != "" {
		return contracts.MidiTrigger{}, false
	}

	if !inRange(number, minByte, maxByte) || !inRange(channel, minChannel, maxChannel) {
		return contracts.MidiTrigger{}, false
	}

	return contracts.MidiTrigger{
		Kind:    contracts.TriggerPC,
		Channel: channel,
		Number:  number,
	}, true
}

// parseNoteOn matches "On<note>(#<velocity>)?@<channel>".
func parseNoteOn(s string) (contracts.MidiTrigger, bool) {
	rest, ok := cutPrefix(s, "On")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	note, rest, ok := takeDigits(rest)
	if !ok {
		return contracts.MidiTrigger{}, false
	}

	var velocity int
	hasVelocity := false
	if after, ok := cutPrefix(rest, "#"); ok {
		v, after, ok := takeDigits(after)
		if !ok {
			return contracts.MidiTrigger{}, false
		}
		velocity = v
		hasVelocity = true
		rest = after
	}

	rest, ok = cutPrefix(rest, "@")
	if !ok {
		return contracts.MidiTrigger{}, false
	}
	channel, rest, ok := takeDigits(rest)
	if !ok || rest != "" {
		return contracts.MidiTrigger{}, false
	}

	if !inRange(note, minByte, maxByte) || !inRange(channel, minChannel, maxChannel) {
		return contracts.MidiTrigger{}, false
	}
	if hasVelocity && !inRange(velocity, minByte, maxByte) {
		return contracts.MidiTrigger{}, false
	}

	return contracts.MidiTrigger{
		Kind:        contracts.TriggerNoteOn,
		Channel:     channel,
		Number:      note,
		Velocity:    velocity,
		HasVelocity: hasVelocity,
	}, true
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// takeDigits consumes a maximal run of leading ASCII digits (allowing
// leading zeros, e.g. "08" -> 8) and returns the parsed value, the
// remainder, and whether at least one digit was consumed.
func takeDigits(s string) (value int, rest string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
