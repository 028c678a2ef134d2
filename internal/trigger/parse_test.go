package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

func TestParse_NoSeparator(t *testing.T) {
	_, ok := Parse("Scene1")
	assert.False(t, ok)
}

func TestParse_CC(t *testing.T) {
	trig, ok := Parse("Scene1 :: CC9#1@1")
	require.True(t, ok)
	assert.Equal(t, contracts.MidiTrigger{Kind: contracts.TriggerCC, Channel: 1, Number: 9, Value: 1}, trig)
}

func TestParse_PC(t *testing.T) {
	trig, ok := Parse("Flash :: PC3@2")
	require.True(t, ok)
	assert.Equal(t, contracts.MidiTrigger{Kind: contracts.TriggerPC, Channel: 2, Number: 3}, trig)
}

func TestParse_NoteOnWithoutVelocity(t *testing.T) {
	trig, ok := Parse("Flash :: On64@1")
	require.True(t, ok)
	assert.Equal(t, contracts.MidiTrigger{Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64}, trig)
}

func TestParse_NoteOnWithVelocity(t *testing.T) {
	trig, ok := Parse("Flash :: On64#100@1")
	require.True(t, ok)
	assert.Equal(t, contracts.MidiTrigger{
		Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64, Velocity: 100, HasVelocity: true,
	}, trig)
}

func TestParse_LeadingZeros(t *testing.T) {
	a, ok := Parse("Flash :: CC08#010@07")
	require.True(t, ok)
	b, ok := Parse("Flash :: CC8#10@7")
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestParse_TrimsWhitespaceAroundSeparator(t *testing.T) {
	trig, ok := Parse("Scene1   ::   CC9#1@1  ")
	require.True(t, ok)
	assert.Equal(t, 9, trig.Number)
}

func TestParse_LastSeparatorWins(t *testing.T) {
	trig, ok := Parse("Weird :: Name :: CC9#1@1")
	require.True(t, ok)
	assert.Equal(t, 9, trig.Number)
}

func TestParse_UnparsableSuffixIsNotAnError(t *testing.T) {
	_, ok := Parse("Scene1 :: not a trigger")
	assert.False(t, ok)
}

func TestParse_ChannelBoundaries(t *testing.T) {
	_, ok := Parse("s :: On1@1")
	assert.True(t, ok, "channel 1 must parse")

	_, ok = Parse("s :: On1@16")
	assert.True(t, ok, "channel 16 must parse")

	_, ok = Parse("s :: On1@0")
	assert.False(t, ok, "channel 0 must not parse")

	_, ok = Parse("s :: On1@17")
	assert.False(t, ok, "channel 17 must not parse")
}

func TestParse_OutOfRangeByteFields(t *testing.T) {
	_, ok := Parse("s :: CC128#1@1")
	assert.False(t, ok)

	_, ok = Parse("s :: CC1#128@1")
	assert.False(t, ok)

	_, ok = Parse("s :: PC128@1")
	assert.False(t, ok)
}

func TestParse_PCSuffixParsesAsPC(t *testing.T) {
	// "PC" is not a valid CC prefix and vice versa; this asserts each
	// kind is recognized by its own grammar regardless of try order.
	trig, ok := Parse("s :: PC5@3")
	require.True(t, ok)
	assert.Equal(t, contracts.TriggerPC, trig.Kind)
}

func TestTrigger_CanonicalStringRoundTrip(t *testing.T) {
	cases := []contracts.MidiTrigger{
		{Kind: contracts.TriggerCC, Channel: 7, Number: 8, Value: 10},
		{Kind: contracts.TriggerPC, Channel: 2, Number: 3},
		{Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64},
	}
	for _, want := range cases {
		parsed, ok := Parse("x :: " + want.String())
		require.True(t, ok, want.String())
		assert.Equal(t, want, parsed)
	}
}

func TestTrigger_NoteOnCanonicalStringDropsVelocity(t *testing.T) {
	withVelocity := contracts.MidiTrigger{Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64, Velocity: 100, HasVelocity: true}
	assert.Equal(t, "On64@1", withVelocity.String())

	reparsed, ok := Parse("x :: " + withVelocity.String())
	require.True(t, ok)
	assert.False(t, reparsed.HasVelocity, "canonical form is lossy for velocity; it never round-trips back")
}

func TestMidiTrigger_Matches(t *testing.T) {
	t.Run("CC requires exact channel/control/value", func(t *testing.T) {
		trig := contracts.MidiTrigger{Kind: contracts.TriggerCC, Channel: 1, Number: 9, Value: 1}
		assert.True(t, trig.Matches(contracts.MidiMessage{Kind: contracts.ControlChange, Channel: 1, Control: 9, Value: 1}))
		assert.False(t, trig.Matches(contracts.MidiMessage{Kind: contracts.ControlChange, Channel: 1, Control: 9, Value: 2}))
	})

	t.Run("PC requires exact program", func(t *testing.T) {
		trig := contracts.MidiTrigger{Kind: contracts.TriggerPC, Channel: 2, Number: 3}
		assert.True(t, trig.Matches(contracts.MidiMessage{Kind: contracts.ProgramChange, Channel: 2, Program: 3}))
		assert.False(t, trig.Matches(contracts.MidiMessage{Kind: contracts.ProgramChange, Channel: 2, Program: 4}))
	})

	t.Run("velocity-less NoteOn matches pressed velocities only", func(t *testing.T) {
		trig := contracts.MidiTrigger{Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64}
		assert.True(t, trig.Matches(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 64, Velocity: 64}))
		assert.True(t, trig.Matches(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 64, Velocity: 127}))
		assert.False(t, trig.Matches(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 64, Velocity: 63}))
	})

	t.Run("velocity-bearing NoteOn matches exactly", func(t *testing.T) {
		trig := contracts.MidiTrigger{Kind: contracts.TriggerNoteOn, Channel: 1, Number: 64, Velocity: 10, HasVelocity: true}
		assert.True(t, trig.Matches(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 64, Velocity: 10}))
		assert.False(t, trig.Matches(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 64, Velocity: 11}))
	})
}
