package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

func TestTable_MatchReturnsFirstInsertedBindingMatching(t *testing.T) {
	table := NewTable()

	cc := contracts.MidiTrigger{Kind: contracts.TriggerCC, Channel: 1, Number: 9, Value: 1}
	table.Insert(cc, contracts.Action{Kind: contracts.SwitchScene, SceneName: "Scene1"})
	// A duplicate binding for the same trigger is permitted but unreachable.
	table.Insert(cc, contracts.Action{Kind: contracts.SwitchScene, SceneName: "ShouldNeverWin"})

	action, ok := table.Match(contracts.MidiMessage{Kind: contracts.ControlChange, Channel: 1, Control: 9, Value: 1})
	require.True(t, ok)
	assert.Equal(t, "Scene1", action.SceneName)
}

func TestTable_MatchReturnsFalseWhenNothingMatches(t *testing.T) {
	table := NewTable()
	table.Insert(contracts.MidiTrigger{Kind: contracts.TriggerCC, Channel: 1, Number: 9, Value: 1},
		contracts.Action{Kind: contracts.SwitchScene, SceneName: "Scene1"})

	_, ok := table.Match(contracts.MidiMessage{Kind: contracts.ControlChange, Channel: 1, Control: 32, Value: 64})
	assert.False(t, ok)
}

func TestTable_ScenesPrecedeFiltersWhenBothEncodeSameTrigger(t *testing.T) {
	table := NewTable()
	trig := contracts.MidiTrigger{Kind: contracts.TriggerCC, Channel: 1, Number: 9, Value: 1}

	// Initializer inserts all scene-derived bindings before any
	// filter-derived ones for the same discovery pass.
	table.Insert(trig, contracts.Action{Kind: contracts.SwitchScene, SceneName: "Scene1"})
	table.Insert(trig, contracts.Action{Kind: contracts.EnableFilter, SourceName: "Flash Effect", FilterName: "Flash"})

	action, ok := table.Match(contracts.MidiMessage{Kind: contracts.ControlChange, Channel: 1, Control: 9, Value: 1})
	require.True(t, ok)
	assert.Equal(t, contracts.SwitchScene, action.Kind)
}

func TestTable_SnapshotIsInsertionOrderCopy(t *testing.T) {
	table := NewTable()
	table.Insert(contracts.MidiTrigger{Kind: contracts.TriggerPC, Channel: 1, Number: 1}, contracts.Action{Kind: contracts.SwitchScene, SceneName: "A"})
	table.Insert(contracts.MidiTrigger{Kind: contracts.TriggerPC, Channel: 1, Number: 2}, contracts.Action{Kind: contracts.SwitchScene, SceneName: "B"})

	snap := table.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "A", snap[0].Action.SceneName)
	assert.Equal(t, "B", snap[1].Action.SceneName)

	// Mutating the snapshot must not affect the table.
	snap[0].Action.SceneName = "mutated"
	assert.Equal(t, "A", table.Snapshot()[0].Action.SceneName)
}
