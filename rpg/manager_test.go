package rpg_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/memory"
	"github.com/meikuraledutech/automata/rpg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshots(m *rpg.Manager) map[string]*automata.Document {
	out := map[string]*automata.Document{}
	for _, name := range rpg.Subsystems {
		a, _ := m.Subsystem(name)
		out[name] = a.Snapshot()
	}
	return out
}

func TestNewManager_Roots(t *testing.T) {
	m := rpg.NewManager(nil)
	want := map[string]string{
		rpg.SubsystemQuest:    "QuestSystem",
		rpg.SubsystemDialogue: "DialogueSystem",
		rpg.SubsystemSkill:    "SkillSystem",
		rpg.SubsystemCrafting: "CraftingSystem",
	}
	for sub, root := range want {
		a, ok := m.Subsystem(sub)
		require.True(t, ok, sub)
		n, _ := a.GetNode(a.RootID())
		assert.Equal(t, root, n.Name)
		assert.Equal(t, automata.StateActive, n.State)
	}

	_, ok := m.Subsystem("inventory")
	assert.False(t, ok)
}

func TestManager_JSONRoundTrip(t *testing.T) {
	m := villageManager(t)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"QuestAutomaton", "DialogueAutomaton", "SkillTreeAutomaton", "CraftingAutomaton"} {
		assert.Contains(t, raw, key)
	}

	other := rpg.NewManager(nil)
	require.NoError(t, json.Unmarshal(data, other))
	assert.Equal(t, snapshots(m), snapshots(other))
}

func TestManager_UnmarshalRejectsPartialSave(t *testing.T) {
	m := villageManager(t)
	before := snapshots(m)

	err := json.Unmarshal([]byte(`{"QuestAutomaton":{"RootNodeId":"00000000-0000-0000-0000-000000000000","Nodes":[],"Transitions":[]}}`), m)
	assert.ErrorIs(t, err, automata.ErrInvalidDocument)
	assert.Equal(t, before, snapshots(m), "nothing is restored unless every subsystem parses")

	err = json.Unmarshal([]byte(`[]`), m)
	assert.ErrorIs(t, err, automata.ErrInvalidDocument)
}

func TestManager_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := villageManager(t)
	gs := rpg.NewGameState()

	require.NoError(t, m.Save(ctx, store, "slot1"))
	saved := snapshots(m)

	quest := m.Quests.FindNodesByState(rpg.QuestAvailable)[0]
	require.True(t, m.Quests.AcceptQuest(quest.NodeID, gs))
	assert.NotEqual(t, saved, snapshots(m))

	require.NoError(t, m.Load(ctx, store, "slot1"))
	assert.Equal(t, saved, snapshots(m))

	// capabilities survive the reload
	gs.ModifyReputation("Village", 30)
	tree := m.Dialogue.GetChildren(m.Dialogue.RootID())[0]
	g, _ := m.Dialogue.Greeting(tree.NodeID)
	assert.Len(t, m.Dialogue.AvailableDialogueOptions(g.NodeID, gs), 2)
}

func TestManager_LoadMissingSlot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := villageManager(t)
	before := snapshots(m)

	err := m.Load(ctx, store, "nope")
	assert.ErrorIs(t, err, automata.ErrDocumentNotFound)
	assert.Equal(t, before, snapshots(m))

	// a slot with one subsystem missing is rejected as a whole
	require.NoError(t, m.Save(ctx, store, "partial"))
	require.NoError(t, store.DeleteDocument(ctx, rpg.SaveKey("partial", rpg.SubsystemCrafting)))
	err = rpg.NewManager(nil).Load(ctx, store, "partial")
	assert.ErrorIs(t, err, automata.ErrDocumentNotFound)
}

func TestSaves_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := rpg.NewManager(nil)

	require.NoError(t, m.Save(ctx, store, "beta"))
	require.NoError(t, m.Save(ctx, store, "alpha"))
	require.NoError(t, store.SaveDocument(ctx, "unrelated", m.Quests.Snapshot()))

	slots, err := rpg.ListSaves(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, slots)

	require.NoError(t, rpg.DeleteSave(ctx, store, "alpha"))
	slots, err = rpg.ListSaves(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, slots)

	keys, _ := store.ListDocuments(ctx)
	assert.Len(t, keys, 5)
}
