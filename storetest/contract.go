// Package storetest holds a reusable suite every automata.Store must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/meikuraledutech/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleDocument builds a small quest tree with metadata and transitions.
func SampleDocument(t *testing.T) *automata.Document {
	t.Helper()

	a := automata.New()
	root, err := a.InitializeRoot("QuestSystem")
	require.NoError(t, err)
	quest, err := a.AddNode("Repair the Walls", root)
	require.NoError(t, err)
	obj, err := a.AddNode("Find Lumber", quest)
	require.NoError(t, err)
	_, err = a.AddNode("Reinforce Palisade", quest)
	require.NoError(t, err)

	n, _ := a.NodeMutable(quest)
	n.State = "Available"
	n.Metadata["Type"] = "Quest"
	n.Metadata["Description"] = "The village walls are damaged and need repair."
	n, _ = a.NodeMutable(obj)
	n.State = "Incomplete"
	n.Metadata["Type"] = "Objective"

	complete := automata.NewTransition("Active", "Completed", "CompleteQuest")
	complete.Conditions = []string{"HasFlag:RepairWallsComplete"}
	complete.Actions = []string{"GiveExperience:200", "ModifyReputation:Village:10"}
	a.AddTransition(automata.NewTransition("Available", "Active", "AcceptQuest"))
	a.AddTransition(complete)
	a.AddTransition(automata.NewTransition("Incomplete", "Complete", "CompleteObjective"))

	return a.Snapshot()
}

// RunStoreContract exercises store against the automata.Store contract.
// The store must be empty when the suite starts.
func RunStoreContract(t *testing.T, store automata.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetDocument_NotFound", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "missing")
		assert.ErrorIs(t, err, automata.ErrDocumentNotFound)
	})

	t.Run("SaveAndGet", func(t *testing.T) {
		doc := SampleDocument(t)
		require.NoError(t, store.SaveDocument(ctx, "slot1/quest", doc))

		got, err := store.GetDocument(ctx, "slot1/quest")
		require.NoError(t, err)
		assert.Equal(t, doc, got)

		a := automata.New()
		require.NoError(t, a.Restore(got))
		assert.Equal(t, doc.RootNodeID, a.RootID())
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		first := SampleDocument(t)
		second := SampleDocument(t)
		require.NoError(t, store.SaveDocument(ctx, "slot2/quest", first))
		require.NoError(t, store.SaveDocument(ctx, "slot2/quest", second))

		got, err := store.GetDocument(ctx, "slot2/quest")
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		doc := automata.New().Snapshot()
		require.NoError(t, store.SaveDocument(ctx, "slot3/empty", doc))

		got, err := store.GetDocument(ctx, "slot3/empty")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("SaveNil", func(t *testing.T) {
		err := store.SaveDocument(ctx, "slot4/nil", nil)
		assert.ErrorIs(t, err, automata.ErrInvalidDocument)

		_, err = store.GetDocument(ctx, "slot4/nil")
		assert.ErrorIs(t, err, automata.ErrDocumentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"slot1/quest", "slot2/quest", "slot3/empty"}, keys)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteDocument(ctx, "slot1/quest"))
		require.NoError(t, store.DeleteDocument(ctx, "never-saved"))

		_, err := store.GetDocument(ctx, "slot1/quest")
		assert.ErrorIs(t, err, automata.ErrDocumentNotFound)

		keys, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"slot2/quest", "slot3/empty"}, keys)
	})
}
