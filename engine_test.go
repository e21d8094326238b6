package automata_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) (*automata.Automaton, uuid.UUID) {
	t.Helper()
	a := automata.New()
	root, err := a.InitializeRoot("Root")
	require.NoError(t, err)
	return a, root
}

func TestInitializeRoot(t *testing.T) {
	a, root := newTree(t)

	n, ok := a.GetNode(root)
	require.True(t, ok)
	assert.Equal(t, "Root", n.Name)
	assert.Equal(t, automata.StateActive, n.State)
	assert.Equal(t, uuid.Nil, n.ParentID)
	assert.Equal(t, root, a.RootID())

	_, err := a.InitializeRoot("Again")
	assert.ErrorIs(t, err, automata.ErrAlreadyInitialized)
	assert.Equal(t, root, a.RootID(), "root must not be replaced")
	assert.Equal(t, 1, a.Len())
}

func TestAddNode(t *testing.T) {
	a, root := newTree(t)

	id, err := a.AddNode("Quest", root)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	n, ok := a.GetNode(id)
	require.True(t, ok)
	assert.Equal(t, automata.StateInactive, n.State)
	assert.Equal(t, root, n.ParentID)

	r, _ := a.GetNode(root)
	assert.Equal(t, []uuid.UUID{id}, r.ChildrenIDs)
}

func TestAddNode_UnknownParent(t *testing.T) {
	a, _ := newTree(t)

	id, err := a.AddNode("Orphan", uuid.New())
	assert.ErrorIs(t, err, automata.ErrNodeNotFound)
	assert.Equal(t, uuid.Nil, id)

	id, err = a.AddNode("Orphan", uuid.Nil)
	assert.ErrorIs(t, err, automata.ErrNodeNotFound)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, 1, a.Len())
}

func TestTreeInvariant(t *testing.T) {
	a, root := newTree(t)
	q1, _ := a.AddNode("Q1", root)
	q2, _ := a.AddNode("Q2", root)
	o1, _ := a.AddNode("O1", q1)
	_, _ = a.AddNode("O2", q1)
	_, _ = a.AddNode("O3", o1)
	_ = q2

	for _, n := range a.Nodes() {
		if n.ParentID == uuid.Nil {
			assert.Equal(t, root, n.NodeID)
			continue
		}
		p, ok := a.GetParent(n.NodeID)
		require.True(t, ok)
		assert.Equal(t, n.ParentID, p.NodeID)
		assert.Contains(t, p.ChildrenIDs, n.NodeID)
	}
}

func TestGetNode_ReturnsCopy(t *testing.T) {
	a, root := newTree(t)
	id, _ := a.AddNode("Quest", root)

	n, _ := a.GetNode(id)
	n.State = "Hacked"
	n.Metadata["Type"] = "Hacked"

	again, _ := a.GetNode(id)
	assert.Equal(t, automata.StateInactive, again.State)
	assert.Empty(t, again.Metadata)
}

func TestNodeMutable(t *testing.T) {
	a, root := newTree(t)
	id, _ := a.AddNode("Quest", root)

	n, ok := a.NodeMutable(id)
	require.True(t, ok)
	n.Metadata["Type"] = "Quest"
	n.State = "Available"

	got, _ := a.GetNode(id)
	assert.Equal(t, "Quest", got.Meta("Type"))
	assert.Equal(t, "Available", got.State)

	_, ok = a.NodeMutable(uuid.New())
	assert.False(t, ok)
}

func TestLookups_UnknownIDs(t *testing.T) {
	a, root := newTree(t)

	_, ok := a.GetNode(uuid.New())
	assert.False(t, ok)

	children := a.GetChildren(uuid.New())
	assert.NotNil(t, children)
	assert.Empty(t, children)

	_, ok = a.GetParent(root)
	assert.False(t, ok, "root has no parent")
	_, ok = a.GetParent(uuid.New())
	assert.False(t, ok)
}

func TestGetChildren_Order(t *testing.T) {
	a, root := newTree(t)
	var want []string
	for _, name := range []string{"A", "B", "C"} {
		_, err := a.AddNode(name, root)
		require.NoError(t, err)
		want = append(want, name)
	}

	var got []string
	for _, c := range a.GetChildren(root) {
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
}

func TestFindNodesByState(t *testing.T) {
	a, root := newTree(t)
	q1, _ := a.AddNode("Q1", root)
	_, _ = a.AddNode("Q2", root)

	inactive := a.FindNodesByState(automata.StateInactive)
	assert.Len(t, inactive, 2)

	n, _ := a.NodeMutable(q1)
	n.State = "Available"
	found := a.FindNodesByState("Available")
	require.Len(t, found, 1)
	assert.Equal(t, q1, found[0].NodeID)

	assert.Empty(t, a.FindNodesByState("Nope"))
}

func TestPathExists(t *testing.T) {
	a, root := newTree(t)
	q1, _ := a.AddNode("Q1", root)
	q2, _ := a.AddNode("Q2", root)
	o1, _ := a.AddNode("O1", q1)
	o2, _ := a.AddNode("O2", q2)

	for _, n := range a.Nodes() {
		assert.True(t, a.PathExists(root, n.NodeID), n.Name)
	}
	pairs := [][2]uuid.UUID{{o1, o2}, {q1, o2}, {o1, root}}
	for _, p := range pairs {
		assert.True(t, a.PathExists(p[0], p[1]))
		assert.True(t, a.PathExists(p[1], p[0]))
	}

	assert.True(t, a.PathExists(o1, o1))
	assert.False(t, a.PathExists(o1, uuid.New()))
	assert.False(t, a.PathExists(uuid.New(), o1))
}

func TestRemoveNode(t *testing.T) {
	a, root := newTree(t)
	q1, _ := a.AddNode("Q1", root)
	q2, _ := a.AddNode("Q2", root)
	o1, _ := a.AddNode("O1", q1)

	require.NoError(t, a.RemoveNode(q1))

	_, ok := a.GetNode(q1)
	assert.False(t, ok)
	_, ok = a.GetNode(o1)
	assert.False(t, ok, "subtree must go with its root")

	r, _ := a.GetNode(root)
	assert.Equal(t, []uuid.UUID{q2}, r.ChildrenIDs)
	assert.Equal(t, 2, a.Len())
	assert.Len(t, a.Nodes(), 2)

	assert.ErrorIs(t, a.RemoveNode(root), automata.ErrRootRemoval)
	assert.ErrorIs(t, a.RemoveNode(q1), automata.ErrNodeNotFound)
}
