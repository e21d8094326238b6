package automata

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Automaton owns one node tree and its transition table.
// It is not safe for concurrent use.
type Automaton struct {
	nodes       map[uuid.UUID]*Node
	order       []uuid.UUID
	transitions []Transition
	rootID      uuid.UUID

	evaluator ConditionEvaluator
	performer ActionPerformer

	// nodes whose TriggerEvent is currently on the stack
	dispatching map[uuid.UUID]struct{}

	log *zap.Logger
}

// Option configures an Automaton.
type Option func(*Automaton)

// WithConditionEvaluator sets the evaluator consulted for transition conditions.
func WithConditionEvaluator(e ConditionEvaluator) Option {
	return func(a *Automaton) {
		a.evaluator = e
	}
}

// WithActionPerformer sets the performer invoked for transition actions.
func WithActionPerformer(p ActionPerformer) Option {
	return func(a *Automaton) {
		a.performer = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Automaton) {
		a.log = l
	}
}

// New creates an empty automaton. Call InitializeRoot before AddNode.
func New(opts ...Option) *Automaton {
	a := &Automaton{}
	a.reset()
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Automaton) reset() {
	a.nodes = make(map[uuid.UUID]*Node)
	a.order = nil
	a.transitions = nil
	a.rootID = uuid.Nil
	if a.dispatching == nil {
		a.dispatching = make(map[uuid.UUID]struct{})
	}
}

func (a *Automaton) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

// SetConditionEvaluator replaces the condition evaluator. nil makes every
// condition pass.
func (a *Automaton) SetConditionEvaluator(e ConditionEvaluator) {
	a.evaluator = e
}

// SetActionPerformer replaces the action performer. nil makes actions no-ops.
func (a *Automaton) SetActionPerformer(p ActionPerformer) {
	a.performer = p
}

// ConditionEvaluator returns the attached evaluator, which may be nil.
func (a *Automaton) ConditionEvaluator() ConditionEvaluator {
	return a.evaluator
}

// InitializeRoot creates the root node in state "Active".
func (a *Automaton) InitializeRoot(name string) (uuid.UUID, error) {
	if a.nodes == nil {
		a.reset()
	}
	if a.rootID != uuid.Nil {
		return uuid.Nil, ErrAlreadyInitialized
	}

	root := &Node{
		NodeID:      uuid.New(),
		Name:        name,
		ChildrenIDs: []uuid.UUID{},
		State:       StateActive,
		Metadata:    map[string]string{},
	}
	a.insert(root)
	a.rootID = root.NodeID
	return root.NodeID, nil
}

// AddNode creates a node in state "Inactive" under parentID.
func (a *Automaton) AddNode(name string, parentID uuid.UUID) (uuid.UUID, error) {
	parent, ok := a.nodes[parentID]
	if !ok || parentID == uuid.Nil {
		a.logger().Warn("cannot add node: unknown parent",
			zap.String("name", name),
			zap.Stringer("parent_id", parentID),
		)
		return uuid.Nil, ErrNodeNotFound
	}

	n := &Node{
		NodeID:      uuid.New(),
		Name:        name,
		ParentID:    parentID,
		ChildrenIDs: []uuid.UUID{},
		State:       StateInactive,
		Metadata:    map[string]string{},
	}
	parent.ChildrenIDs = append(parent.ChildrenIDs, n.NodeID)
	a.insert(n)
	return n.NodeID, nil
}

func (a *Automaton) insert(n *Node) {
	a.nodes[n.NodeID] = n
	a.order = append(a.order, n.NodeID)
}

// RemoveNode deletes id and its whole subtree and unlinks it from its parent.
func (a *Automaton) RemoveNode(id uuid.UUID) error {
	n, ok := a.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	if id == a.rootID {
		return ErrRootRemoval
	}

	subtree := a.collect(id)
	for _, sid := range subtree {
		if _, busy := a.dispatching[sid]; busy {
			return ErrDispatchInProgress
		}
	}

	if parent, ok := a.nodes[n.ParentID]; ok {
		parent.ChildrenIDs = slices.DeleteFunc(parent.ChildrenIDs, func(c uuid.UUID) bool {
			return c == id
		})
	}

	gone := make(map[uuid.UUID]struct{}, len(subtree))
	for _, sid := range subtree {
		gone[sid] = struct{}{}
		delete(a.nodes, sid)
	}
	a.order = slices.DeleteFunc(a.order, func(oid uuid.UUID) bool {
		_, ok := gone[oid]
		return ok
	})
	return nil
}

// collect returns id followed by all its descendants, breadth first.
func (a *Automaton) collect(id uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{id}
	for i := 0; i < len(out); i++ {
		if n, ok := a.nodes[out[i]]; ok {
			out = append(out, n.ChildrenIDs...)
		}
	}
	return out
}

// RootID returns the root id, or uuid.Nil before InitializeRoot.
func (a *Automaton) RootID() uuid.UUID {
	return a.rootID
}

// Len returns the number of nodes.
func (a *Automaton) Len() int {
	return len(a.nodes)
}

// GetNode returns a copy of the node.
func (a *Automaton) GetNode(id uuid.UUID) (Node, bool) {
	n, ok := a.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// NodeMutable returns the stored node itself so callers can write metadata
// or set a bootstrap state after creation.
// Callers must not change NodeID, ParentID or ChildrenIDs.
func (a *Automaton) NodeMutable(id uuid.UUID) (*Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Nodes returns copies of all nodes in creation order.
func (a *Automaton) Nodes() []Node {
	out := make([]Node, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.nodes[id].clone())
	}
	return out
}

// GetChildren returns copies of the children of id, or an empty slice.
func (a *Automaton) GetChildren(id uuid.UUID) []Node {
	out := []Node{}
	n, ok := a.nodes[id]
	if !ok {
		return out
	}
	for _, cid := range n.ChildrenIDs {
		if c, ok := a.nodes[cid]; ok {
			out = append(out, c.clone())
		}
	}
	return out
}

// GetParent returns the parent of id. ok is false for the root and for
// unknown ids.
func (a *Automaton) GetParent(id uuid.UUID) (Node, bool) {
	n, ok := a.nodes[id]
	if !ok || n.ParentID == uuid.Nil {
		return Node{}, false
	}
	return a.GetNode(n.ParentID)
}

// FindNodesByState scans every node.
func (a *Automaton) FindNodesByState(state string) []Node {
	out := []Node{}
	for _, id := range a.order {
		if n := a.nodes[id]; n.State == state {
			out = append(out, n.clone())
		}
	}
	return out
}

// PathExists reports whether from and to are connected, walking parent and
// child links in both directions.
func (a *Automaton) PathExists(from, to uuid.UUID) bool {
	if _, ok := a.nodes[from]; !ok {
		return false
	}
	if _, ok := a.nodes[to]; !ok {
		return false
	}

	queue := []uuid.UUID{from}
	visited := map[uuid.UUID]bool{from: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}

		n, ok := a.nodes[cur]
		if !ok {
			continue
		}
		for _, cid := range n.ChildrenIDs {
			if !visited[cid] {
				visited[cid] = true
				queue = append(queue, cid)
			}
		}
		if n.ParentID != uuid.Nil && !visited[n.ParentID] {
			visited[n.ParentID] = true
			queue = append(queue, n.ParentID)
		}
	}
	return false
}
