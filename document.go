package automata

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document is the serialized form of an automaton. Its JSON field names are
// the persistence contract shared by every subsystem.
type Document struct {
	RootNodeID  uuid.UUID    `json:"RootNodeId"`
	Nodes       []Node       `json:"Nodes"`
	Transitions []Transition `json:"Transitions"`
}

// UnmarshalJSON rejects documents missing a required field.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		RootNodeID  *uuid.UUID        `json:"RootNodeId"`
		Nodes       *[]wireNode       `json:"Nodes"`
		Transitions *[]wireTransition `json:"Transitions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.RootNodeID == nil:
		return missing("RootNodeId")
	case raw.Nodes == nil:
		return missing("Nodes")
	case raw.Transitions == nil:
		return missing("Transitions")
	}

	doc := Document{
		RootNodeID:  *raw.RootNodeID,
		Nodes:       make([]Node, 0, len(*raw.Nodes)),
		Transitions: make([]Transition, 0, len(*raw.Transitions)),
	}
	for i, w := range *raw.Nodes {
		n, err := w.node()
		if err != nil {
			return fmt.Errorf("Nodes[%d]: %w", i, err)
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	for i, w := range *raw.Transitions {
		t, err := w.transition()
		if err != nil {
			return fmt.Errorf("Transitions[%d]: %w", i, err)
		}
		doc.Transitions = append(doc.Transitions, t)
	}
	*d = doc
	return nil
}

type wireNode struct {
	NodeID      *uuid.UUID        `json:"NodeId"`
	Name        *string           `json:"Name"`
	ParentID    *uuid.UUID        `json:"ParentId"`
	ChildrenIDs []uuid.UUID       `json:"ChildrenIds"`
	State       *string           `json:"State"`
	Metadata    map[string]string `json:"Metadata"`
}

func (w wireNode) node() (Node, error) {
	switch {
	case w.NodeID == nil:
		return Node{}, missing("NodeId")
	case w.Name == nil:
		return Node{}, missing("Name")
	case w.ParentID == nil:
		return Node{}, missing("ParentId")
	case w.State == nil:
		return Node{}, missing("State")
	}
	n := Node{
		NodeID:      *w.NodeID,
		Name:        *w.Name,
		ParentID:    *w.ParentID,
		ChildrenIDs: w.ChildrenIDs,
		State:       *w.State,
		Metadata:    w.Metadata,
	}
	return n.clone(), nil
}

type wireTransition struct {
	FromState    *string  `json:"FromState"`
	ToState      *string  `json:"ToState"`
	TriggerEvent *string  `json:"TriggerEvent"`
	Conditions   []string `json:"Conditions"`
	Actions      []string `json:"Actions"`
}

func (w wireTransition) transition() (Transition, error) {
	switch {
	case w.FromState == nil:
		return Transition{}, missing("FromState")
	case w.ToState == nil:
		return Transition{}, missing("ToState")
	case w.TriggerEvent == nil:
		return Transition{}, missing("TriggerEvent")
	}
	t := Transition{
		FromState:    *w.FromState,
		ToState:      *w.ToState,
		TriggerEvent: *w.TriggerEvent,
		Conditions:   w.Conditions,
		Actions:      w.Actions,
	}
	return t.clone(), nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing field %q", ErrInvalidDocument, field)
}

// Validate checks that the document describes a single well-formed tree:
// unique ids, bidirectional parent/child links, one parentless root and no
// unreachable nodes. An empty document must have a nil root.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if len(d.Nodes) == 0 {
		if d.RootNodeID != uuid.Nil {
			return fmt.Errorf("%w: root %s not among nodes", ErrInvalidDocument, d.RootNodeID)
		}
		return nil
	}

	byID := make(map[uuid.UUID]*Node, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.NodeID == uuid.Nil {
			return fmt.Errorf("%w: node %d has nil id", ErrInvalidDocument, i)
		}
		if _, dup := byID[n.NodeID]; dup {
			return fmt.Errorf("%w: duplicate node %s", ErrInvalidDocument, n.NodeID)
		}
		byID[n.NodeID] = n
	}

	root, ok := byID[d.RootNodeID]
	if !ok {
		return fmt.Errorf("%w: root %s not among nodes", ErrInvalidDocument, d.RootNodeID)
	}
	if root.ParentID != uuid.Nil {
		return fmt.Errorf("%w: root %s has a parent", ErrInvalidDocument, root.NodeID)
	}

	for _, n := range byID {
		if n.NodeID != root.NodeID {
			parent, ok := byID[n.ParentID]
			if !ok {
				return fmt.Errorf("%w: node %s has unknown parent %s", ErrInvalidDocument, n.NodeID, n.ParentID)
			}
			if !slices.Contains(parent.ChildrenIDs, n.NodeID) {
				return fmt.Errorf("%w: parent %s does not list child %s", ErrInvalidDocument, parent.NodeID, n.NodeID)
			}
		}
		for _, cid := range n.ChildrenIDs {
			child, ok := byID[cid]
			if !ok {
				return fmt.Errorf("%w: node %s has unknown child %s", ErrInvalidDocument, n.NodeID, cid)
			}
			if child.ParentID != n.NodeID {
				return fmt.Errorf("%w: child %s does not point back to %s", ErrInvalidDocument, cid, n.NodeID)
			}
		}
	}

	// Every node names an existing parent, so anything the root cannot reach
	// sits on a parent cycle.
	seen := map[uuid.UUID]bool{root.NodeID: true}
	queue := []uuid.UUID{root.NodeID}
	for len(queue) > 0 {
		cur := byID[queue[0]]
		queue = queue[1:]
		for _, cid := range cur.ChildrenIDs {
			if seen[cid] {
				return fmt.Errorf("%w: node %s listed twice", ErrInvalidDocument, cid)
			}
			seen[cid] = true
			queue = append(queue, cid)
		}
	}
	if len(seen) != len(byID) {
		return fmt.Errorf("%w: %d nodes unreachable from root", ErrInvalidDocument, len(byID)-len(seen))
	}
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{
		RootNodeID:  d.RootNodeID,
		Nodes:       make([]Node, 0, len(d.Nodes)),
		Transitions: make([]Transition, 0, len(d.Transitions)),
	}
	for i := range d.Nodes {
		c.Nodes = append(c.Nodes, d.Nodes[i].clone())
	}
	for _, t := range d.Transitions {
		c.Transitions = append(c.Transitions, t.clone())
	}
	return c
}

// Snapshot copies the automaton into a Document.
func (a *Automaton) Snapshot() *Document {
	return &Document{
		RootNodeID:  a.rootID,
		Nodes:       a.Nodes(),
		Transitions: a.Transitions(),
	}
}

// Restore replaces the automaton's nodes, transitions and root with doc.
// Current contents are discarded before doc is validated, so a failed
// Restore leaves the automaton empty.
func (a *Automaton) Restore(doc *Document) error {
	if len(a.dispatching) > 0 {
		return ErrDispatchInProgress
	}
	a.reset()
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	for i := range doc.Nodes {
		n := doc.Nodes[i].clone()
		a.insert(&n)
	}
	for _, t := range doc.Transitions {
		a.AddTransition(t)
	}
	a.rootID = doc.RootNodeID
	return nil
}

// Serialize encodes the automaton as a JSON document.
func (a *Automaton) Serialize() ([]byte, error) {
	return json.Marshal(a.Snapshot())
}

// Deserialize replaces the automaton with the JSON document in data.
// On error the automaton is left empty, not unchanged.
func (a *Automaton) Deserialize(data []byte) error {
	if len(a.dispatching) > 0 {
		return ErrDispatchInProgress
	}
	a.reset()

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		a.logger().Error("failed to deserialize automaton", zap.Error(err))
		if errors.Is(err, ErrInvalidDocument) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := a.Restore(&doc); err != nil {
		a.logger().Error("failed to restore automaton", zap.Error(err))
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a *Automaton) MarshalJSON() ([]byte, error) {
	return a.Serialize()
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Automaton) UnmarshalJSON(data []byte) error {
	return a.Deserialize(data)
}
