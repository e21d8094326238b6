// Package automata implements a tree automaton: a labeled node tree, a shared
// table of state-transition rules, and pluggable condition/action evaluation.
//
// States and events are plain strings. Transitions are not attached to nodes;
// any node whose State equals a rule's FromState can take that rule when the
// rule's TriggerEvent is dispatched to it.
package automata

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Default node states.
const (
	StateActive   = "Active"
	StateInactive = "Inactive"
)

// Node is a vertex in the automaton tree.
// ParentID is uuid.Nil for the root.
type Node struct {
	NodeID      uuid.UUID         `json:"NodeId"`
	Name        string            `json:"Name"`
	ParentID    uuid.UUID         `json:"ParentId"`
	ChildrenIDs []uuid.UUID       `json:"ChildrenIds"`
	State       string            `json:"State"`
	Metadata    map[string]string `json:"Metadata"`
}

// Meta returns the metadata value for key, or "" when unset.
func (n Node) Meta(key string) string {
	return n.Metadata[key]
}

// IsZero reports whether n is the empty sentinel node.
func (n Node) IsZero() bool {
	return n.NodeID == uuid.Nil
}

func (n *Node) clone() Node {
	c := *n
	c.ChildrenIDs = slices.Clone(n.ChildrenIDs)
	if c.ChildrenIDs == nil {
		c.ChildrenIDs = []uuid.UUID{}
	}
	c.Metadata = maps.Clone(n.Metadata)
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	return c
}

// Transition is a rule moving any node from FromState to ToState when
// TriggerEvent is dispatched and every condition passes.
// Conditions and Actions are opaque to the engine.
type Transition struct {
	FromState    string   `json:"FromState"`
	ToState      string   `json:"ToState"`
	TriggerEvent string   `json:"TriggerEvent"`
	Conditions   []string `json:"Conditions"`
	Actions      []string `json:"Actions"`
}

// NewTransition returns a rule with no conditions or actions.
func NewTransition(from, to, event string) Transition {
	return Transition{FromState: from, ToState: to, TriggerEvent: event}
}

// Equal reports whether t and o are the same rule.
func (t Transition) Equal(o Transition) bool {
	return t.FromState == o.FromState &&
		t.ToState == o.ToState &&
		t.TriggerEvent == o.TriggerEvent &&
		slices.Equal(t.Conditions, o.Conditions) &&
		slices.Equal(t.Actions, o.Actions)
}

func (t Transition) clone() Transition {
	t.Conditions = slices.Clone(t.Conditions)
	if t.Conditions == nil {
		t.Conditions = []string{}
	}
	t.Actions = slices.Clone(t.Actions)
	if t.Actions == nil {
		t.Actions = []string{}
	}
	return t
}
