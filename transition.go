package automata

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddTransition appends t to the rule table. Duplicates are allowed;
// TriggerEvent resolves overlaps by insertion order.
func (a *Automaton) AddTransition(t Transition) {
	a.transitions = append(a.transitions, t.clone())
}

// Transitions returns a copy of the rule table in insertion order.
func (a *Automaton) Transitions() []Transition {
	out := make([]Transition, 0, len(a.transitions))
	for _, t := range a.transitions {
		out = append(out, t.clone())
	}
	return out
}

// HasTransition reports whether an equal rule is already registered.
func (a *Automaton) HasTransition(t Transition) bool {
	for _, existing := range a.transitions {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

// TriggerEvent dispatches event to the node. The first rule, in insertion
// order, whose FromState matches the node's state, whose TriggerEvent equals
// event and whose conditions all pass is applied: its actions run in order
// and the node moves to ToState.
//
// It returns false for unknown nodes, when no rule applies, and when called
// again for a node whose dispatch has not returned yet. gameCtx is handed to
// the evaluator and performer untouched.
func (a *Automaton) TriggerEvent(id uuid.UUID, event string, gameCtx any) bool {
	n, ok := a.nodes[id]
	if !ok {
		a.logger().Warn("cannot trigger event: unknown node",
			zap.Stringer("node_id", id),
			zap.String("event", event),
		)
		return false
	}
	if _, busy := a.dispatching[id]; busy {
		a.logger().Warn("cannot trigger event: dispatch already in progress",
			zap.Stringer("node_id", id),
			zap.String("event", event),
		)
		return false
	}
	a.dispatching[id] = struct{}{}
	defer delete(a.dispatching, id)

	for _, t := range a.applicable(n.State, event) {
		if !a.conditionsMet(t, gameCtx) {
			continue
		}
		if a.performer != nil {
			for _, action := range t.Actions {
				a.performer.PerformAction(action, gameCtx)
			}
		}
		a.logger().Debug("transition applied",
			zap.Stringer("node_id", id),
			zap.String("event", event),
			zap.String("from", n.State),
			zap.String("to", t.ToState),
		)
		n.State = t.ToState
		return true
	}
	return false
}

// applicable snapshots the matching rules so actions that add transitions
// do not affect the dispatch in flight.
func (a *Automaton) applicable(state, event string) []Transition {
	var out []Transition
	for _, t := range a.transitions {
		if t.FromState == state && t.TriggerEvent == event {
			out = append(out, t)
		}
	}
	return out
}

func (a *Automaton) conditionsMet(t Transition, gameCtx any) bool {
	if a.evaluator == nil {
		return true
	}
	for _, c := range t.Conditions {
		if !a.evaluator.EvaluateCondition(c, gameCtx) {
			return false
		}
	}
	return true
}
