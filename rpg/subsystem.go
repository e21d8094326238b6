package rpg

import (
	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

// Metadata keys written by the subsystems.
const (
	MetaType           = "Type"
	MetaDescription    = "Description"
	MetaStatus         = "Status"
	MetaNPC            = "NPC"
	MetaText           = "Text"
	MetaPlayerResponse = "PlayerResponse"
	MetaConditions     = "Conditions"
	MetaClass          = "Class"
	MetaPointsRequired = "PointsRequired"
	MetaResult         = "Result"
	MetaRequiredItems  = "RequiredItems"
)

// listSep joins multi-valued metadata such as dialogue conditions and
// recipe ingredients.
const listSep = ";"

// addTyped creates a node under parent and stamps its type, state and
// metadata.
func addTyped(a *automata.Automaton, name string, parent uuid.UUID, typ, state string, meta map[string]string) (uuid.UUID, error) {
	id, err := a.AddNode(name, parent)
	if err != nil {
		return uuid.Nil, err
	}
	n, _ := a.NodeMutable(id)
	n.Metadata[MetaType] = typ
	for k, v := range meta {
		n.Metadata[k] = v
	}
	n.State = state
	return id, nil
}

// underRoot is addTyped with the root as parent.
func underRoot(a *automata.Automaton, name, typ, state string, meta map[string]string) (uuid.UUID, error) {
	if a.RootID() == uuid.Nil {
		return uuid.Nil, automata.ErrNotInitialized
	}
	return addTyped(a, name, a.RootID(), typ, state, meta)
}

// ensureRules adds each rule unless an identical one is already present.
func ensureRules(a *automata.Automaton, rules ...automata.Transition) {
	for _, t := range rules {
		if !a.HasTransition(t) {
			a.AddTransition(t)
		}
	}
}

func ofType(nodes []automata.Node, typ string) []automata.Node {
	out := []automata.Node{}
	for _, n := range nodes {
		if n.Meta(MetaType) == typ {
			out = append(out, n)
		}
	}
	return out
}
