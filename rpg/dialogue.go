package rpg

import (
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

const (
	DialogueAvailable = "Available"
	DialogueSelected  = "Selected"

	EventSelectDialogue = "SelectDialogue"
	EventResetDialogue  = "ResetDialogue"

	TypeDialogueTree = "DialogueTree"
	TypeDialogueNode = "DialogueNode"

	// GreetingText is the line every new dialogue tree opens with.
	GreetingText = "Hello traveler!"
)

// DialogueAutomaton holds one tree per NPC. Each tree starts with a
// greeting; player responses branch beneath it.
type DialogueAutomaton struct {
	*automata.Automaton
}

func NewDialogueAutomaton(opts ...automata.Option) *DialogueAutomaton {
	return &DialogueAutomaton{Automaton: automata.New(opts...)}
}

func (d *DialogueAutomaton) vocabulary() {
	ensureRules(d.Automaton,
		automata.NewTransition(DialogueAvailable, DialogueSelected, EventSelectDialogue),
		automata.NewTransition(DialogueSelected, DialogueAvailable, EventResetDialogue),
	)
}

// CreateDialogueTree adds "<npc> Dialogue" under the root with a Greeting
// child. It returns the tree id.
func (d *DialogueAutomaton) CreateDialogueTree(npc string) (uuid.UUID, error) {
	tree, err := underRoot(d.Automaton, npc+" Dialogue", TypeDialogueTree, DialogueAvailable, map[string]string{
		MetaNPC: npc,
	})
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := addTyped(d.Automaton, "Greeting", tree, TypeDialogueNode, DialogueAvailable, map[string]string{
		MetaText: GreetingText,
	}); err != nil {
		return uuid.Nil, err
	}
	d.vocabulary()
	return tree, nil
}

// Greeting returns the first dialogue node of a tree.
func (d *DialogueAutomaton) Greeting(treeID uuid.UUID) (automata.Node, bool) {
	nodes := ofType(d.GetChildren(treeID), TypeDialogueNode)
	if len(nodes) == 0 {
		return automata.Node{}, false
	}
	return nodes[0], true
}

// AddDialogueNode adds a player response under parentID. The node is named
// after the response and carries the NPC's reply as Text.
func (d *DialogueAutomaton) AddDialogueNode(parentID uuid.UUID, text, response string) (uuid.UUID, error) {
	id, err := addTyped(d.Automaton, response, parentID, TypeDialogueNode, DialogueAvailable, map[string]string{
		MetaText:           text,
		MetaPlayerResponse: response,
	})
	if err != nil {
		return uuid.Nil, err
	}
	d.vocabulary()
	return id, nil
}

// SetDialogueCondition appends condition to the node's ';'-joined
// Conditions metadata.
func (d *DialogueAutomaton) SetDialogueCondition(nodeID uuid.UUID, condition string) error {
	n, ok := d.NodeMutable(nodeID)
	if !ok {
		return automata.ErrNodeNotFound
	}
	if cur, ok := n.Metadata[MetaConditions]; ok {
		n.Metadata[MetaConditions] = cur + listSep + condition
	} else {
		n.Metadata[MetaConditions] = condition
	}
	return nil
}

// AvailableDialogueOptions returns the children of current whose conditions
// all hold for gameCtx. Without an evaluator every option is available.
func (d *DialogueAutomaton) AvailableDialogueOptions(current uuid.UUID, gameCtx any) []automata.Node {
	eval := d.ConditionEvaluator()
	out := []automata.Node{}
	for _, opt := range d.GetChildren(current) {
		conds, ok := opt.Metadata[MetaConditions]
		if !ok || eval == nil || allHold(eval, splitList(conds), gameCtx) {
			out = append(out, opt)
		}
	}
	return out
}

func (d *DialogueAutomaton) SelectDialogue(nodeID uuid.UUID, gameCtx any) bool {
	return d.TriggerEvent(nodeID, EventSelectDialogue, gameCtx)
}

func (d *DialogueAutomaton) ResetDialogue(nodeID uuid.UUID, gameCtx any) bool {
	return d.TriggerEvent(nodeID, EventResetDialogue, gameCtx)
}

func allHold(eval automata.ConditionEvaluator, conds []string, gameCtx any) bool {
	for _, c := range conds {
		if !eval.EvaluateCondition(c, gameCtx) {
			return false
		}
	}
	return true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, listSep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
