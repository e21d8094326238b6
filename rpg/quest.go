package rpg

import (
	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

// Quest states and events.
const (
	QuestAvailable = "Available"
	QuestActive    = "Active"
	QuestCompleted = "Completed"
	QuestFailed    = "Failed"

	ObjectiveIncomplete = "Incomplete"
	ObjectiveComplete   = "Complete"

	EventAcceptQuest       = "AcceptQuest"
	EventCompleteQuest     = "CompleteQuest"
	EventFailQuest         = "FailQuest"
	EventCompleteObjective = "CompleteObjective"
)

// Node types.
const (
	TypeQuest     = "Quest"
	TypeObjective = "Objective"
)

// QuestAutomaton holds quests under the root and their objectives beneath
// each quest.
type QuestAutomaton struct {
	*automata.Automaton
}

func NewQuestAutomaton(opts ...automata.Option) *QuestAutomaton {
	return &QuestAutomaton{Automaton: automata.New(opts...)}
}

// CreateQuest adds an Available quest under the root.
func (q *QuestAutomaton) CreateQuest(name, description string) (uuid.UUID, error) {
	id, err := underRoot(q.Automaton, name, TypeQuest, QuestAvailable, map[string]string{
		MetaDescription: description,
		MetaStatus:      QuestAvailable,
	})
	if err != nil {
		return uuid.Nil, err
	}
	ensureRules(q.Automaton,
		automata.NewTransition(QuestAvailable, QuestActive, EventAcceptQuest),
		automata.NewTransition(QuestActive, QuestCompleted, EventCompleteQuest),
		automata.NewTransition(QuestActive, QuestFailed, EventFailQuest),
	)
	return id, nil
}

// AddObjective adds an Incomplete objective under questID.
func (q *QuestAutomaton) AddObjective(questID uuid.UUID, name, description string) (uuid.UUID, error) {
	id, err := addTyped(q.Automaton, name, questID, TypeObjective, ObjectiveIncomplete, map[string]string{
		MetaDescription: description,
	})
	if err != nil {
		return uuid.Nil, err
	}
	ensureRules(q.Automaton, automata.NewTransition(ObjectiveIncomplete, ObjectiveComplete, EventCompleteObjective))
	return id, nil
}

func (q *QuestAutomaton) AcceptQuest(questID uuid.UUID, gameCtx any) bool {
	return q.TriggerEvent(questID, EventAcceptQuest, gameCtx)
}

func (q *QuestAutomaton) FailQuest(questID uuid.UUID, gameCtx any) bool {
	return q.TriggerEvent(questID, EventFailQuest, gameCtx)
}

// CompleteObjective completes the objective and, once every objective of
// the parent quest is complete, dispatches CompleteQuest to that quest.
// Parents that are not Quest nodes are never completed.
// The result reports only whether the objective itself advanced.
func (q *QuestAutomaton) CompleteObjective(objectiveID uuid.UUID, gameCtx any) bool {
	if !q.TriggerEvent(objectiveID, EventCompleteObjective, gameCtx) {
		return false
	}

	quest, ok := q.GetParent(objectiveID)
	if !ok || quest.Meta(MetaType) != TypeQuest {
		return true
	}
	for _, o := range ofType(q.GetChildren(quest.NodeID), TypeObjective) {
		if o.State != ObjectiveComplete {
			return true
		}
	}
	q.TriggerEvent(quest.NodeID, EventCompleteQuest, gameCtx)
	return true
}

func (q *QuestAutomaton) IsQuestComplete(questID uuid.UUID) bool {
	n, ok := q.GetNode(questID)
	return ok && n.State == QuestCompleted
}

// ActiveQuests returns quests in the Active state. The root, which is also
// Active, is excluded.
func (q *QuestAutomaton) ActiveQuests() []automata.Node {
	return ofType(q.FindNodesByState(QuestActive), TypeQuest)
}

func (q *QuestAutomaton) QuestObjectives(questID uuid.UUID) []automata.Node {
	return q.GetChildren(questID)
}
