package rpg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/meikuraledutech/automata"
	"go.uber.org/zap"
)

// Subsystem names, used in store keys and URLs.
const (
	SubsystemQuest    = "quest"
	SubsystemDialogue = "dialogue"
	SubsystemSkill    = "skill"
	SubsystemCrafting = "crafting"
)

// Subsystems lists the subsystem names in a fixed order.
var Subsystems = []string{SubsystemQuest, SubsystemDialogue, SubsystemSkill, SubsystemCrafting}

// Aggregated save keys and root names per subsystem.
var (
	saveKeys = map[string]string{
		SubsystemQuest:    "QuestAutomaton",
		SubsystemDialogue: "DialogueAutomaton",
		SubsystemSkill:    "SkillTreeAutomaton",
		SubsystemCrafting: "CraftingAutomaton",
	}
	rootNames = map[string]string{
		SubsystemQuest:    "QuestSystem",
		SubsystemDialogue: "DialogueSystem",
		SubsystemSkill:    "SkillSystem",
		SubsystemCrafting: "CraftingSystem",
	}
)

// Manager owns one automaton per subsystem, all sharing an Evaluator and a
// Performer.
type Manager struct {
	Quests   *QuestAutomaton
	Dialogue *DialogueAutomaton
	Skills   *SkillTreeAutomaton
	Crafting *CraftingAutomaton

	log *zap.Logger
}

// NewManager creates the four subsystems with their roots initialized.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []automata.Option{
		automata.WithConditionEvaluator(NewEvaluator(log)),
		automata.WithActionPerformer(NewPerformer(log)),
	}
	m := &Manager{log: log}
	m.Quests = NewQuestAutomaton(append(opts, automata.WithLogger(log.Named(SubsystemQuest)))...)
	m.Dialogue = NewDialogueAutomaton(append(opts, automata.WithLogger(log.Named(SubsystemDialogue)))...)
	m.Skills = NewSkillTreeAutomaton(append(opts, automata.WithLogger(log.Named(SubsystemSkill)))...)
	m.Crafting = NewCraftingAutomaton(append(opts, automata.WithLogger(log.Named(SubsystemCrafting)))...)
	m.ensureRoots()
	return m
}

// ensureRoots gives every empty subsystem its root.
func (m *Manager) ensureRoots() {
	for _, name := range Subsystems {
		a, _ := m.Subsystem(name)
		if a.Len() == 0 {
			_, _ = a.InitializeRoot(rootNames[name])
		}
	}
}

// Subsystem returns the automaton registered under name.
func (m *Manager) Subsystem(name string) (*automata.Automaton, bool) {
	switch name {
	case SubsystemQuest:
		return m.Quests.Automaton, true
	case SubsystemDialogue:
		return m.Dialogue.Automaton, true
	case SubsystemSkill:
		return m.Skills.Automaton, true
	case SubsystemCrafting:
		return m.Crafting.Automaton, true
	}
	return nil, false
}

// MarshalJSON writes every subsystem into one object keyed QuestAutomaton,
// DialogueAutomaton, SkillTreeAutomaton and CraftingAutomaton.
func (m *Manager) MarshalJSON() ([]byte, error) {
	out := make(map[string]*automata.Document, len(Subsystems))
	for _, name := range Subsystems {
		a, _ := m.Subsystem(name)
		out[saveKeys[name]] = a.Snapshot()
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores every subsystem. All four documents are parsed and
// validated before any subsystem is touched.
func (m *Manager) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", automata.ErrInvalidDocument, err)
	}

	docs := make(map[string]*automata.Document, len(Subsystems))
	for _, name := range Subsystems {
		msg, ok := raw[saveKeys[name]]
		if !ok {
			return fmt.Errorf("%w: missing field %q", automata.ErrInvalidDocument, saveKeys[name])
		}
		var doc automata.Document
		if err := json.Unmarshal(msg, &doc); err != nil {
			return fmt.Errorf("%s: %w", saveKeys[name], asInvalid(err))
		}
		docs[name] = &doc
	}
	return m.restore(docs)
}

func (m *Manager) restore(docs map[string]*automata.Document) error {
	for _, name := range Subsystems {
		if err := docs[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for _, name := range Subsystems {
		a, _ := m.Subsystem(name)
		if err := a.Restore(docs[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	m.ensureRoots()
	return nil
}

func asInvalid(err error) error {
	if errors.Is(err, automata.ErrInvalidDocument) {
		return err
	}
	return fmt.Errorf("%w: %w", automata.ErrInvalidDocument, err)
}

// SaveKey is the store key of one subsystem in a save slot.
func SaveKey(slot, subsystem string) string {
	return slot + "/" + subsystem
}

// Save writes every subsystem to store under slot.
func (m *Manager) Save(ctx context.Context, store automata.Store, slot string) error {
	for _, name := range Subsystems {
		a, _ := m.Subsystem(name)
		if err := store.SaveDocument(ctx, SaveKey(slot, name), a.Snapshot()); err != nil {
			return fmt.Errorf("save %s: %w", SaveKey(slot, name), err)
		}
	}
	m.log.Info("game saved", zap.String("slot", slot))
	return nil
}

// Load replaces every subsystem with the documents saved under slot. If any
// document is missing or invalid the manager is left unchanged.
func (m *Manager) Load(ctx context.Context, store automata.Store, slot string) error {
	docs := make(map[string]*automata.Document, len(Subsystems))
	for _, name := range Subsystems {
		doc, err := store.GetDocument(ctx, SaveKey(slot, name))
		if err != nil {
			return fmt.Errorf("load %s: %w", SaveKey(slot, name), err)
		}
		docs[name] = doc
	}
	if err := m.restore(docs); err != nil {
		return err
	}
	m.log.Info("game loaded", zap.String("slot", slot))
	return nil
}

// DeleteSave removes every document of slot.
func DeleteSave(ctx context.Context, store automata.Store, slot string) error {
	for _, name := range Subsystems {
		if err := store.DeleteDocument(ctx, SaveKey(slot, name)); err != nil {
			return fmt.Errorf("delete %s: %w", SaveKey(slot, name), err)
		}
	}
	return nil
}

// ListSaves returns the slots that have at least one subsystem stored,
// sorted.
func ListSaves(ctx context.Context, store automata.Store) ([]string, error) {
	keys, err := store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	slots := []string{}
	for _, k := range keys {
		i := strings.LastIndex(k, "/")
		if i <= 0 || !slices.Contains(Subsystems, k[i+1:]) {
			continue
		}
		if slot := k[:i]; !seen[slot] {
			seen[slot] = true
			slots = append(slots, slot)
		}
	}
	slices.Sort(slots)
	return slots, nil
}
