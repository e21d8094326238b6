package rpg

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"gopkg.in/yaml.v3"
)

// Content is a YAML content pack describing the initial quests, dialogue
// trees, skill trees, crafting systems and extra transition rules.
type Content struct {
	Quests      []QuestSpec           `yaml:"quests"`
	Dialogues   []DialogueSpec        `yaml:"dialogues"`
	SkillTrees  []SkillTreeSpec       `yaml:"skill_trees"`
	Crafting    []CraftingSpec        `yaml:"crafting"`
	Transitions map[string][]RuleSpec `yaml:"transitions"`
}

type QuestSpec struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Objectives  []ObjectiveSpec `yaml:"objectives"`
}

type ObjectiveSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type DialogueSpec struct {
	NPC     string       `yaml:"npc"`
	Options []OptionSpec `yaml:"options"`
}

// OptionSpec is a player response. Nested options continue the
// conversation from it.
type OptionSpec struct {
	Response   string       `yaml:"response"`
	Text       string       `yaml:"text"`
	Conditions []string     `yaml:"conditions"`
	Options    []OptionSpec `yaml:"options"`
}

type SkillTreeSpec struct {
	Class  string      `yaml:"class"`
	Skills []SkillSpec `yaml:"skills"`
}

type SkillSpec struct {
	Name        string      `yaml:"name"`
	Points      int         `yaml:"points"`
	Description string      `yaml:"description"`
	Skills      []SkillSpec `yaml:"skills"`
}

type CraftingSpec struct {
	Name    string       `yaml:"name"`
	Recipes []RecipeSpec `yaml:"recipes"`
}

type RecipeSpec struct {
	Name     string       `yaml:"name"`
	Requires []string     `yaml:"requires"`
	Result   string       `yaml:"result"`
	Recipes  []RecipeSpec `yaml:"recipes"`
}

type RuleSpec struct {
	From       string   `yaml:"from"`
	To         string   `yaml:"to"`
	Event      string   `yaml:"event"`
	Conditions []string `yaml:"conditions"`
	Actions    []string `yaml:"actions"`
}

func (r RuleSpec) transition() automata.Transition {
	t := automata.NewTransition(r.From, r.To, r.Event)
	t.Conditions = r.Conditions
	t.Actions = r.Actions
	return t
}

// LoadContent decodes a content pack. Unknown fields are rejected.
func LoadContent(r io.Reader) (*Content, error) {
	var c Content
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("rpg: decode content: %w", err)
	}
	return &c, nil
}

// LoadContentFile reads a content pack from path.
func LoadContentFile(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadContent(f)
}

// Apply builds c into the manager's subsystems. Extra transitions are added
// after the built-in vocabulary, so they only take effect where no earlier
// rule for the same state and event matches.
func (m *Manager) Apply(c *Content) error {
	for name := range c.Transitions {
		if _, ok := m.Subsystem(name); !ok {
			return fmt.Errorf("rpg: transitions for unknown subsystem %q", name)
		}
	}

	for _, q := range c.Quests {
		id, err := m.Quests.CreateQuest(q.Name, q.Description)
		if err != nil {
			return fmt.Errorf("quest %q: %w", q.Name, err)
		}
		for _, o := range q.Objectives {
			if _, err := m.Quests.AddObjective(id, o.Name, o.Description); err != nil {
				return fmt.Errorf("objective %q: %w", o.Name, err)
			}
		}
	}

	for _, d := range c.Dialogues {
		tree, err := m.Dialogue.CreateDialogueTree(d.NPC)
		if err != nil {
			return fmt.Errorf("dialogue %q: %w", d.NPC, err)
		}
		greeting, _ := m.Dialogue.Greeting(tree)
		if err := m.addOptions(greeting.NodeID, d.Options); err != nil {
			return err
		}
	}

	for _, t := range c.SkillTrees {
		tree, err := m.Skills.CreateSkillTree(t.Class)
		if err != nil {
			return fmt.Errorf("skill tree %q: %w", t.Class, err)
		}
		if err := m.addSkills(tree, t.Skills); err != nil {
			return err
		}
	}

	for _, cs := range c.Crafting {
		sys, err := m.Crafting.CreateCraftingSystem(cs.Name)
		if err != nil {
			return fmt.Errorf("crafting system %q: %w", cs.Name, err)
		}
		if err := m.addRecipes(sys, cs.Recipes); err != nil {
			return err
		}
	}

	for _, name := range Subsystems {
		a, _ := m.Subsystem(name)
		for _, r := range c.Transitions[name] {
			a.AddTransition(r.transition())
		}
	}
	return nil
}

func (m *Manager) addOptions(parent uuid.UUID, opts []OptionSpec) error {
	for _, o := range opts {
		id, err := m.Dialogue.AddDialogueNode(parent, o.Text, o.Response)
		if err != nil {
			return fmt.Errorf("dialogue option %q: %w", o.Response, err)
		}
		for _, cond := range o.Conditions {
			if err := m.Dialogue.SetDialogueCondition(id, cond); err != nil {
				return fmt.Errorf("dialogue option %q: %w", o.Response, err)
			}
		}
		if err := m.addOptions(id, o.Options); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) addSkills(parent uuid.UUID, skills []SkillSpec) error {
	for _, s := range skills {
		id, err := m.Skills.AddSkill(parent, s.Name, s.Points, s.Description)
		if err != nil {
			return fmt.Errorf("skill %q: %w", s.Name, err)
		}
		if err := m.addSkills(id, s.Skills); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) addRecipes(parent uuid.UUID, recipes []RecipeSpec) error {
	for _, r := range recipes {
		id, err := m.Crafting.AddRecipe(parent, r.Name, r.Requires, r.Result)
		if err != nil {
			return fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		if err := m.addRecipes(id, r.Recipes); err != nil {
			return err
		}
	}
	return nil
}
