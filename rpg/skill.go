package rpg

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

const (
	SkillTreeAvailable = "Available"
	SkillLocked        = "Locked"
	SkillUnlocked      = "Unlocked"

	EventUnlockSkill = "UnlockSkill"

	TypeSkillTree = "SkillTree"
	TypeSkill     = "Skill"
)

// SkillTreeAutomaton holds one tree per character class. A skill can be
// unlocked once its parent is unlocked, or directly when it hangs off a
// class tree or the root.
type SkillTreeAutomaton struct {
	*automata.Automaton
}

func NewSkillTreeAutomaton(opts ...automata.Option) *SkillTreeAutomaton {
	return &SkillTreeAutomaton{Automaton: automata.New(opts...)}
}

// CreateSkillTree adds "<class> Skills" under the root.
func (s *SkillTreeAutomaton) CreateSkillTree(class string) (uuid.UUID, error) {
	return underRoot(s.Automaton, class+" Skills", TypeSkillTree, SkillTreeAvailable, map[string]string{
		MetaClass: class,
	})
}

// AddSkill adds a Locked skill costing points under parentID.
func (s *SkillTreeAutomaton) AddSkill(parentID uuid.UUID, name string, points int, description string) (uuid.UUID, error) {
	id, err := addTyped(s.Automaton, name, parentID, TypeSkill, SkillLocked, map[string]string{
		MetaDescription:    description,
		MetaPointsRequired: strconv.Itoa(points),
	})
	if err != nil {
		return uuid.Nil, err
	}
	ensureRules(s.Automaton, automata.NewTransition(SkillLocked, SkillUnlocked, EventUnlockSkill))
	return id, nil
}

// Cost returns the points a skill requires.
func (s *SkillTreeAutomaton) Cost(skillID uuid.UUID) (int, bool) {
	n, ok := s.GetNode(skillID)
	if !ok {
		return 0, false
	}
	return atoi(n.Meta(MetaPointsRequired)), true
}

// UnlockSkill dispatches UnlockSkill when the prerequisite is met and
// available covers the cost. An already unlocked skill reports true.
// Points are not deducted; that is the caller's bookkeeping.
func (s *SkillTreeAutomaton) UnlockSkill(skillID uuid.UUID, available int, gameCtx any) bool {
	n, ok := s.GetNode(skillID)
	if !ok {
		return false
	}
	if n.State == SkillUnlocked {
		return true
	}
	if !s.prerequisiteMet(skillID) {
		return false
	}
	if available < atoi(n.Meta(MetaPointsRequired)) {
		return false
	}
	return s.TriggerEvent(skillID, EventUnlockSkill, gameCtx)
}

func (s *SkillTreeAutomaton) prerequisiteMet(skillID uuid.UUID) bool {
	p, ok := s.GetParent(skillID)
	if !ok {
		return false
	}
	return p.NodeID == s.RootID() || p.Meta(MetaType) == TypeSkillTree || p.State == SkillUnlocked
}

// AvailableSkills returns locked skills whose prerequisite is met and whose
// cost fits within available.
func (s *SkillTreeAutomaton) AvailableSkills(available int) []automata.Node {
	out := []automata.Node{}
	for _, n := range ofType(s.FindNodesByState(SkillLocked), TypeSkill) {
		if s.prerequisiteMet(n.NodeID) && available >= atoi(n.Meta(MetaPointsRequired)) {
			out = append(out, n)
		}
	}
	return out
}

func (s *SkillTreeAutomaton) UnlockedSkills() []automata.Node {
	return s.FindNodesByState(SkillUnlocked)
}
