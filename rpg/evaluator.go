package rpg

import (
	"go.uber.org/zap"
)

// ExperienceThreshold is the experience grant above which GiveExperience
// awards a level and a skill point.
const ExperienceThreshold = 100

// Evaluator implements automata.ConditionEvaluator over *GameState.
//
//	HasItem:Item
//	HasStat:Stat:Min
//	HasFlag:Flag
//	HasReputation:Faction:Min
//	HasLevel:Min
//	HasSkillPoints:Min
//
// Any other context type, a malformed string or an unknown type is false.
type Evaluator struct {
	log *zap.Logger
}

func NewEvaluator(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{log: log}
}

func (e *Evaluator) EvaluateCondition(condition string, gameCtx any) bool {
	gs, ok := gameCtx.(*GameState)
	if !ok || gs == nil {
		e.log.Warn("condition evaluated without game state", zap.String("condition", condition))
		return false
	}

	in, err := ParseInstruction(condition)
	if err != nil {
		e.log.Warn("invalid condition", zap.Error(err))
		return false
	}

	switch {
	case in.Type == "HasItem":
		return gs.HasItem(in.Param(0))
	case in.Type == "HasStat" && in.Arity() >= 2:
		return gs.HasStat(in.Param(0), in.Int(1))
	case in.Type == "HasFlag":
		return gs.IsFlagSet(in.Param(0))
	case in.Type == "HasReputation" && in.Arity() >= 2:
		return gs.HasReputation(in.Param(0), in.Int(1))
	case in.Type == "HasLevel":
		return gs.Level >= in.Int(0)
	case in.Type == "HasSkillPoints":
		return gs.SkillPoints >= in.Int(0)
	}

	e.log.Warn("unknown condition type", zap.String("type", in.Type), zap.String("condition", condition))
	return false
}

// Performer implements automata.ActionPerformer over *GameState.
//
//	GiveItem:Item
//	RemoveItem:Item
//	SetFlag:Flag:Bool
//	ModifyStat:Stat:Delta
//	ModifyReputation:Faction:Delta
//	GiveSkillPoints:N
//	GiveExperience:N
//
// Anything it cannot interpret is logged and ignored.
type Performer struct {
	log *zap.Logger
}

func NewPerformer(log *zap.Logger) *Performer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Performer{log: log}
}

func (p *Performer) PerformAction(action string, gameCtx any) {
	gs, ok := gameCtx.(*GameState)
	if !ok || gs == nil {
		p.log.Warn("action performed without game state", zap.String("action", action))
		return
	}

	in, err := ParseInstruction(action)
	if err != nil {
		p.log.Warn("invalid action", zap.Error(err))
		return
	}

	switch {
	case in.Type == "GiveItem":
		gs.AddItem(in.Param(0))
	case in.Type == "RemoveItem":
		gs.RemoveItem(in.Param(0))
	case in.Type == "SetFlag" && in.Arity() >= 2:
		gs.SetFlag(in.Param(0), in.Bool(1))
	case in.Type == "ModifyStat" && in.Arity() >= 2:
		gs.ModifyStat(in.Param(0), in.Int(1))
	case in.Type == "ModifyReputation" && in.Arity() >= 2:
		gs.ModifyReputation(in.Param(0), in.Int(1))
	case in.Type == "GiveSkillPoints":
		gs.SkillPoints += in.Int(0)
	case in.Type == "GiveExperience":
		if in.Int(0) > ExperienceThreshold {
			gs.Level++
			gs.SkillPoints++
		}
	default:
		p.log.Warn("unknown action type", zap.String("type", in.Type), zap.String("action", action))
	}
}
