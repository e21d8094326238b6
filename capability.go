package automata

// ConditionEvaluator decides whether a transition condition holds.
// gameCtx is the opaque handle passed to TriggerEvent; the engine never
// inspects it.
type ConditionEvaluator interface {
	EvaluateCondition(condition string, gameCtx any) bool
}

// ActionPerformer applies a transition action against gameCtx.
type ActionPerformer interface {
	PerformAction(action string, gameCtx any)
}

// ConditionFunc adapts a function to ConditionEvaluator.
type ConditionFunc func(condition string, gameCtx any) bool

func (f ConditionFunc) EvaluateCondition(condition string, gameCtx any) bool {
	return f(condition, gameCtx)
}

// ActionFunc adapts a function to ActionPerformer.
type ActionFunc func(action string, gameCtx any)

func (f ActionFunc) PerformAction(action string, gameCtx any) {
	f(action, gameCtx)
}

// AlwaysTrue accepts every condition.
var AlwaysTrue ConditionEvaluator = ConditionFunc(func(string, any) bool { return true })

// NopPerformer ignores every action.
var NopPerformer ActionPerformer = ActionFunc(func(string, any) {})
