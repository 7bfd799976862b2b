package arrival

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeRule = "arrivalTime <= 60"
	DefaultStopRule = "remainingStops <= 1"
)

// Condition holds both halves of the call condition so callers can report
// which one failed.
type Condition struct {
	MeetsTime  bool
	MeetsStops bool
}

func (c Condition) Callable() bool {
	return c.MeetsTime && c.MeetsStops
}

// Evaluator checks the time and stop-count rules. Rules are expressions over
// arrivalTime and remainingStops.
type Evaluator struct {
	timeRule *vm.Program
	stopRule *vm.Program
}

var defaultEvaluator = MustNewEvaluator(DefaultTimeRule, DefaultStopRule)

func NewEvaluator(timeRule string, stopRule string) (*Evaluator, error) {
	timeProgram, err := compileRule(timeRule)
	if err != nil {
		return nil, fmt.Errorf("compiling time rule: %w", err)
	}

	stopProgram, err := compileRule(stopRule)
	if err != nil {
		return nil, fmt.Errorf("compiling stop rule: %w", err)
	}

	return &Evaluator{
		timeRule: timeProgram,
		stopRule: stopProgram,
	}, nil
}

func MustNewEvaluator(timeRule string, stopRule string) *Evaluator {
	evaluator, err := NewEvaluator(timeRule, stopRule)
	if err != nil {
		panic(err)
	}
	return evaluator
}

func DefaultEvaluator() *Evaluator {
	return defaultEvaluator
}

func (e *Evaluator) Evaluate(currentArrivalTimeSeconds int, remainingStops int) Condition {
	env := ruleEnv(currentArrivalTimeSeconds, remainingStops)

	return Condition{
		MeetsTime:  runRule(e.timeRule, env),
		MeetsStops: runRule(e.stopRule, env),
	}
}

func (e *Evaluator) IsCallable(currentArrivalTimeSeconds int, remainingStops int) bool {
	return e.Evaluate(currentArrivalTimeSeconds, remainingStops).Callable()
}

// IsCallable applies the default rules: at most 60 seconds and at most one stop away.
func IsCallable(currentArrivalTimeSeconds int, remainingStops int) bool {
	return defaultEvaluator.IsCallable(currentArrivalTimeSeconds, remainingStops)
}

func ruleEnv(arrivalTime int, remainingStops int) map[string]any {
	return map[string]any{
		"arrivalTime":    arrivalTime,
		"remainingStops": remainingStops,
	}
}

func compileRule(rule string) (*vm.Program, error) {
	return expr.Compile(rule, expr.Env(ruleEnv(0, 0)), expr.AsBool())
}

func runRule(program *vm.Program, env map[string]any) bool {
	output, err := expr.Run(program, env)
	if err != nil {
		log.Error().Err(err).Msg("Failed to evaluate call condition rule")
		return false
	}

	met, ok := output.(bool)
	return ok && met
}
