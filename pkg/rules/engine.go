package rules

import (
	"fmt"
	"strings"
	"time"
)

// Config selects and tunes an evaluator built by New.
type Config struct {
	Cache     ProgramCache
	Functions *FunctionRegistry
}

// New builds the evaluator registered under engine ("expr", "cel" or "js").
// An empty engine selects expr.
func New(engine string, cfg Config) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cfg.Cache), ExprWithFunctionRegistry(cfg.Functions)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cfg.Cache), CELWithFunctionRegistry(cfg.Functions)), nil
	case EngineJS:
		evaluator := NewJSEvaluator(JSWithProgramCache(cfg.Cache), JSWithFunctionRegistry(cfg.Functions))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, EngineJS)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Rule binds an expression to the evaluator that runs it and the logger that
// records each attempt.
type Rule struct {
	Engine     string
	Expression string

	evaluator Evaluator
	logger    EvaluatorLogger
}

// NewRule pairs evaluator and expression. A nil logger discards events.
func NewRule(engine string, evaluator Evaluator, expression string, logger EvaluatorLogger) (*Rule, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("rules: evaluator is required")
	}
	if strings.TrimSpace(expression) == "" {
		return nil, wrapEvaluatorError(engine, ErrEmptyExpression)
	}
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}
	if engine == "" {
		engine = EngineExpr
	}
	return &Rule{
		Engine:     engine,
		Expression: expression,
		evaluator:  evaluator,
		logger:     logger,
	}, nil
}

// Eval runs the rule and returns its raw result.
func (r *Rule) Eval(ctx RuleContext) (any, error) {
	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, r.Expression)
	err = wrapEvaluationError(r.Engine, r.Expression, ctx.subjectLabel(), err)
	r.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   r.Engine,
		Expr:     r.Expression,
		Subject:  ctx.subjectLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

// Bool runs the rule and requires a boolean result.
func (r *Rule) Bool(ctx RuleContext) (bool, error) {
	value, err := r.Eval(ctx)
	if err != nil {
		return false, err
	}
	flag, ok := value.(bool)
	if !ok {
		return false, wrapEvaluationError(r.Engine, r.Expression, ctx.subjectLabel(), fmt.Errorf("%w: got %T", ErrNotBoolean, value))
	}
	return flag, nil
}
