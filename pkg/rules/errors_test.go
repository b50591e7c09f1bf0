package rules

import (
	"errors"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "registered && missing", "Alice", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "registered && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Subject != "Alice" {
		t.Fatalf("expected subject metadata, got %q", evalErr.Subject)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "Bob", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Subject != "Bob" {
		t.Fatalf("subject should be filled, got %q", existing.Subject)
	}
}

func TestWrapEvaluatorErrorKeepsNamespace(t *testing.T) {
	if err := wrapEvaluatorError("expr", ErrEmptyExpression); !errors.Is(err, ErrEmptyExpression) || err.Error() != ErrEmptyExpression.Error() {
		t.Fatalf("expected namespaced error unchanged, got %v", err)
	}
	err := wrapEvaluatorError("cel", errors.New("parse"))
	if err.Error() != "rules: cel evaluator: parse" {
		t.Fatalf("unexpected wrapped message %q", err.Error())
	}
}
