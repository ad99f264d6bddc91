package settings

import (
	"context"
	"fmt"

	"github.com/slyguy/settings/pkg/logger"
)

// ConditionEvaluator evaluates platform-condition expressions.
type ConditionEvaluator interface {
	Compile(expr string) error
	Eval(expr string) (bool, error)
}

type predicateKind int

const (
	predicateUnset predicateKind = iota
	predicateLiteral
	predicateComputed
	predicateCondition
)

// Predicate decides whether a setting is visible or enabled. The zero value
// is always true.
type Predicate struct {
	kind  predicateKind
	value bool
	fn    func(ctx context.Context) bool
	expr  string
}

// Literal is a constant predicate.
func Literal(v bool) Predicate {
	return Predicate{kind: predicateLiteral, value: v}
}

// Computed evaluates fn on every read.
func Computed(fn func(ctx context.Context) bool) Predicate {
	return Predicate{kind: predicateComputed, fn: fn}
}

// PlatformCondition evaluates a host condition expression on every read.
func PlatformCondition(expr string) Predicate {
	return Predicate{kind: predicateCondition, expr: expr}
}

func (p Predicate) String() string {
	switch p.kind {
	case predicateLiteral:
		return fmt.Sprintf("%t", p.value)
	case predicateComputed:
		return "computed"
	case predicateCondition:
		return p.expr
	default:
		return "true"
	}
}

func (p Predicate) validate(conditions ConditionEvaluator) error {
	switch p.kind {
	case predicateComputed:
		if p.fn == nil {
			return fmt.Errorf("%w: computed predicate without a function", ErrInvalidPredicate)
		}
	case predicateCondition:
		if conditions == nil {
			return fmt.Errorf("%w: no condition evaluator for %q", ErrInvalidPredicate, p.expr)
		}
		if err := conditions.Compile(p.expr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPredicate, err)
		}
	}
	return nil
}

// eval never fails; a condition that cannot be evaluated is false.
func (p Predicate) eval(ctx context.Context, conditions ConditionEvaluator) bool {
	switch p.kind {
	case predicateLiteral:
		return p.value
	case predicateComputed:
		return p.fn(ctx)
	case predicateCondition:
		if conditions == nil {
			return false
		}
		ok, err := conditions.Eval(p.expr)
		if err != nil {
			logger.FromContext(ctx).Warn("Failed to evaluate condition", "expr", p.expr, "error", err)
			return false
		}
		return ok
	default:
		return true
	}
}
