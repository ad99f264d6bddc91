// Package condition evaluates platform-condition predicates. A condition is
// a CEL expression over the host environment, for example
//
//	platform == "android" && "inputstream.adaptive" in conditions
package condition

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	ErrEmptyExpression = errors.New("condition: expression required")
	ErrNotBool         = errors.New("condition: expression does not evaluate to a bool")
)

// Host describes the environment conditions are evaluated against.
type Host struct {
	// Platform is the host operating system or device family.
	Platform string
	// Conditions lists host facts that hold, such as installed add-ons.
	Conditions []string
}

// Evaluator compiles each expression once and evaluates it against a fixed Host.
type Evaluator struct {
	env      *cel.Env
	vars     map[string]any
	programs sync.Map // expr -> cel.Program
}

// NewEvaluator creates an evaluator bound to host.
func NewEvaluator(host Host) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("platform", cel.StringType),
		cel.Variable("conditions", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("condition: create environment: %w", err)
	}
	conditions := slices.Clone(host.Conditions)
	if conditions == nil {
		conditions = []string{}
	}
	return &Evaluator{
		env: env,
		vars: map[string]any{
			"platform":   strings.ToLower(host.Platform),
			"conditions": conditions,
		},
	}, nil
}

// Compile checks expr without evaluating it.
func (e *Evaluator) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

// Eval evaluates expr against the host.
func (e *Evaluator) Eval(expr string) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(e.vars)
	if err != nil {
		return false, fmt.Errorf("condition: evaluate %q: %w", expr, err)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBool, expr)
	}
	return v, nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if cached, ok := e.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("condition: compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %q", ErrNotBool, expr)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("condition: build program %q: %w", expr, err)
	}
	e.programs.Store(expr, prg)
	return prg, nil
}
