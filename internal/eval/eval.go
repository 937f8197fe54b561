// Package eval evaluates mapping expressions against attribute bindings.
package eval

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator resolves an expression to a value given the attribute bindings
// of the entry being processed.
type Evaluator interface {
	Evaluate(expression string, bindings map[string]any) (any, error)
}

// Engine is the default Evaluator. Compiled programs are cached by source
// text so repeated evaluation over large result sets compiles each
// expression once. Safe for concurrent use.
type Engine struct {
	programs sync.Map // string -> *vm.Program
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Evaluate(expression string, bindings map[string]any) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, bindings)
	if err != nil {
		return nil, fmt.Errorf("eval: %q: %w", expression, err)
	}
	return out, nil
}

func (e *Engine) compile(expression string) (*vm.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("eval: compile %q: %w", expression, err)
	}
	e.programs.Store(expression, program)
	return program, nil
}
