// Package evaluator computes parameter values from small expressions.
//
// Expressions are written in the expr language (github.com/expr-lang/expr)
// and run against an allow-listed set of date, time, math, json and regex
// helpers. Nothing else is reachable from an expression.
package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	// ErrEmpty is returned for blank expressions.
	ErrEmpty = errors.New("empty expression")
	// ErrCompile wraps parse and type-check failures.
	ErrCompile = errors.New("compile expression")
	// ErrRun wraps runtime failures.
	ErrRun = errors.New("run expression")
)

// Evaluator runs parameter expressions.
type Evaluator struct {
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Evaluator) { e.clock = clock }
}

// WithLogger sets the logger used to report fail-soft evaluations.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile checks that the expression parses and type-checks against the
// helper set without running it.
func (e *Evaluator) Compile(code string) error {
	_, _, err := e.compile(code)
	return err
}

func (e *Evaluator) compile(code string) (*vm.Program, map[string]any, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrEmpty
	}

	env := e.env()
	program, err := expr.Compile(code,
		expr.Env(env),
		expr.DisableBuiltin("now"),
		expr.DisableBuiltin("date"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return program, env, nil
}

// Eval compiles and runs the expression and returns its value.
func (e *Evaluator) Eval(code string) (result any, err error) {
	program, env, err := e.compile(code)
	if err != nil {
		return nil, err
	}

	// a panicking helper is reported as ErrRun
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrRun, r)
		}
	}()

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRun, err)
	}
	return out, nil
}

// Evaluate is the fail-soft form of Eval: any failure is returned as the
// string "Error: <message>" so one bad parameter does not abort rendering.
func (e *Evaluator) Evaluate(code string) any {
	v, err := e.Eval(code)
	if err != nil {
		msg := "Error: " + err.Error()
		e.logger.Error("parameter evaluation failed",
			slog.String("expression", code),
			slog.String("error", err.Error()),
		)
		return msg
	}
	return v
}
