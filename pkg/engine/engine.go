// Package engine provides the Lisp evaluation engine for facet.
// It wraps zygomys in a sandboxed environment, builds shapes with a
// geometry kernel and records the selections a script makes as a Design.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/design"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/selector"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int // 1-based, 0 if unknown
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Combine folds evaluation errors into one error, or nil if there are none.
func Combine(errs []EvalError) error {
	var result *multierror.Error
	for _, e := range errs {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTolerance sets the default tolerance for script selections.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// WithDefaultKind sets the entity kind used when a shape is selected from
// without a kind prefix.
func WithDefaultKind(k kernel.ShapeKind) Option {
	return func(e *Engine) { e.kind = k }
}

// WithLogger sets the logger for selection tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine wraps the zygomys interpreter for facet evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	kernel    kernel.Kernel
	log       *logrus.Entry
	timeout   time.Duration
	tolerance float64
	kind      kernel.ShapeKind

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine that builds shapes with k.
func NewEngine(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{
		kernel:    k,
		log:       logrus.NewEntry(logrus.StandardLogger()),
		timeout:   EvalTimeout,
		tolerance: selector.DefaultTolerance,
		kind:      kernel.KindFace,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs Lisp source code and returns the Design it defines.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns design + nil errors + nil error
//   - On parse/eval failure: returns nil design + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*design.Design, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*design.Design, []EvalError, error) {
	d := design.New()
	d.Defaults.Tolerance = e.tolerance
	d.Defaults.Kind = e.kind

	// Empty source is a valid program that produces an empty design.
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, d, e)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	e.log.WithFields(logrus.Fields{
		"shapes":     d.ShapeCount(),
		"selections": len(d.Selections),
	}).Debug("evaluation finished")
	return d, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// No line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
