package engine

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/brep"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(brep.New(), opts...)
}

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		d, evalErrs, err := newTestEngine().Evaluate(src)
		require.NoError(t, err)
		assert.Empty(t, evalErrs)
		require.NotNil(t, d)
		assert.Equal(t, 0, d.ShapeCount())
		assert.Empty(t, d.Selections)
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	src := `
(def x 10)
(def y 20)
(+ x y)
`
	d, evalErrs, err := newTestEngine().Evaluate(src)
	require.NoError(t, err)
	assert.Empty(t, evalErrs)
	require.NotNil(t, d)
	assert.Equal(t, 0, d.ShapeCount())
}

func TestEvaluateDefaults(t *testing.T) {
	eng := newTestEngine(WithTolerance(0.01), WithDefaultKind(kernel.KindEdge))
	d, _, err := eng.Evaluate("")
	require.NoError(t, err)
	assert.Equal(t, 0.01, d.Defaults.Tolerance)
	assert.Equal(t, kernel.KindEdge, d.Defaults.Kind)
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	eng := newTestEngine(WithTolerance(-1), WithTimeout(0), WithLogger(nil))
	assert.Equal(t, EvalTimeout, eng.timeout)
	assert.Greater(t, eng.tolerance, 0.0)
	assert.NotNil(t, eng.log)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unmatched paren", "(+ 1 2"},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"second line", "(+ 1 2)\n(+ 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := newTestEngine().Evaluate(tt.src)
			require.NoError(t, err)
			assert.Nil(t, d)
			require.NotEmpty(t, evalErrs)
			assert.NotEmpty(t, evalErrs[0].Message)
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newTestEngine()
	src := `(defselection "top" ">Z" (faces (box 1 2 3)))`
	for i := 0; i < 5; i++ {
		d, evalErrs, err := eng.Evaluate(src)
		require.NoError(t, err, "iteration %d", i)
		require.Empty(t, evalErrs, "iteration %d", i)
		require.Len(t, d.Selections, 1)
		assert.Len(t, d.Selections[0].Entities, 1)
	}
}

func TestEvaluateLogsSelections(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	eng := newTestEngine(WithLogger(logrus.NewEntry(logger)))
	_, evalErrs, err := eng.Evaluate(`(select "|Z" (faces (box 1 1 1)))`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	out := buf.String()
	assert.Contains(t, out, "msg=selection")
	assert.Contains(t, out, "candidates=6")
	assert.Contains(t, out, "selected=2")
	assert.Contains(t, out, "msg=\"evaluation finished\"")
}

func TestEvalError(t *testing.T) {
	assert.Equal(t, "line 5: something went wrong", EvalError{Line: 5, Message: "something went wrong"}.Error())
	assert.Equal(t, "no location", EvalError{Message: "no location"}.Error())
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil))

	err := Combine([]EvalError{
		{Line: 1, Message: "first"},
		{Message: "second"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "line 1: first")
	assert.Contains(t, err.Error(), "second")

	var ee EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "first", ee.Message)
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 50ms")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitDiscardsStaleGeneration(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "superseded")
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad thing", 3, "bad thing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantLine, errs[0].Line)
			assert.Equal(t, tt.wantMsg, errs[0].Message)
		})
	}
}
