package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2ECommentsOnly(t *testing.T) {
	for _, src := range []string{
		";; nothing here",
		"\n  ; one\n\n  ;; two\n  ",
	} {
		result := newTestApp(t).Evaluate(src)
		assert.Empty(t, result.Errors, "source %q", src)
		assert.Empty(t, result.Selections, "source %q", src)
	}
}

func TestE2EQueryErrorsAreEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"syntax", ">Z[", "syntax error"},
		{"unknown operator", "?Z", "?"},
		{"unknown type", "%BLOB", "BLOB"},
		{"unknown direction", "sideways", "sideways"},
		{"index out of range", ">Z[3]", "attempted to access index 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fmt.Sprintf(`(defselection "s" %q (faces (box 1 1 1)))`, tt.query)
			result := newTestApp(t).Evaluate(src)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0].Message, tt.want)
			assert.Empty(t, result.Selections)
		})
	}
}

func TestE2EValidationWarnings(t *testing.T) {
	result := newTestApp(t).Evaluate(`
(defshape "a" (box 1 1 1))
(defshape "a" (box 2 2 2))
(defselection "cones" "%CONE" (faces (shape "a")))
`)
	require.Empty(t, result.Errors)
	assert.Equal(t, []string{"a"}, result.Shapes)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, `[warning] "a": shape defined 2 times; the last definition wins`, result.Warnings[0].Message)
	assert.Equal(t, `[warning] "cones": query "%CONE" selected nothing`, result.Warnings[1].Message)

	require.Len(t, result.Selections, 1)
	assert.Equal(t, 0, result.Selections[0].Count)
	assert.NotNil(t, result.Selections[0].Entities)
}

func TestE2EDuplicateSelectionIsError(t *testing.T) {
	result := newTestApp(t).Evaluate(`
(def f (faces (box 1 1 1)))
(defselection "s" ">Z" f)
(defselection "s" "<Z" f)
`)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "duplicate selection name")
}

func TestE2EConfigTolerance(t *testing.T) {
	src := `
(def s (compound (box 1 1 1) (translate (box 1 1 1) (vec3 2 0 0.001))))
(defselection "top" ">Z" (faces s))
`
	l, err := logging.New("error", &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Default()
	assert.Equal(t, 1, NewApp(cfg, l).Evaluate(src).Selections[0].Count)

	cfg.Tolerance = 0.01
	assert.Equal(t, 2, NewApp(cfg, l).Evaluate(src).Selections[0].Count)
}

func TestE2EConfigDefaultKind(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultKind = "edges"
	l, err := logging.New("error", &bytes.Buffer{})
	require.NoError(t, err)

	result := NewApp(cfg, l).Evaluate(`
(defselection "vertical" "|Z" (box 1 1 1))
(defselection "tops" "faces >Z" (box 1 1 1))
`)
	require.Empty(t, result.Errors)
	assert.Equal(t, 4, result.Selections[0].Count)
	assert.Equal(t, "Edge", result.Selections[0].Entities[0].Kind)
	assert.Equal(t, "Face", result.Selections[1].Entities[0].Kind)
}

func TestE2EFatalErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New("error", &buf)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.EvalTimeout = "1ns"
	result := NewApp(cfg, l).Evaluate(`(defselection "s" ">Z" (faces (box 1 1 1)))`)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "timed out")
	assert.Contains(t, buf.String(), "evaluate failed")
}

func TestE2EScriptErrorsAreLogged(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `(defshape "a" (box 1 1 1)`, "script has errors"},
		{"bad query", `(select "%BLOB" (faces (box 1 1 1)))`, "BLOB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logging.New("warn", &buf)
			require.NoError(t, err)

			result := NewApp(nil, l).Evaluate(tt.src)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, buf.String(), "script has errors")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestE2ERapidEvaluation(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 10; i++ {
		src := fmt.Sprintf(`(defselection "s" "|Z" (faces (box %d 1 1)))`, i)
		result := app.Evaluate(src)
		require.Empty(t, result.Errors, "iteration %d", i)
		require.Len(t, result.Selections, 1)
		assert.Equal(t, 2, result.Selections[0].Count)
	}
}

func TestE2ELargeScript(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "(defshape \"b%d\" (translate (box 1 1 1) (vec3 %d 0 0)))\n", i, 2*i)
	}
	b.WriteString(`(defselection "far" ">X" (faces (compound`)
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, " (shape \"b%d\")", i)
	}
	b.WriteString(")))\n")

	start := time.Now()
	result := newTestApp(t).Evaluate(b.String())
	require.Empty(t, result.Errors)
	assert.Len(t, result.Shapes, 50)
	require.Len(t, result.Selections, 1)
	assert.Equal(t, 1, result.Selections[0].Count)
	assert.InDelta(t, 99, result.Selections[0].Entities[0].Center[0], 1e-9)
	assert.Less(t, time.Since(start), config.Default().Timeout())
}
