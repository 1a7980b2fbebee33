package query

import (
	"errors"
	"testing"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Lexer
// ---------------------------------------------------------------------------

func TestTokenize(t *testing.T) {
	tokens, err := NewLexer(">>Z[-1] or (1.5,-2,0)").Tokenize()
	require.NoError(t, err)

	var types []TokenType
	var values []string
	for _, tok := range tokens {
		types = append(types, tok.Type)
		values = append(values, tok.Value)
	}
	assert.Equal(t, []TokenType{
		TokenShiftGt, TokenWord, TokenLBracket, TokenMinus, TokenNumber, TokenRBracket,
		TokenWord,
		TokenLParen, TokenNumber, TokenComma, TokenMinus, TokenNumber, TokenComma, TokenNumber, TokenRParen,
		TokenEOF,
	}, types)
	assert.Equal(t, "1.5", values[8])
	assert.Equal(t, 8, tokens[6].Position)
}

func TestTokenizeUnknownOperator(t *testing.T) {
	_, err := NewLexer(">Z & <Z").Tokenize()
	var opErr *UnknownOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, '&', opErr.Char)
	assert.Equal(t, 4, opErr.Column)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

var zDir = axes["Z"]

func TestParseExprAtoms(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
		canon string
	}{
		{"Z", &DirAtom{Dir: zDir}, "Z"},
		{"xy", &DirAtom{Dir: axes["XY"]}, "XY"},
		{"(1, 0.5, -2)", &DirAtom{Dir: Direction{X: 1, Y: 0.5, Z: -2}}, "(1,0.5,-2)"},
		{"%plane", &TypeAtom{Type: kernel.GeomPlane}, "%PLANE"},
		{">Z", &NthAtom{Op: ">", Dir: zDir, Index: -1}, ">Z"},
		{"< Z [ 0 ]", &NthAtom{Op: "<", Dir: zDir, Index: 0, HasIndex: true}, "<Z[0]"},
		{">>X[-3]", &NthAtom{Op: ">>", Dir: axes["X"], Index: -3, HasIndex: true}, ">>X[-3]"},
		{"<<(0,0,1)", &NthAtom{Op: "<<", Dir: Direction{Z: 1}, Index: -1}, "<<(0,0,1)"},
		{"|Z", &DirOpAtom{Op: "|", Dir: zDir}, "|Z"},
		{"#Y", &DirOpAtom{Op: "#", Dir: axes["Y"]}, "#Y"},
		{"+X", &DirOpAtom{Op: "+", Dir: axes["X"]}, "+X"},
		{"-(0,1,0)", &DirOpAtom{Op: "-", Dir: Direction{Y: 1}}, "-(0,1,0)"},
		{"TOP", &ViewAtom{View: "top"}, "top"},
		{"front", &ViewAtom{View: "front"}, "front"},
		{"(0.0000001,0,1)", &DirAtom{Dir: Direction{X: 1e-7, Z: 1}}, "(0.0000001,0,1)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canon, got.String())
		})
	}
}

func TestParseExprOperators(t *testing.T) {
	nth := &NthAtom{Op: ">", Dir: zDir, Index: -2, HasIndex: true}
	plane := &TypeAtom{Type: kernel.GeomPlane}

	tests := []struct {
		input string
		want  Expr
		canon string
	}{
		{
			">Z[-2] and %PLANE",
			&BinaryExpr{Op: OpAnd, Left: nth, Right: plane},
			">Z[-2] and %PLANE",
		},
		{
			"|Z AND top OR %PLANE",
			&BinaryExpr{Op: OpOr,
				Left:  &BinaryExpr{Op: OpAnd, Left: &DirOpAtom{Op: "|", Dir: zDir}, Right: &ViewAtom{View: "top"}},
				Right: plane},
			"|Z and top or %PLANE",
		},
		{
			"|Z and (top or %PLANE)",
			&BinaryExpr{Op: OpAnd,
				Left:  &DirOpAtom{Op: "|", Dir: zDir},
				Right: &BinaryExpr{Op: OpOr, Left: &ViewAtom{View: "top"}, Right: plane}},
			"|Z and (top or %PLANE)",
		},
		{
			"%PLANE except Z",
			&BinaryExpr{Op: OpExc, Left: plane, Right: &DirAtom{Dir: zDir}},
			"%PLANE exc Z",
		},
		{
			"not Z and %PLANE",
			&BinaryExpr{Op: OpAnd, Left: &NotExpr{Inner: &DirAtom{Dir: zDir}}, Right: plane},
			"not Z and %PLANE",
		},
		{
			"not (Z and %PLANE)",
			&NotExpr{Inner: &BinaryExpr{Op: OpAnd, Left: &DirAtom{Dir: zDir}, Right: plane}},
			"not (Z and %PLANE)",
		},
		{
			"NOT not Z",
			&NotExpr{Inner: &NotExpr{Inner: &DirAtom{Dir: zDir}}},
			"not not Z",
		},
		{
			"((Z))",
			&DirAtom{Dir: zDir},
			"Z",
		},
		{
			"(-X or +X)",
			&BinaryExpr{Op: OpOr, Left: &DirOpAtom{Op: "-", Dir: axes["X"]}, Right: &DirOpAtom{Op: "+", Dir: axes["X"]}},
			"-X or +X",
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canon, got.String())
		})
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	inputs := []string{
		">Z[-2] and %PLANE",
		"|z",
		"%circle or %LINE except #x and not <<(1,-1,0.25)[2]",
		"not (front or back) exc (left and (right or top))",
		"bottom or <(0,0,1)[0] or >>xz",
		"((|Y)) and not not -Z",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first, err := ParseExpr(in)
			require.NoError(t, err)
			second, err := ParseExpr(first.String())
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.Equal(t, first.String(), second.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, err error)
	}{
		{"", isSyntax("empty query")},
		{"   ", isSyntax("empty query")},
		{">Z[", isSyntax("unterminated index")},
		{">Z[-2", isSyntax("unterminated index")},
		{">Z[1.5]", isSyntax("index must be an integer")},
		{">Z[X]", isSyntax("expected index")},
		{"(1,0", isSyntax("unterminated vector")},
		{"(1,0,0", isSyntax("unterminated vector")},
		{"(1;0;0)", isUnknownOperator(';')},
		{">Z and", isSyntax("missing operand at end of query")},
		{"and >Z", isSyntax("missing operand before")},
		{">Z or or <Z", isSyntax("missing operand before")},
		{"top >Z[-2] and %PLANE", isSyntax("expected operator")},
		{"(>Z or <Z", isSyntax("unterminated group")},
		{">Z)", isSyntax("unmatched )")},
		{">", isSyntax("expected direction, found end of query")},
		{">[0]", isSyntax("expected direction")},
		{"% >Z", isSyntax("expected type name")},
		{"$Z", isUnknownOperator('$')},
		{">Z & <Z", isUnknownOperator('&')},
		{"%FOO", isUnknownType("FOO")},
		{"%OTHER", isUnknownType("OTHER")},
		{"W", isUnknownDirection("W")},
		{">top", isUnknownDirection("top")},
		{">(0, 0, 0)", isUnknownDirection("(0, 0, 0)")},
		{"|(0,-0,0)", isUnknownDirection("(0,-0,0)")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseExpr(tt.input)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func isSyntax(fragment string) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var se *SyntaxError
		require.True(t, errors.As(err, &se), "got %T: %v", err, err)
		assert.Contains(t, se.Message, fragment)
		assert.Positive(t, se.Column)
	}
}

func isUnknownOperator(c rune) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var oe *UnknownOperatorError
		require.True(t, errors.As(err, &oe), "got %T: %v", err, err)
		assert.Equal(t, c, oe.Char)
	}
}

func isUnknownType(name string) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var te *UnknownTypeError
		require.True(t, errors.As(err, &te), "got %T: %v", err, err)
		assert.Equal(t, name, te.Name)
	}
}

func isUnknownDirection(text string) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		var de *UnknownDirectionError
		require.True(t, errors.As(err, &de), "got %T: %v", err, err)
		assert.Equal(t, text, de.Text)
	}
}

func TestSyntaxErrorColumn(t *testing.T) {
	_, err := ParseExpr("top >Z")
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 5, se.Column)
	assert.Equal(t, `query: syntax error at column 5: expected operator, found ">"`, err.Error())
}

// ---------------------------------------------------------------------------
// Query prefix
// ---------------------------------------------------------------------------

func TestParseQuery(t *testing.T) {
	tests := []struct {
		input   string
		kind    kernel.ShapeKind
		hasKind bool
		canon   string
	}{
		{"edges %CIRCLE", kernel.KindEdge, true, "edges %CIRCLE"},
		{"Faces > Z", kernel.KindFace, true, "faces >Z"},
		{"solids", kernel.KindSolid, true, "solids"},
		{">Z", 0, false, ">Z"},
		{"vertices not top", kernel.KindVertex, true, "vertices not top"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := ParseQuery(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.hasKind, q.HasKind)
			if tt.hasKind {
				assert.Equal(t, tt.kind, q.Kind)
			}
			assert.Equal(t, tt.canon, q.String())
		})
	}

	_, err := ParseQuery("faces and")
	var se *SyntaxError
	assert.True(t, errors.As(err, &se))
}
