package query

import (
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Expr is a parsed query. String returns the canonical text, which parses
// back to an equal tree.
type Expr interface {
	String() string
	exprNode()
}

// Direction is an axis token or a vector literal. Axis is empty for
// literals.
type Direction struct {
	Axis    string
	X, Y, Z float64
}

// Vec returns the direction as given, without normalisation.
func (d Direction) Vec() v3.Vec {
	return v3.Vec{X: d.X, Y: d.Y, Z: d.Z}
}

func (d Direction) String() string {
	if d.Axis != "" {
		return d.Axis
	}
	return "(" + formatFloat(d.X) + "," + formatFloat(d.Y) + "," + formatFloat(d.Z) + ")"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// axes are the direction words. XY, YZ and XZ are left unnormalised here.
var axes = map[string]Direction{
	"X":  {Axis: "X", X: 1},
	"Y":  {Axis: "Y", Y: 1},
	"Z":  {Axis: "Z", Z: 1},
	"XY": {Axis: "XY", X: 1, Y: 1},
	"YZ": {Axis: "YZ", Y: 1, Z: 1},
	"XZ": {Axis: "XZ", X: 1, Z: 1},
}

// views are named shorthands for "the extreme entity seen from here".
var views = map[string]v3.Vec{
	"front":  {Y: -1},
	"back":   {Y: 1},
	"left":   {X: -1},
	"right":  {X: 1},
	"top":    {Z: 1},
	"bottom": {Z: -1},
}

// ---------------------------------------------------------------------------
// Atoms
// ---------------------------------------------------------------------------

// DirAtom is a bare direction: entities pointing exactly along it.
type DirAtom struct {
	Dir Direction
}

// TypeAtom is %NAME.
type TypeAtom struct {
	Type kernel.GeomType
}

// NthAtom is one of >v, <v, >>v, <<v with an optional [index].
type NthAtom struct {
	Op       string // ">", "<", ">>" or "<<"
	Dir      Direction
	Index    int
	HasIndex bool
}

// Max reports whether the atom ranks towards the positive direction.
func (a *NthAtom) Max() bool {
	return a.Op == ">" || a.Op == ">>"
}

// DirOpAtom is |v, #v, +v or -v.
type DirOpAtom struct {
	Op  string
	Dir Direction
}

// ViewAtom is one of the named views.
type ViewAtom struct {
	View string
}

// NotExpr negates its operand.
type NotExpr struct {
	Inner Expr
}

// BinaryOp is a set operator.
type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpExc
)

func (op BinaryOp) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "exc"
	}
}

// BinaryExpr combines two operands with a set operator.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

func (*DirAtom) exprNode()    {}
func (*TypeAtom) exprNode()   {}
func (*NthAtom) exprNode()    {}
func (*DirOpAtom) exprNode()  {}
func (*ViewAtom) exprNode()   {}
func (*NotExpr) exprNode()    {}
func (*BinaryExpr) exprNode() {}

func (a *DirAtom) String() string   { return a.Dir.String() }
func (a *TypeAtom) String() string  { return "%" + string(a.Type) }
func (a *DirOpAtom) String() string { return a.Op + a.Dir.String() }
func (a *ViewAtom) String() string  { return a.View }

func (a *NthAtom) String() string {
	s := a.Op + a.Dir.String()
	if a.HasIndex {
		s += "[" + strconv.Itoa(a.Index) + "]"
	}
	return s
}

func (e *NotExpr) String() string {
	return "not " + group(e.Inner)
}

// String prints left-associative chains flat and parenthesises a binary
// right operand.
func (e *BinaryExpr) String() string {
	var b strings.Builder
	b.WriteString(e.Left.String())
	b.WriteByte(' ')
	b.WriteString(e.Op.String())
	b.WriteByte(' ')
	b.WriteString(group(e.Right))
	return b.String()
}

func group(e Expr) string {
	if _, ok := e.(*BinaryExpr); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
