package query

import "fmt"

// SyntaxError reports malformed query text. Column is 1-based.
type SyntaxError struct {
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: syntax error at column %d: %s", e.Column, e.Message)
}

// UnknownOperatorError reports a character that starts no token.
type UnknownOperatorError struct {
	Column int
	Char   rune
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("query: unknown operator %q at column %d", e.Char, e.Column)
}

// UnknownTypeError reports a %name that is not a selectable geometry type.
type UnknownTypeError struct {
	Column int
	Name   string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("query: unknown geometry type %q at column %d", e.Name, e.Column)
}

// UnknownDirectionError reports a word that names no axis or view, or a
// vector literal of zero length.
type UnknownDirectionError struct {
	Column int
	Text   string
}

func (e *UnknownDirectionError) Error() string {
	return fmt.Sprintf("query: unknown direction %q at column %d", e.Text, e.Column)
}
