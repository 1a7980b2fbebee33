package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
)

// ParseExpr parses a query into its expression tree. No entity is touched,
// so every syntax problem is reported before evaluation starts.
//
// Grammar, with case-insensitive words and insignificant whitespace:
//
//	expr      := not_expr (("and" | "or" | "exc" | "except") not_expr)*
//	not_expr  := "not" not_expr | primary
//	primary   := atom | "(" expr ")"
//	atom      := dir | "%" TYPE | ("<" | ">" | "<<" | ">>") dir index?
//	           | ("|" | "#" | "+" | "-") dir | view
//	dir       := X | Y | Z | XY | YZ | XZ | "(" num "," num "," num ")"
//	index     := "[" "-"? digits "]"
//
// Binary operators share one precedence level and group to the left.
func ParseExpr(text string) (Expr, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	return newParser(text, tokens).parse()
}

type parser struct {
	text   string
	tokens []Token
	pos    int
}

func newParser(text string, tokens []Token) *parser {
	return &parser{text: text, tokens: tokens}
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) Token {
	if i := p.pos + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	return &SyntaxError{Column: tok.Position + 1, Message: fmt.Sprintf(format, args...)}
}

// parse reads a whole query.
func (p *parser) parse() (Expr, error) {
	if p.peek().Type == TokenEOF {
		return nil, p.errorf(p.peek(), "empty query")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.Type {
	case TokenEOF:
		return e, nil
	case TokenRParen:
		return nil, p.errorf(tok, "unmatched )")
	default:
		return nil, p.errorf(tok, "expected operator, found %s", tok)
	}
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binaryOp(p.peek())
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func binaryOp(tok Token) (BinaryOp, bool) {
	if tok.Type != TokenWord {
		return 0, false
	}
	switch strings.ToLower(tok.Value) {
	case "and":
		return OpAnd, true
	case "or":
		return OpOr, true
	case "exc", "except":
		return OpExc, true
	}
	return 0, false
}

func isKeyword(tok Token) bool {
	if _, ok := binaryOp(tok); ok {
		return true
	}
	return tok.Type == TokenWord && strings.EqualFold(tok.Value, "not")
}

func (p *parser) parseNot() (Expr, error) {
	if tok := p.peek(); tok.Type == TokenWord && strings.EqualFold(tok.Value, "not") {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenLParen:
		if p.vectorAhead() {
			d, err := p.parseDirection()
			if err != nil {
				return nil, err
			}
			return &DirAtom{Dir: d}, nil
		}
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Type != TokenRParen {
			if closing.Type == TokenEOF {
				return nil, p.errorf(tok, "unterminated group")
			}
			return nil, p.errorf(closing, "expected ), found %s", closing)
		}
		p.next()
		return e, nil

	case TokenPercent:
		p.next()
		name := p.next()
		if name.Type != TokenWord {
			return nil, p.errorf(name, "expected type name after %%, found %s", name)
		}
		t, ok := kernel.LookupGeomType(name.Value)
		if !ok {
			return nil, &UnknownTypeError{Column: name.Position + 1, Name: name.Value}
		}
		return &TypeAtom{Type: t}, nil

	case TokenGt, TokenLt, TokenShiftGt, TokenShiftLt:
		p.next()
		d, err := p.parseDirection()
		if err != nil {
			return nil, err
		}
		atom := &NthAtom{Op: tok.Value, Dir: d, Index: -1}
		if p.peek().Type == TokenLBracket {
			if atom.Index, err = p.parseIndex(); err != nil {
				return nil, err
			}
			atom.HasIndex = true
		}
		return atom, nil

	case TokenPipe, TokenHash, TokenPlus, TokenMinus:
		p.next()
		d, err := p.parseDirection()
		if err != nil {
			return nil, err
		}
		return &DirOpAtom{Op: tok.Value, Dir: d}, nil

	case TokenWord:
		if isKeyword(tok) {
			return nil, p.errorf(tok, "missing operand before %s", tok)
		}
		p.next()
		if _, ok := views[strings.ToLower(tok.Value)]; ok {
			return &ViewAtom{View: strings.ToLower(tok.Value)}, nil
		}
		if d, ok := axes[strings.ToUpper(tok.Value)]; ok {
			return &DirAtom{Dir: d}, nil
		}
		return nil, &UnknownDirectionError{Column: tok.Position + 1, Text: tok.Value}

	case TokenEOF:
		return nil, p.errorf(tok, "missing operand at end of query")
	}
	return nil, p.errorf(tok, "unexpected %s", tok)
}

// vectorAhead reports whether the "(" at the cursor opens a vector literal
// rather than a group.
func (p *parser) vectorAhead() bool {
	switch p.peekAt(1).Type {
	case TokenNumber:
		return true
	case TokenPlus, TokenMinus:
		return p.peekAt(2).Type == TokenNumber
	}
	return false
}

func (p *parser) parseDirection() (Direction, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenWord:
		p.next()
		if d, ok := axes[strings.ToUpper(tok.Value)]; ok {
			return d, nil
		}
		return Direction{}, &UnknownDirectionError{Column: tok.Position + 1, Text: tok.Value}
	case TokenLParen:
		return p.parseVector()
	case TokenEOF:
		return Direction{}, p.errorf(tok, "expected direction, found end of query")
	}
	return Direction{}, p.errorf(tok, "expected direction, found %s", tok)
}

func (p *parser) parseVector() (Direction, error) {
	open := p.next()
	var xyz [3]float64
	for i := range xyz {
		if i > 0 {
			if err := p.expect(TokenComma, open, "vector"); err != nil {
				return Direction{}, err
			}
		}
		f, err := p.parseSigned()
		if err != nil {
			return Direction{}, err
		}
		xyz[i] = f
	}
	closing := p.peek()
	if err := p.expect(TokenRParen, open, "vector"); err != nil {
		return Direction{}, err
	}

	d := Direction{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	if d.X == 0 && d.Y == 0 && d.Z == 0 {
		return Direction{}, &UnknownDirectionError{
			Column: open.Position + 1,
			Text:   p.text[open.Position : closing.Position+1],
		}
	}
	return d, nil
}

func (p *parser) parseSigned() (float64, error) {
	neg := false
	if tok := p.peek(); tok.Type == TokenPlus || tok.Type == TokenMinus {
		neg = tok.Type == TokenMinus
		p.next()
	}
	tok := p.next()
	if tok.Type != TokenNumber {
		return 0, p.errorf(tok, "expected number, found %s", tok)
	}
	f, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, p.errorf(tok, "invalid number %s", tok)
	}
	if neg {
		f = -f
	}
	return f, nil
}

func (p *parser) parseIndex() (int, error) {
	open := p.next()
	neg := false
	if p.peek().Type == TokenMinus {
		neg = true
		p.next()
	}
	tok := p.next()
	if tok.Type != TokenNumber {
		if tok.Type == TokenEOF {
			return 0, p.errorf(open, "unterminated index")
		}
		return 0, p.errorf(tok, "expected index, found %s", tok)
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, p.errorf(tok, "index must be an integer, found %s", tok)
	}
	if neg {
		n = -n
	}
	if err := p.expect(TokenRBracket, open, "index"); err != nil {
		return 0, err
	}
	return n, nil
}

// expect consumes a token of type want. Running out of input is reported
// at the opening bracket as an unterminated construct.
func (p *parser) expect(want TokenType, open Token, what string) error {
	tok := p.peek()
	if tok.Type == want {
		p.next()
		return nil
	}
	if tok.Type == TokenEOF {
		return p.errorf(open, "unterminated %s", what)
	}
	return p.errorf(tok, "unexpected %s in %s", tok, what)
}
