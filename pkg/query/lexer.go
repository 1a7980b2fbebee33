package query

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// TokenType classifies a token.
type TokenType string

const (
	TokenLParen   TokenType = "LPAREN"
	TokenRParen   TokenType = "RPAREN"
	TokenLBracket TokenType = "LBRACKET"
	TokenRBracket TokenType = "RBRACKET"
	TokenComma    TokenType = "COMMA"
	TokenPercent  TokenType = "PERCENT"
	TokenShiftGt  TokenType = "SHIFT_GT"
	TokenShiftLt  TokenType = "SHIFT_LT"
	TokenGt       TokenType = "GT"
	TokenLt       TokenType = "LT"
	TokenPipe     TokenType = "PIPE"
	TokenHash     TokenType = "HASH"
	TokenPlus     TokenType = "PLUS"
	TokenMinus    TokenType = "MINUS"
	TokenNumber   TokenType = "NUMBER"
	TokenWord     TokenType = "WORD"
	TokenEOF      TokenType = "EOF"

	tokenSpace TokenType = "SPACE"
)

// Token is one lexeme. Position is the byte offset into the query.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q", t.Value)
}

type tokenPattern struct {
	Type    TokenType
	Pattern *regexp.Regexp
}

// patterns is tried in order; two-character operators come before their
// one-character prefixes.
var patterns = []tokenPattern{
	{tokenSpace, regexp.MustCompile(`^\s+`)},
	{TokenShiftGt, regexp.MustCompile(`^>>`)},
	{TokenShiftLt, regexp.MustCompile(`^<<`)},
	{TokenGt, regexp.MustCompile(`^>`)},
	{TokenLt, regexp.MustCompile(`^<`)},
	{TokenLParen, regexp.MustCompile(`^\(`)},
	{TokenRParen, regexp.MustCompile(`^\)`)},
	{TokenLBracket, regexp.MustCompile(`^\[`)},
	{TokenRBracket, regexp.MustCompile(`^\]`)},
	{TokenComma, regexp.MustCompile(`^,`)},
	{TokenPercent, regexp.MustCompile(`^%`)},
	{TokenPipe, regexp.MustCompile(`^\|`)},
	{TokenHash, regexp.MustCompile(`^#`)},
	{TokenPlus, regexp.MustCompile(`^\+`)},
	{TokenMinus, regexp.MustCompile(`^-`)},
	{TokenNumber, regexp.MustCompile(`^\d+(\.\d*)?`)},
	{TokenWord, regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)},
}

// Lexer splits a query into tokens.
type Lexer struct {
	text     string
	position int
	tokens   []Token
}

// NewLexer returns a lexer over text.
func NewLexer(text string) *Lexer {
	return &Lexer{text: text}
}

// Tokenize returns every token followed by a TokenEOF. A character outside
// the operator alphabet yields an *UnknownOperatorError.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.text) {
		remaining := l.text[l.position:]
		matched := false
		for _, p := range patterns {
			loc := p.Pattern.FindStringIndex(remaining)
			if loc == nil {
				continue
			}
			if p.Type != tokenSpace {
				l.tokens = append(l.tokens, Token{
					Type:     p.Type,
					Value:    remaining[:loc[1]],
					Position: l.position,
				})
			}
			l.position += loc[1]
			matched = true
			break
		}
		if !matched {
			r, _ := utf8.DecodeRuneInString(remaining)
			return nil, &UnknownOperatorError{Column: l.position + 1, Char: r}
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Position: len(l.text)})
	return l.tokens, nil
}
