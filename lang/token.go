package lang

import (
	"fmt"
	"strings"
)

type Kind int

const (
	EOF Kind = iota
	Identifier
	Symbol
	Int
	Float
	LParen
	RParen
	Punct
)

var kindNames = [...]string{
	EOF:        "EOF",
	Identifier: "IDENTIFIER",
	Symbol:     "SYMBOL",
	Int:        "INT",
	Float:      "FLOAT",
	LParen:     "START_PARENS",
	RParen:     "END_PARENS",
	Punct:      "PUNCTUATION",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexeme with the position it started at.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

// Is reports whether tok has kind k and text s.
func (tok Token) Is(k Kind, s string) bool {
	return tok.Kind == k && tok.Text == s
}

func (tok Token) String() string {
	if tok.Kind == EOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
}

// symbolChars are the non-letter characters that name a module on their own.
// '*' is among them so the expression grammar can use it as an operator.
const symbolChars = `+-&\/^|{}![]*`

const punctChars = `;:',`

func isSymbolChar(r rune) bool {
	return strings.ContainsRune(symbolChars, r) || isUpper(r)
}

func isPunctChar(r rune) bool {
	return strings.ContainsRune(punctChars, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
