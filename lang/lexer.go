package lang

import (
	"bufio"
	"io"
	"strings"

	lsystem "github.com/lakinwecker/ll-cool-tree"
)

const eof = rune(-1)

// TokenSource is what the expression and grammar parsers read from.
type TokenSource interface {
	Lex() (Token, error)
	Unlex(tok Token) error
}

// Lexer turns L-system text into tokens. One token can be pushed back.
type Lexer struct {
	in *bufio.Reader

	line, col         int
	prevLine, prevCol int

	pushed *Token
}

func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		in:   bufio.NewReader(r),
		line: 1,
		col:  1,
	}
}

// Position is where the next rune will be read from.
func (l *Lexer) Position() (line, col int) {
	return l.line, l.col
}

func (l *Lexer) read() (rune, error) {
	r, _, err := l.in.ReadRune()
	if err == io.EOF {
		return eof, nil
	} else if err != nil {
		return eof, lsystem.WrapError(err, 0, l.line, l.col, "reading input")
	}

	l.prevLine, l.prevCol = l.line, l.col
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, nil
}

func (l *Lexer) unread(r rune) {
	if r == eof {
		return
	}
	_ = l.in.UnreadRune()
	l.line, l.col = l.prevLine, l.prevCol
}

func (l *Lexer) errorf(format string, args ...interface{}) *lsystem.Error {
	return lsystem.Errorf(1, l.line, l.col, format, args...)
}

// Lex consumes and returns the next token. At the end of input it keeps
// returning an EOF token.
func (l *Lexer) Lex() (Token, error) {
	if l.pushed != nil {
		tok := *l.pushed
		l.pushed = nil
		return tok, nil
	}

	r, err := l.read()
	for err == nil && isSpace(r) {
		r, err = l.read()
	}
	if err != nil {
		return Token{}, err
	}

	tok := Token{Line: l.prevLine, Col: l.prevCol}
	switch {
	case r == eof:
		tok.Line, tok.Col = l.line, l.col
		tok.Kind, tok.Text = EOF, "EOF"
	case isDigit(r):
		return l.number(tok, r)
	case r == '(':
		tok.Kind, tok.Text = LParen, "("
	case r == ')':
		tok.Kind, tok.Text = RParen, ")"
	case isSymbolChar(r):
		tok.Kind, tok.Text = Symbol, string(r)
	case isPunctChar(r):
		tok.Kind, tok.Text = Punct, string(r)
	case r == '=':
		next, err := l.read()
		if err != nil {
			return Token{}, err
		}
		if next != '>' {
			return Token{}, l.errorf("'=' must be directly followed by '>'")
		}
		tok.Kind, tok.Text = Punct, "=>"
	case isLower(r):
		return l.run(tok, Identifier, r, isLower)
	default:
		return Token{}, l.errorf("invalid character %q", r)
	}
	return tok, nil
}

func (l *Lexer) run(tok Token, kind Kind, first rune, accept func(rune) bool) (Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := l.read()
		if err != nil {
			return Token{}, err
		}
		if !accept(r) {
			l.unread(r)
			break
		}
		sb.WriteRune(r)
	}
	tok.Kind, tok.Text = kind, sb.String()
	return tok, nil
}

func (l *Lexer) number(tok Token, first rune) (Token, error) {
	tok, err := l.run(tok, Int, first, isDigit)
	if err != nil {
		return Token{}, err
	}

	r, err := l.read()
	if err != nil {
		return Token{}, err
	}
	if r != '.' {
		l.unread(r)
		return tok, nil
	}

	frac, err := l.run(tok, Float, '.', isDigit)
	if err != nil {
		return Token{}, err
	}
	frac.Text = tok.Text + frac.Text
	return frac, nil
}

// Unlex pushes tok back so the next Lex returns it. Only one token can be
// pending at a time.
func (l *Lexer) Unlex(tok Token) error {
	if l.pushed != nil {
		return l.errorf("can only unlex one token at a time")
	}
	l.pushed = &tok
	return nil
}
