package lang

import (
	"strconv"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/expr"
)

func errorAt(tok Token, format string, args ...interface{}) *lsystem.Error {
	return lsystem.Errorf(1, tok.Line, tok.Col, format, args...)
}

// ParseExpression reads one arithmetic expression:
//
//	expression := term { ('+'|'-') term }
//	term       := factor { ('*'|'/') factor }
//	factor     := '(' expression ')' | '-' factor | NUMBER | IDENTIFIER
//
// The token following the expression is left unread.
func ParseExpression(src TokenSource) (expr.Expression, error) {
	n, err := parseSum(src)
	if err != nil {
		return expr.Expression{}, err
	}
	if n == nil {
		tok, err := src.Lex()
		if err != nil {
			return expr.Expression{}, err
		}
		return expr.Expression{}, errorAt(tok, "expected an expression but got %s", tok)
	}
	return expr.New(n), nil
}

func binaryOp(tok Token, ops string) (expr.Op, bool) {
	if tok.Kind != Symbol || len(tok.Text) != 1 {
		return 0, false
	}
	switch c := tok.Text[0]; {
	case c == '+' && ops == "+-":
		return expr.OpAdd, true
	case c == '-' && ops == "+-":
		return expr.OpSub, true
	case c == '*' && ops == "*/":
		return expr.OpMul, true
	case c == '/' && ops == "*/":
		return expr.OpDiv, true
	}
	return 0, false
}

// parseSum returns nil, without consuming anything, when no term starts here.
func parseSum(src TokenSource) (*expr.Node, error) {
	left, err := parseTerm(src)
	if err != nil || left == nil {
		return nil, err
	}

	for {
		tok, err := src.Lex()
		if err != nil {
			return nil, err
		}
		op, ok := binaryOp(tok, "+-")
		if !ok {
			return left, src.Unlex(tok)
		}

		right, err := parseTerm(src)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, errorAt(tok, "a %s requires that an expression follow it", tok.Text)
		}
		left = expr.Binary(op, left, right)
	}
}

func parseTerm(src TokenSource) (*expr.Node, error) {
	left, err := parseFactor(src)
	if err != nil || left == nil {
		return nil, err
	}

	for {
		tok, err := src.Lex()
		if err != nil {
			return nil, err
		}
		op, ok := binaryOp(tok, "*/")
		if !ok {
			return left, src.Unlex(tok)
		}

		right, err := parseFactor(src)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, errorAt(tok, "a %s requires that a term follow it", tok.Text)
		}
		left = expr.Binary(op, left, right)
	}
}

func parseFactor(src TokenSource) (*expr.Node, error) {
	tok, err := src.Lex()
	if err != nil {
		return nil, err
	}

	switch {
	case tok.Kind == LParen:
		inner, err := parseSum(src)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, errorAt(tok, "expected an expression after '('")
		}
		closing, err := src.Lex()
		if err != nil {
			return nil, err
		}
		if closing.Kind != RParen {
			return nil, errorAt(closing, "found %s but expected a ')'", closing)
		}
		return inner, nil

	case tok.Is(Symbol, "-"):
		operand, err := parseFactor(src)
		if err != nil {
			return nil, err
		}
		if operand == nil {
			return nil, errorAt(tok, "expecting a factor after a unary minus")
		}
		return expr.Neg(operand), nil

	case tok.Kind == Int || tok.Kind == Float:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, lsystem.WrapError(err, 0, tok.Line, tok.Col, "invalid number %q", tok.Text)
		}
		return expr.Number(v), nil

	case tok.Kind == Identifier:
		return expr.Ident(tok.Text), nil
	}

	return nil, src.Unlex(tok)
}
