// Package lang reads the L-system description language.
//
// A description declares globals and model indices, the iteration count and
// the axiom, then one or more productions:
//
//	angle : 22.5;
//	F : 1;
//	iterations : 3;
//	F(1);
//	F(x) : 0.6 => F(x*0.9) [ +(angle) F(x/2) ] F(x);
//	F(x) : 0.4 => F(x) [ -(angle) F(x/2) ];
package lang

import (
	"io"
	"strconv"
	"strings"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/expr"
)

// Parse reads a whole description and returns it with its productions normalized.
func Parse(r io.Reader) (*lsystem.Parameters, error) {
	p := &parser{
		lex: NewLexer(r),
		params: lsystem.Parameters{
			Productions: lsystem.NewProductionSet(),
			Globals:     lsystem.SymbolTable{},
			Models:      map[lsystem.Symbol]int{},
		},
	}
	if err := p.parseLSystem(); err != nil {
		return nil, err
	}
	return &p.params, nil
}

func ParseString(s string) (*lsystem.Parameters, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	lex    *Lexer
	params lsystem.Parameters
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) *lsystem.Error {
	return lsystem.Errorf(1, tok.Line, tok.Col, format, args...)
}

// expect returns the next token, failing unless it has kind k (and text, if given).
func (p *parser) expect(k Kind, text, context string) (Token, error) {
	tok, err := p.lex.Lex()
	if err != nil {
		return tok, err
	}
	if tok.Kind != k || (text != "" && tok.Text != text) {
		want := text
		if want == "" {
			want = k.String()
		}
		return tok, lsystem.Errorf(1, tok.Line, tok.Col, "%s: expected '%s' but got %s", context, want, tok)
	}
	return tok, nil
}

// LSystem := StartState Production {Production} EOF
func (p *parser) parseLSystem() error {
	if err := p.parseStartState(); err != nil {
		return err
	}

	ok, err := p.parseProduction()
	if err != nil {
		return err
	}
	if !ok {
		tok, err := p.lex.Lex()
		if err != nil {
			return err
		}
		return p.errorf(tok, "requires at least one production, got %s", tok)
	}
	for ok {
		if ok, err = p.parseProduction(); err != nil {
			return err
		}
	}

	tok, err := p.lex.Lex()
	if err != nil {
		return err
	}
	if tok.Kind != EOF {
		return p.errorf(tok, "expected end of file, got %s", tok)
	}

	return p.params.Productions.Normalize()
}

// StartState := {Global | ModelDecl} 'iterations' ':' INT ';' StartModules ';'
func (p *parser) parseStartState() error {
	for {
		tok, err := p.lex.Lex()
		if err != nil {
			return err
		}

		switch {
		case tok.Is(Identifier, "iterations"):
			if err := p.parseIterations(); err != nil {
				return err
			}
		case tok.Kind == Identifier:
			if err := p.parseGlobal(tok); err != nil {
				return err
			}
			continue
		case tok.Kind == Symbol && isUpper(rune(tok.Text[0])):
			if err := p.parseModel(tok); err != nil {
				return err
			}
			continue
		default:
			return p.errorf(tok, "an L-system needs to start with 'iterations: <INT>;', got %s", tok)
		}
		break
	}

	if _, err := p.expect(Punct, ";", "iterations"); err != nil {
		return err
	}

	n, err := p.parseStartModules()
	if err != nil {
		return err
	}
	if n == 0 {
		tok, err := p.lex.Lex()
		if err != nil {
			return err
		}
		return p.errorf(tok, "an L-system needs a list of start modules following the iterations line")
	}

	_, err = p.expect(Punct, ";", "start modules")
	return err
}

// 'iterations' ':' INT, after 'iterations'
func (p *parser) parseIterations() error {
	if _, err := p.expect(Punct, ":", "iterations"); err != nil {
		return err
	}
	tok, err := p.expect(Int, "", "iterations")
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(tok.Text, 10, 0)
	if err != nil {
		return lsystem.WrapError(err, 0, tok.Line, tok.Col, "invalid iteration count")
	}
	p.params.Iterations = uint(n)
	return nil
}

// Global := IDENT ':' Expression ';', after IDENT
func (p *parser) parseGlobal(ident Token) error {
	if _, err := p.expect(Punct, ":", "global "+ident.Text); err != nil {
		return err
	}
	e, err := ParseExpression(p.lex)
	if err != nil {
		return err
	}
	v, err := e.Evaluate(p.params.Globals)
	if err != nil {
		return lsystem.WrapError(err, 0, ident.Line, ident.Col, "evaluating global %s", ident.Text)
	}
	if _, err := p.expect(Punct, ";", "global "+ident.Text); err != nil {
		return err
	}
	p.params.Globals[ident.Text] = v
	return nil
}

// ModelDecl := SYMBOL ':' INT ';', after SYMBOL
func (p *parser) parseModel(sym Token) error {
	context := "model " + sym.Text
	if _, err := p.expect(Punct, ":", context); err != nil {
		return err
	}
	tok, err := p.expect(Int, "", context)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return lsystem.WrapError(err, 0, tok.Line, tok.Col, "invalid model index")
	}
	if _, err := p.expect(Punct, ";", context); err != nil {
		return err
	}
	p.params.Models[lsystem.Symbol(sym.Text[0])] = n
	return nil
}

// StartModules := Module {Module}
func (p *parser) parseStartModules() (int, error) {
	n := 0
	for {
		tok, err := p.lex.Lex()
		if err != nil {
			return n, err
		}
		if tok.Kind != Symbol {
			return n, p.lex.Unlex(tok)
		}

		args, err := p.parseExpressionList()
		if err != nil {
			return n, err
		}
		mod := lsystem.Module{Symbol: lsystem.Symbol(tok.Text[0])}
		for i, arg := range args {
			v, err := arg.Evaluate(p.params.Globals)
			if err != nil {
				return n, lsystem.WrapError(err, 0, tok.Line, tok.Col, "evaluating argument %d of start module %s", i+1, tok.Text)
			}
			mod.Parameters = append(mod.Parameters, v)
		}
		p.params.Axiom = append(p.params.Axiom, mod)
		n++
	}
}

// ['(' Expression {',' Expression} ')']
func (p *parser) parseExpressionList() ([]expr.Expression, error) {
	tok, err := p.lex.Lex()
	if err != nil {
		return nil, err
	}
	if tok.Kind != LParen {
		return nil, p.lex.Unlex(tok)
	}

	var list []expr.Expression
	for {
		e, err := ParseExpression(p.lex)
		if err != nil {
			return nil, err
		}
		list = append(list, e)

		tok, err = p.lex.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Is(Punct, ",") {
			continue
		}
		if tok.Kind != RParen {
			return nil, p.errorf(tok, "expected a ')' but got %s", tok)
		}
		return list, nil
	}
}

// ['(' IDENT {',' IDENT} ')']
func (p *parser) parseIdentifierList() ([]string, error) {
	tok, err := p.lex.Lex()
	if err != nil {
		return nil, err
	}
	if tok.Kind != LParen {
		return nil, p.lex.Unlex(tok)
	}

	var idents []string
	for {
		tok, err = p.lex.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Kind != Identifier {
			return nil, p.errorf(tok, "expected an identifier for the identifier list, got %s", tok)
		}
		idents = append(idents, tok.Text)

		tok, err = p.lex.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Is(Punct, ",") {
			continue
		}
		if tok.Kind != RParen {
			return nil, p.errorf(tok, "expected a ')' but got %s", tok)
		}
		return idents, nil
	}
}

// Production := SYMBOL ['(' IDENT {',' IDENT} ')'] [':' FLOAT] '=>' Successor {Successor} ';'
func (p *parser) parseProduction() (bool, error) {
	pred, err := p.lex.Lex()
	if err != nil {
		return false, err
	}
	if pred.Kind != Symbol {
		return false, p.lex.Unlex(pred)
	}

	prod := lsystem.Production{
		Predecessor: lsystem.Symbol(pred.Text[0]),
		Probability: 1,
	}
	if prod.Params, err = p.parseIdentifierList(); err != nil {
		return false, err
	}

	tok, err := p.lex.Lex()
	if err != nil {
		return false, err
	}
	if tok.Is(Punct, ":") {
		prob, err := p.lex.Lex()
		if err != nil {
			return false, err
		}
		if prob.Kind != Float {
			return false, p.errorf(prob, "rule %s: expected a probability like 0.5, got %s", pred.Text, prob)
		}
		if prod.Probability, err = strconv.ParseFloat(prob.Text, 64); err != nil {
			return false, lsystem.WrapError(err, 0, prob.Line, prob.Col, "rule %s: invalid probability", pred.Text)
		}
		if tok, err = p.lex.Lex(); err != nil {
			return false, err
		}
	}
	if !tok.Is(Punct, "=>") {
		return false, p.errorf(tok, "rule %s: missing '=>', got %s", pred.Text, tok)
	}

	if prod.Successors, err = p.parseSuccessors(); err != nil {
		return false, err
	}
	if len(prod.Successors) == 0 {
		tok, err := p.lex.Lex()
		if err != nil {
			return false, err
		}
		return false, p.errorf(tok, "rule %s: a production must have successors", pred.Text)
	}

	if _, err := p.expect(Punct, ";", "rule "+pred.Text); err != nil {
		return false, err
	}

	p.params.Productions.Add(prod)
	return true, nil
}

// Successor := SYMBOL ['(' Expression {',' Expression} ')']
func (p *parser) parseSuccessors() ([]lsystem.Successor, error) {
	var list []lsystem.Successor
	for {
		tok, err := p.lex.Lex()
		if err != nil {
			return nil, err
		}
		if tok.Kind != Symbol {
			return list, p.lex.Unlex(tok)
		}

		args, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		list = append(list, lsystem.Successor{Symbol: lsystem.Symbol(tok.Text[0]), Args: args})
	}
}
