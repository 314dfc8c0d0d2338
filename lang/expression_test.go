package lang

import (
	"strings"
	"testing"

	"github.com/Knetic/govaluate"
	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/expr"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, src string) expr.Expression {
	l := NewLexer(strings.NewReader(src))
	e, err := ParseExpression(l)
	require.NoError(t, err, src)
	tok, err := l.Lex()
	require.NoError(t, err)
	require.Equal(t, EOF, tok.Kind, "%s: trailing %s", src, tok)
	return e
}

func TestExpressionExamples(t *testing.T) {
	v, err := parseExpr(t, "3+4*2").Evaluate(nil)
	require.NoError(t, err)
	require.Equal(t, 11.0, v)

	_, err = parseExpr(t, "1/0").Evaluate(nil)
	require.ErrorIs(t, err, expr.ErrDivisionByZero)
}

// Results must agree with an independent evaluator.
func TestExpressionAgainstGovaluate(t *testing.T) {
	env := expr.Table{"x": 3, "y": 0.5, "len": 12, "w": -2}
	params := map[string]interface{}{}
	for k, v := range env {
		params[k] = v
	}

	for _, src := range []string{
		"3+4*2",
		"(3+4)*2",
		"8-2-1",
		"8/2/2",
		"2*3/4*5",
		"1-2+3-4",
		"-x+3",
		"-(x+y)*2",
		"x*y-y/4",
		"len/(x-1)/2",
		"-(-(w))",
		"((((1))))+0.25",
		"w*w*w",
		"10-len*y+x/3",
	} {
		ours, err := parseExpr(t, src).Evaluate(env)
		require.NoError(t, err, src)

		oracle, err := govaluate.NewEvaluableExpression(src)
		require.NoError(t, err, src)
		theirs, err := oracle.Evaluate(params)
		require.NoError(t, err, src)

		require.InDelta(t, theirs.(float64), ours, 1e-12, src)
	}
}

func TestExpressionCloneEvaluatesEqually(t *testing.T) {
	env := expr.Table{"a": 1.5, "b": -4}
	for _, src := range []string{"a*b+1", "-(a/b)", "a-b-a", "7"} {
		e := parseExpr(t, src)
		want, err := e.Evaluate(env)
		require.NoError(t, err)
		got, err := e.Clone().Evaluate(env)
		require.NoError(t, err)
		require.Equal(t, want, got, src)
	}
}

func TestExpressionStopsAtForeignToken(t *testing.T) {
	l := NewLexer(strings.NewReader("x*2, y)"))
	e, err := ParseExpression(l)
	require.NoError(t, err)
	require.Equal(t, "(x*2)", e.String())

	tok, err := l.Lex()
	require.NoError(t, err)
	require.True(t, tok.Is(Punct, ","))
}

func TestExpressionErrors(t *testing.T) {
	for src, msg := range map[string]string{
		"1+":      "a + requires",
		"2 - ;":   "a - requires",
		"2*":      "a * requires",
		"4/)":     "a / requires",
		"(1+2":    "expected a ')'",
		"()":      "expected an expression after '('",
		"-":       "unary minus",
		"":        "expected an expression",
		";":       "expected an expression",
		"(1+2 3)": "expected a ')'",
	} {
		_, err := ParseExpression(NewLexer(strings.NewReader(src)))
		require.Error(t, err, src)
		var lerr *lsystem.Error
		require.ErrorAs(t, err, &lerr, src)
		require.Contains(t, lerr.Msg, msg, src)
		require.Equal(t, "expression.go", lerr.File, src)
	}
}
