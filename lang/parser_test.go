package lang

import (
	"context"
	"testing"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/stretchr/testify/require"
)

func TestParseDoublingExample(t *testing.T) {
	params, err := ParseString("iterations:2; F(1); F(x):1.0=>F(x*2);")
	require.NoError(t, err)
	require.Equal(t, uint(2), params.Iterations)

	ls := lsystem.New(*params, lsystem.WithSeed(7))
	ctx := context.Background()
	require.Equal(t, "F(1)", lsystem.Modules(ls.Export()).String())
	require.NoError(t, ls.Derivate(ctx))
	require.Equal(t, "F(2)", lsystem.Modules(ls.Export()).String())
	require.NoError(t, ls.Derivate(ctx))
	require.Equal(t, "F(4)", lsystem.Modules(ls.Export()).String())

	out, err := ls.EvaluateSystem(ctx)
	require.NoError(t, err)
	require.Equal(t, []lsystem.Module{{Symbol: 'F', Parameters: []float64{4}}}, out)
}

const bush = `
angle : 22.5;
half : angle / 2;
len : 10;
F : 1;
L : 3;
iterations : 3;
!(2) F(len) A(len);
A(l) : 0.6 => F(l) [ +(angle) L(l/2) ] [ -(half) A(l*0.8) ];
A(l) : 0.2 => F(l) A(l);
A(l) : 0.2 => A(l);
F(l) => F(l*1.1);
`

func TestParseFullDefinition(t *testing.T) {
	params, err := ParseString(bush)
	require.NoError(t, err)

	require.Equal(t, uint(3), params.Iterations)
	require.Equal(t, lsystem.SymbolTable{"angle": 22.5, "half": 11.25, "len": 10}, params.Globals)
	require.Equal(t, map[lsystem.Symbol]int{'F': 1, 'L': 3}, params.Models)
	require.Equal(t, "!(2) F(10) A(10)", lsystem.Modules(params.Axiom).String())

	require.Equal(t, 4, params.Productions.Len())
	require.Equal(t, []lsystem.Key{{Symbol: 'A', Arity: 1}, {Symbol: 'F', Arity: 1}}, params.Productions.Keys())

	group := params.Productions.Group(lsystem.Key{Symbol: 'A', Arity: 1})
	require.Len(t, group, 3)
	require.InDelta(t, 0.6, group[0].Probability, 1e-12)
	require.Equal(t, []string{"l"}, group[0].Params)
	require.Len(t, group[0].Successors, 9)
	require.Equal(t, lsystem.Symbol('['), group[0].Successors[1].Symbol)
	require.Equal(t, "(l/2)", group[0].Successors[3].Args[0].String())

	f := params.Productions.Group(lsystem.Key{Symbol: 'F', Arity: 1})
	require.Len(t, f, 1)
	require.Equal(t, 1.0, f[0].Probability)

	ls := lsystem.New(*params, lsystem.WithSeed(42))
	out, err := ls.EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Equal(t, lsystem.Module{Symbol: '!', Parameters: []float64{2}}, out[0])
	require.Equal(t, lsystem.Symbol('F'), out[1].Symbol)
	require.InDelta(t, 13.31, out[1].Parameters[0], 1e-9)
}

func TestParseNormalizesProbabilities(t *testing.T) {
	params, err := ParseString("iterations:1; A; A:2.0=>B; A:6.0=>C; A:2.0=>D;")
	require.NoError(t, err)

	total := 0.0
	for _, p := range params.Productions.Group(lsystem.Key{Symbol: 'A'}) {
		total += p.Probability
	}
	require.InDelta(t, 1.0, total, 1e-12)
	require.InDelta(t, 0.6, params.Productions.Group(lsystem.Key{Symbol: 'A'})[1].Probability, 1e-12)
}

func TestParseGlobalsShadowedByParameters(t *testing.T) {
	params, err := ParseString("x : 100; iterations : 1; F(2); F(x) => F(x+1) G(x);")
	require.NoError(t, err)

	out, err := lsystem.New(*params).EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Equal(t, "F(3) G(2)", lsystem.Modules(out).String())
}

func TestParseUnknownIdentifierIsZero(t *testing.T) {
	params, err := ParseString("iterations : 1; F; F => F(nothing+1);")
	require.NoError(t, err)

	out, err := lsystem.New(*params).EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Equal(t, "F(1)", lsystem.Modules(out).String())
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"missing iterations", "x : 1;\n; F => F;", "needs to start with 'iterations", 2},
		{"model without iterations", "F(1);\nF => F;", "model F: expected ':'", 1},
		{"empty", "", "needs to start with 'iterations", 1},
		{"iterations colon", "iterations 2; F; F => F;", "expected ':'", 1},
		{"iterations int", "iterations : 2.5; F; F => F;", "expected 'INT'", 1},
		{"iterations semicolon", "iterations : 2 F; F => F;", "expected ';'", 1},
		{"no start modules", "iterations : 2;\n; F => F;", "start modules", 2},
		{"start modules semicolon", "iterations : 2; F G\nF => F;", "start modules: expected ';'", 2},
		{"no productions", "iterations : 2; F;", "at least one production", 1},
		{"integer probability", "iterations : 1; F;\nF : 1 => F;", "expected a probability", 2},
		{"missing arrow", "iterations : 1; F;\n\nF(x) : 0.5 F(x);", "missing '=>'", 3},
		{"no successors", "iterations : 1; F; F => ;", "must have successors", 1},
		{"unterminated args", "iterations : 1; F(1, 2; F => F;", "expected a ')'", 1},
		{"unterminated idents", "iterations : 1; F; F(x, y => F;", "expected a ')'", 1},
		{"bad ident", "iterations : 1; F; F(1) => F;", "expected an identifier", 1},
		{"production semicolon", "iterations : 1; F; F => F G\n(", "expected an expression", 2},
		{"trailing", "iterations : 1; F; F => F; 12", "expected end of file", 1},
		{"global colon", "size 3; iterations : 1; F; F => F;", "expected ':'", 1},
		{"global semicolon", "size : 3 iterations : 1; F; F => F;", "expected ';'", 1},
		{"model index", "F : x; iterations : 1; F; F => F;", "expected 'INT'", 1},
		{"lowercase model", "[ : 1; iterations : 1; F; F => F;", "needs to start with 'iterations", 1},
		{"global division", "z : 0;\nbad : 1/z; iterations : 1; F; F => F;", "evaluating global bad", 2},
		{"start division", "iterations : 1; F(1/0); F => F;", "start module F", 1},
		{"zero probability", "iterations : 1; F; F : 0.0 => F;", "total probability", 0},
		{"lexical", "iterations : 1; F; F = F;", "'='", 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.src)
			require.Error(t, err)

			var lerr *lsystem.Error
			require.ErrorAs(t, err, &lerr)
			require.Contains(t, lerr.Error(), tc.msg)
			require.Equal(t, tc.line, lerr.Line)
			require.NotEmpty(t, lerr.File)
		})
	}
}

func TestParseErrorNamesGrammarRule(t *testing.T) {
	_, err := ParseString("iterations : 1; F;\nF(x) : 0.5 F(x);")
	var lerr *lsystem.Error
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, "parser.go", lerr.File)
	require.NotZero(t, lerr.FileLine)
	require.Equal(t, 2, lerr.Line)
	require.Equal(t, 12, lerr.Col)
}
