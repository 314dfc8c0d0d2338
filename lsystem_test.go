package lsystem

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/lakinwecker/ll-cool-tree/expr"
	"github.com/stretchr/testify/require"
)

func doublingProductions() *ProductionSet {
	ps := NewProductionSet()
	ps.Add(prod('V', []string{"x"}, 1,
		succ('V', expr.Ident("x")),
		succ('V', expr.Binary(expr.OpAdd, expr.Ident("x"), expr.Number(1))),
	))
	if err := ps.Normalize(); err != nil {
		panic(err)
	}
	return ps
}

var TestParameters = Parameters{
	Axiom: []Module{
		{
			Symbol:     'V',
			Parameters: []float64{1},
		},
		{
			Symbol: 'C',
		},
	},
	Productions: doublingProductions(),
	Seed:        1,
}

func TestDerivate(t *testing.T) {
	ctx := context.Background()
	ls := New(TestParameters)

	require.NoError(t, ls.Derivate(ctx))
	require.Equal(t, uint(1), ls.CurrentTier())
	require.Equal(t, "V(1) V(2) C", Modules(ls.Export()).String())

	require.NoError(t, ls.DerivateUntil(ctx, 3))
	require.Equal(t, uint(3), ls.CurrentTier())
	out := ls.Export()
	require.Len(t, out, 9)
	require.Equal(t, Module{Symbol: 'C'}, out[8])
	require.Equal(t, []float64{4}, out[7].Parameters)
}

func TestEvaluateSystemZeroIterations(t *testing.T) {
	params := TestParameters
	params.Iterations = 0
	ls := New(params)

	out, err := ls.EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Equal(t, TestParameters.Axiom, out)
}

func TestEvaluateSystemRestartsFromAxiom(t *testing.T) {
	params := TestParameters
	params.Iterations = 2
	ls := New(params)

	first, err := ls.EvaluateSystem(context.Background())
	require.NoError(t, err)
	second, err := ls.EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 5)
}

func stochasticParameters() Parameters {
	ps := NewProductionSet()
	ps.Add(prod('A', []string{"n"}, 0.5, succ('A', expr.Ident("n")), succ('B', expr.Ident("n"))))
	ps.Add(prod('A', []string{"n"}, 0.3, succ('B', expr.Binary(expr.OpMul, expr.Ident("n"), expr.Number(2)))))
	ps.Add(prod('A', []string{"n"}, 0.2, succ('A', expr.Neg(expr.Ident("n")))))
	ps.Add(prod('B', []string{"n"}, 1, succ('A', expr.Binary(expr.OpAdd, expr.Ident("n"), expr.Number(1)))))
	if err := ps.Normalize(); err != nil {
		panic(err)
	}
	return Parameters{
		Axiom:       []Module{{Symbol: 'A', Parameters: []float64{1}}, {Symbol: 'B', Parameters: []float64{2}}},
		Productions: ps,
		Iterations:  12,
		Seed:        99,
	}
}

func TestDerivateWorkersAreDeterministic(t *testing.T) {
	ctx := context.Background()

	sequential := New(stochasticParameters(), WithMaxWorkers(1))
	want, err := sequential.EvaluateSystem(ctx)
	require.NoError(t, err)

	parallel := New(stochasticParameters(), WithMaxWorkers(8), WithSubsectionMinimumSize(2))
	got, err := parallel.EvaluateSystem(ctx)
	require.NoError(t, err)

	require.Equal(t, want, got)
}

func TestDerivateKeepsTierOnError(t *testing.T) {
	ps := NewProductionSet()
	ps.Add(prod('D', []string{"x"}, 1, succ('D', expr.Binary(expr.OpDiv, expr.Number(1), expr.Ident("x")))))
	require.NoError(t, ps.Normalize())
	ls := New(Parameters{
		Axiom:       []Module{{Symbol: 'D', Parameters: []float64{1}}, {Symbol: 'D', Parameters: []float64{0}}},
		Productions: ps,
		Iterations:  1,
	})

	err := ls.Derivate(context.Background())
	require.ErrorIs(t, err, expr.ErrDivisionByZero)
	require.Equal(t, uint(0), ls.CurrentTier())
	require.Len(t, ls.Export(), 2)
}

func TestDerivateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ls := New(TestParameters)
	require.ErrorIs(t, ls.DerivateUntil(ctx, 5), context.Canceled)
	require.Equal(t, uint(0), ls.CurrentTier())
}

func TestSplits(t *testing.T) {
	ls := New(TestParameters, WithMaxWorkers(4), WithSubsectionMinimumSize(10))

	ls.tier = make([]Module, 5)
	splits, size, rem := ls.splits()
	require.Equal(t, uint32(1), splits)
	require.Equal(t, uint64(5), size)
	require.Equal(t, uint32(0), rem)

	ls.tier = make([]Module, 25)
	splits, size, rem = ls.splits()
	require.Equal(t, uint32(2), splits)
	require.Equal(t, uint64(12), size)
	require.Equal(t, uint32(1), rem)

	ls.tier = make([]Module, 1000)
	splits, _, _ = ls.splits()
	require.Equal(t, uint32(4), splits)
}

func BenchmarkLSystem_Derivate_InputLength(b *testing.B) {
	ctx := context.Background()
	for i := uint(0); i <= 15; i += 5 {
		// Precompute tier
		ls := New(TestParameters)
		if err := ls.DerivateUntil(ctx, i); err != nil {
			b.Fatal(err)
		}
		parameters := TestParameters
		parameters.Axiom = ls.Export()

		b.Run(fmt.Sprintf("%d", int(math.Pow(2, float64(i)))), func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				ls := New(parameters)
				if err := ls.Derivate(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLSystem_Derivate(b *testing.B) {
	ctx := context.Background()

	// Precompute tier
	ls := New(TestParameters)
	if err := ls.DerivateUntil(ctx, 12); err != nil {
		b.Fatal(err)
	}
	parameters := TestParameters
	parameters.Axiom = ls.Export()

	for n := 0; n < b.N; n++ {
		ls := New(parameters)
		err := ls.Derivate(ctx)
		if err != nil {
			b.Fatal(err)
		}
	}
}
