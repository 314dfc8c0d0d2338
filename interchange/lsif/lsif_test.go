package lsif

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/interchange"
	"github.com/lakinwecker/ll-cool-tree/lang"
	"github.com/lakinwecker/ll-cool-tree/turtle"
)

var _ interchange.Format = (*Format)(nil)

const branching = `
F : 1;
iterations : 2;
F(1);
F(x) => F(x*2) [ +(30) F(x) ];
`

func TestStream(t *testing.T) {
	params, err := lang.ParseString(branching)
	require.NoError(t, err)

	ls := lsystem.New(*params, lsystem.WithSeed(9))
	derivation, err := ls.EvaluateSystem(context.Background())
	require.NoError(t, err)
	require.Len(t, derivation, 13)

	withTree := New("branching", params, ls.Seed(), derivation)
	withTree.SetTree(turtle.NewInterpreter().Run(derivation).Root)
	bare := New("axiom", params, ls.Seed(), params.Axiom)

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(withTree))
	require.NoError(t, enc.Encode(bare))
	require.NoError(t, enc.Close())

	dec := NewDecoder(&buf)
	first, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, "branching", first.Name)
	require.Equal(t, uint(2), first.Iterations)
	require.Equal(t, int64(9), first.Seed)
	require.Equal(t, map[string]int{"F": 1}, first.Models)

	modules, err := first.Import()
	require.NoError(t, err)
	require.Equal(t, derivation, modules)

	require.NotNil(t, first.Tree)
	require.Len(t, first.Tree.Children, 1)
	trunk := first.Tree.Children[0]
	require.Equal(t, 4.0, trunk.Length)
	require.Equal(t, [4]float64{1, 0, 0, 0}, trunk.Orientation)
	require.Len(t, trunk.Children, 2)
	require.InDelta(t, 4.0, trunk.Children[1].Position[1], 1e-9)
	require.Len(t, trunk.Children[1].Children, 1)

	second, err := dec.Decode()
	require.NoError(t, err)
	require.Nil(t, second.Tree)
	modules, err = second.Import()
	require.NoError(t, err)
	require.Equal(t, "F(1)", lsystem.Modules(modules).String())

	_, err = dec.Decode()
	require.Equal(t, io.EOF, err)
}

func TestImportRejectsLongSymbols(t *testing.T) {
	f, err := NewDecoder(strings.NewReader("derivation:\n  - symbol: F\n  - symbol: FF\n")).Decode()
	require.NoError(t, err)

	_, err = f.Import()
	require.Error(t, err)
	require.Contains(t, err.Error(), `derivation[1]: symbol "FF"`)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("derivation: [\n")).Decode()
	require.Error(t, err)
	require.Contains(t, err.Error(), "decoding lsif")
}
