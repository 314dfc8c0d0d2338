package lsystem

import (
	"fmt"
	"math/rand"

	"github.com/lakinwecker/ll-cool-tree/expr"
	"github.com/pkg/errors"
)

// Key groups productions that may rewrite the same module.
type Key struct {
	Symbol Symbol
	Arity  int
}

func (k Key) String() string {
	return fmt.Sprintf("%c/%d", k.Symbol, k.Arity)
}

// Successor is one module emitted when a production fires.
type Successor struct {
	Symbol Symbol
	Args   []expr.Expression
}

// Clone deep-copies the argument expressions.
func (s Successor) Clone() Successor {
	args := make([]expr.Expression, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Clone()
	}
	return Successor{Symbol: s.Symbol, Args: args}
}

// Production is a weighted rewrite rule: Predecessor(Params...) : Probability => Successors.
type Production struct {
	Predecessor Symbol
	Params      []string
	Probability float64
	Successors  []Successor
}

func (p *Production) Key() Key {
	return Key{Symbol: p.Predecessor, Arity: len(p.Params)}
}

// Clone returns a copy sharing no expression tree with p.
func (p Production) Clone() Production {
	out := p
	out.Params = append([]string(nil), p.Params...)
	out.Successors = make([]Successor, len(p.Successors))
	for i, s := range p.Successors {
		out.Successors[i] = s.Clone()
	}
	return out
}

// OutputSize is the number of modules Execute writes.
func (p *Production) OutputSize() int {
	return len(p.Successors)
}

// Execute binds predecessor's parameters to p.Params over globals and writes
// the evaluated successors to the start of to, which must hold OutputSize() modules.
func (p *Production) Execute(to []Module, predecessor Module, globals SymbolTable) (int, error) {
	env := globals.Bind(p.Params, predecessor.Parameters)
	for i, s := range p.Successors {
		var params []float64
		if len(s.Args) > 0 {
			params = make([]float64, len(s.Args))
		}
		for j, arg := range s.Args {
			v, err := arg.Evaluate(env)
			if err != nil {
				return i, WrapError(err, 0, 0, 0, "rewriting %s into %c, argument %d (%s)", predecessor, s.Symbol, j+1, arg)
			}
			params[j] = v
		}
		to[i] = Module{Symbol: s.Symbol, Parameters: params}
	}
	return len(p.Successors), nil
}

// ProductionSet holds productions grouped by Key, each group in insertion order.
type ProductionSet struct {
	groups map[Key][]*Production
	order  []Key
}

func NewProductionSet() *ProductionSet {
	return &ProductionSet{groups: make(map[Key][]*Production)}
}

// Add appends a copy of p to its group.
func (ps *ProductionSet) Add(p Production) {
	if ps.groups == nil {
		ps.groups = make(map[Key][]*Production)
	}
	k := p.Key()
	if _, ok := ps.groups[k]; !ok {
		ps.order = append(ps.order, k)
	}
	cp := p.Clone()
	ps.groups[k] = append(ps.groups[k], &cp)
}

// Group returns the productions for k, nil if there are none.
func (ps *ProductionSet) Group(k Key) []*Production {
	if ps == nil {
		return nil
	}
	return ps.groups[k]
}

// Keys lists the groups in the order they were first added to.
func (ps *ProductionSet) Keys() []Key {
	if ps == nil {
		return nil
	}
	return append([]Key(nil), ps.order...)
}

// Len is the total number of productions.
func (ps *ProductionSet) Len() int {
	if ps == nil {
		return 0
	}
	n := 0
	for _, g := range ps.groups {
		n += len(g)
	}
	return n
}

// Clear drops every production.
func (ps *ProductionSet) Clear() {
	ps.groups = make(map[Key][]*Production)
	ps.order = nil
}

// Normalize scales each group's probabilities so they sum to 1.
// A group whose total isn't positive can never fire and is rejected.
func (ps *ProductionSet) Normalize() error {
	for _, k := range ps.order {
		group := ps.groups[k]
		total := 0.0
		for _, p := range group {
			total += p.Probability
		}
		if total <= 0 {
			return Errorf(0, 0, 0, "productions for %s have a total probability of %g", k, total)
		}
		for _, p := range group {
			p.Probability /= total
		}
	}
	return nil
}

// Select picks the production for k given a draw r in [0,1): the first one, in
// insertion order, whose cumulative probability reaches r. Should rounding leave
// the total short of r, the last production is picked.
func (ps *ProductionSet) Select(k Key, r float64) *Production {
	group := ps.Group(k)
	if len(group) == 0 {
		return nil
	}
	cum := 0.0
	for _, p := range group {
		cum += p.Probability
		if r <= cum {
			return p
		}
	}
	return group[len(group)-1]
}

// Evaluate rewrites m once. Modules no production matches are returned unchanged.
func (ps *ProductionSet) Evaluate(m Module, globals SymbolTable, rng *rand.Rand) ([]Module, error) {
	k := m.Key()
	if len(ps.Group(k)) == 0 {
		return []Module{m}, nil
	}
	p := ps.Select(k, rng.Float64())
	out := make([]Module, p.OutputSize())
	if _, err := p.Execute(out, m, globals); err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", m)
	}
	return out, nil
}
