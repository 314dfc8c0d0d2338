package turtle

import (
	lsystem "github.com/lakinwecker/ll-cool-tree"
)

// DefaultAngle is the turn, in degrees, of a rotation module without parameters.
const DefaultAngle = 22.5

// Op is a turtle operation a symbol can stand for.
type Op int

const (
	OpNone Op = iota
	OpMove
	OpPush
	OpPop
	OpRotateH
	OpRotateL
	OpRotateU
	OpWidth
)

func (op Op) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpRotateH:
		return "rotate-heading"
	case OpRotateL:
		return "rotate-left"
	case OpRotateU:
		return "rotate-up"
	case OpWidth:
		return "width"
	}
	return "none"
}

// Command is what a symbol does. A module's first parameter, when present,
// replaces Default: the length of a move, the angle of a rotation, or the
// absolute width. Without one, a width command adds Default to the width.
type Command struct {
	Op      Op
	Sign    float64
	Default float64
}

// Table maps symbols to commands. Symbols missing from it are ignored.
type Table map[lsystem.Symbol]Command

// DefaultTable is the conventional turtle alphabet.
var DefaultTable = Table{
	'F':  {Op: OpMove, Default: 1},
	'[':  {Op: OpPush},
	']':  {Op: OpPop},
	'+':  {Op: OpRotateU, Sign: 1, Default: DefaultAngle},
	'-':  {Op: OpRotateU, Sign: -1, Default: DefaultAngle},
	'\\': {Op: OpRotateH, Sign: 1, Default: DefaultAngle},
	'/':  {Op: OpRotateH, Sign: -1, Default: DefaultAngle},
	'^':  {Op: OpRotateL, Sign: 1, Default: DefaultAngle},
	'&':  {Op: OpRotateL, Sign: -1, Default: DefaultAngle},
	'!':  {Op: OpWidth, Default: -0.1},
	'#':  {Op: OpWidth, Default: 0.1},
}

// Apply runs the command for m on t. For moves it returns the pose the segment
// starts from and true.
func (tbl Table) Apply(t *Turtle, m lsystem.Module) (State, bool) {
	cmd, ok := tbl[m.Symbol]
	if !ok {
		return State{}, false
	}

	value, given := cmd.Default, false
	if len(m.Parameters) > 0 {
		value, given = m.Parameters[0], true
	}

	switch cmd.Op {
	case OpMove:
		return t.Move(value), true
	case OpPush:
		t.Push()
	case OpPop:
		t.Pop()
	case OpRotateH:
		t.RotateH(cmd.Sign * value)
	case OpRotateL:
		t.RotateL(cmd.Sign * value)
	case OpRotateU:
		t.RotateU(cmd.Sign * value)
	case OpWidth:
		t.Width(value, !given)
	}
	return State{}, false
}

// Result is what one interpretation pass produces.
type Result struct {
	Root *State

	// Starting poses of every segment; a leaf is a segment that ends its
	// branch, i.e. the next command after it is a pop.
	Branches []State
	Leaves   []State

	Overflows  int
	Underflows int
}

// Interpreter walks derivations with a fresh turtle each time.
type Interpreter struct {
	Table     Table
	StackSize int
}

func NewInterpreter() *Interpreter {
	return &Interpreter{Table: DefaultTable, StackSize: DefaultStackSize}
}

// Run builds the segment tree for modules.
func (in *Interpreter) Run(modules []lsystem.Module) *Result {
	tbl := in.Table
	if tbl == nil {
		tbl = DefaultTable
	}
	t := New(WithStackSize(in.StackSize))

	// Only modules the table knows about count when looking at what follows a move
	known := make([]lsystem.Module, 0, len(modules))
	for _, m := range modules {
		if _, ok := tbl[m.Symbol]; ok {
			known = append(known, m)
		}
	}

	res := &Result{Root: t.Root()}
	for i, m := range known {
		start, moved := tbl.Apply(t, m)
		if !moved {
			continue
		}
		if i+1 < len(known) && tbl[known[i+1].Symbol].Op == OpPop {
			res.Leaves = append(res.Leaves, start)
		} else {
			res.Branches = append(res.Branches, start)
		}
	}
	res.Overflows = t.Overflows()
	res.Underflows = t.Underflows()
	return res
}
