// Package turtle interprets a derivation as turtle moves and builds the tree
// of segments they draw.
//
// The turtle's heading is its local +Y axis, left is +X and up is +Z.
// Angles are in degrees.
package turtle

import (
	"math"

	"github.com/lakinwecker/ll-cool-tree/geom"
)

// DefaultStackSize bounds how many Push calls can be pending.
const DefaultStackSize = 64

const deg2rad = math.Pi / 180

type entry struct {
	state  State
	branch *State
}

type Turtle struct {
	state  State
	root   *State
	branch *State

	stack     []entry
	stackSize int

	overflows  int
	underflows int
}

type Option func(*Turtle)

// WithStackSize changes how deep pushes can nest.
func WithStackSize(n int) Option {
	return func(t *Turtle) {
		if n < 0 {
			n = 0
		}
		t.stackSize = n
	}
}

func New(opts ...Option) *Turtle {
	t := &Turtle{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(t)
	}
	t.Release()
	return t
}

// Release drops the tree and the stack and puts the turtle back at the origin.
func (t *Turtle) Release() {
	if t.root != nil {
		t.root.Release()
	}
	root := NewState()
	t.root = &root
	t.branch = t.root
	t.state = NewState()
	t.stack = make([]entry, 0, t.stackSize)
	t.overflows, t.underflows = 0, 0
}

// Root is the synthetic ground node every segment hangs from.
func (t *Turtle) Root() *State {
	return t.root
}

// State is the current pose.
func (t *Turtle) State() State {
	return t.state
}

// Branch is the node new segments attach to.
func (t *Turtle) Branch() *State {
	return t.branch
}

// Depth is the number of pending pushes.
func (t *Turtle) Depth() int {
	return len(t.stack)
}

// Overflows counts pushes dropped because the stack was full.
func (t *Turtle) Overflows() int {
	return t.overflows
}

// Underflows counts pops on an empty stack.
func (t *Turtle) Underflows() int {
	return t.underflows
}

// Move draws a segment of the given length: it attaches a node to the current
// branch, continues from it, and advances along the heading. It returns the
// pose the segment starts from.
func (t *Turtle) Move(length float64) State {
	rv := t.state
	rv.Length = length

	t.state.Length = length
	node := t.state.pose()
	node.Current = node.Rest
	t.branch.AddChild(&node)
	t.branch = &node

	t.state.Position = t.state.Position.Add(t.state.Rest.Heading().Scale(length))
	return rv
}

// Push saves the pose and branch. A full stack drops the push.
func (t *Turtle) Push() {
	if len(t.stack) >= t.stackSize {
		t.overflows++
		return
	}
	t.stack = append(t.stack, entry{state: t.state, branch: t.branch})
}

// Pop restores the last pushed pose and branch. Popping an empty stack puts
// the turtle back at its starting pose on the root branch.
func (t *Turtle) Pop() {
	if len(t.stack) == 0 {
		t.underflows++
		t.state = NewState()
		t.branch = t.root
		return
	}
	e := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.state = e.state
	t.branch = e.branch
}

func (t *Turtle) rotate(q geom.Quaternion) {
	t.state.Rest = t.state.Rest.Mul(q)
}

// RotateH turns about the heading (local Y).
func (t *Turtle) RotateH(angle float64) {
	t.rotate(geom.EulerY(angle * deg2rad))
}

// RotateL turns about the left axis (local X).
func (t *Turtle) RotateL(angle float64) {
	t.rotate(geom.EulerX(angle * deg2rad))
}

// RotateU turns about the up axis (local Z).
func (t *Turtle) RotateU(angle float64) {
	t.rotate(geom.EulerZ(angle * deg2rad))
}

// Width sets the width, or adds to it when incremental.
func (t *Turtle) Width(width float64, incremental bool) {
	if incremental {
		t.state.Width += width
	} else {
		t.state.Width = width
	}
}
