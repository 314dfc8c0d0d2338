package turtle

import "github.com/lakinwecker/ll-cool-tree/geom"

// State is the turtle's pose, and a node of the tree a pass builds.
//
// A node owns its Children. Parent is a back reference only; nothing follows
// it except orientation lookups.
type State struct {
	Rest     geom.Quaternion // orientation at rest
	Current  geom.Quaternion // orientation as currently displayed
	Position geom.Vector3
	Width    float64
	Length   float64

	Children []*State
	Parent   *State
}

// NewState is the pose the turtle starts from.
func NewState() State {
	return State{
		Rest:    geom.Identity(),
		Current: geom.Identity(),
		Width:   1,
		Length:  1,
	}
}

// pose is s without its tree links.
func (s State) pose() State {
	s.Children = nil
	s.Parent = nil
	return s
}

// AddChild appends c and makes s its parent.
func (s *State) AddChild(c *State) {
	if c == nil {
		return
	}
	s.Children = append(s.Children, c)
	c.Parent = s
}

// ConvertLocal turns the absolute orientations under s into orientations
// relative to each node's parent. s itself is left as is.
func (s *State) ConvertLocal() {
	inv := s.Rest.Inverse()
	for _, c := range s.Children {
		c.ConvertLocal()
		c.Rest = inv.Mul(c.Rest)
		c.Current = c.Rest
	}
}

// Release drops the subtree and resets s to NewState.
func (s *State) Release() {
	for _, c := range s.Children {
		c.Release()
	}
	*s = NewState()
}

// Walk calls fn on s and every descendant, parents first.
func (s *State) Walk(fn func(node *State, depth int)) {
	s.walk(fn, 0)
}

func (s *State) walk(fn func(*State, int), depth int) {
	fn(s, depth)
	for _, c := range s.Children {
		c.walk(fn, depth+1)
	}
}

// Count is the number of nodes in the subtree, s included.
func (s *State) Count() int {
	n := 0
	s.Walk(func(*State, int) { n++ })
	return n
}
