// Package expr holds the arithmetic expressions used as module parameters.
//
// An Expression owns its syntax tree outright: copying one with Clone never
// shares nodes, so two successors built from the same text can't alias.
package expr

import (
	"errors"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned when the right operand of a division evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// Op identifies what a Node computes.
type Op int

const (
	OpNumber Op = iota
	OpIdent
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
)

var opText = [...]string{
	OpNumber: "number",
	OpIdent:  "identifier",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpNeg:    "-",
}

func (op Op) String() string {
	if int(op) < len(opText) {
		return opText[op]
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// Environment resolves identifiers during evaluation.
type Environment interface {
	Get(name string) float64
}

// Node is one vertex of an expression tree.
// Leaves carry Value (OpNumber) or Name (OpIdent); OpNeg only uses Left.
type Node struct {
	Op    Op
	Value float64
	Name  string
	Left  *Node
	Right *Node
}

// Number returns a literal leaf.
func Number(v float64) *Node {
	return &Node{Op: OpNumber, Value: v}
}

// Ident returns an identifier leaf.
func Ident(name string) *Node {
	return &Node{Op: OpIdent, Name: name}
}

// Binary returns an interior node for +, -, * or /.
func Binary(op Op, left, right *Node) *Node {
	return &Node{Op: op, Left: left, Right: right}
}

// Neg returns a unary minus node.
func Neg(operand *Node) *Node {
	return &Node{Op: OpNeg, Left: operand}
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		Op:    n.Op,
		Value: n.Value,
		Name:  n.Name,
		Left:  n.Left.clone(),
		Right: n.Right.clone(),
	}
}

func (n *Node) eval(env Environment) (float64, error) {
	switch n.Op {
	case OpNumber:
		return n.Value, nil
	case OpIdent:
		if env == nil {
			return 0, nil
		}
		return env.Get(n.Name), nil
	case OpNeg:
		v, err := n.Left.eval(env)
		return -v, err
	}

	l, err := n.Left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := n.Right.eval(env)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	}
	return 0, errors.New("expr: unknown operator " + n.Op.String())
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Op {
	case OpNumber:
		sb.WriteString(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case OpIdent:
		sb.WriteString(n.Name)
	case OpNeg:
		sb.WriteString("-")
		n.Left.write(sb)
	default:
		sb.WriteString("(")
		n.Left.write(sb)
		sb.WriteString(n.Op.String())
		n.Right.write(sb)
		sb.WriteString(")")
	}
}

// Expression is a parsed arithmetic expression.
// The zero value has no tree and evaluates to 0.
type Expression struct {
	root *Node
}

// New wraps root, taking ownership of it.
func New(root *Node) Expression {
	return Expression{root: root}
}

// Constant returns an expression that always evaluates to v.
func Constant(v float64) Expression {
	return New(Number(v))
}

// Root exposes the tree for inspection. Callers must not mutate it.
func (e Expression) Root() *Node {
	return e.root
}

// Clone returns a deep copy with no nodes in common with e.
func (e Expression) Clone() Expression {
	return Expression{root: e.root.clone()}
}

// Evaluate computes the value of e, looking identifiers up in env.
// Identifiers env doesn't know evaluate to 0.
func (e Expression) Evaluate(env Environment) (float64, error) {
	if e.root == nil {
		return 0, nil
	}
	return e.root.eval(env)
}

// Identifiers lists the distinct identifiers e references, in first-use order.
func (e Expression) Identifiers() []string {
	var names []string
	seen := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Op == OpIdent && !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(e.root)
	return names
}

func (e Expression) String() string {
	if e.root == nil {
		return ""
	}
	var sb strings.Builder
	e.root.write(&sb)
	return sb.String()
}

// Table is the simplest Environment.
type Table map[string]float64

// Get returns the bound value, or 0 when name is unbound.
func (t Table) Get(name string) float64 {
	return t[name]
}
