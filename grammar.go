package lsystem

import "strconv"

// Symbol is the single-character name of a module.
type Symbol rune

func (s Symbol) String() string {
	return string(s)
}

type Module struct {
	Symbol     Symbol
	Parameters []float64
}

// Key returns the production lookup key matching m.
func (m Module) Key() Key {
	return Key{Symbol: m.Symbol, Arity: len(m.Parameters)}
}

// Equal reports whether m and o have the same symbol and parameters.
func (m Module) Equal(o Module) bool {
	if m.Symbol != o.Symbol || len(m.Parameters) != len(o.Parameters) {
		return false
	}
	for i := range m.Parameters {
		if m.Parameters[i] != o.Parameters[i] {
			return false
		}
	}
	return true
}

// Module stringifier
func (m Module) String() string {
	out := string(m.Symbol)
	if len(m.Parameters) == 0 {
		return out
	}

	out += "("
	for i, param := range m.Parameters {
		out += strconv.FormatFloat(param, byte('f'), -1, 64)
		if i+1 != len(m.Parameters) {
			out += ", "
		}
	}
	out += ")"
	return out
}

// Modules is a derivation tier.
type Modules []Module

func (ms Modules) String() string {
	out := ""
	for i, m := range ms {
		if i > 0 {
			out += " "
		}
		out += m.String()
	}
	return out
}

// Parameters is everything a parsed definition provides to build an LSystem.
type Parameters struct {
	Axiom       []Module
	Productions *ProductionSet
	Globals     SymbolTable
	Models      map[Symbol]int
	Iterations  uint

	// Seed for rule selection; zero seeds from the clock.
	Seed int64
}
