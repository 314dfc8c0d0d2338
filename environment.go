package lsystem

// SymbolTable binds identifiers to values while evaluating parameter expressions.
// It satisfies expr.Environment.
type SymbolTable map[string]float64

// Get returns the value bound to v. Unbound identifiers are 0.
func (st SymbolTable) Get(v string) float64 {
	return st[v]
}

// Clone returns an independent copy.
func (st SymbolTable) Clone() SymbolTable {
	out := make(SymbolTable, len(st))
	for k, v := range st {
		out[k] = v
	}
	return out
}

// Bind returns a copy of st where names[i] is bound to values[i].
// Bound names shadow globals of the same name; st is left untouched.
func (st SymbolTable) Bind(names []string, values []float64) SymbolTable {
	out := make(SymbolTable, len(st)+len(names))
	for k, v := range st {
		out[k] = v
	}
	for i, name := range names {
		if i >= len(values) {
			break
		}
		out[name] = values[i]
	}
	return out
}
