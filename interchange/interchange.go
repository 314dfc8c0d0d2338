// Package interchange moves derivations in and out of external formats.
package interchange

import lsystem "github.com/lakinwecker/ll-cool-tree"

// Format is a derivation held in some external representation.
type Format interface {
	Import() ([]lsystem.Module, error)
}
