// Package lsystem rewrites parametric, stochastic L-systems.
//
// A definition (usually parsed by package lang) provides an axiom, a set of
// weighted productions and global values. An LSystem derives it generation by
// generation; each module is rewritten by one production picked at random
// among those sharing its symbol and arity.
package lsystem

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const DefaultSubsectionMinimumSize = 64

var DefaultMaxWorkers = uint32(runtime.NumCPU())

type LSystem struct {
	Parameters Parameters

	currentTier uint

	seed       int64
	customRand bool
	rng        *rand.Rand
	tier       []Module

	mu sync.Mutex

	subsectionMinimumSize uint32
	maxWorkers            uint32
}

// Option configures an LSystem.
type Option func(*LSystem)

// WithSeed overrides Parameters.Seed.
func WithSeed(seed int64) Option {
	return func(ls *LSystem) {
		ls.seed = seed
	}
}

// WithRand makes the LSystem draw from rng. Reset won't reseed it.
func WithRand(rng *rand.Rand) Option {
	return func(ls *LSystem) {
		ls.rng = rng
		ls.customRand = true
	}
}

// WithMaxWorkers bounds the goroutines evaluating one generation.
func WithMaxWorkers(n uint) Option {
	return func(ls *LSystem) {
		if n == 0 {
			n = 1
		}
		ls.maxWorkers = uint32(n)
	}
}

// WithSubsectionMinimumSize sets how many modules a worker gets at least.
func WithSubsectionMinimumSize(size uint) Option {
	return func(ls *LSystem) {
		if size == 0 {
			size = 1
		}
		ls.subsectionMinimumSize = uint32(size)
	}
}

func New(parameters Parameters, opts ...Option) *LSystem {
	ls := &LSystem{
		Parameters:            parameters,
		seed:                  parameters.Seed,
		subsectionMinimumSize: DefaultSubsectionMinimumSize,
		maxWorkers:            DefaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(ls)
	}
	if ls.seed == 0 {
		ls.seed = time.Now().UnixNano()
	}
	if ls.Parameters.Globals == nil {
		ls.Parameters.Globals = SymbolTable{}
	}
	ls.reset()
	return ls
}

func (ls *LSystem) reset() {
	if !ls.customRand {
		ls.rng = rand.New(rand.NewSource(ls.seed))
	}
	ls.tier = append([]Module(nil), ls.Parameters.Axiom...)
	ls.currentTier = 0
}

// Reset goes back to the axiom and reseeds the random source.
func (ls *LSystem) Reset() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.reset()
}

// Seed is the seed rule selection draws from.
func (ls *LSystem) Seed() int64 {
	return ls.seed
}

// calculateRules picks the production for each module of input. Draws happen
// in module order so that the outcome doesn't depend on how work is split.
func (ls *LSystem) calculateRules(rules []*Production, input []Module) {
	ps := ls.Parameters.Productions
	for i, mod := range input {
		k := mod.Key()
		if len(ps.Group(k)) == 0 {
			rules[i] = nil // Identity
			continue
		}
		rules[i] = ps.Select(k, ls.rng.Float64())
	}
}

func (ls *LSystem) calculateOutputSize(rules []*Production) int {
	var val int
	for _, r := range rules {
		if r != nil {
			val += r.OutputSize()
		} else {
			val++
		}
	}
	return val
}

// Execute a rewrite
func (ls *LSystem) rewrite(output []Module, input []Module, rules []*Production) error {
	outputCursor := 0
	for inputCursor, inputModule := range input {
		rule := rules[inputCursor]
		if rule == nil {
			output[outputCursor] = inputModule
			outputCursor++
			continue
		}

		n, err := rule.Execute(output[outputCursor:], inputModule, ls.Parameters.Globals)
		if err != nil {
			return err
		}
		outputCursor += n
	}
	return nil
}

// Calculate number of splits for a given maximum of workers and minimum of subsection size
func (ls *LSystem) splits() (splits uint32, size uint64, rem uint32) {
	l := uint64(len(ls.tier))

	if v := uint32(l / uint64(ls.subsectionMinimumSize)); v == 0 {
		splits = 1
	} else if v < ls.maxWorkers {
		splits = v
	} else {
		splits = ls.maxWorkers
	}

	return splits, l / uint64(splits), uint32(l % uint64(splits))
}

/*
Derivate runs one generation:

	0. Pick the rule for every module, sequentially (the only random step)
	1. Split the tier into sections and size each section's output
	2. Allocate one output tier and hand each section its own window of it
	3 (T). Rewrite every section into its window
	4. Swap the output in as the current tier

The current tier is never written to, so a failed generation leaves it intact.
*/
func (ls *LSystem) Derivate(ctx context.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	input := ls.tier
	rules := make([]*Production, len(input))
	ls.calculateRules(rules, input)

	splits, size, rem := ls.splits()
	type section struct {
		in, out [2]int
	}
	sections := make([]section, splits)
	outputSize := 0
	for i, cursor := uint32(0), 0; i < splits; i++ {
		thisSize := int(size)
		if i < rem {
			thisSize++
		}
		n := ls.calculateOutputSize(rules[cursor : cursor+thisSize])
		sections[i] = section{
			in:  [2]int{cursor, cursor + thisSize},
			out: [2]int{outputSize, outputSize + n},
		}
		cursor += thisSize
		outputSize += n
	}
	output := make([]Module, outputSize)

	errs := make([]error, splits)
	if splits == 1 {
		errs[0] = ls.rewrite(output, input, rules)
	} else {
		wg := sync.WaitGroup{}
		wg.Add(int(splits))
		for i := range sections {
			go func(i int) {
				defer wg.Done()
				s := sections[i]
				errs[i] = ls.rewrite(output[s.out[0]:s.out[1]], input[s.in[0]:s.in[1]], rules[s.in[0]:s.in[1]])
			}(i)
		}
		wg.Wait()
	}
	for _, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "deriving generation %d", ls.currentTier+1)
		}
	}

	ls.tier = output
	ls.currentTier++
	return nil
}

// DerivateUntil runs generations until tier n is reached.
func (ls *LSystem) DerivateUntil(ctx context.Context, n uint) error {
	for ls.CurrentTier() < n {
		err := ls.Derivate(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// EvaluateSystem derives Parameters.Iterations generations from the axiom and
// returns the last one. With zero iterations the axiom comes back unchanged.
func (ls *LSystem) EvaluateSystem(ctx context.Context) ([]Module, error) {
	ls.Reset()
	if err := ls.DerivateUntil(ctx, ls.Parameters.Iterations); err != nil {
		return nil, err
	}
	return ls.Export(), nil
}

// Export returns a copy of the current tier.
func (ls *LSystem) Export() []Module {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return append([]Module(nil), ls.tier...)
}

func (ls *LSystem) CurrentTier() uint {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return ls.currentTier
}
