package solver

import (
	"github.com/go-logr/logr"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/store"
)

// Size is a coarse capacity hint used to preallocate the clause vectors,
// trading a bigger upfront allocation for fewer growth copies on large
// instances (§6 factory option "size").
type Size int

const (
	SizeTiny Size = iota
	SizeSmall
	SizeBig
)

func (sz Size) clauseCapHint() int {
	switch sz {
	case SizeTiny:
		return 16
	case SizeBig:
		return 4096
	default:
		return 256
	}
}

type config struct {
	size       Size
	storeProof bool
	logger     logr.Logger
	onConflict func(*store.Clause)
	onDecision func(atom.Atom)
	onNewAtom  func(atom.Atom)
}

func defaultConfig() *config {
	return &config{size: SizeSmall, logger: logr.Discard()}
}

// Option configures a Solver at construction time (§6 factory
// `create(theory, {...})`).
type Option func(*config)

// WithSize hints at the expected problem size for clause-vector
// preallocation.
func WithSize(sz Size) Option {
	return func(c *config) { c.size = sz }
}

// WithProof enables premise/History tracking so Unsat results can later be
// expanded into a resolution proof (§4.9).
func WithProof(enabled bool) Option {
	return func(c *config) { c.storeProof = enabled }
}

// WithLogger sets the logr.Logger used for diagnostic output. Defaults to
// a discarding logger.
func WithLogger(log logr.Logger) Option {
	return func(c *config) { c.logger = log }
}

// WithOnConflict registers an observer invoked with every conflict clause
// found during search (§6 factory option "on_conflict").
func WithOnConflict(f func(*store.Clause)) Option {
	return func(c *config) { c.onConflict = f }
}

// WithOnDecision registers an observer invoked with every branching
// literal chosen during search (§6 factory option "on_decision").
func WithOnDecision(f func(atom.Atom)) Option {
	return func(c *config) { c.onDecision = f }
}

// WithOnNewAtom registers an observer invoked whenever a fresh variable is
// allocated (§6 factory option "on_new_atom").
func WithOnNewAtom(f func(atom.Atom)) Option {
	return func(c *config) { c.onNewAtom = f }
}
