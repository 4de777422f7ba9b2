// Package theory declares the background-theory plugin contract (§4.8,
// §6 "Theory plugin contract") and implements the bridge that forwards
// trail activity to it and translates its actions back into solver state
// (component C8). Concrete theories — congruence closure, linear
// arithmetic, or anything else — are external collaborators; this
// package only defines the interface they must satisfy.
package theory

import (
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/formula"
	"github.com/c-cube/cdcl/store"
)

// LitValue is the three-valued result of evaluating a formula against the
// current trail.
type LitValue int

const (
	LUndef LitValue = iota
	LTrue
	LFalse
)

// Consequence lazily computes the antecedent literals that justify a
// theory propagation. It is only invoked if conflict analysis reaches
// the propagated variable (design note "Lazy BCP reasons").
type Consequence func() []atom.Atom

// Theory is the plugin contract a host implements to extend the core
// Boolean engine into a CDCL(T) loop.
type Theory interface {
	// HasTheory reports whether CDCL(T) bookkeeping (partial/final
	// check calls, push/pop level forwarding) should run at all. A
	// pure-SAT user can implement this as `return false` and leave
	// every other method unreachable.
	HasTheory() bool

	// PushLevel/PopLevels mirror the trail's decision-level stack
	// discipline so the theory's own state can be restored to any
	// earlier level (§5).
	PushLevel()
	PopLevels(n int)

	// PartialCheck is called at BCP fixpoints during search, and is
	// handed only the slice of atoms assigned since the previous call.
	PartialCheck(acts Actions)

	// FinalCheck is called once BCP reaches a total Boolean
	// assignment with no pending theory work. If it returns without
	// adding clauses or decisions, the search concludes SAT.
	FinalCheck(acts Actions)
}

// Actions is the set of callbacks available to a Theory from inside
// PartialCheck/FinalCheck (§4.8).
type Actions interface {
	// IterAssumptions returns the new slice of atoms (partial check) or
	// the whole trail (final check) as opaque host formulas.
	IterAssumptions() []formula.Formula

	// EvalLit reports f's current truth value.
	EvalLit(f formula.Formula) LitValue

	// MkLit returns (allocating if necessary) the atom representing f.
	MkLit(f formula.Formula) atom.Atom

	// AddDecisionLit appends f (in the given polarity) to the list of
	// decision hints consumed by pick_branch, if it is not already
	// valued.
	AddDecisionLit(f formula.Formula, sign bool)

	// AddClause buffers a new clause to be flushed into the Boolean
	// engine before the next propagation round. keep requests a
	// permanent (non-removable) clause; otherwise it is removable like
	// a learnt clause.
	AddClause(atoms []atom.Atom, lemma store.Lemma, keep bool)

	// Propagate enqueues f at the current level with a lazily-computed
	// explanation, unless f is already assigned: a no-op if already
	// true, a theory conflict if already false.
	Propagate(f formula.Formula, reason Consequence)

	// RaiseConflict records atoms (already known inconsistent) as a
	// removable theory lemma and signals a theory conflict.
	RaiseConflict(atoms []atom.Atom, lemma store.Lemma)
}

// NoTheory is the default Theory used for pure-SAT solving.
type NoTheory struct{}

func (NoTheory) HasTheory() bool           { return false }
func (NoTheory) PushLevel()                {}
func (NoTheory) PopLevels(int)             {}
func (NoTheory) PartialCheck(Actions)      {}
func (NoTheory) FinalCheck(Actions)        {}

var _ Theory = NoTheory{}
