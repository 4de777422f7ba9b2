// Package proof reconstructs resolution proofs from a clause's premise DAG
// on demand (§4.9, component C9). Premises are built incrementally by
// analyze and theory during search; this package only walks them after the
// fact, so it adds no bookkeeping to the hot loop.
package proof

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/store"
)

// ErrNoProof is returned by any proof operation when the store was built
// with StoreProof disabled.
var ErrNoProof = errors.New("proof: clause/proof recording is disabled")

// ResolutionError reports a malformed History premise discovered while
// expanding a clause: a missing or ambiguous pivot, or an empty history.
// It indicates a solver-internal invariant violation rather than a user
// error.
type ResolutionError struct {
	Clause *store.Clause
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("proof: resolution error in clause %s: %s", e.Clause.GoString(), e.Reason)
}

// ExpandKind tags the variant an expanded premise classifies into (§4.9
// "expand").
type ExpandKind uint8

const (
	ExpandHypothesis ExpandKind = iota
	ExpandAssumption
	ExpandLemma
	ExpandDuplicate
	ExpandHyperRes
)

// Step is one resolution step of a HyperRes expansion: clause is resolved
// against the running resolvent on pivot. Pivot is the literal as it
// appears in the running resolvent; Clause holds its negation.
type Step struct {
	Pivot  atom.Atom
	Clause *store.Clause
}

// Expansion is the classification expand(c) returns. Only the fields
// relevant to Kind are populated.
type Expansion struct {
	Kind ExpandKind

	Lemma store.Lemma // ExpandLemma

	Parent *store.Clause // ExpandDuplicate
	Dups   []atom.Atom   // ExpandDuplicate: literals present in Parent but not in the clause

	Init  *store.Clause // ExpandHyperRes
	Steps []Step        // ExpandHyperRes
}

// Proof reconstructs resolution proofs over a Store's clause pool.
type Proof struct {
	s       *store.Store
	enabled bool
}

// New returns a Proof bound to s. enabled should mirror s.StoreProof.
func New(s *store.Store, enabled bool) *Proof {
	return &Proof{s: s, enabled: enabled}
}

// Enabled reports whether proof recording is active.
func (p *Proof) Enabled() bool { return p.enabled }

// Prove validates that c carries a usable premise (neither EmptyPremise nor
// an empty History) and returns c unchanged (§4.9 "prove").
func (p *Proof) Prove(c *store.Clause) (*store.Clause, error) {
	if !p.enabled {
		return nil, ErrNoProof
	}
	switch c.Premise.Kind {
	case store.PremiseEmpty:
		return nil, ErrNoProof
	case store.PremiseHistory:
		if len(c.Premise.History) == 0 {
			return nil, &ResolutionError{Clause: c, Reason: "empty history"}
		}
	}
	return c, nil
}

// ProveUnsat turns a raw conflict clause found at the root decision level
// into the empty clause, with a History explicitly listing the conflict and
// a proof of every one of its literals' negations (§4.9 "prove_unsat"). A
// conflict that is already empty is returned as-is.
func (p *Proof) ProveUnsat(conflict *store.Clause) (*store.Clause, error) {
	if !p.enabled {
		return nil, ErrNoProof
	}
	if conflict.Len() == 0 {
		return conflict, nil
	}

	history := make([]*store.Clause, 0, conflict.Len()+1)
	history = append(history, conflict)
	for _, a := range conflict.Atoms() {
		history = append(history, p.setAtomProof(a.Not()))
	}
	return store.NewExplanationClause(p.s, nil, store.HistoryPremise(history)), nil
}

// setAtomProof returns a proof that lit holds, recursing through its BCP
// reason's antecedents. A reason of length 1 needs no wrapping: it is
// already its own one-literal proof.
func (p *Proof) setAtomProof(lit atom.Atom) *store.Clause {
	r := p.s.ReasonOf(lit.Var()).Materialize()
	if r == nil {
		return store.NewExplanationClause(p.s, []atom.Atom{lit}, store.EmptyPremise)
	}

	ants := r.CalcReason(p.s, lit)
	if len(ants) == 0 {
		return r
	}

	history := make([]*store.Clause, 0, len(ants)+1)
	history = append(history, r)
	for _, q := range ants {
		history = append(history, p.setAtomProof(q))
	}
	return store.NewExplanationClause(p.s, []atom.Atom{lit}, store.HistoryPremise(history))
}

// Expand classifies c's premise (§4.9 "expand").
func (p *Proof) Expand(c *store.Clause) (Expansion, error) {
	if !p.enabled {
		return Expansion{}, ErrNoProof
	}
	switch c.Premise.Kind {
	case store.PremiseEmpty:
		return Expansion{}, ErrNoProof
	case store.PremiseHyp:
		return Expansion{Kind: ExpandHypothesis, Lemma: c.Premise.Lemma}, nil
	case store.PremiseLocal:
		return Expansion{Kind: ExpandAssumption}, nil
	case store.PremiseLemma:
		return Expansion{Kind: ExpandLemma, Lemma: c.Premise.Lemma}, nil
	case store.PremiseHistory:
		return p.expandHistory(c)
	default:
		return Expansion{}, &ResolutionError{Clause: c, Reason: "unrecognized premise kind"}
	}
}

func (p *Proof) expandHistory(c *store.Clause) (Expansion, error) {
	h := c.Premise.History
	if len(h) == 0 {
		return Expansion{}, &ResolutionError{Clause: c, Reason: "empty history"}
	}
	init := h[0]
	if len(h) == 1 {
		return Expansion{Kind: ExpandDuplicate, Parent: init, Dups: dupLiterals(init, c)}, nil
	}
	steps, err := findPivots(init, h[1:], c)
	if err != nil {
		return Expansion{}, &ResolutionError{Clause: c, Reason: err.Error()}
	}
	return Expansion{Kind: ExpandHyperRes, Init: init, Steps: steps}, nil
}

// dupLiterals returns the literals of parent absent from c, i.e. those a
// single-parent History dropped as duplicates rather than resolved away.
func dupLiterals(parent, c *store.Clause) []atom.Atom {
	present := make(map[atom.Atom]bool, c.Len())
	for _, a := range c.Atoms() {
		present[a] = true
	}
	var dups []atom.Atom
	for _, a := range parent.Atoms() {
		if !present[a] {
			dups = append(dups, a)
		}
	}
	return dups
}

// findPivots walks the resolution chain init, rest[0], rest[1], ... For
// each clause in rest it looks for the unique literal whose negation is
// marked in the running resolvent (its pivot), resolves it away, and folds
// the clause's remaining literals into the resolvent. A clause with zero or
// more than one such literal breaks the chain. Once every step has been
// applied, the accumulated resolvent must match target's own literals
// exactly; a chain that resolves cleanly but lands on the wrong clause is
// still a broken proof, not a valid hyper-resolution step.
func findPivots(init *store.Clause, rest []*store.Clause, target *store.Clause) ([]Step, error) {
	marked := make(map[atom.Atom]bool, init.Len())
	for _, a := range init.Atoms() {
		marked[a] = true
	}

	steps := make([]Step, 0, len(rest))
	for _, c := range rest {
		// litInC is the literal of c whose negation is already marked in
		// the running resolvent; pivot is that same variable reported in
		// the resolvent's own polarity, per Step's documented convention.
		litInC := atom.None
		pivot := atom.None
		count := 0
		for _, a := range c.Atoms() {
			if marked[a.Not()] {
				litInC = a
				pivot = a.Not()
				count++
			}
		}
		switch {
		case count == 0:
			return nil, errors.Errorf("no pivot against clause %s", c.GoString())
		case count > 1:
			return nil, errors.Errorf("ambiguous pivot against clause %s", c.GoString())
		}

		delete(marked, pivot)
		delete(marked, litInC)
		for _, a := range c.Atoms() {
			if a != litInC {
				marked[a] = true
			}
		}
		steps = append(steps, Step{Pivot: pivot, Clause: c})
	}

	want := target.Atoms()
	if len(marked) != len(want) {
		return nil, errors.Errorf("resolvent has %d literals, target %s has %d", len(marked), target.GoString(), len(want))
	}
	for _, a := range want {
		if !marked[a] {
			return nil, errors.Errorf("resolvent does not contain %s, target %s", a.String(), target.GoString())
		}
	}
	return steps, nil
}

// UnsatCore collects every Hypothesis/Lemma/Assumption leaf reachable from
// root's premise DAG, visiting each clause exactly once (§4.9 "unsat_core").
// It resets the transient visited-for-proof flag on every clause it
// touches before returning, so the flag stays usable across queries (design
// note "Clause IDs and proof DAG").
func (p *Proof) UnsatCore(root *store.Clause) []*store.Clause {
	var core, touched []*store.Clause
	stack := []*store.Clause{root}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.VisitedForProof() {
			continue
		}
		c.SetVisitedForProof(true)
		touched = append(touched, c)

		switch c.Premise.Kind {
		case store.PremiseHyp, store.PremiseLemma, store.PremiseLocal:
			core = append(core, c)
		case store.PremiseHistory:
			stack = append(stack, c.Premise.History...)
		}
	}

	for _, c := range touched {
		c.SetVisitedForProof(false)
	}
	return core
}

type foldTaskKind uint8

const (
	foldEnter foldTaskKind = iota
	foldLeave
)

type foldTask struct {
	kind foldTaskKind
	c    *store.Clause
}

// Fold runs a post-order traversal of root's premise DAG via an explicit
// stack of Enter/Leaving tasks rather than recursion, so f always sees a
// clause's parents before the clause itself (§4.9 "fold"). A clause shared
// by more than one History is folded exactly once: its second Enter task is
// skipped once the visited flag is set, matching UnsatCore's sharing rule.
func Fold(root *store.Clause, f func(c *store.Clause, acc any) any, acc any) any {
	stack := []foldTask{{foldEnter, root}}
	var touched []*store.Clause

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch t.kind {
		case foldEnter:
			if t.c.VisitedForProof() {
				continue
			}
			t.c.SetVisitedForProof(true)
			touched = append(touched, t.c)
			stack = append(stack, foldTask{foldLeave, t.c})
			if t.c.Premise.Kind == store.PremiseHistory {
				h := t.c.Premise.History
				for i := len(h) - 1; i >= 0; i-- {
					stack = append(stack, foldTask{foldEnter, h[i]})
				}
			}
		case foldLeave:
			acc = f(t.c, acc)
		}
	}

	for _, c := range touched {
		c.SetVisitedForProof(false)
	}
	return acc
}

// Check is a supplemented round-trip validity check: it folds over c's
// premise DAG and reports the first ResolutionError expand() would raise
// anywhere in it, or nil if every node expands cleanly.
func (p *Proof) Check(c *store.Clause) error {
	var err error
	Fold(c, func(n *store.Clause, acc any) any {
		if err != nil {
			return acc
		}
		if _, e := p.Expand(n); e != nil && e != ErrNoProof {
			err = e
		}
		return acc
	}, nil)
	return err
}
