package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c-cube/cdcl/atom"
)

// Lemma is an opaque host-supplied certificate attached to theory or
// hypothesis clauses (GLOSSARY). The core never inspects it.
type Lemma any

// PremiseKind tags a clause's justification (§3 "Clause").
type PremiseKind uint8

const (
	// PremiseEmpty means proofs are disabled for this clause.
	PremiseEmpty PremiseKind = iota
	// PremiseHyp marks top-level user input.
	PremiseHyp
	// PremiseLocal marks a clause derived from a user-supplied
	// assumption.
	PremiseLocal
	// PremiseLemma marks a clause produced by the theory.
	PremiseLemma
	// PremiseHistory marks a clause produced by resolving its parents;
	// the head is the starting clause, the tail are resolved in order.
	PremiseHistory
)

// Premise is the justification attached to a Clause.
type Premise struct {
	Kind    PremiseKind
	Lemma   Lemma     // valid for PremiseHyp / PremiseLemma
	History []*Clause // valid for PremiseHistory
}

// EmptyPremise is the premise of a clause whose justification is not
// tracked (store_proof=false).
var EmptyPremise = Premise{Kind: PremiseEmpty}

// HypPremise builds the premise of a permanent top-level clause.
func HypPremise(lemma Lemma) Premise { return Premise{Kind: PremiseHyp, Lemma: lemma} }

// LocalPremise builds the premise of a clause derived from an assumption.
func LocalPremise() Premise { return Premise{Kind: PremiseLocal} }

// LemmaPremise builds the premise of a theory-supplied clause.
func LemmaPremise(lemma Lemma) Premise { return Premise{Kind: PremiseLemma, Lemma: lemma} }

// HistoryPremise builds the premise of a clause derived by resolution.
func HistoryPremise(chain []*Clause) Premise {
	return Premise{Kind: PremiseHistory, History: chain}
}

// clauseFlags is the bitfield described in §3 "Clause".
type clauseFlags uint8

const (
	flagAttached clauseFlags = 1 << iota
	flagVisitedForProof
	flagRemovable
	flagDead
)

// Clause is a CNF clause (§3, §4.3, component C3). Equality is by Cid.
type Clause struct {
	Cid      int64
	atoms    []atom.Atom
	activity float64
	flags    clauseFlags
	Premise  Premise
}

// Atoms returns the clause's literals. Slots 0 and 1 are the watched
// literals once the clause is attached; callers must not mutate the
// returned slice's length, only its watch-driven element swaps via the
// methods below.
func (c *Clause) Atoms() []atom.Atom { return c.atoms }

// Len returns the number of literals in the clause.
func (c *Clause) Len() int { return len(c.atoms) }

// At returns the i'th literal.
func (c *Clause) At(i int) atom.Atom { return c.atoms[i] }

// SetAt overwrites the i'th literal (used by BCP's watch rotation).
func (c *Clause) SetAt(i int, a atom.Atom) { c.atoms[i] = a }

// SwapWatch exchanges c.atoms[0] and c.atoms[1].
func (c *Clause) SwapWatch() { c.atoms[0], c.atoms[1] = c.atoms[1], c.atoms[0] }

// Removable reports whether the clause is learnt/removable.
func (c *Clause) Removable() bool { return c.flags&flagRemovable != 0 }

// MarkRemovable flags c as removable, used when a theory lemma or
// conflict-analysis explanation is turned into a full clause after the
// fact (§4.8 "raise_conflict").
func (c *Clause) MarkRemovable() { c.flags |= flagRemovable }

// Attached reports whether the clause is currently attached to the watch
// lists.
func (c *Clause) Attached() bool { return c.flags&flagAttached != 0 }

// Dead reports whether reduceDB has marked the clause for lazy removal.
func (c *Clause) Dead() bool { return c.flags&flagDead != 0 }

// MarkDead marks the clause dead; it is swept from watch lists lazily by
// BCP the next time it is scanned (§3 "Lifecycle").
func (c *Clause) MarkDead() { c.flags |= flagDead }

// VisitedForProof reports whether a proof traversal has already visited
// this clause.
func (c *Clause) VisitedForProof() bool { return c.flags&flagVisitedForProof != 0 }

// SetVisitedForProof sets/clears the visited-for-proof flag. Callers of
// proof traversals must reset this on every exit path (design note
// "Clause IDs and proof DAG") so the flag stays usable across queries.
func (c *Clause) SetVisitedForProof(b bool) {
	if b {
		c.flags |= flagVisitedForProof
	} else {
		c.flags &^= flagVisitedForProof
	}
}

// Activity returns the clause's current activity.
func (c *Clause) Activity() float64 { return c.activity }

// highestLevelIdx returns the index, among atoms[1:], of the literal with
// the highest decision level, used to pick a removable clause's second
// watch. Index 0 is never a candidate: for a learnt clause it holds the
// UIP, which conflict analysis has already sorted to the front as the
// clause's highest-level literal, and it must stay there (§4.6
// "Recording").
func (c *Clause) highestLevelIdx(s *Store) int {
	best, bestLevel := 1, -1
	for i := 1; i < len(c.atoms); i++ {
		if l := s.Level(c.atoms[i].Var()); l > bestLevel {
			best, bestLevel = i, l
		}
	}
	return best
}

// NewClause constructs a clause from atoms, attaches it to the watch
// lists (or enqueues it immediately if it reduces to a unit), and reports
// whether the addition was consistent. A nil *Clause with ok==true means
// the clause was trivially satisfied/tautological and need not be kept, or
// reduced to a unit that has been enqueued; ok==false means a conflict was
// found (the clause reduced to the empty clause, or to a unit whose literal
// is already false).
//
// Permanent clauses (removable==false) are first sorted and simplified:
// literals already false are dropped, tautologies and already-true clauses
// are discarded, and duplicate-adjacent literals (after sorting) collapse.
// Removable clauses are assumed pre-simplified and pre-ordered (UIP first,
// then descending level) by conflict analysis, and keep that order as-is:
// sorting them here would displace the UIP from index 0.
func NewClause(s *Store, atoms []atom.Atom, removable bool, premise Premise) (ok bool, c *Clause) {
	c = &Clause{
		Cid:     s.allocCid(),
		atoms:   atoms,
		Premise: premise,
	}
	if removable {
		c.flags |= flagRemovable
	}

	if !removable {
		sort.Slice(c.atoms, func(i, j int) bool { return c.atoms[i] < c.atoms[j] })
		idx := 0
		last := atom.None
		for _, p := range c.atoms {
			switch {
			case s.IsTrue(p):
				s.Log.V(2).Info("literal already true, clause trivially satisfied", "lit", p)
				return true, nil
			case last != atom.None && p == last.Not():
				s.Log.V(2).Info("tautology detected", "lit", p)
				return true, nil
			case p == last:
				continue
			case s.IsFalse(p):
				s.Log.V(2).Info("skipping false literal", "lit", p)
				continue
			}
			c.atoms[idx] = p
			last = p
			idx++
		}
		c.atoms = c.atoms[:idx]
	}

	switch c.Len() {
	case 0:
		return false, nil
	case 1:
		s.Log.V(2).Info("unit clause detected")
		return s.enqueueFrom(c.atoms[0], c), nil
	}

	if removable {
		idx := c.highestLevelIdx(s)
		c.atoms[1], c.atoms[idx] = c.atoms[idx], c.atoms[1]
		s.BumpClauseActivity(c)
		for i := 0; i < c.Len(); i++ {
			s.BumpVarActivity(c.atoms[i].Var())
		}
	}

	c.attach(s)

	return true, c
}

// NewExplanationClause builds a bare, unattached clause record used to
// justify a theory-derived assignment or conflict (§4.8). Unlike
// NewClause it performs no simplification, watch attachment, or
// enqueueing: the literals are already known to be consistent with the
// trail (or are the conflict itself), and the clause exists purely to be
// resolved against during conflict analysis and proof reconstruction.
func NewExplanationClause(s *Store, atoms []atom.Atom, premise Premise) *Clause {
	return &Clause{
		Cid:     s.allocCid(),
		atoms:   atoms,
		Premise: premise,
	}
}

// attach adds c to the watch lists of its two watched literals
// (Invariant A3): watched(neg(a)) is consulted when a becomes true, so a
// clause watching literal L is woken up exactly when L is falsified.
func (c *Clause) attach(s *Store) {
	c.flags |= flagAttached
	s.AddWatch(c.atoms[0], c)
	s.AddWatch(c.atoms[1], c)
}

// Locked reports whether c currently justifies the assignment of its
// first watched literal's variable, i.e. it cannot be safely removed.
func (c *Clause) Locked(s *Store) bool {
	r := s.ReasonOf(c.atoms[0].Var())
	return r.Kind == ReasonBCP && r.Clause == c
}

// Detach removes c from both its watch lists and clears the attached
// flag.
func (c *Clause) Detach(s *Store) {
	c.flags &^= flagAttached
	removeFromWatch(s, c.atoms[0], c)
	removeFromWatch(s, c.atoms[1], c)
}

func removeFromWatch(s *Store, a atom.Atom, c *Clause) {
	ws := s.Watches(a)
	for i, w := range ws {
		if w == c {
			n := len(ws)
			ws[i] = ws[n-1]
			s.SetWatches(a, ws[:n-1])
			return
		}
	}
}

// CalcReason returns the negated antecedents that justify p (or, when p
// is atom.None, every negated antecedent — used directly on a conflict
// clause during analysis). Bumps the clause's activity if it is removable
// (§4.6).
func (c *Clause) CalcReason(s *Store, p atom.Atom) []atom.Atom {
	offset := 1
	if p == atom.None {
		offset = 0
	}
	out := make([]atom.Atom, 0, c.Len()-offset)
	for i := offset; i < c.Len(); i++ {
		out = append(out, c.atoms[i].Not())
	}
	s.BumpClauseActivity(c)
	return out
}

// AsDimacs returns the clause's literals as signed DIMACS integers.
func (c *Clause) AsDimacs() []int {
	out := make([]int, c.Len())
	for i, a := range c.atoms {
		out[i] = a.Dimacs()
	}
	return out
}

// String implements fmt.Stringer.
func (c *Clause) String() string {
	parts := make([]string, c.Len())
	for i, a := range c.atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ∨ ")
}

// GoString gives a more diagnostic rendering, including the Cid.
func (c *Clause) GoString() string {
	return fmt.Sprintf("#%d[%s]", c.Cid, c.String())
}
