// Package solver ties the Store, BCP, conflict analysis, theory bridge and
// proof packages into the CDCL(T) search loop and exposes the engine's
// public API (§4.7, §6, component C7).
package solver

import (
	"github.com/c-cube/cdcl/analyze"
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/bcp"
	"github.com/c-cube/cdcl/formula"
	"github.com/c-cube/cdcl/proof"
	"github.com/c-cube/cdcl/store"
	"github.com/c-cube/cdcl/theory"
)

// Restart/clause-DB-reduction parameters (§4.7).
const (
	restartFirst      = 100.0
	restartInc        = 1.5
	learntsizeFactor  = 1.0 / 3.0
	learntsizeInc     = 1.1
)

// Solver is the CDCL(T) engine.
type Solver struct {
	store  *store.Store
	trail  store.Trail
	bridge *theory.Bridge
	proof  *proof.Proof

	onConflict func(*store.Clause)
	onDecision func(atom.Atom)

	assumptions []atom.Atom
	localCore   []atom.Atom
	rootLevel   int
	unsatAt0    *store.Clause

	nConflicts     int
	nDecisions     int
	nRestarts      int
	nMinimizedAway int

	cancelled bool
}

// New returns a Solver wired to th (use theory.NoTheory{} for pure SAT).
func New(th theory.Theory, opts ...Option) *Solver {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if th == nil {
		th = theory.NoTheory{}
	}

	st := store.New(cfg.logger, cfg.storeProof)
	st.VarIncr = 1.0
	st.ClaIncr = 1.0
	st.OnNewAtom = cfg.onNewAtom
	st.Hyps = make([]*store.Clause, 0, cfg.size.clauseCapHint())
	st.Learnts = make([]*store.Clause, 0, cfg.size.clauseCapHint())

	trail := store.NewTrail(st)
	return &Solver{
		store:      st,
		trail:      trail,
		bridge:     theory.New(st, trail, th),
		proof:      proof.New(st, cfg.storeProof),
		onConflict: cfg.onConflict,
		onDecision: cfg.onDecision,
	}
}

// NewAtom allocates (or returns the existing) atom for f (§4.1
// "alloc_atom").
func (s *Solver) NewAtom(f formula.Formula) atom.Atom {
	return s.store.AllocAtom(f)
}

// AddClauseA adds a single permanent clause given as already-resolved
// atoms (§6 "add_clause_a"). It reports whether the store remains
// consistent; false means the empty clause was derived and the problem is
// unsatisfiable regardless of any future Solve call.
func (s *Solver) AddClauseA(atoms []atom.Atom, lemma store.Lemma) bool {
	ok, c := store.NewClause(s.store, atoms, false, store.HypPremise(lemma))
	if !ok {
		s.unsatAt0 = store.NewExplanationClause(s.store, nil, store.EmptyPremise)
		return false
	}
	if c != nil {
		s.store.Hyps = append(s.store.Hyps, c)
	}
	return true
}

// AddClause adds a single permanent clause given as host formulas, signed
// by the polarity already encoded in each formula (§6 "add_clause").
func (s *Solver) AddClause(lits []formula.Formula, lemma store.Lemma) bool {
	atoms := make([]atom.Atom, len(lits))
	for i, f := range lits {
		atoms[i] = s.store.AllocAtom(f)
	}
	return s.AddClauseA(atoms, lemma)
}

// Assume adds every clause of cnf as a permanent hypothesis (§6 "assume").
// It reports whether every clause was consistent with the others added so
// far.
func (s *Solver) Assume(cnf [][]formula.Formula, lemma store.Lemma) bool {
	ok := true
	for _, clause := range cnf {
		if !s.AddClause(clause, lemma) {
			ok = false
		}
	}
	return ok
}

// TrueAtLevel0 reports whether a is assigned true at decision level 0,
// i.e. unconditionally forced by the hypotheses alone (§6
// "true_at_level0").
func (s *Solver) TrueAtLevel0(a atom.Atom) bool {
	return s.store.IsTrue(a) && s.store.Level(a.Var()) == 0
}

// Eval reports a's current truth value, or ErrUndecidedLit if a is
// unassigned (§6 "eval").
func (s *Solver) Eval(a atom.Atom) (bool, error) {
	switch {
	case s.store.IsTrue(a):
		return true, nil
	case s.store.IsFalse(a):
		return false, nil
	default:
		return false, ErrUndecidedLit
	}
}

// EvalLevel reports a's current truth value and the decision level at
// which it was assigned, or ErrUndecidedLit if a is unassigned (§6
// "eval_level").
func (s *Solver) EvalLevel(a atom.Atom) (bool, int, error) {
	v, err := s.Eval(a)
	if err != nil {
		return false, 0, err
	}
	return v, s.store.Level(a.Var()), nil
}

// Cancel requests that the in-progress Solve call stop early and report
// Unknown (§5 "Cancellation"). Solve clears the request when it starts, so
// a Cancel issued between calls has no effect on the next one.
func (s *Solver) Cancel() { s.cancelled = true }

// Stats is a snapshot of the introspection counters (§6 "Introspection").
type Stats struct {
	NConflicts     int
	NDecisions     int
	NPropagations  int
	NRestarts      int
	NMinimizedAway int
	DecisionLevel  int
	NbClauses      int
	NVars          int
}

// Stats returns a snapshot of the solver's counters.
func (s *Solver) Stats() Stats {
	return Stats{
		NConflicts:     s.nConflicts,
		NDecisions:     s.nDecisions,
		NPropagations:  s.trail.Len(),
		NRestarts:      s.nRestarts,
		NMinimizedAway: s.nMinimizedAway,
		DecisionLevel:  s.trail.DecisionLevel(),
		NbClauses:      len(s.store.Hyps) + len(s.store.Learnts),
		NVars:          s.store.NVars(),
	}
}

// searchOutcome tags why Solver.search returned.
type searchOutcome uint8

const (
	searchRestart searchOutcome = iota
	searchSat
	searchUnsat
	searchCancelled
)

// branchOutcome tags pickBranch's result (§4.7 "pick_branch").
type branchOutcome uint8

const (
	branchDecide branchOutcome = iota
	branchPseudoLevel
	branchAssumptionConflict
	branchSat
)

// Solve runs the search to completion against assumptions, which are
// forced true for the duration of this call only (§6 "solve").
func (s *Solver) Solve(assumptions []atom.Atom) *Result {
	s.assumptions = assumptions
	s.localCore = nil
	s.cancelled = false
	s.store.VarIncr = 1.0
	s.store.ClaIncr = 1.0

	if s.unsatAt0 != nil {
		return s.rootUnsat(s.unsatAt0)
	}
	if c := bcp.Propagate(s.store, s.trail); c != nil {
		return s.rootUnsat(c.Clause)
	}
	s.rootLevel = s.trail.DecisionLevel()

	nConflictsBudget := restartFirst
	nLearntsBudget := float64(len(s.store.Hyps)) * learntsizeFactor

	for {
		outcome, res := s.search(&nConflictsBudget, &nLearntsBudget)
		switch outcome {
		case searchSat:
			return s.buildSat()
		case searchUnsat:
			return res
		case searchCancelled:
			return &Result{kind: ResultUnknown, s: s}
		case searchRestart:
			s.nRestarts++
		}
	}
}

// search runs one restart epoch: decide/propagate/analyze until either a
// terminal outcome is reached or the conflict budget forces a restart
// (§4.7).
func (s *Solver) search(nConflictsBudget, nLearntsBudget *float64) (searchOutcome, *Result) {
	conflictC := 0

	for {
		if s.cancelled {
			return searchCancelled, nil
		}

		var conflict *store.Clause
		if bc := bcp.Propagate(s.store, s.trail); bc != nil {
			conflict = bc.Clause
		}
		if conflict == nil {
			if c := s.bridge.PartialCheck(); c != nil {
				conflict = c
			}
		}
		if conflict == nil && s.trail.Len() == s.store.NVars() {
			if c := s.bridge.FinalCheck(); c != nil {
				conflict = c
			}
		}

		if conflict != nil {
			s.nConflicts++
			conflictC++
			if s.onConflict != nil {
				s.onConflict(conflict)
			}
			if s.trail.DecisionLevel() == s.rootLevel || s.conflictAtRoot(conflict) {
				return searchUnsat, s.rootUnsat(conflict)
			}

			res := analyze.Analyze(s.store, s.trail, conflict)
			s.nMinimizedAway += res.NMinimizedAway

			bt := res.BacktrackLevel
			if bt < s.rootLevel {
				bt = s.rootLevel
			}
			s.trail.CancelUntil(bt)
			s.record(res)
			s.store.DecayVarActivity()
			s.store.DecayClauseActivity()
			continue
		}

		if s.trail.DecisionLevel() == 0 {
			s.simplifyDB()
		}
		if float64(len(s.store.Learnts)) >= *nLearntsBudget {
			s.reduceDB()
		}
		if conflictC >= int(*nConflictsBudget) {
			s.trail.CancelUntil(s.rootLevel)
			*nConflictsBudget *= restartInc
			*nLearntsBudget *= learntsizeInc
			return searchRestart, nil
		}

		lit, outcome := s.pickBranch()
		switch outcome {
		case branchSat:
			return searchSat, nil
		case branchPseudoLevel:
			s.trail.NewDecisionLevel()
		case branchAssumptionConflict:
			s.analyzeFinal(lit)
			return searchUnsat, &Result{kind: ResultUnsat, s: s, localCore: s.localCore}
		case branchDecide:
			s.trail.Decide(lit)
			s.nDecisions++
			if s.onDecision != nil {
				s.onDecision(lit)
			}
		}
	}
}

// pickBranch chooses the next action in priority order: pending theory
// decision hints, the next unforced assumption, then the max-activity
// undecided variable (§4.7 "pick_branch").
func (s *Solver) pickBranch() (atom.Atom, branchOutcome) {
	if hints := s.bridge.PendingDecisions(); len(hints) > 0 {
		return hints[0], branchDecide
	}

	if s.trail.DecisionLevel() < len(s.assumptions) {
		p := s.assumptions[s.trail.DecisionLevel()]
		switch {
		case s.store.IsTrue(p):
			return atom.None, branchPseudoLevel
		case s.store.IsFalse(p):
			return p, branchAssumptionConflict
		default:
			return p, branchDecide
		}
	}

	for {
		v, ok := s.store.Heap.PopMax()
		if !ok {
			return atom.None, branchSat
		}
		if s.store.IsUndef(atom.Pos(v)) {
			if s.store.DefaultPolarity(v) {
				return atom.Neg(v), branchDecide
			}
			return atom.Pos(v), branchDecide
		}
	}
}

// record builds the learnt clause from a conflict-analysis result and
// re-asserts its UIP at the backtrack level (§4.6 "Recording"). Binary and
// unit learnt clauses are attached/enqueued like any other clause but are
// never appended to the reducible learnt vector: reduce_db only ever
// touches clauses of length >= 3.
func (s *Solver) record(res analyze.Result) {
	premise := store.EmptyPremise
	if s.store.StoreProof {
		premise = store.HistoryPremise(res.History)
	}

	ok, c := store.NewClause(s.store, res.Learnt, true, premise)
	if !ok {
		panic("cdcl: learnt clause reduced to the empty clause after backtracking")
	}
	if c == nil {
		return // unit: NewClause already enqueued the UIP via enqueueFrom.
	}
	if c.Len() >= 3 {
		s.store.Learnts = append(s.store.Learnts, c)
	}
	if !s.trail.EnqueueFrom(c.At(0), c) {
		panic("cdcl: learnt clause's UIP is already false at the backtrack level")
	}
}

// simplifyDB drops satisfied learnt clauses at the root level, matching
// the teacher's periodic simplification pass.
func (s *Solver) simplifyDB() {
	j := 0
	for _, c := range s.store.Learnts {
		if clauseSatisfied(s.store, c) {
			c.Detach(s.store)
			continue
		}
		s.store.Learnts[j] = c
		j++
	}
	s.store.Learnts = s.store.Learnts[:j]
}

func clauseSatisfied(st *store.Store, c *store.Clause) bool {
	for i := 0; i < c.Len(); i++ {
		if st.IsTrue(c.At(i)) {
			return true
		}
	}
	return false
}

// reduceDB sorts learnt clauses by ascending activity and marks dead the
// worst half, plus any later clause whose activity is below
// ClaIncr/len(learnts) (excluding length-2 clauses and locked clauses).
// Dead clauses are detached from their watch lists immediately rather than
// left for BCP's lazy tombstone sweep (§4.7, §3 "Lifecycle").
func (s *Solver) reduceDB() {
	learnts := s.store.Learnts
	sortByActivity(learnts)

	lim := s.store.ClaIncr / float64(len(learnts))
	half := len(learnts) / 2

	j := 0
	for i, c := range learnts {
		if c.Len() > 2 && !c.Locked(s.store) && (i < half || c.Activity() < lim) {
			c.MarkDead()
			c.Detach(s.store)
			continue
		}
		learnts[j] = c
		j++
	}
	s.store.Learnts = learnts[:j]
}

func sortByActivity(cs []*store.Clause) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].Activity() > cs[j].Activity(); j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}

// analyzeFinal computes the local unsat core for an assumption p that is
// already false when it would be the next one forced (§4.7, design note
// "Assumption semantics"). If p is false purely from level-0 facts, it is
// unconditionally its own core; otherwise the core is every
// earlier-decided assumption on whose propagation chain p's falsity
// depends.
func (s *Solver) analyzeFinal(p atom.Atom) {
	if s.store.Level(p.Var()) == 0 {
		s.localCore = []atom.Atom{p}
		return
	}

	var core []atom.Atom
	var touched []atom.Var
	mark := func(v atom.Var) {
		if !s.store.Seen(v) {
			s.store.SetSeen(v, true)
			touched = append(touched, v)
		}
	}
	mark(p.Var())

	for i := s.trail.Len() - 1; i >= 0; i-- {
		a := s.trail.At(i)
		v := a.Var()
		if !s.store.Seen(v) {
			continue
		}
		if s.store.ReasonOf(v).Kind == store.ReasonDecision {
			core = append(core, a)
			continue
		}
		if s.store.Level(v) == 0 {
			continue
		}
		if c := s.store.ReasonOf(v).Materialize(); c != nil {
			for j := 0; j < c.Len(); j++ {
				if q := c.At(j); q.Var() != v {
					mark(q.Var())
				}
			}
		}
	}

	for _, v := range touched {
		s.store.ClearMark(atom.Pos(v))
	}
	s.localCore = core
}

// conflictAtRoot reports whether every atom of conflict is already assigned
// at or below the root level, even though search itself may be deeper. A
// theory conflict can be entirely explained by root-level facts (§4.6:
// "conflict_level may be lower in CDCL(T) when the theory lemma is
// satisfied at a prior level"), in which case analyze would see a
// conflictLevel below the current decision level and never terminate its
// trail walk correctly — this must be caught before Analyze runs.
func (s *Solver) conflictAtRoot(conflict *store.Clause) bool {
	for i := 0; i < conflict.Len(); i++ {
		if s.store.Level(conflict.At(i).Var()) > s.rootLevel {
			return false
		}
	}
	return true
}

// rootUnsat turns a conflict found at the root decision level into a
// terminal Unsat result (§4.7 "report UNSAT with the conflict").
func (s *Solver) rootUnsat(conflict *store.Clause) *Result {
	s.trail.CancelUntil(0)
	return &Result{kind: ResultUnsat, s: s, conflict: conflict}
}

// buildSat is reached once pickBranch finds every variable decided with no
// pending theory work (§4.7, §4.8 "the search returns SAT").
func (s *Solver) buildSat() *Result {
	return &Result{kind: ResultSat, s: s}
}
