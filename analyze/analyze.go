// Package analyze implements First-UIP conflict analysis with clause
// minimization (§4.6, component C6).
package analyze

import (
	"sort"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/store"
)

// Result is the output of Analyze: a learnt clause (UIP-first, then
// sorted by descending level), the level to backtrack to, the resolution
// history (in resolution order, for proof reconstruction), and a count of
// literals removed by minimization.
type Result struct {
	Learnt         []atom.Atom
	BacktrackLevel int
	History        []*store.Clause
	NMinimizedAway int
}

// Analyze resolves the conflict clause back through the trail to its
// first unique implication point, minimizes the resulting clause, and
// computes the level to backtrack to.
func Analyze(s *store.Store, trail store.Trail, conflict *store.Clause) Result {
	conflictLevel := 0
	for _, a := range conflict.Atoms() {
		if l := s.Level(a.Var()); l > conflictLevel {
			conflictLevel = l
		}
	}

	var touched []atom.Var
	mark := func(v atom.Var) bool {
		if s.Seen(v) {
			return false
		}
		s.SetSeen(v, true)
		touched = append(touched, v)
		return true
	}
	defer func() {
		for _, v := range touched {
			s.ClearMark(atom.Pos(v))
		}
	}()

	p := atom.None
	learnt := []atom.Atom{atom.None}
	history := []*store.Clause{conflict}
	pathC := 0
	blevel := 0
	current := conflict
	idx := trail.Len()

	for {
		for _, q := range current.CalcReason(s, p) {
			v := q.Var()
			if s.Seen(v) {
				continue
			}
			level := s.Level(v)
			switch {
			case level == 0:
				mark(v)
				if r := s.ReasonOf(v).Materialize(); r != nil {
					history = append(history, r)
				}
			case level < conflictLevel:
				mark(v)
				learnt = append(learnt, q)
				if level > blevel {
					blevel = level
				}
				s.BumpVarActivity(v)
			default:
				mark(v)
				pathC++
				s.BumpVarActivity(v)
			}
		}

		for {
			idx--
			p = trail.At(idx)
			if s.Seen(p.Var()) && s.Level(p.Var()) >= conflictLevel {
				break
			}
		}
		pathC--
		if pathC == 0 {
			break
		}
		current = s.ReasonOf(p.Var()).Materialize()
		history = append(history, current)
	}
	learnt[0] = p.Not()

	nMin := minimize(s, learnt, &history)
	learnt = learnt[:len(learnt)-nMin]

	sort.Slice(learnt, func(i, j int) bool {
		return s.Level(learnt[i].Var()) > s.Level(learnt[j].Var())
	})

	backtrack := 0
	switch {
	case len(learnt) == 1:
		backtrack = 0
	case s.Level(learnt[0].Var()) > s.Level(learnt[1].Var()):
		backtrack = s.Level(learnt[1].Var())
	default:
		backtrack = s.Level(learnt[0].Var()) - 1
		if backtrack < 0 {
			backtrack = 0
		}
	}

	return Result{Learnt: learnt, BacktrackLevel: backtrack, History: history, NMinimizedAway: nMin}
}

// minimize drops literals of learnt (other than the UIP at index 0) whose
// antecedents are already fully explained by other literals of learnt, as
// described in §4.6 "Minimization". It mutates learnt in place and
// returns the number of literals removed.
func minimize(s *store.Store, learnt []atom.Atom, history *[]*store.Clause) int {
	var abstractLevels uint32
	for _, a := range learnt {
		abstractLevels |= 1 << (uint32(s.Level(a.Var())) % 32)
	}

	removed := 0
	write := 1
	for i := 1; i < len(learnt); i++ {
		a := learnt[i]
		if isRedundant(s, a, abstractLevels, history) {
			removed++
			continue
		}
		learnt[write] = a
		write++
	}
	copy(learnt, learnt[:write])
	return removed
}

// isRedundant recursively checks whether a's reason antecedents are all
// already marked (part of learnt's analysis) or trivially absorbed (level
// 0, or an abstract level already present in the learnt clause).
func isRedundant(s *store.Store, a atom.Atom, abstractLevels uint32, history *[]*store.Clause) bool {
	r := s.ReasonOf(a.Var())
	if r.Kind != store.ReasonBCP && r.Kind != store.ReasonLazy {
		return false
	}
	c := r.Materialize()
	if c == nil {
		return false
	}

	stack := []atom.Atom{a}
	var touched []atom.Var
	var visited []*store.Clause
	defer func() {
		for _, v := range touched {
			s.ClearMark(atom.Pos(v))
		}
	}()

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		curReason := s.ReasonOf(cur.Var())
		curClause := curReason.Materialize()
		if curClause == nil {
			return false
		}
		visited = append(visited, curClause)

		for i := 0; i < curClause.Len(); i++ {
			lit := curClause.At(i)
			if lit == cur {
				continue
			}
			q := lit.Not()
			v := q.Var()
			if v == a.Var() || s.Seen(v) {
				continue
			}
			level := s.Level(v)
			if level == 0 {
				continue
			}
			if abstractLevels&(1<<(uint32(level)%32)) == 0 {
				return false
			}
			qr := s.ReasonOf(v)
			if qr.Kind != store.ReasonBCP && qr.Kind != store.ReasonLazy {
				return false
			}
			s.SetSeen(v, true)
			touched = append(touched, v)
			stack = append(stack, q)
		}
	}
	*history = append(*history, visited...)
	return true
}
