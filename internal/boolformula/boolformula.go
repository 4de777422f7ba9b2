// Package boolformula is the minimal formula.Formula implementation used
// by the DIMACS front-end and by tests that need concrete atoms without a
// real background theory. A Var is a bare propositional variable named by
// an integer id; its negation is a distinct value whose Norm reports the
// positive Var as canonical.
package boolformula

import (
	"fmt"

	"github.com/c-cube/cdcl/formula"
)

// Var is a propositional variable identified by id.
type Var struct{ id int }

// NewVar returns the variable named id. Equal ids denote the same
// variable regardless of how many times NewVar is called.
func NewVar(id int) Var { return Var{id: id} }

var _ formula.Formula = Var{}

func (v Var) Norm() (formula.Formula, bool) { return v, false }
func (v Var) Neg() formula.Formula          { return negated{v} }

func (v Var) Equal(other formula.Formula) bool {
	o, ok := other.(Var)
	return ok && o.id == v.id
}

func (v Var) Hash() uint64 { return uint64(v.id)*2654435761 + 1 }
func (v Var) String() string { return fmt.Sprintf("x%d", v.id) }

// negated is the logical negation of a Var.
type negated struct{ v Var }

var _ formula.Formula = negated{}

func (n negated) Norm() (formula.Formula, bool) { return n.v, true }
func (n negated) Neg() formula.Formula          { return n.v }

func (n negated) Equal(other formula.Formula) bool {
	o, ok := other.(negated)
	return ok && o.v.Equal(n.v)
}

func (n negated) Hash() uint64   { return n.v.Hash() }
func (n negated) String() string { return "¬" + n.v.String() }
