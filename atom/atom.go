// Package atom defines the packed variable/atom encoding shared by every
// other component of the solver (§3, §9 "Atom polarity encoding" of the
// design). A Var is a dense, non-negative variable identity; an Atom is a
// signed occurrence of a variable, represented canonically as
// (vid<<1)|sign so that neg/abs are branchless and a literal's variable is
// a single right-shift.
package atom

import "fmt"

// Var is a dense variable identity, assigned in allocation order by the
// Store.
type Var int32

// Undef is the sentinel for "no variable".
const Undef Var = -1

// Atom is a signed occurrence of a Var: the low bit is the sign.
type Atom int32

// None is the sentinel for "no atom" (used as Undef reason target, etc.)
const None Atom = -1

// New builds the positive or negative atom of v depending on neg.
func New(v Var, neg bool) Atom {
	if neg {
		return Atom(v<<1) | 1
	}
	return Atom(v << 1)
}

// Pos returns the positive atom of v.
func Pos(v Var) Atom { return New(v, false) }

// Neg returns the negative atom of v.
func Neg(v Var) Atom { return New(v, true) }

// Not returns the negation of a (xor on the sign bit).
func (a Atom) Not() Atom { return a ^ 1 }

// Sign reports whether a is a negative occurrence.
func (a Atom) Sign() bool { return a&1 == 1 }

// Var returns a's underlying variable.
func (a Atom) Var() Var { return Var(a >> 1) }

// Abs returns the positive atom sharing a's variable.
func (a Atom) Abs() Atom { return a &^ 1 }

// Index returns a's position in atom-indexed dense arrays (2*var + sign).
func (a Atom) Index() int { return int(a) }

// FromDimacs builds the Atom corresponding to a 1-based signed DIMACS
// integer (negative for negated literals, never zero).
func FromDimacs(i int) Atom {
	if i < 0 {
		return New(Var(-i-1), true)
	}
	return New(Var(i-1), false)
}

// Dimacs returns a's 1-based signed DIMACS representation.
func (a Atom) Dimacs() int {
	v := int(a.Var()) + 1
	if a.Sign() {
		return -v
	}
	return v
}

// String implements fmt.Stringer.
func (a Atom) String() string {
	if a == None {
		return "<none>"
	}
	if a.Sign() {
		return fmt.Sprintf("¬v%d", a.Var())
	}
	return fmt.Sprintf("v%d", a.Var())
}
