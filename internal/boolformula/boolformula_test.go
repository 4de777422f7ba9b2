package boolformula

import "testing"

func TestNormCanonicalizesNegation(t *testing.T) {
	v := NewVar(3)
	neg := v.Neg()

	canon, negated := neg.Norm()
	if negated != true {
		t.Fatalf("Neg(v).Norm() negated = false, want true")
	}
	if !canon.Equal(v) {
		t.Fatalf("Neg(v).Norm() canonical = %v, want %v", canon, v)
	}

	canon, negated = v.Norm()
	if negated {
		t.Fatalf("v.Norm() negated = true, want false")
	}
	if !canon.Equal(v) {
		t.Fatalf("v.Norm() canonical = %v, want %v", canon, v)
	}
}

func TestNegIsInvolutive(t *testing.T) {
	v := NewVar(1)
	if got := v.Neg().Neg(); !got.Equal(v) {
		t.Fatalf("v.Neg().Neg() = %v, want %v", got, v)
	}
}

func TestEqualDistinguishesIds(t *testing.T) {
	if NewVar(1).Equal(NewVar(2)) {
		t.Fatalf("NewVar(1).Equal(NewVar(2)) = true")
	}
	if !NewVar(1).Equal(NewVar(1)) {
		t.Fatalf("NewVar(1).Equal(NewVar(1)) = false")
	}
}

func TestHashConsistentWithEqual(t *testing.T) {
	a, b := NewVar(7), NewVar(7)
	if a.Hash() != b.Hash() {
		t.Fatalf("equal vars hashed differently: %d != %d", a.Hash(), b.Hash())
	}
}
