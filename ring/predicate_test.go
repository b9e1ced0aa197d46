package ring

import "testing"

func TestBetweenEqualBounds(t *testing.T) {
	a := FromInt64(5)
	k := FromInt64(5)
	other := FromInt64(9)

	if !Between(k, a, a, true) {
		t.Errorf("inclusive single-point interval should contain its own bound")
	}
	if Between(other, a, a, true) {
		t.Errorf("inclusive single-point interval should not contain a different value")
	}
	if Between(k, a, a, false) {
		t.Errorf("exclusive single-point interval should be empty")
	}
}

func TestBetweenExactlyOneDirection(t *testing.T) {
	lower := FromInt64(10)
	upper := FromInt64(100)
	mid := FromInt64(50)

	fwd := Between(mid, lower, upper, false)
	rev := Between(mid, upper, lower, false)
	if fwd == rev {
		t.Errorf("exactly one of the two directed arcs should contain a non-endpoint value")
	}
}

func TestBetweenWrap(t *testing.T) {
	lower := Modulus
	_ = lower
	hi := FromInt64(0).Sub(FromInt64(5)) // Modulus-5
	lo := FromInt64(5)
	k := FromInt64(0)

	if !Between(k, hi, lo, true) {
		t.Errorf("wrap-around interval should contain zero when straddling the modulus boundary")
	}
}

func TestBetweenInclusiveEndpoints(t *testing.T) {
	lower := FromInt64(10)
	upper := FromInt64(20)

	if !Between(lower, lower, upper, true) {
		t.Errorf("inclusive interval should contain its lower bound")
	}
	if !Between(upper, lower, upper, true) {
		t.Errorf("inclusive interval should contain its upper bound")
	}
	if Between(lower, lower, upper, false) {
		t.Errorf("exclusive interval should not contain its lower bound")
	}
	if Between(upper, lower, upper, false) {
		t.Errorf("exclusive interval should not contain its upper bound")
	}
}
