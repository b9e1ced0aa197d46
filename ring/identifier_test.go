package ring

import (
	"math/big"
	"testing"
)

func TestFromPlaintextDeterministic(t *testing.T) {
	a := FromPlaintext("k1")
	b := FromPlaintext("k1")
	c := FromPlaintext("k2")

	if !a.Equal(b) {
		t.Errorf("same plaintext should hash to the same identifier")
	}
	if a.Equal(c) {
		t.Errorf("different plaintext should hash to different identifiers")
	}
}

func TestFromHexRoundTrip(t *testing.T) {
	id := FromPlaintext("round-trip")
	parsed, err := FromHex(id.Hex())
	if err != nil {
		t.Fatalf("FromHex failed: %v", err)
	}
	if !parsed.Equal(id) {
		t.Errorf("round trip mismatch: got %s want %s", parsed.Hex(), id.Hex())
	}
}

func TestFromHexInvalid(t *testing.T) {
	cases := []string{"", "zzzz", "0123456789abcdef0123456789abcdef0"}
	for _, c := range cases {
		if _, err := FromHex(c); err == nil {
			t.Errorf("FromHex(%q) should have failed", c)
		}
	}
}

func TestAddSubWrap(t *testing.T) {
	near := newID(new(big.Int).Sub(Modulus, big.NewInt(1)))
	plusOne := near.AddInt(1)
	if !plusOne.Equal(Zero()) {
		t.Errorf("addition should wrap past Modulus to zero, got %s", plusOne.Hex())
	}

	backOne := Zero().Sub(FromInt64(1))
	if !backOne.Equal(near) {
		t.Errorf("subtraction should wrap below zero, got %s want %s", backOne.Hex(), near.Hex())
	}
}

func TestHexFixedWidth(t *testing.T) {
	id := FromInt64(1)
	if len(id.Hex()) != HexDigits {
		t.Errorf("expected %d hex digits, got %d (%s)", HexDigits, len(id.Hex()), id.Hex())
	}
}
