package ida

import (
	"bytes"
	"testing"
)

func sampleInput() []byte {
	v := make([]byte, L)
	for i := range v {
		v[i] = byte((i*37 + 11) % 250)
	}
	return v
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleInput()
	fragments, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(fragments) != N {
		t.Fatalf("expected %d fragments, got %d", N, len(fragments))
	}

	out, err := Decode(fragments[:M])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("round trip mismatch:\n got  %v\n want %v", out, in)
	}
}

func TestDecodeAnyMSubset(t *testing.T) {
	in := sampleInput()
	fragments, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Pick a subset that skips the first few fragments to exercise a
	// non-trivial Vandermonde submatrix.
	subset := append([]Fragment{}, fragments[4:4+M]...)
	out, err := Decode(subset)
	if err != nil {
		t.Fatalf("Decode on late subset failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("decode from a non-leading subset mismatched original")
	}
}

func TestEncodeOverflowLength(t *testing.T) {
	big := make([]byte, L+1)
	if _, err := Encode(big); err == nil {
		t.Errorf("expected EncodeOverflow for input exceeding L bytes")
	}
}

func TestDecodeInsufficient(t *testing.T) {
	in := sampleInput()
	fragments, _ := Encode(in)
	if _, err := Decode(fragments[:M-1]); err == nil {
		t.Errorf("expected DecodeInsufficient for fewer than M fragments")
	}
}

func TestFragmentSerializeParseRoundTrip(t *testing.T) {
	f := Fragment{Index: 3, Payload: []float64{1.5, -2.25, 300, 0}}
	parsed, err := ParseFragment(f.String())
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if parsed.Index != f.Index || len(parsed.Payload) != len(f.Payload) {
		t.Fatalf("fragment round trip shape mismatch")
	}
	for i := range f.Payload {
		if diff := parsed.Payload[i] - f.Payload[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("fragment value %d drifted: got %v want %v", i, parsed.Payload[i], f.Payload[i])
		}
	}
}
