package ida

import "testing"

func TestBlockFromPlaintextRoundTrip(t *testing.T) {
	block, err := NewBlockFromPlaintext([]byte("val"))
	if err != nil {
		t.Fatalf("NewBlockFromPlaintext failed: %v", err)
	}
	if string(block.Bytes()) != "val" {
		t.Errorf("expected recovered plaintext %q, got %q", "val", block.Bytes())
	}
}

func TestBlockFromFragmentsSubset(t *testing.T) {
	original, err := NewBlockFromPlaintext([]byte("hello chord"))
	if err != nil {
		t.Fatalf("NewBlockFromPlaintext failed: %v", err)
	}

	reconstructed, err := NewBlockFromFragments(original.Fragments[2 : 2+M])
	if err != nil {
		t.Fatalf("NewBlockFromFragments failed: %v", err)
	}
	if !reconstructed.Equal(original) {
		t.Errorf("reconstructed block should equal the original")
	}
}

func TestBlockSerializeParseRoundTrip(t *testing.T) {
	original, err := NewBlockFromPlaintext([]byte("serialize me"))
	if err != nil {
		t.Fatalf("NewBlockFromPlaintext failed: %v", err)
	}

	serialized := original.Serialize()
	reparsed, err := NewBlockFromSerialized(serialized)
	if err != nil {
		t.Fatalf("NewBlockFromSerialized failed: %v", err)
	}
	if string(reparsed.Bytes()) != "serialize me" {
		t.Errorf("expected %q, got %q", "serialize me", reparsed.Bytes())
	}
}

func TestEncodeOverflowBadByte(t *testing.T) {
	// Go's byte type cannot literally hold a value >= 1000, so Encode
	// has no per-byte check; a value at byte's max must encode without
	// error (255 < 1000).
	if _, err := NewBlockFromPlaintext([]byte{255, 0, 1}); err != nil {
		t.Errorf("max byte value should not overflow: %v", err)
	}
}
