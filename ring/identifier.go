// Package ring implements the circular identifier space and the
// clockwise-between predicate every routing and placement decision in
// the DHT is built on.
package ring

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"math/big"
)

// HexDigits is the fixed width of an Identifier's hex rendering. The ring
// size is 16^32, so every identifier fits exactly in 32 hex digits.
const HexDigits = 32

// ErrInvalidHex is returned by FromHex when the input is not a valid
// hex string of an acceptable length.
var ErrInvalidHex = errors.New("ring: invalid hex identifier")

// Modulus is the ring size, 16^32.
var Modulus = new(big.Int).Exp(big.NewInt(16), big.NewInt(32), nil)

// ID is a 256-bit-capacity unsigned integer reduced modulo Modulus.
// The underlying big.Int is never exposed mutably; ID is a value type
// safe to copy and compare with Equal/Cmp.
type ID struct {
	v *big.Int
}

func newID(v *big.Int) ID {
	m := new(big.Int).Mod(v, Modulus)
	return ID{v: m}
}

// Zero is the identifier 0.
func Zero() ID { return ID{v: big.NewInt(0)} }

// FromPlaintext hashes s with SHA-1 and reduces the result modulo the
// ring size, matching the construction used for peer and key identifiers.
func FromPlaintext(s string) ID {
	h := sha1.Sum([]byte(s))
	return newID(new(big.Int).SetBytes(h[:]))
}

// FromHex parses a hex string (case-insensitive, up to HexDigits digits)
// into an Identifier.
func FromHex(s string) (ID, error) {
	if s == "" || len(s) > HexDigits {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return newID(v), nil
}

// FromInt64 builds an identifier from a small non-negative integer,
// useful for tests and for literal ring arithmetic (e.g. "+1").
func FromInt64(n int64) ID {
	return newID(big.NewInt(n))
}

// Hex renders the identifier as a zero-padded, lowercase, fixed-width
// hex string.
func (id ID) Hex() string {
	v := id.v
	if v == nil {
		v = big.NewInt(0)
	}
	return fmt.Sprintf("%0*x", HexDigits, v)
}

func (id ID) String() string { return id.Hex() }

// Cmp returns -1, 0 or 1 comparing id to other under ordinary (non-ring)
// integer order. Ring membership uses Between, not Cmp.
func (id ID) Cmp(other ID) int {
	return id.big().Cmp(other.big())
}

// Equal reports whether id and other denote the same ring position.
func (id ID) Equal(other ID) bool { return id.Cmp(other) == 0 }

// Add returns id+other mod Modulus.
func (id ID) Add(other ID) ID {
	return newID(new(big.Int).Add(id.big(), other.big()))
}

// AddInt returns id+n mod Modulus.
func (id ID) AddInt(n int64) ID {
	return newID(new(big.Int).Add(id.big(), big.NewInt(n)))
}

// Sub returns id-other mod Modulus (wrapping on underflow).
func (id ID) Sub(other ID) ID {
	return newID(new(big.Int).Sub(id.big(), other.big()))
}

// Pow2 returns 2^exp mod Modulus, the step size used to build finger i.
func Pow2(exp int) ID {
	return newID(new(big.Int).Exp(big.NewInt(2), big.NewInt(int64(exp)), nil))
}

// XOR returns id XOR other, used by the Merkle index's distance metric.
// The result is not reduced modulo Modulus: XOR distance operates on the
// raw bit pattern of the two identifiers.
func (id ID) XOR(other ID) *big.Int {
	return new(big.Int).Xor(id.big(), other.big())
}

func (id ID) big() *big.Int {
	if id.v == nil {
		return big.NewInt(0)
	}
	return id.v
}
