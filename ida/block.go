package ida

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Block is the value-level abstraction over a single Create/Read: the
// original bytes (as supplied or as recovered) and the N fragments an
// encode produced. Equality is structural: two blocks are equal iff
// their original bytes match.
type Block struct {
	Original []byte
	Fragments []Fragment
}

// NewBlockFromPlaintext encodes plain (at most L bytes, each < 1000,
// padded with zeros to L) into a Block carrying all N fragments.
func NewBlockFromPlaintext(plain []byte) (Block, error) {
	fragments, err := Encode(plain)
	if err != nil {
		return Block{}, err
	}
	padded := make([]byte, L)
	copy(padded, plain)

	if err := sanityCheck(padded, fragments); err != nil {
		return Block{}, fmt.Errorf("ida: encode sanity check failed: %w", err)
	}
	return Block{Original: padded, Fragments: fragments}, nil
}

// sanityCheck immediately decodes fragments[:M] and asserts byte-exact
// equality with padded, catching numeric degeneracy before the block is
// disseminated to other peers.
func sanityCheck(padded []byte, fragments []Fragment) error {
	decoded, err := Decode(fragments)
	if err != nil {
		return err
	}
	if !bytes.Equal(decoded, padded) {
		return fmt.Errorf("round-trip mismatch: encoded %v, decoded %v", padded, decoded)
	}
	return nil
}

// NewBlockFromFragments reconstructs a Block from at least M fragments
// with known indices.
func NewBlockFromFragments(fragments []Fragment) (Block, error) {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	original, err := Decode(sorted)
	if err != nil {
		return Block{}, err
	}
	return Block{Original: original, Fragments: sorted}, nil
}

// NewBlockFromSerialized parses a newline-delimited multi-fragment
// serialization (at least M lines; extra lines beyond M are discarded,
// since decode only needs M rows and re-encoding regenerates the full
// N) and reconstructs the Block.
func NewBlockFromSerialized(s string) (Block, error) {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) < M {
		return Block{}, fmt.Errorf("%w: %d lines, need %d", ErrDecodeInsufficient, len(lines), M)
	}

	fragments := make([]Fragment, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		f, err := ParseFragment(line)
		if err != nil {
			return Block{}, err
		}
		fragments = append(fragments, f)
	}
	return NewBlockFromFragments(fragments)
}

// Serialize renders every fragment the block carries, newline-joined.
func (b Block) Serialize() string {
	lines := make([]string, len(b.Fragments))
	for i, f := range b.Fragments {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// Bytes returns the original plaintext with trailing zero padding
// stripped, the convention used to recover the caller's value from the
// fixed-width, zero-padded internal representation.
func (b Block) Bytes() []byte {
	trimmed := bytes.TrimRight(b.Original, "\x00")
	return trimmed
}

// Equal reports structural equality: same recovered plaintext.
func (b Block) Equal(other Block) bool {
	return bytes.Equal(b.Original, other.Original)
}
