// Package merkle implements the compact sparse Merkle index: a
// deterministic hash tree whose shape depends only on the key set (via
// XOR distance to each subtree's hash), grounded on
// original_source/src/merkle_node.{h,cpp}'s CSMerkleNode. Two indexes
// built from the same key set, in any insertion order, produce
// identical trees.
package merkle

import "chordhash/ring"

type node struct {
	leaf        bool
	key         ring.ID // meaningful only when leaf
	hash        ring.ID
	left, right *node
}

// Index is a compact sparse Merkle tree over a set of ring identifiers.
// The zero value is an empty index.
type Index struct {
	root *node
}

func leafNode(key ring.ID) *node {
	return &node{leaf: true, key: key, hash: key}
}

// concatHash hashes the concatenation of two child hashes, grounded on
// ConcatHash() in merkle_node.cpp.
func concatHash(a, b ring.ID) ring.ID {
	return ring.FromPlaintext(a.Hex() + b.Hex())
}

// distance is floor(log2(a XOR b)); identical identifiers have no
// finite distance and sort as closest (distance -1), so a tie against
// an identical child cannot be confused with genuine closeness.
func distance(a, b ring.ID) int {
	xor := a.XOR(b)
	if xor.Sign() == 0 {
		return -1
	}
	return xor.BitLen() - 1
}

// RootHash returns the hash of the tree's root, or the zero identifier
// for an empty index.
func (ix *Index) RootHash() ring.ID {
	if ix.root == nil {
		return ring.Zero()
	}
	return ix.root.hash
}

// Contains reports whether key is present as a leaf of the index.
func (ix *Index) Contains(key ring.ID) bool {
	return contains(ix.root, key)
}

func contains(n *node, key ring.ID) bool {
	if n == nil {
		return false
	}
	if n.leaf {
		return n.key.Equal(key)
	}
	distL := distance(key, n.left.hash)
	distR := distance(key, n.right.hash)
	if distL == distR {
		return false
	}
	if distL < distR {
		return contains(n.left, key)
	}
	return contains(n.right, key)
}

// Position returns the descent path (0=left, 1=right) followed to reach
// key's leaf, and whether key is actually present there.
func (ix *Index) Position(key ring.ID) ([]int, bool) {
	var path []int
	n := ix.root
	for {
		if n == nil {
			return path, false
		}
		if n.leaf {
			return path, n.key.Equal(key)
		}
		distL := distance(key, n.left.hash)
		distR := distance(key, n.right.hash)
		if distL == distR {
			return path, false
		}
		if distL < distR {
			path = append(path, 0)
			n = n.left
		} else {
			path = append(path, 1)
			n = n.right
		}
	}
}

// Insert adds key to the index. Re-inserting a present key is a no-op.
func (ix *Index) Insert(key ring.ID) {
	ix.root = insert(ix.root, key)
}

func insert(n *node, key ring.ID) *node {
	if n == nil {
		return leafNode(key)
	}
	if n.leaf {
		if n.key.Equal(key) {
			return n
		}
		left, right := n.key, key
		if left.Cmp(right) > 0 {
			left, right = right, left
		}
		return internalOf(leafNode(left), leafNode(right))
	}

	distL := distance(key, n.left.hash)
	distR := distance(key, n.right.hash)
	switch {
	case distL < distR:
		return internalOf(insert(n.left, key), n.right)
	case distR < distL:
		return internalOf(n.left, insert(n.right, key))
	default:
		lesser := n.left.hash
		if n.right.hash.Cmp(lesser) < 0 {
			lesser = n.right.hash
		}
		newLeaf := leafNode(key)
		if key.Cmp(lesser) < 0 {
			return internalOf(newLeaf, n)
		}
		return internalOf(n, newLeaf)
	}
}

func internalOf(left, right *node) *node {
	return &node{left: left, right: right, hash: concatHash(left.hash, right.hash)}
}

// Delete removes key from the index, mirroring Insert's descent. If the
// descent ties before reaching key's leaf, key was never reachable at
// that position and the index is left unchanged.
func (ix *Index) Delete(key ring.ID) {
	newRoot, _ := deleteNode(ix.root, key)
	ix.root = newRoot
}

func deleteNode(n *node, key ring.ID) (*node, bool) {
	if n == nil {
		return nil, false
	}
	if n.leaf {
		if n.key.Equal(key) {
			return nil, true
		}
		return n, false
	}

	distL := distance(key, n.left.hash)
	distR := distance(key, n.right.hash)
	if distL == distR {
		return n, false
	}

	if distL < distR {
		if n.left.leaf {
			if n.left.key.Equal(key) {
				return n.right, true
			}
			return n, false
		}
		newLeft, found := deleteNode(n.left, key)
		if !found {
			return n, false
		}
		return internalOf(newLeft, n.right), true
	}

	if n.right.leaf {
		if n.right.key.Equal(key) {
			return n.left, true
		}
		return n, false
	}
	newRight, found := deleteNode(n.right, key)
	if !found {
		return n, false
	}
	return internalOf(n.left, newRight), true
}

// Keys returns every key currently held, in no particular order.
func (ix *Index) Keys() []ring.ID {
	var out []ring.ID
	collect(ix.root, &out)
	return out
}

func collect(n *node, out *[]ring.ID) {
	if n == nil {
		return
	}
	if n.leaf {
		*out = append(*out, n.key)
		return
	}
	collect(n.left, out)
	collect(n.right, out)
}
