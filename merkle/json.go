package merkle

import (
	"encoding/json"

	"chordhash/ring"
)

// wireNode is the JSON wire representation of a subtree, grounded on
// merkle_node.cpp's Json::Value conversion operator.
type wireNode struct {
	Leaf  bool      `json:"leaf"`
	Key   string    `json:"key,omitempty"`
	Hash  string     `json:"hash"`
	Left  *wireNode `json:"left,omitempty"`
	Right *wireNode `json:"right,omitempty"`
}

func toWire(n *node) *wireNode {
	if n == nil {
		return nil
	}
	w := &wireNode{Leaf: n.leaf, Hash: n.hash.Hex()}
	if n.leaf {
		w.Key = n.key.Hex()
		return w
	}
	w.Left = toWire(n.left)
	w.Right = toWire(n.right)
	return w
}

func fromWire(w *wireNode) (*node, error) {
	if w == nil {
		return nil, nil
	}
	hash, err := ring.FromHex(w.Hash)
	if err != nil {
		return nil, err
	}
	if w.Leaf {
		key, err := ring.FromHex(w.Key)
		if err != nil {
			return nil, err
		}
		return &node{leaf: true, key: key, hash: hash}, nil
	}
	left, err := fromWire(w.Left)
	if err != nil {
		return nil, err
	}
	right, err := fromWire(w.Right)
	if err != nil {
		return nil, err
	}
	return &node{left: left, right: right, hash: hash}, nil
}

// MarshalJSON implements the index's toJSON wire exchange.
func (ix *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(ix.root))
}

// UnmarshalJSON implements the index's fromJSON wire exchange.
func (ix *Index) UnmarshalJSON(data []byte) error {
	var w *wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	root, err := fromWire(w)
	if err != nil {
		return err
	}
	ix.root = root
	return nil
}
