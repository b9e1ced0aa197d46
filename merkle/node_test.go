package merkle

import (
	"testing"

	"chordhash/ring"
)

func buildIndex(keys []ring.ID) *Index {
	ix := &Index{}
	for _, k := range keys {
		ix.Insert(k)
	}
	return ix
}

func TestInsertionOrderIndependence(t *testing.T) {
	keys := []ring.ID{
		ring.FromPlaintext("a"),
		ring.FromPlaintext("b"),
		ring.FromPlaintext("c"),
		ring.FromPlaintext("d"),
		ring.FromPlaintext("e"),
	}

	orderA := buildIndex([]ring.ID{keys[0], keys[1], keys[2], keys[3], keys[4]})
	orderB := buildIndex([]ring.ID{keys[4], keys[2], keys[0], keys[3], keys[1]})

	if !orderA.RootHash().Equal(orderB.RootHash()) {
		t.Errorf("root hash should be independent of insertion order: %s vs %s",
			orderA.RootHash().Hex(), orderB.RootHash().Hex())
	}
}

func TestDeleteThenReinsertRestoresTree(t *testing.T) {
	keys := []ring.ID{
		ring.FromPlaintext("a"),
		ring.FromPlaintext("b"),
		ring.FromPlaintext("c"),
	}
	ix := buildIndex(keys)
	before := ix.RootHash()

	ix.Delete(keys[1])
	if ix.Contains(keys[1]) {
		t.Fatalf("key should be absent after delete")
	}

	ix.Insert(keys[1])
	after := ix.RootHash()

	if !before.Equal(after) {
		t.Errorf("delete followed by re-insert should restore the prior tree: %s vs %s",
			before.Hex(), after.Hex())
	}
}

func TestContainsMembership(t *testing.T) {
	present := ring.FromPlaintext("present")
	absent := ring.FromPlaintext("absent")
	ix := buildIndex([]ring.ID{present, ring.FromPlaintext("other1"), ring.FromPlaintext("other2")})

	if !ix.Contains(present) {
		t.Errorf("expected present key to be found")
	}
	if ix.Contains(absent) {
		t.Errorf("expected absent key to be reported missing")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	keys := []ring.ID{
		ring.FromPlaintext("a"),
		ring.FromPlaintext("b"),
		ring.FromPlaintext("c"),
	}
	ix := buildIndex(keys)

	data, err := ix.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	var reparsed Index
	if err := reparsed.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}

	if !ix.RootHash().Equal(reparsed.RootHash()) {
		t.Errorf("JSON round trip should preserve root hash")
	}
	for _, k := range keys {
		if !reparsed.Contains(k) {
			t.Errorf("reparsed index missing key %s", k.Hex())
		}
	}
}
