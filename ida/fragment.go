package ida

import (
	"fmt"
	"strconv"
	"strings"
)

// Fragment is one of the N rows an IDA encode produces: a 1-indexed
// position and its length-FragmentLen payload vector. Fragments are
// totally ordered by Index.
type Fragment struct {
	Index   int
	Payload []float64
}

// Less orders fragments by index, satisfying the "totally ordered by
// index" requirement on DataFragment.
func (f Fragment) Less(other Fragment) bool { return f.Index < other.Index }

// String renders the fragment as "INDEX:v1 v2 … vk", each value with
// as many digits as it needs to survive a round trip through Parse.
func (f Fragment) String() string {
	vals := make([]string, len(f.Payload))
	for i, v := range f.Payload {
		vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%d:%s", f.Index, strings.Join(vals, " "))
}

// ParseFragment parses the "INDEX:v1 v2 … vk" wire format produced by
// String.
func ParseFragment(s string) (Fragment, error) {
	idxPart, valsPart, ok := strings.Cut(s, ":")
	if !ok {
		return Fragment{}, fmt.Errorf("ida: malformed fragment %q", s)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(idxPart))
	if err != nil {
		return Fragment{}, fmt.Errorf("ida: malformed fragment index %q: %w", idxPart, err)
	}

	fields := strings.Fields(valsPart)
	payload := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Fragment{}, fmt.Errorf("ida: malformed fragment value %q: %w", field, err)
		}
		payload[i] = v
	}
	return Fragment{Index: idx, Payload: payload}, nil
}
