package ring

// Between is the ring's clockwise-between predicate: does value lie on
// the clockwise arc from lower to upper? It is grounded on the teacher's
// between() in chord/utils.go, with the equal-bounds case corrected to
// match the single-point-interval semantics spec'd for this predicate:
// the teacher's version returns `inclusive` unconditionally when
// lower==upper, ignoring value entirely, which fails the "only member is
// that value" requirement.
func Between(value, lower, upper ID, inclusive bool) bool {
	switch lower.Cmp(upper) {
	case 0:
		if !inclusive {
			return false
		}
		return value.Equal(lower)
	case -1:
		if inclusive {
			return value.Cmp(lower) >= 0 && value.Cmp(upper) <= 0
		}
		return value.Cmp(lower) > 0 && value.Cmp(upper) < 0
	default: // lower > upper: the arc wraps through zero
		if inclusive {
			return value.Cmp(lower) >= 0 || value.Cmp(upper) <= 0
		}
		return value.Cmp(lower) > 0 || value.Cmp(upper) < 0
	}
}
