package types

import (
	"strconv"
	"strings"
)

// CompareReferences orders references the way a style guide table of
// contents does: level by level, numerically where both levels are numbers.
// "2.10" sorts after "2.9" and a parent sorts before its children.
func CompareReferences(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareLevel(as[i], bs[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func compareLevel(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return strings.Compare(a, b)
	}
	return strings.Compare(a, b)
}

// IsWithin reports whether reference is parent or one of its descendants
func IsWithin(reference, parent string) bool {
	return reference == parent || strings.HasPrefix(reference, parent+".")
}
