package maker

import "strings"

// Equivalence reports whether two candidates represent the same answer.
//
// An Equivalence must be reflexive and should be symmetric and transitive.
// A candidate is compared against the representative of each existing group,
// in the order the groups were created, and joins the first group that matches.
// A non-transitive predicate therefore gives order-dependent, but deterministic, groups.
type Equivalence[T any] func(a, b T) bool

// Equal is the default equivalence: plain value equality.
func Equal[T comparable](a, b T) bool {
	return a == b
}

// EqualFold treats strings that are equal under Unicode case folding as equivalent.
func EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// TrimmedEqualFold is like EqualFold, but ignores leading and trailing white space.
func TrimmedEqualFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
