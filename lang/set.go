package lang

import (
	"encoding/json"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/maillist/pkg"
)

// Set is an immutable set of recipients. The zero value is the empty set.
// Operations return new sets and never modify their operands.
type Set struct {
	m map[Recipient]struct{}
}

// NewSet returns the set containing rs.
func NewSet(rs ...Recipient) Set {
	if len(rs) == 0 {
		return Set{}
	}

	m := make(map[Recipient]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}

	return Set{m: m}
}

// Len returns the number of recipients.
func (s Set) Len() int { return len(s.m) }

// Contains reports whether r is a member.
func (s Set) Contains(r Recipient) bool {
	_, ok := s.m[r]

	return ok
}

// Union returns s ∪ t.
func (s Set) Union(t Set) Set {
	switch {
	case t.Len() == 0:
		return s
	case s.Len() == 0:
		return t
	}

	m := maps.Clone(s.m)
	maps.Copy(m, t.m)

	return Set{m: m}
}

// Intersect returns s ∩ t.
func (s Set) Intersect(t Set) Set {
	if s.Len() > t.Len() {
		s, t = t, s
	}

	m := make(map[Recipient]struct{})
	for r := range s.m {
		if t.Contains(r) {
			m[r] = struct{}{}
		}
	}

	return Set{m: m}
}

// Difference returns s \ t.
func (s Set) Difference(t Set) Set {
	if s.Len() == 0 || t.Len() == 0 {
		return s
	}

	m := make(map[Recipient]struct{}, len(s.m))
	for r := range s.m {
		if !t.Contains(r) {
			m[r] = struct{}{}
		}
	}

	return Set{m: m}
}

// Equal reports whether s and t have the same members.
func (s Set) Equal(t Set) bool {
	if s.Len() != t.Len() {
		return false
	}

	for r := range s.m {
		if !t.Contains(r) {
			return false
		}
	}

	return true
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []Recipient {
	return slices.Sorted(maps.Keys(s.m))
}

// All iterates over the members in lexicographic order.
func (s Set) All() iter.Seq[Recipient] {
	return slices.Values(s.Sorted())
}

// Strings returns the sorted members as strings.
func (s Set) Strings() []string {
	return slices.AppendSeq(make([]string, 0, s.Len()), pkg.Strings(s.Sorted()...))
}

// String renders the sorted members joined by ", ".
func (s Set) String() string { return strings.Join(s.Strings(), ", ") }

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Strings()) }

// MarshalYAML encodes the set as a sorted sequence.
func (s Set) MarshalYAML() (any, error) { return s.Strings(), nil }
