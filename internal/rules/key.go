// Package rules implements the compound rule keys and ordered rule tables used to map
// free-text procedure descriptions onto canonical procedure categories.
//
// A rule key is a conjunction of terms separated by " & ". A term is a literal substring
// that must be present in the description, unless it starts with "~", in which case the
// remainder must be absent. Matching is case-sensitive and performs no normalization.
package rules

import (
	"strings"
)

const (
	// Conjunction separates the terms of a compound rule key.
	Conjunction = " & "
	// NegationMarker prefixes an exclusion term.
	NegationMarker = "~"
)

// RuleKey is a parsed compound predicate over a description string.
// Include and Exclude keep the authored term order.
type RuleKey struct {
	Raw     string
	Include []string
	Exclude []string
}

// ParseKey converts a raw compound key into a RuleKey.
//
// ParseKey never fails. An empty term is kept as an empty substring: as an inclusion term
// it is satisfied by every description, as an exclusion term it is present in every
// description so the rule can never match. Validate reports both cases.
func ParseKey(raw string) RuleKey {
	key := RuleKey{Raw: raw}
	for _, part := range strings.Split(raw, Conjunction) {
		term := strings.TrimSpace(part)
		if strings.HasPrefix(term, NegationMarker) {
			key.Exclude = append(key.Exclude, strings.TrimPrefix(term, NegationMarker))
			continue
		}
		key.Include = append(key.Include, term)
	}
	return key
}

// Matches reports whether every inclusion term occurs in description and no exclusion
// term does.
func (k RuleKey) Matches(description string) bool {
	for _, term := range k.Include {
		if !strings.Contains(description, term) {
			return false
		}
	}
	for _, term := range k.Exclude {
		if strings.Contains(description, term) {
			return false
		}
	}
	return true
}

// Terms returns the number of terms in the key.
func (k RuleKey) Terms() int {
	return len(k.Include) + len(k.Exclude)
}

// String renders the key in canonical form: inclusion terms first, then exclusion terms,
// joined by the conjunction separator.
func (k RuleKey) String() string {
	parts := make([]string, 0, k.Terms())
	parts = append(parts, k.Include...)
	for _, term := range k.Exclude {
		parts = append(parts, NegationMarker+term)
	}
	return strings.Join(parts, Conjunction)
}

// implies reports whether every description matched by other is also matched by k.
// It is a conservative syntactic check: each inclusion term of k must be contained in an
// inclusion term of other, and each exclusion term of k must contain an exclusion term
// of other.
func (k RuleKey) implies(other RuleKey) bool {
	for _, inc := range k.Include {
		covered := false
		for _, otherInc := range other.Include {
			if strings.Contains(otherInc, inc) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	for _, exc := range k.Exclude {
		covered := false
		for _, otherExc := range other.Exclude {
			if strings.Contains(exc, otherExc) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
