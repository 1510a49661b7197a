package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the ordered tuple of integers extracted from a tag, one per slot
// in slot order. Versions are only comparable to versions produced by the
// same pattern.
type Version []int

// Compare orders versions lexicographically, left to right across all slots.
// It returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	for i := 0; i < len(v) && i < len(other); i++ {
		switch {
		case v[i] < other[i]:
			return -1
		case v[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(v) < len(other):
		return -1
	case len(v) > len(other):
		return 1
	}
	return 0
}

// Equal reports whether both versions have identical slots.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Classification is the relationship between a current version and a
// candidate version drawn from the same pattern.
type Classification int

const (
	// Current means the candidate equals the current version.
	Current Classification = iota
	// Compatible means the candidate is newer and the first differing slot
	// is not flagged breaking.
	Compatible
	// Breaking means the candidate is newer and the first differing slot is
	// flagged breaking.
	Breaking
	// NotAnUpdate means the candidate is older or divergent and is never
	// reported as an update.
	NotAnUpdate
)

func (c Classification) String() string {
	switch c {
	case Current:
		return "current"
	case Compatible:
		return "compatible"
	case Breaking:
		return "breaking"
	case NotAnUpdate:
		return "not an update"
	default:
		return "unknown"
	}
}

// Classify compares candidate against current, both extracted via this
// pattern. The scan runs across slot indices left to right; the first
// differing slot decides: a greater candidate value is Compatible or Breaking
// depending on that slot's flag, a smaller one is NotAnUpdate regardless of
// later slots. Equal tuples are Current.
//
// Both versions must carry exactly one value per slot of this pattern.
// Classifying versions from a different pattern is a programming error and
// panics.
func (p *Pattern) Classify(current, candidate Version) Classification {
	if len(current) != len(p.breaking) || len(candidate) != len(p.breaking) {
		panic(fmt.Sprintf("pattern: Classify called with %d/%d slot versions against %d slot pattern %q",
			len(current), len(candidate), len(p.breaking), p.source))
	}

	for i := range current {
		if current[i] == candidate[i] {
			continue
		}
		if candidate[i] < current[i] {
			return NotAnUpdate
		}
		if p.breaking[i] {
			return Breaking
		}
		return Compatible
	}
	return Current
}
