package pattern

import "strconv"

// Match matches tag against the pattern and extracts its version tuple.
// The entire tag must be consumed: a leading literal mismatch, a slot that
// cannot extract at least one digit, or trailing characters after the last
// segment all reject the tag. Digit runs parse as non-negative base-10
// integers; leading zeros are permitted in the tag but do not change the
// extracted value.
//
// Slots have variable width, so each slot's digit run is anchored against the
// next literal segment: the literal is searched for at the first position at
// or after one consumed digit, and the slot takes exactly the digits before
// it. A slot with no following literal takes the maximal digit run. The
// matcher never interprets literal text as anything but verbatim bytes.
func (p *Pattern) Match(tag string) (Version, bool) {
	rest := tag
	version := make(Version, 0, len(p.breaking))

	for i, seg := range p.segments {
		if !seg.isSlot() {
			if len(rest) < len(seg.literal) || rest[:len(seg.literal)] != seg.literal {
				return nil, false
			}
			rest = rest[len(seg.literal):]
			continue
		}

		var next string
		if i+1 < len(p.segments) && !p.segments[i+1].isSlot() {
			next = p.segments[i+1].literal
		}

		run, ok := digitRun(rest, next)
		if !ok {
			return nil, false
		}
		value, err := strconv.Atoi(rest[:run])
		if err != nil {
			// Digit runs beyond the int range cannot be ordered, so the
			// tag is treated as not matching.
			return nil, false
		}
		version = append(version, value)
		rest = rest[run:]
	}

	if rest != "" {
		return nil, false
	}
	return version, true
}

// Matches reports whether tag matches the pattern.
func (p *Pattern) Matches(tag string) bool {
	_, ok := p.Match(tag)
	return ok
}

// digitRun determines how many leading bytes of s a slot consumes. When the
// slot is followed by a literal, the run ends at the literal's first
// occurrence at or after position one; otherwise the run is the maximal digit
// prefix. Returns false if no valid run exists.
func digitRun(s, nextLiteral string) (int, bool) {
	if nextLiteral == "" {
		n := 0
		for n < len(s) && isDigit(s[n]) {
			n++
		}
		if n == 0 {
			return 0, false
		}
		return n, true
	}

	at := indexFrom(s, nextLiteral, 1)
	if at < 0 {
		return 0, false
	}
	for i := 0; i < at; i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
	}
	return at, true
}

// indexFrom returns the index of the first occurrence of sub in s at or after
// position from, or -1.
func indexFrom(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
