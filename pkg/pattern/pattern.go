// Package pattern implements the tag pattern language used to describe image
// tag naming schemes, the exact matcher that extracts version tuples from tags,
// and the classification of candidate versions as compatible or breaking.
//
// A pattern is literal text plus number slots: `<>` matches one or more decimal
// digits as a compatible slot, `<!>` matches one or more decimal digits as a
// breaking slot. Literal characters match verbatim, case-sensitive and
// byte-exact; punctuation such as '.' or '-' has no special meaning. A pattern
// must contain at least one slot.
//
//	<!>.<>.<>    matches 1.4.12, major bumps are breaking
//	debian-<>    matches debian-10
package pattern

import (
	"fmt"
	"strings"
)

// slotToken and breakingSlotToken are the two recognized pattern tokens.
const (
	slotToken         = "<>"
	breakingSlotToken = "<!>"
)

// segment is one element of a compiled pattern: either a literal run of
// characters or a number slot identified by its index.
type segment struct {
	literal string // literal text; empty for slots
	slot    int    // slot index; -1 for literals
}

func (s segment) isSlot() bool {
	return s.slot >= 0
}

// Pattern is the compiled, immutable form of a pattern string. The slot count
// and order are fixed for the pattern's lifetime; versions extracted by Match
// carry one integer per slot in declaration order.
type Pattern struct {
	source   string
	segments []segment
	breaking []bool // per-slot breaking flag, indexed by slot
}

// SyntaxError describes a malformed pattern string.
type SyntaxError struct {
	Pattern string // the offending pattern source
	Pos     int    // byte offset of the problem, 0 for whole-pattern problems
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid pattern %q at offset %d: %s", e.Pattern, e.Pos, e.Reason)
}

// Compile parses a pattern string into a Pattern.
//
// The scan is a single left-to-right pass: a recognized token closes the
// current literal segment (if any) and appends a slot; every other byte
// extends the current literal. Compile fails on an empty pattern, on a '<'
// that does not begin a recognized token, and on patterns without any slot
// (such a pattern can never show an update, so it is almost certainly a
// mistake).
func Compile(source string) (*Pattern, error) {
	if source == "" {
		return nil, &SyntaxError{Pattern: source, Pos: 0, Reason: "empty pattern"}
	}

	var (
		segments []segment
		breaking []bool
		literal  strings.Builder
	)
	flushLiteral := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{literal: literal.String(), slot: -1})
			literal.Reset()
		}
	}

	for i := 0; i < len(source); {
		if source[i] != '<' {
			literal.WriteByte(source[i])
			i++
			continue
		}
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, breakingSlotToken):
			flushLiteral()
			segments = append(segments, segment{slot: len(breaking), literal: ""})
			breaking = append(breaking, true)
			i += len(breakingSlotToken)
		case strings.HasPrefix(rest, slotToken):
			flushLiteral()
			segments = append(segments, segment{slot: len(breaking), literal: ""})
			breaking = append(breaking, false)
			i += len(slotToken)
		default:
			return nil, &SyntaxError{
				Pattern: source,
				Pos:     i,
				Reason:  "unterminated version slot, expected <> or <!>",
			}
		}
	}
	flushLiteral()

	if len(breaking) == 0 {
		return nil, &SyntaxError{
			Pattern: source,
			Pos:     0,
			Reason:  "pattern contains no version slots",
		}
	}

	return &Pattern{source: source, segments: segments, breaking: breaking}, nil
}

// MustCompile is like Compile but panics on error. It simplifies tests and
// package-level pattern variables.
func MustCompile(source string) *Pattern {
	p, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern source.
func (p *Pattern) String() string {
	return p.source
}

// Slots returns the number of version slots in the pattern.
func (p *Pattern) Slots() int {
	return len(p.breaking)
}

// BreakingSlot reports whether slot i is flagged breaking.
func (p *Pattern) BreakingSlot(i int) bool {
	return p.breaking[i]
}
