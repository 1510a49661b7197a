// Package check orchestrates update checks: it pairs image references
// with compiled version patterns, fetches candidate tags, and selects the
// best compatible and breaking updates.
package check

import (
	"github.com/lucas-albers-lz4/uptag/pkg/pattern"
)

// Update is a single selected update: the tag to move to and its parsed
// version.
type Update struct {
	Tag     string
	Version pattern.Version
}

// Updates holds the best candidate per update class. Either field may be
// nil when no tag of that class exists.
type Updates struct {
	Compatible *Update
	Breaking   *Update
}

// HasAny reports whether at least one update was found.
func (u Updates) HasAny() bool {
	return u.Compatible != nil || u.Breaking != nil
}

// FindUpdates classifies every candidate tag against the current version
// and keeps the highest compatible and highest breaking candidate. Tags
// that do not match the pattern are skipped without complaint: registries
// mix release schemes freely, and the pattern is exactly the tool for
// picking out the relevant ones.
func FindUpdates(p *pattern.Pattern, current pattern.Version, tags []string) Updates {
	var updates Updates
	for _, tag := range tags {
		v, ok := p.Match(tag)
		if !ok {
			continue
		}
		switch p.Classify(current, v) {
		case pattern.Compatible:
			updates.Compatible = better(updates.Compatible, tag, v)
		case pattern.Breaking:
			updates.Breaking = better(updates.Breaking, tag, v)
		case pattern.Current, pattern.NotAnUpdate:
		}
	}
	return updates
}

// better keeps the greater of the incumbent and the challenger. Versions
// compare by their numeric tuples; equal tuples fall back to the greater
// tag string, so a rerun over a reordered tag list picks the same winner.
func better(incumbent *Update, tag string, v pattern.Version) *Update {
	if incumbent == nil {
		return &Update{Tag: tag, Version: v}
	}
	switch incumbent.Version.Compare(v) {
	case -1:
		return &Update{Tag: tag, Version: v}
	case 0:
		if tag > incumbent.Tag {
			return &Update{Tag: tag, Version: v}
		}
	}
	return incumbent
}
