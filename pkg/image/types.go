// Package image parses container image references found in build files and
// normalizes them for registry lookups and display.
package image

import "strings"

// Constants for reference normalization.
const (
	// DefaultRegistry is the registry assumed when a reference names none.
	DefaultRegistry = "docker.io"
	// LegacyDefaultRegistry is the older Docker Hub domain, treated the same
	// as DefaultRegistry.
	LegacyDefaultRegistry = "index.docker.io"
	// OfficialNamespace is the repository namespace for official images.
	OfficialNamespace = "library"
)

// Reference is a parsed, tagged image reference from a build file, together
// with the version pattern associated with it and the location it was found
// at.
type Reference struct {
	// Registry is the registry host, defaulted to docker.io for bare names.
	Registry string
	// Repository is the normalized repository path, e.g. "library/nginx".
	Repository string
	// Tag is the current tag, e.g. "1.4.12". Always non-empty.
	Tag string
	// Pattern is the raw version pattern associated with this reference in
	// the build file. Empty means no pattern was specified.
	Pattern string
	// Path is the build file the reference was found in.
	Path string
	// Line is the 1-based line number of the FROM statement.
	Line int
}

// Name returns the repository in display form. The default registry and the
// official "library/" namespace are elided, so "docker.io/library/nginx"
// renders as "nginx" and "quay.io/user/app" keeps its registry.
func (r *Reference) Name() string {
	if r.Registry == "" || r.Registry == DefaultRegistry || r.Registry == LegacyDefaultRegistry {
		return strings.TrimPrefix(r.Repository, OfficialNamespace+"/")
	}
	return r.Registry + "/" + r.Repository
}

// String renders the reference as "name:tag".
func (r *Reference) String() string {
	return r.Name() + ":" + r.Tag
}

// WithTag returns a copy of the reference pointing at a different tag.
func (r *Reference) WithTag(tag string) *Reference {
	out := *r
	out.Tag = tag
	return &out
}
