package image

import (
	"fmt"

	"github.com/distribution/reference"

	"github.com/lucas-albers-lz4/uptag/pkg/log"
)

// ParseReference parses an image reference string from a FROM statement.
//
// Bare names are normalized the way Docker does it: "nginx:1.27" becomes
// docker.io/library/nginx, "user/app:2" becomes docker.io/user/app. A
// single-component name containing periods ("rocket.chat:0.73.2") is a
// repository on Docker Hub, not a registry host.
//
// References pinned by digest and references without a tag return
// ErrDigestReference and ErrNoTag respectively so callers can skip them.
func ParseReference(imageRef string) (*Reference, error) {
	if imageRef == "" {
		return nil, ErrEmptyReference
	}

	named, err := reference.ParseNormalizedNamed(imageRef)
	if err != nil {
		return nil, fmt.Errorf("parse image reference %q: %w", imageRef, err)
	}

	if _, ok := named.(reference.Digested); ok {
		return nil, fmt.Errorf("%q: %w", imageRef, ErrDigestReference)
	}

	tagged, ok := named.(reference.Tagged)
	if !ok {
		return nil, fmt.Errorf("%q: %w", imageRef, ErrNoTag)
	}

	result := &Reference{
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
		Tag:        tagged.Tag(),
	}
	log.Debug("Parsed image reference",
		"input", imageRef,
		"registry", result.Registry,
		"repository", result.Repository,
		"tag", result.Tag)
	return result, nil
}
