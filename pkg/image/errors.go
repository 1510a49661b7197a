package image

import "errors"

// Sentinel errors related to image reference parsing.
var (
	// ErrEmptyReference reports an empty reference string.
	ErrEmptyReference = errors.New("cannot parse empty image reference")
	// ErrDigestReference reports a reference pinned by digest. Pinned images
	// have no tag to compare, so the extractors skip them.
	ErrDigestReference = errors.New("image reference is pinned by digest")
	// ErrNoTag reports a reference without an explicit tag.
	ErrNoTag = errors.New("image reference has no tag")
)
