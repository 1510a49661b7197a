package check

import (
	"errors"
	"fmt"
)

// ErrNoPattern reports an image whose build file carries no version
// pattern. Without one there is nothing to classify candidate tags
// against.
var ErrNoPattern = errors.New("no version pattern specified for image")

// SelfMatchError reports a current tag that does not match its own
// pattern. A pattern that cannot produce a version for the tag it guards
// cannot order any candidate against it either.
type SelfMatchError struct {
	Tag     string
	Pattern string
}

func (e *SelfMatchError) Error() string {
	return fmt.Sprintf("current tag %q does not match the required pattern %q", e.Tag, e.Pattern)
}
