package check

import (
	"context"
	"fmt"
	"sync"

	"github.com/lucas-albers-lz4/uptag/pkg/image"
	log "github.com/lucas-albers-lz4/uptag/pkg/log"
	"github.com/lucas-albers-lz4/uptag/pkg/pattern"
	"github.com/lucas-albers-lz4/uptag/pkg/registry"
)

// DefaultConcurrency is the number of images checked in parallel.
const DefaultConcurrency = 4

// Result is the outcome of checking one image. Err is non-nil when the
// check failed; Updates is only meaningful while it is nil.
type Result struct {
	Image   image.Reference
	Updates Updates
	Err     error
}

// Failed reports whether this image's check produced an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Checker runs update checks for image references against a tag source.
// Safe for concurrent use.
type Checker struct {
	tags        registry.TagSource
	concurrency int

	// patterns caches compilations per distinct pattern string. Build
	// files repeat the same handful of patterns across many images.
	mu       sync.Mutex
	patterns map[string]*pattern.Pattern
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithConcurrency sets how many images are checked in parallel.
func WithConcurrency(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewChecker creates a Checker fetching candidate tags from source.
func NewChecker(source registry.TagSource, opts ...CheckerOption) *Checker {
	c := &Checker{
		tags:        source,
		concurrency: DefaultConcurrency,
		patterns:    make(map[string]*pattern.Pattern),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Check runs an update check for every reference and returns one Result
// per reference, in input order. A failing image lands its error in its
// Result and never aborts the rest. When ctx is canceled, running checks
// finish with a cancellation error, finished Results are kept, and
// references never handed to a worker get a cancellation Result.
func (c *Checker) Check(ctx context.Context, refs []image.Reference) []Result {
	results := make([]Result, len(refs))
	handled := make([]bool, len(refs))

	workers := c.concurrency
	if workers > len(refs) {
		workers = len(refs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.checkOne(ctx, refs[idx])
				handled[idx] = true
			}
		}()
	}

	for i := range refs {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if !handled[i] {
			results[i] = Result{Image: refs[i], Err: ctx.Err()}
		}
	}
	return results
}

// checkOne runs the per-image pipeline: compile the pattern, match the
// current tag against it, fetch candidate tags, select updates.
func (c *Checker) checkOne(ctx context.Context, ref image.Reference) Result {
	result := Result{Image: ref}

	if ref.Pattern == "" {
		result.Err = ErrNoPattern
		return result
	}

	p, err := c.compile(ref.Pattern)
	if err != nil {
		result.Err = err
		return result
	}

	current, ok := p.Match(ref.Tag)
	if !ok {
		result.Err = &SelfMatchError{Tag: ref.Tag, Pattern: ref.Pattern}
		return result
	}

	tags, err := c.tags.FetchTags(ctx, &ref)
	if err != nil {
		result.Err = fmt.Errorf("fetching tags for %s: %w", ref.Name(), err)
		return result
	}

	result.Updates = FindUpdates(p, current, tags)
	log.Debug("checked image",
		"image", ref.String(),
		"candidates", len(tags),
		"compatible", result.Updates.Compatible != nil,
		"breaking", result.Updates.Breaking != nil)
	return result
}

// compile returns the compiled pattern for source, reusing earlier
// compilations.
func (c *Checker) compile(source string) (*pattern.Pattern, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.patterns[source]; ok {
		return p, nil
	}
	p, err := pattern.Compile(source)
	if err != nil {
		return nil, err
	}
	c.patterns[source] = p
	return p, nil
}
