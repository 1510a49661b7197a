// Package dockerfile extracts tagged image references and their version
// patterns from Dockerfiles.
//
// A version pattern is bound to a FROM statement with a marker comment on
// the lines above it:
//
//	# uptag pattern: "<!>.<>.<>"
//	FROM nginx:1.27.0
//
// Blank lines between the marker and the FROM are fine; any other line
// breaks the association, and a second marker overrides the first.
package dockerfile

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/lucas-albers-lz4/uptag/pkg/image"
	log "github.com/lucas-albers-lz4/uptag/pkg/log"
)

// patternComment matches the marker comment binding a version pattern to
// the next FROM statement. Interior spacing is flexible.
var patternComment = regexp.MustCompile(`^\s*#\s*uptag\s+pattern\s*:\s*"([^"]*)"\s*$`)

// Extract reads the Dockerfile at path and returns one reference per
// tagged FROM statement, in file order. References whose FROM had no
// marker comment carry an empty Pattern.
func Extract(fs afero.Fs, path string) ([]image.Reference, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn("closing dockerfile", "path", path, "error", closeErr)
		}
	}()

	return ExtractReader(f, path)
}

// ExtractReader scans Dockerfile content from r. The path only labels the
// resulting references.
func ExtractReader(r io.Reader, path string) ([]image.Reference, error) {
	var refs []image.Reference

	// armed is the pattern waiting for its FROM statement.
	armed := ""
	lineNo := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if m := patternComment.FindStringSubmatch(line); m != nil {
			armed = m[1]
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if !strings.EqualFold(fields[0], "FROM") {
			armed = ""
			continue
		}

		// Every FROM consumes the armed pattern, even one that turns out
		// not to be checkable.
		pattern := armed
		armed = ""

		ref, ok := parseFrom(fields, path, lineNo)
		if !ok {
			continue
		}
		ref.Pattern = pattern
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	log.Debug("extracted references", "path", path, "count", len(refs))
	return refs, nil
}

// parseFrom pulls the image reference out of a FROM line already split
// into fields. Build-stage names, digest-pinned, and untagged references
// cannot be checked and come back ok=false.
func parseFrom(fields []string, path string, lineNo int) (image.Reference, bool) {
	args := fields[1:]
	// FROM [--platform=...] ref [AS stage]
	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		args = args[1:]
	}
	if len(args) == 0 {
		log.Debug("FROM without an image reference", "path", path, "line", lineNo)
		return image.Reference{}, false
	}

	raw := args[0]
	ref, err := image.ParseReference(raw)
	if err != nil {
		log.Debug("skipping FROM reference",
			"path", path,
			"line", lineNo,
			"ref", raw,
			"reason", err)
		return image.Reference{}, false
	}

	ref.Path = path
	ref.Line = lineNo
	return *ref, true
}
