package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/uptag/pkg/fileutil"
	"github.com/lucas-albers-lz4/uptag/pkg/image"
	"github.com/lucas-albers-lz4/uptag/pkg/registry"
)

// Dockerfile fixtures shared across command tests.
const (
	dockerfileUbuntu = `# uptag pattern: "<!>.<>"
FROM ubuntu:18.03
`
	dockerfileRedis = `# uptag pattern: "<>.<>.<>"
FROM redis:7.2.4
`
)

// ubuntuTags yields one compatible (18.04) and one breaking (20.10) update
// for ubuntu:18.03 under the "<!>.<>" pattern.
func ubuntuTags() map[string][]string {
	return map[string][]string{
		"library/ubuntu": {"16.04", "18.03", "18.04", "20.10", "latest"},
	}
}

// stubTagSource serves canned tag lists keyed by repository. A repository
// listed in errFor fails instead.
type stubTagSource struct {
	mu     sync.Mutex
	tags   map[string][]string
	errFor map[string]error
	calls  int
}

func (s *stubTagSource) FetchTags(_ context.Context, ref *image.Reference) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.errFor[ref.Repository]; ok {
		return nil, err
	}
	tags, ok := s.tags[ref.Repository]
	if !ok {
		return nil, fmt.Errorf("no tags stubbed for %s", ref.Repository)
	}
	return append([]string(nil), tags...), nil
}

// withStubbedRegistry points the check commands at a stub tag source and
// restores the real client factory when the test ends.
func withStubbedRegistry(t *testing.T, stub *stubTagSource) {
	t.Helper()
	original := tagSourceForOptions
	tagSourceForOptions = func(*reportOptions) registry.TagSource { return stub }
	t.Cleanup(func() { tagSourceForOptions = original })
}

// setupTestFs swaps AppFs for an in-memory filesystem for the duration of
// the test.
func setupTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	t.Cleanup(SetFs(fs))
	return fs
}

func writeTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), fileutil.ReadWriteUserReadOthers))
}

// disableColor forces plain arrows in text output regardless of the test
// environment.
func disableColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

// executeCommandSplit runs a cobra command capturing stdout and stderr
// separately.
func executeCommandSplit(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)

	err = root.Execute()

	return outBuf.String(), errBuf.String(), err
}
