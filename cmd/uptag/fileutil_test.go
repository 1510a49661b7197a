package main

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
	"github.com/lucas-albers-lz4/uptag/pkg/testutil"
)

func TestWriteOutputFileCreatesDirectories(t *testing.T) {
	testutil.UseTestLogger(t)
	fs := setupTestFs(t)

	require.NoError(t, writeOutputFile("reports/nested/uptag.txt", []byte("report\n")))

	content, err := afero.ReadFile(fs, "reports/nested/uptag.txt")
	require.NoError(t, err)
	assert.Equal(t, "report\n", string(content))
}

func TestWriteOutputFileRefusesOverwrite(t *testing.T) {
	testutil.UseTestLogger(t)
	fs := setupTestFs(t)
	writeTestFile(t, fs, "uptag.txt", "old")

	err := writeOutputFile("uptag.txt", []byte("new"))

	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitIOError, code)
	assert.Contains(t, err.Error(), "already exists")

	content, readErr := afero.ReadFile(fs, "uptag.txt")
	require.NoError(t, readErr)
	assert.Equal(t, "old", string(content), "the existing file is untouched")
}

func TestGetCommandContext(t *testing.T) {
	cmd := &cobra.Command{}
	assert.NotNil(t, getCommandContext(cmd), "falls back to the background context")

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	cmd.SetContext(ctx)
	assert.Equal(t, ctx, getCommandContext(cmd))
}
