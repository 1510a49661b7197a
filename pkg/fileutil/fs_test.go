package fileutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "dir/file.txt", []byte("data"), ReadWriteUserReadOthers))

	exists, err := FileExists(fs, "dir/file.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(fs, "dir")
	require.NoError(t, err)
	assert.False(t, exists, "directories are not files")

	exists, err = FileExists(fs, "missing.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDirExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("a/b", ReadWriteExecuteUserReadExecuteOthers))
	require.NoError(t, afero.WriteFile(fs, "a/file.txt", []byte("data"), ReadWriteUserReadOthers))

	exists, err := DirExists(fs, "a/b")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = DirExists(fs, "a/file.txt")
	require.NoError(t, err)
	assert.False(t, exists, "files are not directories")

	exists, err = DirExists(fs, "a/missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureDirExists(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, EnsureDirExists(fs, "x/y/z"))
	exists, err := DirExists(fs, "x/y/z")
	require.NoError(t, err)
	assert.True(t, exists)

	// Creating an existing directory is not an error.
	require.NoError(t, EnsureDirExists(fs, "x/y/z"))
}
