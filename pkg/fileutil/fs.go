package fileutil

import (
	"os"

	"github.com/spf13/afero"
)

// FileExists checks if a path exists and is a regular file.
func FileExists(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// DirExists checks if a path exists and is a directory.
func DirExists(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// EnsureDirExists creates a directory and its parents if they do not exist.
func EnsureDirExists(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, ReadWriteExecuteUserReadExecuteOthers)
}
