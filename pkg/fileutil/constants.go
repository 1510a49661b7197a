// Package fileutil provides filesystem helpers shared by the CLI commands.
package fileutil

// Standard file permission constants.
const (
	// ReadWriteUserPermission represents 0600 permissions (read/write for user only)
	ReadWriteUserPermission = 0o600

	// ReadWriteUserReadOthers represents 0644 permissions (read/write for user, read for others)
	ReadWriteUserReadOthers = 0o644

	// ReadWriteExecuteUserReadExecuteOthers represents 0755 permissions (rwx for user, rx for others)
	ReadWriteExecuteUserReadExecuteOthers = 0o755
)
