// Package exitcodes provides centralized exit code definitions and error handling for the uptag tool.
// Exit codes are organized in ranges so automated consumers (cron jobs, CI) can
// react to the outcome of a check without parsing the report:
//
//	0-3:   Check outcomes (no updates, compatible, breaking, failed checks)
//	10-19: Input/Configuration Errors (e.g., missing files, invalid flags)
//	20-29: Runtime Errors (e.g., I/O errors, system failures)
package exitcodes

import (
	"errors"
	"fmt"
)

// Exit code constants organized by category
const (
	// Check outcomes (0-3). The check and compose commands exit with the
	// highest applicable outcome: failures trump breaking updates, breaking
	// trump compatible, so exit 0 always means a clean bill of health.
	ExitNoUpdates         = 0 // No updates found, all checks succeeded
	ExitCompatibleUpdates = 1 // At least one compatible update, no breaking updates
	ExitBreakingUpdates   = 2 // At least one breaking update
	ExitCheckFailures     = 3 // At least one image check failed

	// Input/Configuration Errors (10-19)
	ExitInputConfigurationError = 10 // General configuration error (bad flags, missing file)
	ExitUnsupportedOutputFormat = 11 // Unknown --output-format value
	ExitFileParsingError        = 12 // Failed to parse a Dockerfile or compose file

	// Runtime Errors (20-29)
	ExitGeneralRuntimeError = 20 // General runtime/system error
	ExitIOError             = 21 // IO operation error
)

// ExitCodeError wraps an error with an exit code for consistent error handling.
// This type is used throughout the codebase to propagate both error details
// and the appropriate exit code up the call stack.
type ExitCodeError struct {
	Code int   // Exit code to return
	Err  error // Underlying error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// IsExitCodeError checks if an error is an ExitCodeError and returns its code.
// Returns false and 0 if the error is not an ExitCodeError.
func IsExitCodeError(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// CodeDescriptions maps exit codes to their human-readable descriptions
var CodeDescriptions = map[int]string{
	ExitNoUpdates:               "No updates found",
	ExitCompatibleUpdates:       "Compatible updates available",
	ExitBreakingUpdates:         "Breaking updates available",
	ExitCheckFailures:           "One or more image checks failed",
	ExitInputConfigurationError: "General configuration error",
	ExitUnsupportedOutputFormat: "Unsupported output format",
	ExitFileParsingError:        "Failed to parse a Dockerfile or compose file",
	ExitGeneralRuntimeError:     "General runtime/system error",
	ExitIOError:                 "IO operation error",
}
