package testutil

import (
	"bytes"
	"sync"
	"testing"

	"github.com/lucas-albers-lz4/uptag/pkg/log"
)

// mutex protects concurrent access to the global logger state.
var mutex sync.Mutex

// CaptureLogging captures log output using log.SetOutput. Call the returned
// function to restore the original logging and retrieve the captured output.
// Only logs written via the pkg/log functions are captured, not direct writes
// to os.Stdout or os.Stderr.
func CaptureLogging() func() string {
	mutex.Lock()

	var logBuf bytes.Buffer
	logRestore := log.SetOutput(&logBuf)

	return func() string {
		defer mutex.Unlock()
		logRestore()
		return logBuf.String()
	}
}

// UseTestLogger silences log output for the duration of a test and replays it
// through t.Logf only when the test fails. Verbose runs keep logs flowing to
// stderr as usual.
func UseTestLogger(t *testing.T) {
	t.Helper()

	if testing.Verbose() {
		return
	}

	restoreAndGetLogs := CaptureLogging()
	t.Cleanup(func() {
		capturedLogs := restoreAndGetLogs()
		if t.Failed() && capturedLogs != "" {
			t.Logf("Log output captured during test:\n%s", capturedLogs)
		}
	})
}
