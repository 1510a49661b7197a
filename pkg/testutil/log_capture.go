// Package testutil provides helpers for capturing and asserting on log
// output in tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/lucas-albers-lz4/uptag/pkg/log"
	"github.com/stretchr/testify/assert"
)

// CaptureLogOutput redirects log output using log.SetOutput during test
// execution and returns the captured content. The original output writer and
// log level are restored before it returns.
//
// Example usage:
//
//	output, err := testutil.CaptureLogOutput(log.LevelDebug, func() {
//	    log.Info("This will be captured")
//	})
//	require.NoError(t, err)
//	assert.Contains(t, output, "This will be captured")
func CaptureLogOutput(logLevel log.Level, testFunc func()) (string, error) {
	originalLevel := log.CurrentLevel()

	var logBuf bytes.Buffer
	restoreLog := log.SetOutput(&logBuf)
	defer restoreLog()

	log.SetLevel(logLevel)
	defer log.SetLevel(originalLevel)

	var panicErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = fmt.Errorf("panic during log capture: %v", r)
			}
		}()
		testFunc()
	}()

	return logBuf.String(), panicErr
}

// CaptureJSONLogs captures log output in JSON format, parses each line, and
// returns the raw output alongside the parsed entries. Timestamps are forced
// on for the duration of the capture so tests can assert on them. The
// logLevel parameter controls the minimum level of logs captured.
func CaptureJSONLogs(logLevel log.Level, testFunc func()) (logOutput string, parsedLogs []map[string]interface{}, err error) {
	// The logger falls back to text when LOG_FORMAT=text is set; clear it so
	// the capture always sees JSON.
	originalLogFormat, hadLogFormat := os.LookupEnv("LOG_FORMAT")
	if unsetErr := os.Unsetenv("LOG_FORMAT"); unsetErr != nil {
		return "", nil, fmt.Errorf("failed to clear LOG_FORMAT: %w", unsetErr)
	}
	defer func() {
		if hadLogFormat {
			if restoreErr := os.Setenv("LOG_FORMAT", originalLogFormat); restoreErr != nil {
				log.Error("failed to restore LOG_FORMAT", "value", originalLogFormat, "error", restoreErr)
			}
		}
	}()

	log.SetTestModeWithTimestamps(true)
	defer log.SetTestModeWithTimestamps(false)

	logOutput, err = CaptureLogOutput(logLevel, testFunc)
	if err != nil {
		return logOutput, nil, err
	}

	if strings.TrimSpace(logOutput) == "" {
		return logOutput, nil, nil
	}

	for i, line := range strings.Split(strings.TrimSpace(logOutput), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		if unmarshalErr := json.Unmarshal([]byte(line), &entry); unmarshalErr != nil {
			return logOutput, parsedLogs, fmt.Errorf("failed to unmarshal log line %d as JSON: %w", i+1, unmarshalErr)
		}
		parsedLogs = append(parsedLogs, entry)
	}

	return logOutput, parsedLogs, nil
}

// AssertLogContainsJSON checks that at least one captured log entry carries
// all the key-value pairs present in expected.
func AssertLogContainsJSON(t *testing.T, logs []map[string]interface{}, expected map[string]interface{}) {
	t.Helper()
	for _, entry := range logs {
		if containsAll(entry, expected) {
			return
		}
	}

	assert.Fail(t, "Expected log entry not found",
		"Expected log containing:\n%s\n\nActual captured logs:\n%s",
		renderJSON(expected), renderEntries(logs))
}

// AssertLogDoesNotContainJSON checks that no captured log entry carries all
// the key-value pairs present in unexpected.
func AssertLogDoesNotContainJSON(t *testing.T, logs []map[string]interface{}, unexpected map[string]interface{}) {
	t.Helper()
	for _, entry := range logs {
		if containsAll(entry, unexpected) {
			assert.Fail(t, "Unexpected log entry found",
				"Found log entry:\n%s\n\nUnexpected log containing:\n%s",
				renderJSON(entry), renderJSON(unexpected))
			return
		}
	}
}

func renderJSON(entry map[string]interface{}) string {
	out, _ := json.MarshalIndent(entry, "", "  ")
	return string(out)
}

func renderEntries(logs []map[string]interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	for _, entry := range logs {
		_ = enc.Encode(entry)
	}
	return buf.String()
}

// containsAll reports whether actual carries every key-value pair from
// expected. JSON numbers decode as float64, so numeric expectations are
// compared through float64.
func containsAll(actual, expected map[string]interface{}) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valueMatches(got, want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want interface{}) bool {
	num, ok := got.(float64)
	if !ok {
		return got == want
	}
	switch want := want.(type) {
	case float64:
		return num == want
	case int:
		return num == float64(want)
	case int64:
		return num == float64(want)
	default:
		return false
	}
}
