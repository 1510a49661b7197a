package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Level
		wantErr bool
	}{
		{name: "debug", input: "DEBUG", want: LevelDebug},
		{name: "lowercase", input: "debug", want: LevelDebug},
		{name: "mixed case", input: "Debug", want: LevelDebug},
		{name: "info", input: "INFO", want: LevelInfo},
		{name: "warn", input: "WARN", want: LevelWarn},
		{name: "warning alias", input: "WARNING", want: LevelWarn},
		{name: "error", input: "ERROR", want: LevelError},
		{name: "unknown", input: "verbose", want: LevelInfo, wantErr: true},
		{name: "empty", input: "", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidLogLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLogLevel", tt.input, err)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSetLevelRoundTrips(t *testing.T) {
	defer SetLevel(CurrentLevel())

	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		SetLevel(level)
		if got := CurrentLevel(); got != level {
			t.Errorf("CurrentLevel() after SetLevel(%v) = %v", level, got)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	defer SetLevel(CurrentLevel())

	emit := []struct {
		level Level
		fn    func(string, ...any)
	}{
		{LevelDebug, Debug},
		{LevelInfo, Info},
		{LevelWarn, Warn},
		{LevelError, Error},
	}

	for _, threshold := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		t.Run(threshold.String(), func(t *testing.T) {
			SetLevel(threshold)

			for _, e := range emit {
				var buf bytes.Buffer
				restore := SetOutput(&buf)
				e.fn("probe")
				restore()

				want := e.level >= threshold
				if got := buf.Len() > 0; got != want {
					t.Errorf("at level %v, %v message emitted = %t, want %t", threshold, e.level, got, want)
				}
			}
		})
	}
}

func TestStructuredOutput(t *testing.T) {
	defer SetLevel(CurrentLevel())
	SetLevel(LevelInfo)

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("fetched tags", "repository", "library/nginx", "count", 42)

	out := buf.String()
	for _, want := range []string{"fetched tags", "library/nginx", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("structured log output missing %q: %s", want, out)
		}
	}
}

func TestWarnfFormats(t *testing.T) {
	defer SetLevel(CurrentLevel())
	SetLevel(LevelWarn)

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warnf("Invalid log level %q, using %s", "verbose", LevelInfo)

	if !strings.Contains(buf.String(), `Invalid log level \"verbose\", using INFO`) {
		t.Errorf("formatted warning not found in output: %s", buf.String())
	}
}

func TestSetOutputRestores(t *testing.T) {
	var first, second bytes.Buffer

	restoreFirst := SetOutput(&first)
	restoreSecond := SetOutput(&second)

	Error("goes to second")
	restoreSecond()
	Error("goes to first")
	restoreFirst()

	if !strings.Contains(second.String(), "goes to second") {
		t.Errorf("second buffer missing its message: %s", second.String())
	}
	if !strings.Contains(first.String(), "goes to first") {
		t.Errorf("first buffer missing its message: %s", first.String())
	}
}
