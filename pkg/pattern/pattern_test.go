package pattern

import (
	"errors"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantSlots    int
		wantBreaking []bool
		expectError  bool
	}{
		{
			name:         "semver with breaking major",
			source:       "<!>.<>.<>",
			wantSlots:    3,
			wantBreaking: []bool{true, false, false},
		},
		{
			name:         "single compatible slot",
			source:       "<>",
			wantSlots:    1,
			wantBreaking: []bool{false},
		},
		{
			name:         "single breaking slot",
			source:       "<!>",
			wantSlots:    1,
			wantBreaking: []bool{true},
		},
		{
			name:         "literal prefix and suffix",
			source:       "debian-<>-beta",
			wantSlots:    1,
			wantBreaking: []bool{false},
		},
		{
			name:         "all slots breaking",
			source:       "<!>.<!>",
			wantSlots:    2,
			wantBreaking: []bool{true, true},
		},
		{
			name:         "breaking slot after compatible slot",
			source:       "<>.<!>",
			wantSlots:    2,
			wantBreaking: []bool{false, true},
		},
		{
			name:         "punctuation heavy literal",
			source:       "v<>_release.build-<>",
			wantSlots:    2,
			wantBreaking: []bool{false, false},
		},
		{
			name:        "empty pattern",
			source:      "",
			expectError: true,
		},
		{
			name:        "no slots",
			source:      "latest",
			expectError: true,
		},
		{
			name:        "unterminated slot",
			source:      "<.<>",
			expectError: true,
		},
		{
			name:        "unterminated slot at end",
			source:      "<>.<",
			expectError: true,
		},
		{
			name:        "malformed breaking token",
			source:      "<!.<>",
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Compile(tc.source)

			if tc.expectError {
				if err == nil {
					t.Fatalf("Compile(%q) expected error, got nil", tc.source)
				}
				var synErr *SyntaxError
				if !errors.As(err, &synErr) {
					t.Errorf("Compile(%q) error type = %T, want *SyntaxError", tc.source, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Compile(%q) unexpected error: %v", tc.source, err)
			}
			if p.Slots() != tc.wantSlots {
				t.Errorf("Slots() = %d, want %d", p.Slots(), tc.wantSlots)
			}
			for i, want := range tc.wantBreaking {
				if got := p.BreakingSlot(i); got != want {
					t.Errorf("BreakingSlot(%d) = %v, want %v", i, got, want)
				}
			}
			if p.String() != tc.source {
				t.Errorf("String() = %q, want %q", p.String(), tc.source)
			}
		})
	}
}

func TestCompileErrorMessageIncludesOffset(t *testing.T) {
	_, err := Compile("abc<def")
	if err == nil {
		t.Fatal("expected error for unterminated slot")
	}
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error type = %T, want *SyntaxError", err)
	}
	if synErr.Pos != 3 {
		t.Errorf("Pos = %d, want 3", synErr.Pos)
	}
	if synErr.Pattern != "abc<def" {
		t.Errorf("Pattern = %q, want %q", synErr.Pattern, "abc<def")
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic on invalid pattern")
		}
	}()
	MustCompile("no slots here")
}
