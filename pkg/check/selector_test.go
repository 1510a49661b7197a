package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/uptag/pkg/pattern"
)

func TestFindUpdates(t *testing.T) {
	tests := []struct {
		name           string
		pattern        string
		current        string
		tags           []string
		wantCompatible string
		wantBreaking   string
	}{
		{
			name:           "picks the best candidate per class",
			pattern:        "<!>.<>",
			current:        "18.03",
			tags:           []string{"18.03", "18.04", "20.10", "19.10-rc"},
			wantCompatible: "18.04",
			wantBreaking:   "20.10",
		},
		{
			name:           "compares whole tuples, not single components",
			pattern:        "<!>.<>.<>",
			current:        "1.4.12",
			tags:           []string{"1.4.13", "1.6.12"},
			wantCompatible: "1.6.12",
		},
		{
			name:    "non-matching tags are dropped silently",
			pattern: "<>.<>.<>",
			current: "2.13.3",
			tags:    []string{"latest", "edge", "2.13.3a", "2.13"},
		},
		{
			name:    "current and older tags produce nothing",
			pattern: "<!>.<>.<>",
			current: "1.4.12",
			tags:    []string{"1.4.12", "1.4.11", "0.9.0"},
		},
		{
			name:         "all-breaking pattern never yields compatible updates",
			pattern:      "<!>",
			current:      "10",
			tags:         []string{"9", "10", "11", "12"},
			wantBreaking: "12",
		},
		{
			name:           "literal suffix keeps the variant separate",
			pattern:        "debian-<>-beta",
			current:        "debian-9-beta",
			tags:           []string{"debian-10", "debian-10-beta", "debian-11-beta"},
			wantCompatible: "debian-11-beta",
		},
		{
			name:    "empty tag list",
			pattern: "<>.<>",
			current: "1.0",
			tags:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := pattern.Compile(tt.pattern)
			require.NoError(t, err)
			current, ok := p.Match(tt.current)
			require.True(t, ok, "current tag %q must match pattern %q", tt.current, tt.pattern)

			updates := FindUpdates(p, current, tt.tags)

			if tt.wantCompatible == "" {
				assert.Nil(t, updates.Compatible)
			} else {
				require.NotNil(t, updates.Compatible, "expected a compatible update")
				assert.Equal(t, tt.wantCompatible, updates.Compatible.Tag)
			}
			if tt.wantBreaking == "" {
				assert.Nil(t, updates.Breaking)
			} else {
				require.NotNil(t, updates.Breaking, "expected a breaking update")
				assert.Equal(t, tt.wantBreaking, updates.Breaking.Tag)
			}
		})
	}
}

func TestFindUpdatesTieBreaksOnTagString(t *testing.T) {
	p, err := pattern.Compile("<>.<>")
	require.NoError(t, err)
	current, ok := p.Match("1.0")
	require.True(t, ok)

	// 1.04 and 1.4 both parse to the same version tuple; the greater tag
	// string must win regardless of registry order.
	for _, tags := range [][]string{
		{"1.04", "1.4"},
		{"1.4", "1.04"},
	} {
		updates := FindUpdates(p, current, tags)
		require.NotNil(t, updates.Compatible)
		assert.Equal(t, "1.4", updates.Compatible.Tag)
	}
}

func TestUpdatesHasAny(t *testing.T) {
	assert.False(t, Updates{}.HasAny())
	assert.True(t, Updates{Compatible: &Update{Tag: "1.1"}}.HasAny())
	assert.True(t, Updates{Breaking: &Update{Tag: "2.0"}}.HasAny())
}
