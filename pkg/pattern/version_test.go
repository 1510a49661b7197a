package pattern

import (
	"testing"
)

func TestClassify(t *testing.T) {
	// Breaking major, compatible minor and patch.
	p := MustCompile("<!>.<>.<>")
	current := Version{1, 4, 12}

	tests := []struct {
		name      string
		candidate Version
		want      Classification
	}{
		{name: "newer minor", candidate: Version{1, 6, 12}, want: Compatible},
		{name: "newer patch", candidate: Version{1, 4, 13}, want: Compatible},
		{name: "newer major", candidate: Version{2, 4, 12}, want: Breaking},
		{name: "newer major and minor", candidate: Version{3, 5, 13}, want: Breaking},
		{name: "older patch", candidate: Version{1, 4, 11}, want: NotAnUpdate},
		{name: "identical", candidate: Version{1, 4, 12}, want: Current},
		{name: "older minor with newer patch", candidate: Version{1, 3, 99}, want: NotAnUpdate},
		{name: "older major with newer minor", candidate: Version{0, 9, 0}, want: NotAnUpdate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Classify(current, tc.candidate); got != tc.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", current, tc.candidate, got, tc.want)
			}
		})
	}
}

func TestClassifyAllSlotsCompatible(t *testing.T) {
	p := MustCompile("<>.<>")
	if got := p.Classify(Version{18, 3}, Version{20, 10}); got != Compatible {
		t.Errorf("Classify = %v, want %v", got, Compatible)
	}
}

func TestClassifyBreakingSlotAfterCompatible(t *testing.T) {
	// The breaking flag belongs to the slot, not to a prefix length.
	p := MustCompile("<>.<!>")
	if got := p.Classify(Version{1, 2}, Version{1, 3}); got != Breaking {
		t.Errorf("second slot bump: Classify = %v, want %v", got, Breaking)
	}
	if got := p.Classify(Version{1, 2}, Version{2, 2}); got != Compatible {
		t.Errorf("first slot bump: Classify = %v, want %v", got, Compatible)
	}
}

func TestClassifySelfIsCurrent(t *testing.T) {
	p := MustCompile("<!>.<>.<>")
	versions := []Version{
		{0, 0, 0},
		{1, 2, 3},
		{10, 20, 30},
		{1984, 0, 1},
	}
	for _, v := range versions {
		if got := p.Classify(v, v); got != Current {
			t.Errorf("Classify(%v, %v) = %v, want Current", v, v, got)
		}
	}
}

func TestClassifyPanicsOnSlotMismatch(t *testing.T) {
	p := MustCompile("<>.<>")
	defer func() {
		if recover() == nil {
			t.Error("Classify did not panic on mismatched slot count")
		}
	}()
	p.Classify(Version{1, 2}, Version{1, 2, 3})
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Version
		want int
	}{
		{name: "equal", a: Version{1, 4, 12}, b: Version{1, 4, 12}, want: 0},
		{name: "first slot decides", a: Version{2, 0, 0}, b: Version{1, 9, 9}, want: 1},
		{name: "middle slot decides", a: Version{1, 6, 12}, b: Version{1, 4, 13}, want: 1},
		{name: "last slot decides", a: Version{1, 4, 12}, b: Version{1, 4, 13}, want: -1},
		{name: "shorter is smaller on shared prefix", a: Version{1, 4}, b: Version{1, 4, 0}, want: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Compare(tc.b); got != tc.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Compare(tc.a); got != -tc.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tc.b, tc.a, got, -tc.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	if got := (Version{1, 4, 12}).String(); got != "1.4.12" {
		t.Errorf("String() = %q, want %q", got, "1.4.12")
	}
	if got := (Version{7}).String(); got != "7" {
		t.Errorf("String() = %q, want %q", got, "7")
	}
}
