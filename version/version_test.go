package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantNorm string
		wantErr  bool
	}{
		{"1.0.0", "1.0.0", false},
		{"1.2.3", "1.2.3", false},
		{"1.0.0-alpha", "1.0.0-alpha", false},
		{"1.0.0-alpha.1", "1.0.0-alpha.1", false},
		{"1.0.0-0.3.7", "1.0.0-0.3.7", false},
		{"1.0.0+build", "1.0.0", false},
		{"1.0.0+build.123", "1.0.0", false},
		{"1.0.0-alpha+build", "1.0.0-alpha", false},
		{"1", "1", false},
		{"1.0", "1.0", false},
		{"1.0.0.0", "1.0.0.0", false},
		{"", "", false},
		{"not a version!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := v.String(); got != tt.wantNorm {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.wantNorm)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.1.0", -1},
		{"1.0.0", "1.0.1", -1},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha.2", -1},
		{"1.0.0-1", "1.0.0-2", -1},
		{"1.0.0-1", "1.0.0-alpha", -1},
		{"1.0.0-alpha", "1.0.0-1", 1},
		{"1.0", "1.0.0", -1},
		{"1.0.0.0", "1.0.0", 1},
		{"1.0.0", "", -1},
		{"", "1.0.0", 1},
		{"", "", 0},
		{"999.999.999", "", -1},
		{"1.3.1.bcr.7", "1.3.1", 1},
		{"1.3.1.bcr.7", "1.3.2", -1},
		{"10.0.0", "9.0.0", 1},
		{"1.10.0", "1.9.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestIdentifierComparison(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "2", -1},
		{"10", "9", 1},
		{"10", "10", 0},
		{"1", "alpha", -1},
		{"alpha", "1", 1},
		{"alpha", "beta", -1},
		{"beta", "alpha", 1},
		{"alpha", "alpha", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := CompareIdentifiers(ParseIdentifier(tt.a), ParseIdentifier(tt.b))
			if got != tt.want {
				t.Errorf("CompareIdentifiers(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	versions := []string{"2.0.0", "1.0.0", "1.0.0-alpha", "1.1.0", ""}
	Sort(versions)

	want := []string{"1.0.0-alpha", "1.0.0", "1.1.0", "2.0.0", ""}
	for i, v := range versions {
		if v != want[i] {
			t.Errorf("Sort()[%d] = %q, want %q", i, v, want[i])
		}
	}
}

func TestMax(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"1.0.0", "2.0.0", "2.0.0"},
		{"2.0.0", "1.0.0", "2.0.0"},
		{"1.0.0", "1.0.0", "1.0.0"},
		{"1.0.0", "", ""},
		{"1.0.0-alpha", "1.0.0", "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Max(tt.a, tt.b); got != tt.want {
				t.Errorf("Max(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEmptySortsHighest(t *testing.T) {
	if Empty().Compare(MustParse("999.999.999")) <= 0 {
		t.Fatalf("Empty() must compare greater than any non-empty version")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"1.2.3", "1.2.3-alpha.1", "0.1", ""} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		v2, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q) round-trip: %v", v.String(), err)
		}
		if !v.Equal(v2) {
			t.Errorf("round-trip mismatch: %q -> %q -> %q", s, v.String(), v2.String())
		}
	}
}
