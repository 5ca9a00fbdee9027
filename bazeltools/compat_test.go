package bazeltools

import "testing"

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		name         string
		bazelVersion string
		constraints  []string
		wantOK       bool
	}{
		{"no constraints", "7.0.0", nil, true},
		{"no bazel version", "", []string{">=7.0.0"}, true},
		{"satisfied >=", "7.1.0", []string{">=7.0.0"}, true},
		{"violated >=", "6.6.0", []string{">=7.0.0"}, false},
		{"satisfied exclusion", "7.1.0", []string{"-7.0.0"}, true},
		{"violated exclusion", "7.0.0", []string{"-7.0.0"}, false},
		{"normalizes prerelease", "7.0.0-pre.20231115.1", []string{">=7.0.0"}, true},
		{"multiple constraints all satisfied", "7.2.0", []string{">=7.0.0", "<=8.0.0"}, true},
		{"multiple constraints one fails", "9.0.0", []string{">=7.0.0", "<=8.0.0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CheckCompatibility(tt.bazelVersion, tt.constraints)
			if ok != tt.wantOK {
				t.Errorf("CheckCompatibility(%q, %v) = (%v, %q), want ok=%v", tt.bazelVersion, tt.constraints, ok, reason, tt.wantOK)
			}
		})
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"7.0.0", "7.0.0"},
		{"7.0.0-pre.1", "7.0.0"},
		{"7.0.0+build", "7.0.0"},
		{"not-a-version", "not-a-version"},
	}
	for _, tt := range tests {
		if got := NormalizeVersion(tt.in); got != tt.want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
