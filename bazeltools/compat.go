package bazeltools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bazeldeps/resolve/version"
)

// CompatConstraint is a single parsed bazel_compatibility entry, e.g. ">=7.0.0".
type CompatConstraint struct {
	Operator string // ">=", "<=", ">", "<", "-"
	Version  string
}

var compatConstraintPattern = regexp.MustCompile(`^(>=|<=|>|<|-)(\d+\.\d+\.\d+)$`)

// ParseCompatConstraint parses a single bazel_compatibility constraint string.
func ParseCompatConstraint(s string) (CompatConstraint, error) {
	match := compatConstraintPattern.FindStringSubmatch(s)
	if match == nil {
		return CompatConstraint{}, fmt.Errorf("invalid bazel_compatibility constraint: %q", s)
	}
	return CompatConstraint{Operator: match[1], Version: match[2]}, nil
}

// SatisfiedBy reports whether bazelVersion satisfies the constraint.
func (c CompatConstraint) SatisfiedBy(bazelVersion string) bool {
	cmp := version.Compare(bazelVersion, c.Version)
	switch c.Operator {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "-":
		return cmp != 0
	default:
		return false
	}
}

// NormalizeVersion strips prerelease/build metadata from a Bazel version
// string, e.g. "7.0.0-pre.20231115.1" becomes "7.0.0". A string that does
// not start with three numeric components is returned unchanged.
func NormalizeVersion(v string) string {
	orig := v
	if idx := strings.IndexAny(v, "-+"); idx >= 0 {
		v = v[:idx]
	}
	parts := strings.Split(v, ".")
	if len(parts) >= 3 {
		for i := 0; i < 3; i++ {
			if _, err := strconv.Atoi(parts[i]); err != nil {
				return orig
			}
		}
		return strings.Join(parts[:3], ".")
	}
	return orig
}

// CheckCompatibility validates a module's bazel_compatibility constraints
// against a target Bazel version. An empty bazelVersion or constraint list
// always passes — this check is diagnostic, not part of selection.
func CheckCompatibility(bazelVersion string, constraints []string) (ok bool, reason string) {
	if len(constraints) == 0 || bazelVersion == "" {
		return true, ""
	}

	normalized := NormalizeVersion(bazelVersion)

	var failed []string
	for _, s := range constraints {
		c, err := ParseCompatConstraint(s)
		if err != nil {
			continue
		}
		if !c.SatisfiedBy(normalized) {
			failed = append(failed, s)
		}
	}
	if len(failed) == 0 {
		return true, ""
	}
	return false, fmt.Sprintf("requires %s", strings.Join(failed, " and "))
}
