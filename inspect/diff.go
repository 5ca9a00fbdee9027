package inspect

import (
	"cmp"
	"slices"

	"github.com/bazeldeps/resolve/bzlmodule"
)

// ModuleChange is a module present in one resolution's graph but absent
// from the other.
type ModuleChange struct {
	Name    string
	Version string
}

// ModuleUpgrade is a version change for a module present in both graphs.
type ModuleUpgrade struct {
	Name       string
	OldVersion string
	NewVersion string
}

// ResolutionDiff is the set of differences between two resolved graphs of
// the same root module, e.g. before and after a MODULE.bazel edit.
type ResolutionDiff struct {
	Added      []ModuleChange
	Removed    []ModuleChange
	Upgraded   []ModuleUpgrade
	Downgraded []ModuleUpgrade
}

// IsEmpty reports whether the two resolutions were identical.
func (d *ResolutionDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Upgraded) == 0 && len(d.Downgraded) == 0
}

// Diff compares two resolved graphs and reports which modules were added,
// removed, or changed version, using version.Version's own ordering
// (so "1.2.3.bcr.1"-style BCR patch suffixes compare correctly, not
// lexicographically).
func Diff(oldGraph, newGraph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule) *ResolutionDiff {
	diff := &ResolutionDiff{}

	oldVersions := versionsByName(oldGraph)
	newVersions := versionsByName(newGraph)

	for name, newKey := range newVersions {
		oldKey, existed := oldVersions[name]
		switch {
		case !existed:
			diff.Added = append(diff.Added, ModuleChange{Name: name, Version: newKey.Version.String()})
		case oldKey.Version != newKey.Version:
			switch {
			case newKey.Version.Compare(oldKey.Version) > 0:
				diff.Upgraded = append(diff.Upgraded, ModuleUpgrade{Name: name, OldVersion: oldKey.Version.String(), NewVersion: newKey.Version.String()})
			case newKey.Version.Compare(oldKey.Version) < 0:
				diff.Downgraded = append(diff.Downgraded, ModuleUpgrade{Name: name, OldVersion: oldKey.Version.String(), NewVersion: newKey.Version.String()})
			}
		}
	}

	for name, oldKey := range oldVersions {
		if _, existsNow := newVersions[name]; !existsNow {
			diff.Removed = append(diff.Removed, ModuleChange{Name: name, Version: oldKey.Version.String()})
		}
	}

	slices.SortFunc(diff.Added, func(a, b ModuleChange) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(diff.Removed, func(a, b ModuleChange) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(diff.Upgraded, func(a, b ModuleUpgrade) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(diff.Downgraded, func(a, b ModuleUpgrade) int { return cmp.Compare(a.Name, b.Name) })

	return diff
}

func versionsByName(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule) map[string]bzlmodule.ModuleKey {
	out := make(map[string]bzlmodule.ModuleKey, len(graph))
	for key := range graph {
		out[key.Name] = key
	}
	return out
}
