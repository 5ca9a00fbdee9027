// Package inspect builds the diagnostic view of a completed resolution:
// dependant edges, unused-dep bookkeeping, and resolution-reason labels
// per spec §4.4, plus query helpers (Explain), comparison (Diff), and a
// JSON diagnostics export/import round-trip on top of that view.
package inspect

import (
	"github.com/bazeldeps/resolve/bzlmodule"
)

// Augment builds the augmented graph from a completed resolution: resolved
// is the pruned/validated graph Selection returned, unpruned is the wider
// graph before the reachability walk dropped unreachable losers, raw is
// Discovery's original graph (before any MVS rewriting) — used to compute
// OriginalDependants and UnusedDeps — and overrides is the root module's
// override table, consulted to tell an override-driven rewrite apart from
// a plain MVS version bump.
//
// out is seeded from unpruned, not resolved: a module MVS drops (losing
// its selection group) still needs an AugmentedModule so Explain can
// answer why it was dropped and who originally depended on it. Its
// IsUsed() correctly reports false, since it picks up no Dependants from
// the resolved-graph walk below.
func Augment(resolved, unpruned, raw map[bzlmodule.ModuleKey]*bzlmodule.Module, overrides map[string]bzlmodule.Override) map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule {
	out := make(map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, len(unpruned))

	for key, m := range unpruned {
		out[key] = &bzlmodule.AugmentedModule{
			Module:     *m,
			UnusedDeps: bzlmodule.NewBiMap[string, bzlmodule.ModuleKey](),
			DepReasons: make(map[string]bzlmodule.ResolutionReason),
			Loaded:     true,
		}
	}

	// Dependants: reverse edges over the resolved graph's rewritten Deps
	// only, so a pruned module's Dependants stays empty even though it has
	// an AugmentedModule entry.
	for key, m := range resolved {
		for _, target := range m.Deps {
			if dep, ok := out[target]; ok {
				dep.Dependants = append(dep.Dependants, key)
			}
		}
	}

	// OriginalDependants: reverse edges over raw's unrewritten Deps, so a
	// module pruned away by selection still shows who originally asked
	// for it.
	for key, m := range raw {
		for _, target := range m.OriginalDeps {
			if dep, ok := out[target]; ok {
				dep.OriginalDependants = append(dep.OriginalDependants, key)
			}
		}
	}

	// UnusedDeps and DepReasons: compare each resolved module's rewritten
	// Deps against its own raw OriginalDeps. A repo name whose original
	// target didn't survive resolution unchanged gets both: a DepReasons
	// entry classifying what it resolved to instead (or nothing, if the
	// repo name vanished outright), and an UnusedDeps entry recording the
	// originally requested key that lost out.
	for key, m := range resolved {
		aug := out[key]
		rawModule, ok := raw[key]
		if !ok {
			continue
		}
		for _, repoName := range rawModule.DepOrder {
			original := rawModule.OriginalDeps[repoName]
			current, stillPresent := m.Deps[repoName]

			if !stillPresent {
				_ = aug.UnusedDeps.Insert(repoName, original)
				continue
			}
			if current == original {
				aug.DepReasons[repoName] = bzlmodule.ORIGINAL
				continue
			}
			aug.DepReasons[repoName] = resolutionReason(current, overrides)
			_ = aug.UnusedDeps.Insert(repoName, original)
		}
	}

	return out
}

// resolutionReason classifies a rewritten dep edge by consulting the root's
// override table for the target's module name; absent an override, the
// rewrite can only be MVS raising the requested version to its selection
// group's winner.
func resolutionReason(current bzlmodule.ModuleKey, overrides map[string]bzlmodule.Override) bzlmodule.ResolutionReason {
	ov, ok := overrides[current.Name]
	if !ok {
		return bzlmodule.MINIMAL_VERSION_SELECTION
	}
	switch ov.(type) {
	case bzlmodule.SingleVersionOverride:
		return bzlmodule.SINGLE_VERSION_OVERRIDE
	case bzlmodule.MultipleVersionOverride:
		return bzlmodule.MULTIPLE_VERSION_OVERRIDE
	case bzlmodule.ArchiveOverride:
		return bzlmodule.ARCHIVE_OVERRIDE
	case bzlmodule.GitOverride:
		return bzlmodule.GIT_OVERRIDE
	case bzlmodule.LocalPathOverride:
		return bzlmodule.LOCAL_PATH_OVERRIDE
	default:
		return bzlmodule.MINIMAL_VERSION_SELECTION
	}
}
