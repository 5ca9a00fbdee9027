// Package selection implements Bazel's module version selection algorithm
// (Minimal Version Selection with compatibility-level and override
// extensions), operating directly on the bzlmodule domain model rather
// than a private intermediate graph representation.
//
// Reference implementations:
//   - Selection.java: https://github.com/bazelbuild/bazel/blob/master/src/main/java/com/google/devtools/build/lib/bazel/bzlmod/Selection.java
//   - InterimModule.java: https://github.com/bazelbuild/bazel/blob/master/src/main/java/com/google/devtools/build/lib/bazel/bzlmod/InterimModule.java
package selection

import (
	"fmt"

	"github.com/bazeldeps/resolve/bzlmodule"
)

// DepGraph is the input to Run: every module Discovery reached, keyed by
// its raw (pre-rewrite) key, plus the root's own key.
type DepGraph struct {
	Modules map[bzlmodule.ModuleKey]*bzlmodule.Module
	RootKey bzlmodule.ModuleKey
}

// Result is the output of Run.
type Result struct {
	// ResolvedGraph is the final dep graph, reachable-pruned and
	// validated, with Deps rewritten to MVS winners.
	ResolvedGraph map[bzlmodule.ModuleKey]*bzlmodule.Module

	// UnprunedGraph holds every module from the input graph with Deps
	// rewritten the same way, including modules that lost their
	// selection group and never appear in ResolvedGraph.
	UnprunedGraph map[bzlmodule.ModuleKey]*bzlmodule.Module

	// BFSOrder is ResolvedGraph's breadth-first discovery order.
	BFSOrder []bzlmodule.ModuleKey
}

// SelectionGroup identifies a group of module versions that compete for
// selection; one version is selected per group.
//
// Reference: Selection.java lines 102-107 —
// "During selection, a version is selected for each distinct 'selection
// group'. record SelectionGroup(String moduleName, int compatibilityLevel,
// Version targetAllowedVersion)"
type SelectionGroup struct {
	ModuleName  string
	CompatLevel int
	// TargetAllowedVersion is only set for modules with a
	// multiple_version_override. It is empty when no override applies, and
	// also under an override when no allowed version is at or above the
	// module's version.
	TargetAllowedVersion string
}

// SelectionError reports a failure of the MVS algorithm itself: a bad
// multiple_version_override, a compatibility-level conflict, or a
// max_compatibility_level violation. A duplicate-dep collision within one
// module is reported as DuplicateDepError instead.
type SelectionError struct {
	Code    string
	Message string
}

func (e *SelectionError) Error() string { return e.Message }

// Override is re-exported so callers only import bzlmodule's variants,
// not a parallel set defined by this package.
type Override = bzlmodule.Override

// DuplicateDepError reports two local repo names within one module
// resolving to the same dep key after MVS, a collision
// multiple_version_override exists to let a caller resolve explicitly.
type DuplicateDepError struct {
	Module    bzlmodule.ModuleKey
	Target    bzlmodule.ModuleKey
	RepoNames []string
}

func (e *DuplicateDepError) Error() string {
	return fmt.Sprintf("module %s: repo names %v all resolve to %s; use multiple_version_override to allow coexisting versions", e.Module, e.RepoNames, e.Target)
}
