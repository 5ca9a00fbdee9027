package selection

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/version"
)

// Run executes module selection (Minimal Version Selection) directly over
// a bzlmodule dependency graph.
//
// This implements Bazel's Selection.run() from Selection.java lines
// 266-353: https://github.com/bazelbuild/bazel/blob/master/src/main/java/com/google/devtools/build/lib/bazel/bzlmod/Selection.java#L266
//
// 1. Compute allowed version sets for multiple-version overrides.
// 2. Compute selection groups for each module.
// 3. Select the highest version for each selection group.
// 4. Enumerate possible resolution strategies (max_compatibility_level
//    ambiguity produces more than one).
// 5. Walk the graph from root with each strategy until one succeeds.
func Run(graph *DepGraph, overrides map[string]bzlmodule.Override) (*Result, error) {
	allowedVersionSets, err := computeAllowedVersionSets(overrides, graph)
	if err != nil {
		return nil, err
	}

	// Reference: Selection.java lines 276-283.
	selectionGroups := make(map[bzlmodule.ModuleKey]SelectionGroup, len(graph.Modules))
	for key, module := range graph.Modules {
		selectionGroups[key] = computeSelectionGroup(key, module, allowedVersionSets)
	}

	// Select the highest version within each group.
	// Reference: Selection.java lines 285-291.
	selectedVersions := make(map[SelectionGroup]version.Version, len(selectionGroups))
	for key, group := range selectionGroups {
		existing, ok := selectedVersions[group]
		if !ok || key.Version.Compare(existing) > 0 {
			selectedVersions[group] = key.Version
		}
	}

	// Reference: Selection.java lines 249-264 (enumerateStrategies).
	strategies := enumerateStrategies(graph, selectionGroups, selectedVersions)

	// Reference: Selection.java lines 317-353, 397-403. Try each strategy
	// until one succeeds; otherwise surface the first strategy's error.
	var firstErr error
	for _, strategy := range strategies {
		result, err := tryStrategy(graph, overrides, selectionGroups, strategy)
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// depRef is one rewritable dependency edge out of a module: a local repo
// name, the target it currently points at, and the max_compatibility_level
// ceiling (-1 if unset) governing what it's allowed to be rewritten to.
type depRef struct {
	repoName  string
	target    bzlmodule.ModuleKey
	maxCompat int
}

// moduleDeps returns m's regular deps in declaration order.
func moduleDeps(m *bzlmodule.Module) []depRef {
	refs := make([]depRef, 0, len(m.DepOrder))
	for _, repoName := range m.DepOrder {
		target, ok := m.Deps[repoName]
		if !ok {
			continue
		}
		refs = append(refs, depRef{repoName: repoName, target: target, maxCompat: maxCompatOf(m, repoName)})
	}
	return refs
}

// moduleNodepDeps returns m's nodep deps, sorted by repo name for
// deterministic iteration (unlike Deps, NodepDeps carries no declaration
// order field: it plays no role in the output's dep ordering).
func moduleNodepDeps(m *bzlmodule.Module) []depRef {
	if len(m.NodepDeps) == 0 {
		return nil
	}
	names := make([]string, 0, len(m.NodepDeps))
	for repoName := range m.NodepDeps {
		names = append(names, repoName)
	}
	sort.Strings(names)
	refs := make([]depRef, 0, len(names))
	for _, repoName := range names {
		refs = append(refs, depRef{repoName: repoName, target: m.NodepDeps[repoName], maxCompat: maxCompatOf(m, repoName)})
	}
	return refs
}

func maxCompatOf(m *bzlmodule.Module, repoName string) int {
	if v, ok := m.DepMaxCompatibilityLevel[repoName]; ok {
		return v
	}
	return -1
}

// tryStrategy attempts one resolution strategy, returning the resolved and
// unpruned graphs on success.
func tryStrategy(
	graph *DepGraph,
	overrides map[string]bzlmodule.Override,
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup,
	strategy resolutionStrategy,
) (*Result, error) {
	// Phase 1: walk with nodep deps included, for validation only — the
	// result is discarded, but a max_compatibility_level or
	// multiple_version_override violation reachable only via a nodep edge
	// must still fail the strategy.
	phase1 := &depGraphWalker{oldGraph: graph, overrides: overrides, selectionGroups: selectionGroups, ignoreNodepDeps: false}
	if _, _, err := phase1.walk(strategy); err != nil {
		return nil, err
	}

	// Phase 2: walk without nodep deps, for final pruning, and validate
	// the duplicate-dep check scoped only to the resolved, reachable graph.
	phase2 := &depGraphWalker{oldGraph: graph, overrides: overrides, selectionGroups: selectionGroups, ignoreNodepDeps: true, checkDuplicates: true}
	resolvedGraph, bfsOrder, err := phase2.walk(strategy)
	if err != nil {
		return nil, err
	}

	unprunedGraph := make(map[bzlmodule.ModuleKey]*bzlmodule.Module, len(graph.Modules))
	for key, module := range graph.Modules {
		unprunedGraph[key] = rewriteModule(key, module, strategy)
	}

	return &Result{ResolvedGraph: resolvedGraph, UnprunedGraph: unprunedGraph, BFSOrder: bfsOrder}, nil
}

// rewriteModule clones module and overlays Deps/NodepDeps with the
// versions strategy resolves each of its dep edges to, leaving every
// other field (OriginalDeps, extensions, registries, ...) untouched.
func rewriteModule(key bzlmodule.ModuleKey, module *bzlmodule.Module, strategy resolutionStrategy) *bzlmodule.Module {
	clone := module.Clone()
	clone.Key = key

	newDeps := make(map[string]bzlmodule.ModuleKey, len(module.Deps))
	for _, ref := range moduleDeps(module) {
		newDeps[ref.repoName] = bzlmodule.ModuleKey{Name: ref.target.Name, Version: strategy(ref.target, ref.maxCompat)}
	}
	clone.Deps = newDeps

	if len(module.NodepDeps) > 0 {
		newNodep := make(map[string]bzlmodule.ModuleKey, len(module.NodepDeps))
		for _, ref := range moduleNodepDeps(module) {
			newNodep[ref.repoName] = bzlmodule.ModuleKey{Name: ref.target.Name, Version: strategy(ref.target, ref.maxCompat)}
		}
		clone.NodepDeps = newNodep
	}
	return clone
}

// computeAllowedVersionSets maps (moduleName, compatLevel) to the sorted
// set of versions a multiple_version_override allows.
//
// Reference: Selection.java lines 117-152.
func computeAllowedVersionSets(overrides map[string]bzlmodule.Override, graph *DepGraph) (map[moduleNameAndCompatLevel][]version.Version, error) {
	result := make(map[moduleNameAndCompatLevel][]version.Version)

	for moduleName, override := range overrides {
		mvo, ok := override.(bzlmodule.MultipleVersionOverride)
		if !ok {
			continue
		}
		for _, allowedVersion := range mvo.Versions {
			v, err := version.Parse(allowedVersion)
			if err != nil {
				return nil, &SelectionError{Code: "VERSION_RESOLUTION_ERROR", Message: fmt.Sprintf(
					"multiple_version_override for module %s names version %q: %v", moduleName, allowedVersion, err)}
			}
			key := bzlmodule.ModuleKey{Name: moduleName, Version: v}
			module, ok := graph.Modules[key]
			if !ok {
				return nil, &SelectionError{Code: "VERSION_RESOLUTION_ERROR", Message: fmt.Sprintf(
					"multiple_version_override for module %s contains version %s, but it doesn't exist in the dependency graph",
					moduleName, allowedVersion)}
			}
			nameAndCompat := moduleNameAndCompatLevel{moduleName: moduleName, compatLevel: module.CompatibilityLevel}
			result[nameAndCompat] = append(result[nameAndCompat], v)
		}
	}

	for k := range result {
		slices.SortFunc(result[k], func(a, b version.Version) int { return a.Compare(b) })
	}
	return result, nil
}

type moduleNameAndCompatLevel struct {
	moduleName  string
	compatLevel int
}

// computeSelectionGroup computes the SelectionGroup for one module.
//
// Reference: Selection.java lines 154-180 — "If the module has a
// multiple-version override, information in there will be used to compute
// its targetAllowedVersion."
func computeSelectionGroup(key bzlmodule.ModuleKey, module *bzlmodule.Module, allowedVersionSets map[moduleNameAndCompatLevel][]version.Version) SelectionGroup {
	nameAndCompat := moduleNameAndCompatLevel{moduleName: key.Name, compatLevel: module.CompatibilityLevel}

	allowedVersions, hasOverride := allowedVersionSets[nameAndCompat]
	if !hasOverride {
		return SelectionGroup{ModuleName: key.Name, CompatLevel: module.CompatibilityLevel}
	}

	// Ceiling: the lowest allowed version no lower than this module's own.
	// Reference: Selection.java lines 174-179.
	var target string
	for _, av := range allowedVersions {
		if av.Compare(key.Version) >= 0 {
			target = av.String()
			break
		}
	}
	return SelectionGroup{ModuleName: key.Name, CompatLevel: module.CompatibilityLevel, TargetAllowedVersion: target}
}

// depGraphWalker walks the graph from the root, collecting reachable
// modules and rewriting their dep edges via a resolution strategy.
//
// Reference: Selection.java lines 355-479, DepGraphWalker class.
type depGraphWalker struct {
	oldGraph        *DepGraph
	overrides       map[string]bzlmodule.Override
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup
	// ignoreNodepDeps excludes nodep deps from traversal (phase 2:
	// a module only reachable via a nodep edge is pruned away).
	ignoreNodepDeps bool
	// checkDuplicates gates the duplicate-dep validation; only phase 2's
	// reachable walk runs it (spec's §4.3.4 scoping), so a module MVS has
	// already dropped from its own selection group can't abort the whole
	// resolution over a now-irrelevant collision of its own.
	checkDuplicates bool
}

// walk traverses the graph from root, building a new graph of only
// reachable modules with their deps rewritten by strategy.
//
// Reference: Selection.java lines 374-408.
func (w *depGraphWalker) walk(strategy resolutionStrategy) (map[bzlmodule.ModuleKey]*bzlmodule.Module, []bzlmodule.ModuleKey, error) {
	moduleByName := make(map[string]existingModule)
	newGraph := make(map[bzlmodule.ModuleKey]*bzlmodule.Module)
	known := map[bzlmodule.ModuleKey]bool{w.oldGraph.RootKey: true}
	var bfsOrder []bzlmodule.ModuleKey

	type queueItem struct {
		key       bzlmodule.ModuleKey
		dependent *bzlmodule.ModuleKey
	}
	queue := []queueItem{{key: w.oldGraph.RootKey}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		oldModule := w.oldGraph.Modules[item.key]
		if oldModule == nil {
			continue
		}

		deps := moduleDeps(oldModule)
		for _, ref := range deps {
			if err := w.checkMaxCompatibility(item.key, ref, strategy); err != nil {
				return nil, nil, err
			}
		}
		var nodepDeps []depRef
		if !w.ignoreNodepDeps {
			nodepDeps = moduleNodepDeps(oldModule)
			for _, ref := range nodepDeps {
				if err := w.checkMaxCompatibility(item.key, ref, strategy); err != nil {
					return nil, nil, err
				}
			}
		}

		module := rewriteModule(item.key, oldModule, strategy)
		if w.ignoreNodepDeps {
			module.NodepDeps = nil
		}

		if err := w.visit(item.key, module, item.dependent, moduleByName); err != nil {
			return nil, nil, err
		}
		if w.checkDuplicates {
			if err := checkDuplicateDeps(item.key, module.Deps); err != nil {
				return nil, nil, err
			}
		}

		for _, ref := range deps {
			depKey := bzlmodule.ModuleKey{Name: ref.target.Name, Version: strategy(ref.target, ref.maxCompat)}
			if !known[depKey] {
				known[depKey] = true
				key := item.key
				queue = append(queue, queueItem{key: depKey, dependent: &key})
			}
		}
		if !w.ignoreNodepDeps {
			for _, ref := range nodepDeps {
				depKey := bzlmodule.ModuleKey{Name: ref.target.Name, Version: strategy(ref.target, ref.maxCompat)}
				if !known[depKey] {
					known[depKey] = true
					key := item.key
					queue = append(queue, queueItem{key: depKey, dependent: &key})
				}
			}
		}

		newGraph[item.key] = module
		bfsOrder = append(bfsOrder, item.key)
	}

	return newGraph, bfsOrder, nil
}

// checkMaxCompatibility enforces that a dep resolved by strategy doesn't
// land on a module whose compatibility_level exceeds the dep's own
// max_compatibility_level ceiling.
func (w *depGraphWalker) checkMaxCompatibility(owner bzlmodule.ModuleKey, ref depRef, strategy resolutionStrategy) error {
	if ref.maxCompat < 0 {
		return nil
	}
	resolvedVersion := strategy(ref.target, ref.maxCompat)
	resolvedKey := bzlmodule.ModuleKey{Name: ref.target.Name, Version: resolvedVersion}
	resolvedModule, ok := w.oldGraph.Modules[resolvedKey]
	if !ok || resolvedModule.CompatibilityLevel <= ref.maxCompat {
		return nil
	}
	return &SelectionError{Code: "VERSION_RESOLUTION_ERROR", Message: fmt.Sprintf(
		"%v depends on %s with max_compatibility_level %d, but %s@%s has compatibility_level %d which is higher",
		owner, ref.target.Name, ref.maxCompat, ref.target.Name, resolvedVersion, resolvedModule.CompatibilityLevel)}
}

// existingModule tracks a module name's resolved key for conflict
// detection as the walk proceeds.
type existingModule struct {
	key         bzlmodule.ModuleKey
	compatLevel int
	dependent   *bzlmodule.ModuleKey
}

// keyRef formats a dependent module key, rendering "<root>" for nil (the
// root module has no dependent of its own).
func keyRef(k *bzlmodule.ModuleKey) string {
	if k == nil {
		return "<root>"
	}
	return k.String()
}

// visit checks the two conflicts Selection.java's walk enforces:
// a multiple_version_override target that isn't an allowed version, and
// two differently-compatibility-leveled versions of the same module both
// surviving into the reachable graph.
//
// Reference: Selection.java lines 410-472.
func (w *depGraphWalker) visit(key bzlmodule.ModuleKey, module *bzlmodule.Module, from *bzlmodule.ModuleKey, moduleByName map[string]existingModule) error {
	if override, ok := w.overrides[key.Name].(bzlmodule.MultipleVersionOverride); ok {
		group := w.selectionGroups[key]
		if group.TargetAllowedVersion == "" {
			return &SelectionError{Code: "VERSION_RESOLUTION_ERROR", Message: fmt.Sprintf(
				"%s depends on %v which is not allowed by the multiple_version_override on %s, which allows only %v",
				keyRef(from), key, key.Name, override.Versions)}
		}
		return nil
	}

	existing, ok := moduleByName[key.Name]
	if ok && existing.compatLevel != module.CompatibilityLevel {
		return &SelectionError{Code: "VERSION_RESOLUTION_ERROR", Message: fmt.Sprintf(
			"%s depends on %v with compatibility level %d, but %s depends on %v with compatibility level %d which is different",
			keyRef(from), key, module.CompatibilityLevel, keyRef(existing.dependent), existing.key, existing.compatLevel)}
	}
	moduleByName[key.Name] = existingModule{key: key, compatLevel: module.CompatibilityLevel, dependent: from}
	return nil
}

// checkDuplicateDeps implements the duplicate-dep check (Open Question 3):
// within one module's rewritten deps, no two distinct local repo names may
// resolve to the same target key, since that is exactly what
// multiple_version_override exists to permit explicitly.
func checkDuplicateDeps(owner bzlmodule.ModuleKey, deps map[string]bzlmodule.ModuleKey) error {
	byTarget := make(map[bzlmodule.ModuleKey][]string, len(deps))
	for repoName, target := range deps {
		byTarget[target] = append(byTarget[target], repoName)
	}
	for target, repoNames := range byTarget {
		if len(repoNames) < 2 {
			continue
		}
		sort.Strings(repoNames)
		return &DuplicateDepError{Module: owner, Target: target, RepoNames: repoNames}
	}
	return nil
}

// resolutionResult is one valid resolution for a dep edge: the version it
// could resolve to and the compatibility level that version belongs to.
//
// Reference: Selection.java lines 182-228.
type resolutionResult struct {
	Version     version.Version
	CompatLevel int
}

// computePossibleResolutionResultsForOneDepSpec computes every version a
// dep edge on moduleName@depVersion (with the given max_compatibility_level
// ceiling) could validly resolve to.
//
// Reference: Selection.java lines 182-228.
func computePossibleResolutionResultsForOneDepSpec(
	moduleName string, depVersion version.Version, maxCompat int,
	graph *DepGraph,
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup,
	selectedVersions map[SelectionGroup]version.Version,
) []resolutionResult {
	targetKey := bzlmodule.ModuleKey{Name: moduleName, Version: depVersion}
	targetModule, ok := graph.Modules[targetKey]
	if !ok {
		return []resolutionResult{{Version: depVersion}}
	}

	minCompatLevel := targetModule.CompatibilityLevel
	maxCompatLevel := minCompatLevel
	if maxCompat >= 0 {
		maxCompatLevel = maxCompat
	}
	if minCompatLevel > maxCompatLevel {
		return nil
	}

	resultsByCompat := make(map[int]version.Version)
	for group, selectedVersion := range selectedVersions {
		if group.ModuleName != moduleName {
			continue
		}
		if group.CompatLevel < minCompatLevel || group.CompatLevel > maxCompatLevel {
			continue
		}
		if selectedVersion.Compare(depVersion) < 0 {
			continue
		}
		existing, hasExisting := resultsByCompat[group.CompatLevel]
		if !hasExisting || selectedVersion.Compare(existing) < 0 {
			resultsByCompat[group.CompatLevel] = selectedVersion
		}
	}

	results := make([]resolutionResult, 0, len(resultsByCompat))
	for compatLevel, v := range resultsByCompat {
		results = append(results, resolutionResult{Version: v, CompatLevel: compatLevel})
	}
	slices.SortFunc(results, func(a, b resolutionResult) int { return cmp.Compare(a.CompatLevel, b.CompatLevel) })
	return results
}

// depSpecKey deduplicates dep edges by target name and version.
type depSpecKey struct {
	Name    string
	Version string
}

// computeAllPossibleResolutions finds every distinct dep edge carrying a
// max_compatibility_level constraint and computes its possible
// resolutions, keeping only the ones with more than one valid outcome.
//
// Reference: Selection.java lines 230-248.
func computeAllPossibleResolutions(
	graph *DepGraph,
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup,
	selectedVersions map[SelectionGroup]version.Version,
) map[depSpecKey][]resolutionResult {
	type seenRef struct {
		name      string
		v         version.Version
		maxCompat int
	}
	seen := make(map[depSpecKey]seenRef)
	for _, module := range graph.Modules {
		for _, ref := range moduleDeps(module) {
			if ref.maxCompat >= 0 {
				k := depSpecKey{Name: ref.target.Name, Version: ref.target.Version.String()}
				if _, ok := seen[k]; !ok {
					seen[k] = seenRef{name: ref.target.Name, v: ref.target.Version, maxCompat: ref.maxCompat}
				}
			}
		}
		for _, ref := range moduleNodepDeps(module) {
			if ref.maxCompat >= 0 {
				k := depSpecKey{Name: ref.target.Name, Version: ref.target.Version.String()}
				if _, ok := seen[k]; !ok {
					seen[k] = seenRef{name: ref.target.Name, v: ref.target.Version, maxCompat: ref.maxCompat}
				}
			}
		}
	}

	result := make(map[depSpecKey][]resolutionResult)
	for k, ref := range seen {
		possible := computePossibleResolutionResultsForOneDepSpec(ref.name, ref.v, ref.maxCompat, graph, selectionGroups, selectedVersions)
		if len(possible) > 1 {
			result[k] = possible
		}
	}
	return result
}

// resolutionStrategy maps a dep edge (its current target and
// max_compatibility_level) to the version it resolves to.
type resolutionStrategy func(target bzlmodule.ModuleKey, maxCompat int) version.Version

// enumerateStrategies generates every resolution strategy implied by the
// cartesian product of dep edges with more than one valid
// max_compatibility_level resolution.
//
// Reference: Selection.java lines 249-264 (enumerateStrategies).
func enumerateStrategies(
	graph *DepGraph,
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup,
	selectedVersions map[SelectionGroup]version.Version,
) []resolutionStrategy {
	allPossible := computeAllPossibleResolutions(graph, selectionGroups, selectedVersions)
	if len(allPossible) == 0 {
		return []resolutionStrategy{makeStrategy(selectionGroups, selectedVersions, nil)}
	}

	keys := make([]depSpecKey, 0, len(allPossible))
	for k := range allPossible {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b depSpecKey) int {
		if a.Name != b.Name {
			return cmp.Compare(a.Name, b.Name)
		}
		return cmp.Compare(a.Version, b.Version)
	})

	combinations := cartesianProduct(keys, allPossible)
	strategies := make([]resolutionStrategy, len(combinations))
	for i, combo := range combinations {
		strategies[i] = makeStrategy(selectionGroups, selectedVersions, combo)
	}
	return strategies
}

// makeStrategy builds a resolutionStrategy: combination overrides take
// precedence over the default (highest-selected-version) resolution.
func makeStrategy(
	selectionGroups map[bzlmodule.ModuleKey]SelectionGroup,
	selectedVersions map[SelectionGroup]version.Version,
	combination map[depSpecKey]version.Version,
) resolutionStrategy {
	return func(target bzlmodule.ModuleKey, maxCompat int) version.Version {
		if combination != nil {
			if v, ok := combination[depSpecKey{Name: target.Name, Version: target.Version.String()}]; ok {
				return v
			}
		}
		group, ok := selectionGroups[target]
		if !ok {
			return target.Version
		}
		return selectedVersions[group]
	}
}

// cartesianProduct enumerates every complete assignment of versions to
// the given dep-edge keys, one combination per element of the product.
func cartesianProduct(keys []depSpecKey, allPossible map[depSpecKey][]resolutionResult) []map[depSpecKey]version.Version {
	result := []map[depSpecKey]version.Version{{}}
	for _, key := range keys {
		possibilities := allPossible[key]
		var next []map[depSpecKey]version.Version
		for _, existing := range result {
			for _, poss := range possibilities {
				combo := make(map[depSpecKey]version.Version, len(existing)+1)
				for k, v := range existing {
					combo[k] = v
				}
				combo[key] = poss.Version
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}
