package inspect

import (
	"fmt"

	"github.com/bazeldeps/resolve/bzlmodule"
)

// DependencyChain is one path of resolved-graph edges from the root to a
// target module.
type DependencyChain struct {
	Path []bzlmodule.ModuleKey
}

// String renders the chain as "a@1 -> b@2 -> c@3".
func (c DependencyChain) String() string {
	s := ""
	for i, k := range c.Path {
		if i > 0 {
			s += " -> "
		}
		s += k.String()
	}
	return s
}

// Explanation is a diagnostic summary of why a module sits at its current
// version: every path that reaches it from the root, plus the reason its
// own dep edges point where they do.
type Explanation struct {
	Key              bzlmodule.ModuleKey
	DependencyChains []DependencyChain
	DepReasons       map[string]bzlmodule.ResolutionReason
}

// Explain answers "why is this module at this version": it walks every
// resolved-graph path from the root to key and reports the resolution
// reason recorded for each of key's own deps.
func Explain(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, key bzlmodule.ModuleKey) (*Explanation, error) {
	aug, ok := graph[key]
	if !ok {
		return nil, fmt.Errorf("inspect: %s not present in resolved graph", key)
	}

	paths := allPaths(graph, bzlmodule.Root, key)
	chains := make([]DependencyChain, len(paths))
	for i, p := range paths {
		chains[i] = DependencyChain{Path: p}
	}

	return &Explanation{
		Key:              key,
		DependencyChains: chains,
		DepReasons:       aug.DepReasons,
	}, nil
}

// allPaths enumerates every simple path from -> to over the resolved
// graph's Deps edges via recursive DFS.
func allPaths(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, from, to bzlmodule.ModuleKey) [][]bzlmodule.ModuleKey {
	var result [][]bzlmodule.ModuleKey
	visited := make(map[bzlmodule.ModuleKey]bool)
	walk(graph, from, to, []bzlmodule.ModuleKey{from}, visited, &result)
	return result
}

func walk(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, current, target bzlmodule.ModuleKey, path []bzlmodule.ModuleKey, visited map[bzlmodule.ModuleKey]bool, result *[][]bzlmodule.ModuleKey) {
	if current == target {
		*result = append(*result, append([]bzlmodule.ModuleKey(nil), path...))
		return
	}

	visited[current] = true
	defer delete(visited, current)

	node, ok := graph[current]
	if !ok {
		return
	}
	for _, next := range node.Deps {
		if visited[next] {
			continue
		}
		walk(graph, next, target, append(path, next), visited, result)
	}
}

// UnusedDepNames returns the local repo names of key's original deps that
// were dropped during resolution, in a deterministic (BiMap insertion)
// order.
func UnusedDepNames(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, key bzlmodule.ModuleKey) []string {
	aug, ok := graph[key]
	if !ok || aug.UnusedDeps == nil {
		return nil
	}
	return aug.UnusedDeps.Keys()
}
