package selection

import (
	"github.com/bazeldeps/resolve/bzlmodule"
)

// RunBzlmodule runs module selection over a raw bzlmodule dep graph and
// splits the result into the resolved (reachable-pruned) and unpruned
// graphs callers expect.
func RunBzlmodule(raw map[bzlmodule.ModuleKey]*bzlmodule.Module, rootKey bzlmodule.ModuleKey, overrides map[string]bzlmodule.Override) (resolved, unpruned map[bzlmodule.ModuleKey]*bzlmodule.Module, err error) {
	result, err := Run(&DepGraph{Modules: raw, RootKey: rootKey}, overrides)
	if err != nil {
		return nil, nil, err
	}
	return result.ResolvedGraph, result.UnprunedGraph, nil
}
