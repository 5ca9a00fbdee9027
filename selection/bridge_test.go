package selection

import (
	"testing"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/version"
)

func key(name, v string) bzlmodule.ModuleKey {
	return bzlmodule.ModuleKey{Name: name, Version: version.MustParse(v)}
}

func depModule(k bzlmodule.ModuleKey, compat int, deps map[string]string) *bzlmodule.Module {
	m := &bzlmodule.Module{
		Key:                k,
		Name:                k.Name,
		Version:             k.Version,
		CompatibilityLevel:  compat,
		Deps:                make(map[string]bzlmodule.ModuleKey),
		OriginalDeps:        make(map[string]bzlmodule.ModuleKey),
		NodepDeps:           make(map[string]bzlmodule.ModuleKey),
	}
	for repoName, depKeyStr := range deps {
		// depKeyStr is "name@version"
		var name, ver string
		for i := len(depKeyStr) - 1; i >= 0; i-- {
			if depKeyStr[i] == '@' {
				name, ver = depKeyStr[:i], depKeyStr[i+1:]
				break
			}
		}
		dk := key(name, ver)
		m.Deps[repoName] = dk
		m.OriginalDeps[repoName] = dk
		m.DepOrder = append(m.DepOrder, repoName)
	}
	return m
}

// TestRunBzlmodule_Diamond covers the classic diamond dependency: two
// modules at different versions both depend on a third, and MVS picks the
// higher version for everyone.
func TestRunBzlmodule_Diamond(t *testing.T) {
	root := bzlmodule.Root
	raw := map[bzlmodule.ModuleKey]*bzlmodule.Module{
		root: depModule(root, 0, map[string]string{"B": "B@1.0", "C": "C@2.0"}),
		key("B", "1.0"): depModule(key("B", "1.0"), 0, map[string]string{"D": "D@1.0"}),
		key("C", "2.0"): depModule(key("C", "2.0"), 0, map[string]string{"D": "D@2.0"}),
		key("D", "1.0"): depModule(key("D", "1.0"), 1, nil),
		key("D", "2.0"): depModule(key("D", "2.0"), 1, nil),
	}

	resolved, unpruned, err := RunBzlmodule(raw, root, nil)
	if err != nil {
		t.Fatalf("RunBzlmodule() error = %v", err)
	}

	if _, ok := resolved[key("D", "2.0")]; !ok {
		t.Errorf("expected D@2.0 in resolved graph")
	}
	if _, ok := resolved[key("D", "1.0")]; ok {
		t.Errorf("expected D@1.0 to be dropped from resolved graph")
	}

	bMod := resolved[key("B", "1.0")]
	if bMod == nil {
		t.Fatal("expected B@1.0 in resolved graph")
	}
	if bMod.Deps["D"] != key("D", "2.0") {
		t.Errorf("expected B's dep on D rewritten to 2.0, got %v", bMod.Deps["D"])
	}

	if len(unpruned) < len(resolved) {
		t.Errorf("unpruned graph should be a superset of resolved")
	}
}

// TestRunBzlmodule_FurtherRemoval covers a module that was the sole winner
// of its own selection group but is still dropped once it becomes
// unreachable in the resolved graph.
func TestRunBzlmodule_FurtherRemoval(t *testing.T) {
	root := bzlmodule.Root
	raw := map[bzlmodule.ModuleKey]*bzlmodule.Module{
		root:             depModule(root, 0, map[string]string{"B": "B@1.0", "C": "C@2.0"}),
		key("B", "1.0"):  depModule(key("B", "1.0"), 0, map[string]string{"D": "D@1.0"}),
		key("C", "2.0"):  depModule(key("C", "2.0"), 0, map[string]string{"D": "D@2.0"}),
		key("D", "1.0"):  depModule(key("D", "1.0"), 1, map[string]string{"E": "E@1.0"}),
		key("D", "2.0"):  depModule(key("D", "2.0"), 1, nil),
		key("E", "1.0"):  depModule(key("E", "1.0"), 0, nil),
	}

	resolved, _, err := RunBzlmodule(raw, root, nil)
	if err != nil {
		t.Fatalf("RunBzlmodule() error = %v", err)
	}

	if _, ok := resolved[key("E", "1.0")]; ok {
		t.Errorf("expected E@1.0 to be absent even though it was the sole version of E")
	}
}

// TestRunBzlmodule_DuplicateDepOnPrunedModuleIgnored covers the scoping fix:
// D@1.0 has a duplicate-dep collision of its own (two repo names both
// pointing at G@1.0), but D@1.0 itself loses its selection group to
// D@2.0 and never appears in the resolved, reachable graph. Its stale
// collision must not abort resolution.
func TestRunBzlmodule_DuplicateDepOnPrunedModuleIgnored(t *testing.T) {
	root := bzlmodule.Root
	raw := map[bzlmodule.ModuleKey]*bzlmodule.Module{
		root:            depModule(root, 0, map[string]string{"B": "B@1.0", "C": "C@2.0"}),
		key("B", "1.0"): depModule(key("B", "1.0"), 0, map[string]string{"D": "D@1.0"}),
		key("C", "2.0"): depModule(key("C", "2.0"), 0, map[string]string{"D": "D@2.0"}),
		key("D", "1.0"): depModule(key("D", "1.0"), 1, map[string]string{"g_one": "G@1.0", "g_two": "G@1.0"}),
		key("D", "2.0"): depModule(key("D", "2.0"), 1, nil),
		key("G", "1.0"): depModule(key("G", "1.0"), 0, nil),
	}

	resolved, _, err := RunBzlmodule(raw, root, nil)
	if err != nil {
		t.Fatalf("RunBzlmodule() error = %v, want nil (D@1.0's collision should be pruned away)", err)
	}
	if _, ok := resolved[key("D", "1.0")]; ok {
		t.Error("expected D@1.0 to be dropped from resolved graph")
	}
	if _, ok := resolved[key("D", "2.0")]; !ok {
		t.Error("expected D@2.0 in resolved graph")
	}
}

// TestRunBzlmodule_DuplicateDepSameTarget covers the pruning-walk duplicate
// check: root declares F twice under different repo names, and both
// survive selection pointed at the same key.
func TestRunBzlmodule_DuplicateDepSameTarget(t *testing.T) {
	root := bzlmodule.Root
	raw := map[bzlmodule.ModuleKey]*bzlmodule.Module{
		root:            depModule(root, 0, map[string]string{"f_one": "F@1.0", "f_two": "F@1.0"}),
		key("F", "1.0"): depModule(key("F", "1.0"), 0, nil),
	}

	_, _, err := RunBzlmodule(raw, root, nil)
	if err == nil {
		t.Fatal("expected duplicate-dep error")
	}
	dde, ok := err.(*DuplicateDepError)
	if !ok {
		t.Fatalf("error %v is not a *DuplicateDepError", err)
	}
	if dde.Target != key("F", "1.0") {
		t.Errorf("Target = %v, want F@1.0", dde.Target)
	}
}
