package discovery

import (
	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/version"
)

// rewrite applies the root-collapse and override rules to one raw
// dependency key, as parsed straight off a bazel_dep. If dep names the
// root module itself, its version collapses to the root's own (so the
// root always appears exactly once even through a dependency cycle back
// to it). Otherwise, an override for dep.Name substitutes its version:
// a NonRegistryOverride assigns the empty version, a SingleVersionOverride
// with an explicit version pins to it; anything else leaves dep alone.
func rewrite(dep bzlmodule.ModuleKey, rootName string, rootVersion version.Version, overrides map[string]bzlmodule.Override) bzlmodule.ModuleKey {
	if dep.Name == rootName {
		return bzlmodule.ModuleKey{Name: dep.Name, Version: rootVersion}
	}
	ov, ok := overrides[dep.Name]
	if !ok {
		return dep
	}
	if bzlmodule.IsNonRegistry(ov) {
		return bzlmodule.ModuleKey{Name: dep.Name, Version: version.Empty()}
	}
	if sv, ok := ov.(bzlmodule.SingleVersionOverride); ok && sv.Version != "" {
		if v, err := version.Parse(sv.Version); err == nil {
			return bzlmodule.ModuleKey{Name: dep.Name, Version: v}
		}
	}
	return dep
}
