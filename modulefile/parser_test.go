package modulefile

import (
	"testing"

	"github.com/bazeldeps/resolve/bzlmodule"
)

func TestParseModuleDecl(t *testing.T) {
	content := []byte(`
module(
    name = "my_module",
    version = "1.2.3",
    compatibility_level = 1,
)

bazel_dep(name = "rules_go", version = "0.50.1")
bazel_dep(name = "other", version = "1.0", repo_name = "custom_name", dev_dependency = True)
`)
	f, err := Parse("MODULE.bazel", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.ModuleName != "my_module" {
		t.Errorf("ModuleName = %q, want my_module", f.ModuleName)
	}
	if f.ModuleVersion != "1.2.3" {
		t.Errorf("ModuleVersion = %q, want 1.2.3", f.ModuleVersion)
	}
	if f.CompatibilityLevel != 1 {
		t.Errorf("CompatibilityLevel = %d, want 1", f.CompatibilityLevel)
	}
	if len(f.Deps) != 2 {
		t.Fatalf("len(Deps) = %d, want 2", len(f.Deps))
	}
	if f.Deps[0].Name != "rules_go" || f.Deps[0].RepoName != "rules_go" {
		t.Errorf("Deps[0] = %+v", f.Deps[0])
	}
	if f.Deps[1].RepoName != "custom_name" || !f.Deps[1].DevDependency {
		t.Errorf("Deps[1] = %+v", f.Deps[1])
	}
}

func TestParseOverrides(t *testing.T) {
	content := []byte(`
single_version_override(module_name = "foo", version = "2.0")
multiple_version_override(module_name = "bar", versions = ["1.0", "2.0"])
local_path_override(module_name = "baz", path = "../baz")
`)
	f, err := Parse("MODULE.bazel", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Overrides) != 3 {
		t.Fatalf("len(Overrides) = %d, want 3", len(f.Overrides))
	}
	sv, ok := f.Overrides["foo"].(bzlmodule.SingleVersionOverride)
	if !ok || sv.Version != "2.0" {
		t.Errorf("Overrides[foo] = %#v", f.Overrides["foo"])
	}
	mv, ok := f.Overrides["bar"].(bzlmodule.MultipleVersionOverride)
	if !ok || len(mv.Versions) != 2 {
		t.Errorf("Overrides[bar] = %#v", f.Overrides["bar"])
	}
	lp, ok := f.Overrides["baz"].(bzlmodule.LocalPathOverride)
	if !ok || lp.Path != "../baz" {
		t.Errorf("Overrides[baz] = %#v", f.Overrides["baz"])
	}
}

func TestParseDuplicateOverrideIsError(t *testing.T) {
	content := []byte(`
single_version_override(module_name = "foo", version = "2.0")
single_version_override(module_name = "foo", version = "3.0")
`)
	if _, err := Parse("MODULE.bazel", content); err == nil {
		t.Error("expected error for duplicate override")
	}
}

func TestParseMultipleVersionOverrideRequiresTwoVersions(t *testing.T) {
	content := []byte(`multiple_version_override(module_name = "foo", versions = ["1.0"])`)
	if _, err := Parse("MODULE.bazel", content); err == nil {
		t.Error("expected error for multiple_version_override with < 2 versions")
	}
}

func TestParseUseExtensionAndTags(t *testing.T) {
	content := []byte(`
go_deps = use_extension("@gazelle//:extensions.bzl", "go_deps")
go_deps.from_file(go_mod = "//:go.mod")
use_repo(go_deps, "com_github_foo_bar", renamed = "com_github_baz")
`)
	f, err := Parse("MODULE.bazel", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Extensions) != 1 {
		t.Fatalf("len(Extensions) = %d, want 1", len(f.Extensions))
	}
	ext := f.Extensions[0]
	if ext.ExtensionName != "go_deps" {
		t.Errorf("ExtensionName = %q, want go_deps", ext.ExtensionName)
	}
	if len(ext.Tags) != 1 || ext.Tags[0].Name != "from_file" {
		t.Errorf("Tags = %+v", ext.Tags)
	}
	if v, ok := ext.Imports.Get("com_github_foo_bar"); !ok || v != "com_github_foo_bar" {
		t.Errorf("Imports.Get(com_github_foo_bar) = (%q, %v)", v, ok)
	}
	if v, ok := ext.Imports.Get("renamed"); !ok || v != "com_github_baz" {
		t.Errorf("Imports.Get(renamed) = (%q, %v)", v, ok)
	}
}
