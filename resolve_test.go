package resolve

import (
	"context"
	"testing"

	"github.com/bazeldeps/resolve/registry"
)

// memRegistry is an in-memory registry.Registry backed by a fixed set of
// MODULE.bazel contents, keyed by "name@version". It never needs metadata
// or source recipes for these tests, only GetModuleFile.
type memRegistry struct {
	files map[string]string
}

func (r *memRegistry) BaseURL() string { return "mem://test" }

func (r *memRegistry) GetMetadata(ctx context.Context, name string) (*registry.Metadata, error) {
	return &registry.Metadata{}, nil
}

func (r *memRegistry) GetSource(ctx context.Context, name, version string) (*registry.Source, error) {
	return &registry.Source{}, nil
}

func (r *memRegistry) GetRepoSpec(ctx context.Context, name, version, canonicalName string) (*registry.RepoSpec, error) {
	return &registry.RepoSpec{RuleClassName: "http_archive", Attributes: map[string]any{"name": canonicalName}}, nil
}

func (r *memRegistry) GetModuleFile(ctx context.Context, name, version string) ([]byte, error) {
	content, ok := r.files[name+"@"+version]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return []byte(content), nil
}

var _ registry.Registry = (*memRegistry)(nil)

func TestResolveContent_SimpleDiamond(t *testing.T) {
	reg := &memRegistry{files: map[string]string{
		"b@1.0": `module(name = "b", version = "1.0")
bazel_dep(name = "d", version = "1.0")`,
		"c@2.0": `module(name = "c", version = "2.0")
bazel_dep(name = "d", version = "2.0")`,
		"d@1.0": `module(name = "d", version = "1.0", compatibility_level = 1)`,
		"d@2.0": `module(name = "d", version = "2.0", compatibility_level = 1)`,
	}}

	root := `module(name = "a", version = "0.1")
bazel_dep(name = "b", version = "1.0")
bazel_dep(name = "c", version = "2.0")`

	result, err := ResolveContent(context.Background(), "MODULE.bazel", []byte(root), withTestRegistry(reg))
	if err != nil {
		t.Fatalf("ResolveContent: %v", err)
	}

	names := map[string]string{}
	for k := range result.Graph {
		names[k.Name] = k.Version.String()
	}
	if names["d"] != "2.0" {
		t.Errorf("d resolved to %q, want 2.0", names["d"])
	}
	if _, ok := names["c"]; !ok {
		t.Error("expected c in resolved graph")
	}
}

func TestResolveContent_InvalidModuleFile(t *testing.T) {
	_, err := ResolveContent(context.Background(), "MODULE.bazel", []byte("not valid starlark((("), withTestRegistry(&memRegistry{}))
	if err == nil {
		t.Fatal("expected an error for invalid MODULE.bazel content")
	}
	if _, ok := err.(*InvalidModuleFileError); !ok {
		t.Errorf("expected *InvalidModuleFileError, got %T: %v", err, err)
	}
}

func TestResolveContent_NotFoundSurfacesAsRegistryIO(t *testing.T) {
	root := `module(name = "a", version = "0.1")
bazel_dep(name = "missing", version = "1.0")`

	_, err := ResolveContent(context.Background(), "MODULE.bazel", []byte(root), withTestRegistry(&memRegistry{}))
	if err == nil {
		t.Fatal("expected an error for an unfetchable dependency")
	}
	if _, ok := err.(*RegistryIOError); !ok {
		t.Errorf("expected *RegistryIOError, got %T: %v", err, err)
	}
}

// withTestRegistry swaps in reg instead of the default BCR chain by
// setting config.testRegistry, which buildRegistry returns as is instead
// of building a registry.Chain from cfg.registries. Tests exercise the
// facade through an Option rather than a constructor
// parameter; this keeps Resolve's public signature the same one a real
// caller uses.
func withTestRegistry(reg registry.Registry) Option {
	return func(c *config) error {
		c.testRegistry = reg
		return nil
	}
}
