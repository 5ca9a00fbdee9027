// Package resolve is the top-level facade over Discovery, Selection, and
// Inspection: Resolve parses a root MODULE.bazel file, walks its
// transitive dependency graph against a registry chain, applies Minimal
// Version Selection, and returns a diagnostics-ready augmented graph.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/discovery"
	"github.com/bazeldeps/resolve/inspect"
	"github.com/bazeldeps/resolve/internal/compat"
	"github.com/bazeldeps/resolve/modulefile"
	"github.com/bazeldeps/resolve/registry"
	"github.com/bazeldeps/resolve/selection"
)

// Result is everything a caller needs after a successful resolution: the
// augmented graph keyed by resolved ModuleKey, its deterministic BFS
// order, the unpruned graph (pruned-away losers still attached), and the
// root's own override table.
type Result struct {
	Graph     map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule
	Order     []bzlmodule.ModuleKey
	Unpruned  map[bzlmodule.ModuleKey]*bzlmodule.Module
	Overrides map[string]bzlmodule.Override

	// FieldWarnings lists MODULE.bazel fields discovered anywhere in the
	// graph that require a newer Bazel than cfg.bazelVersion configures.
	// Empty whenever WithBazelVersion was never set, since there is then
	// nothing to check a field's minimum version against.
	FieldWarnings []*compat.FieldWarning
}

// Resolve loads the MODULE.bazel file at rootPath and resolves its full
// transitive dependency graph.
func Resolve(ctx context.Context, rootPath string, opts ...Option) (*Result, error) {
	content, err := os.ReadFile(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve: read %s: %w", rootPath, err)
	}
	return ResolveContent(ctx, rootPath, content, opts...)
}

// ResolveContent resolves a MODULE.bazel file already in memory. path is
// used only for error attribution (InvalidModuleFileError.Path).
func ResolveContent(ctx context.Context, path string, content []byte, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	logger := cfg.log().With("component", "resolve")

	rootFile, err := modulefile.Parse(path, content)
	if err != nil {
		return nil, &InvalidModuleFileError{Path: path, Cause: err}
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	discOpts := discovery.Options{
		Overrides:      rootFile.Overrides,
		IncludeDevDeps: cfg.includeDevDeps,
		BazelVersion:   cfg.bazelVersion,
		LocalReader:    cfg.localReader,
		MaxConcurrency: cfg.maxConcurrency,
	}

	logger.Debug("starting discovery", "root", filepath.Base(path))
	discResult, err := discovery.Run(ctx, rootFile, reg, discOpts)
	if err != nil {
		return nil, classifyDiscoveryError(err)
	}

	resolved, unpruned, err := selection.RunBzlmodule(discResult.Graph, bzlmodule.Root, discResult.Overrides)
	if err != nil {
		return nil, classifySelectionError(err)
	}

	if err := checkYanked(ctx, reg, resolved, cfg, logger); err != nil {
		return nil, err
	}

	augmented := inspect.Augment(resolved, unpruned, discResult.Graph, discResult.Overrides)

	order := make([]bzlmodule.ModuleKey, 0, len(resolved))
	for _, key := range discResult.Order {
		if _, ok := resolved[key]; ok {
			order = append(order, key)
		}
	}

	warnings := fieldWarnings(discResult.Graph, cfg.bazelVersion)
	for _, w := range warnings {
		logger.Warn("MODULE.bazel field unsupported by configured Bazel version", "field", w.Field, "min_version", w.MinVersion, "bazel_version", w.UsedVersion)
	}

	return &Result{
		Graph:         augmented,
		Order:         order,
		Unpruned:      unpruned,
		Overrides:     discResult.Overrides,
		FieldWarnings: warnings,
	}, nil
}

// fieldWarnings checks every field the graph actually uses that
// internal/compat knows a minimum Bazel version for, against bazelVersion.
// Only max_compatibility_level is observable post-parse today (the
// other registered fields live in source.json/bazel_registry.json,
// outside what a MODULE.bazel graph records); each field is reported at
// most once regardless of how many modules use it, since the check
// depends only on bazelVersion and the field name, not on the call site.
func fieldWarnings(graph map[bzlmodule.ModuleKey]*bzlmodule.Module, bazelVersion string) []*compat.FieldWarning {
	if bazelVersion == "" {
		return nil
	}
	for _, m := range graph {
		if len(m.DepMaxCompatibilityLevel) > 0 {
			if w := compat.CheckField(bazelVersion, "max_compatibility_level"); w != nil {
				return []*compat.FieldWarning{w}
			}
			return nil
		}
	}
	return nil
}

// buildRegistry opens a registry.Chain over cfg's registry URLs, wiring in
// the caller's HTTP client, cache, and timeout as registry.ClientOptions.
func buildRegistry(cfg *config) (registry.Registry, error) {
	if cfg.testRegistry != nil {
		return cfg.testRegistry, nil
	}

	var clientOpts []registry.ClientOption
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, registry.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, registry.WithTimeout(cfg.timeout))
	}
	if cfg.cache != nil {
		clientOpts = append(clientOpts, registry.WithCache(cfg.cache))
	}

	chain, err := registry.OpenChain(cfg.registries, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("resolve: opening registries: %w", err)
	}
	return chain, nil
}

// classifyDiscoveryError maps the errors discovery.Run can return onto the
// facade's own taxonomy (§4.5), so callers never need to import discovery
// to branch on failure kind.
func classifyDiscoveryError(err error) error {
	switch e := err.(type) {
	case *discovery.RegistryIOError:
		return &RegistryIOError{Cause: e}
	case *discovery.NotFoundError:
		return &RegistryIOError{Cause: e}
	case *discovery.RepoNameCollisionError:
		return &BadOverrideError{ModuleName: e.Module.Name, Reason: e.Error()}
	default:
		return err
	}
}

func classifySelectionError(err error) error {
	return &VersionResolutionError{Cause: err}
}

// checkYanked applies cfg.yankPolicy to every module in the resolved
// graph. Metadata is read from the same registry chain Discovery used.
// Discovery itself only fetches MODULE.bazel files, so this makes a
// metadata request per resolved non-root module; a module whose metadata
// cannot be read is skipped.
func checkYanked(ctx context.Context, reg registry.Registry, resolved map[bzlmodule.ModuleKey]*bzlmodule.Module, cfg *config, logger interface {
	Warn(msg string, args ...any)
}) error {
	if cfg.yankPolicy == YankIgnore {
		return nil
	}

	for key := range resolved {
		if key.IsRoot() {
			continue
		}
		meta, err := reg.GetMetadata(ctx, key.Name)
		if err != nil {
			continue
		}
		reason, yanked := meta.YankedVersions[key.Version.String()]
		if !yanked {
			continue
		}
		if cfg.yankPolicy == YankError {
			return fmt.Errorf("resolve: %s is yanked: %s", key, reason)
		}
		logger.Warn("resolved module is yanked", "module", key.String(), "reason", reason)
	}
	return nil
}
