// Package bzlmodule is the canonical domain model for Bazel-module
// dependency resolution: module keys, modules, extension usages,
// overrides, and the augmented inspection graph. Every other package
// (modulefile, discovery, selection, inspect) operates on these types
// rather than rolling its own.
package bzlmodule

import (
	"github.com/bazeldeps/resolve/version"
)

// ModuleKey identifies a module by name and version. The distinguished
// Root key has an empty name and an empty version.
type ModuleKey struct {
	Name    string
	Version version.Version
}

// Root is the distinguished key for the root module. Its version is the
// Empty sentinel, not the zero Version value, so it round-trips through
// version.Parse("") the same way any other unversioned key does.
var Root = ModuleKey{Version: version.Empty()}

// IsRoot reports whether k is the distinguished root key.
func (k ModuleKey) IsRoot() bool { return k.Name == "" }

// String renders the key as "name@version", or "<root>" for the root key.
func (k ModuleKey) String() string {
	if k.IsRoot() {
		return "<root>"
	}
	return k.Name + "@" + k.Version.String()
}

// ResolutionReason explains why a dependency edge points where it does.
type ResolutionReason int

const (
	// ORIGINAL means the edge is unchanged from the raw module file.
	ORIGINAL ResolutionReason = iota
	// MINIMAL_VERSION_SELECTION means MVS raised the version.
	MINIMAL_VERSION_SELECTION
	// SINGLE_VERSION_OVERRIDE means a single_version_override rewrote the version.
	SINGLE_VERSION_OVERRIDE
	// MULTIPLE_VERSION_OVERRIDE means a multiple_version_override snapped the version.
	MULTIPLE_VERSION_OVERRIDE
	// ARCHIVE_OVERRIDE means an archive_override replaced the dependency.
	ARCHIVE_OVERRIDE
	// GIT_OVERRIDE means a git_override replaced the dependency.
	GIT_OVERRIDE
	// LOCAL_PATH_OVERRIDE means a local_path_override replaced the dependency.
	LOCAL_PATH_OVERRIDE
)

func (r ResolutionReason) String() string {
	switch r {
	case ORIGINAL:
		return "ORIGINAL"
	case MINIMAL_VERSION_SELECTION:
		return "MINIMAL_VERSION_SELECTION"
	case SINGLE_VERSION_OVERRIDE:
		return "SINGLE_VERSION_OVERRIDE"
	case MULTIPLE_VERSION_OVERRIDE:
		return "MULTIPLE_VERSION_OVERRIDE"
	case ARCHIVE_OVERRIDE:
		return "ARCHIVE_OVERRIDE"
	case GIT_OVERRIDE:
		return "GIT_OVERRIDE"
	case LOCAL_PATH_OVERRIDE:
		return "LOCAL_PATH_OVERRIDE"
	default:
		return "UNKNOWN"
	}
}

// Tag is a single call on a module-extension proxy, e.g. go_sdk.download(...).
type Tag struct {
	Name       string
	Attributes map[string]any
	Location   string
}

// ExtensionUsage is one use_extension(...) clause and its use_repo imports.
type ExtensionUsage struct {
	ExtensionBzlFile string
	ExtensionName    string
	Location         string
	// Imports is a bidirectional map: local repo name <-> exported name.
	Imports *BiMap[string, string]
	Tags    []Tag
	DevDependency bool
	Isolate       bool
}

// Module is an immutable record describing one node of the dependency
// graph, as discovered (and possibly rewritten) from a MODULE.bazel file.
type Module struct {
	Key                ModuleKey
	Name               string
	Version            version.Version
	CompatibilityLevel int

	// Deps maps local repo name -> currently-selected ModuleKey. Mutated
	// (in a copy) by Selection's rewrite step; never mutated in place.
	Deps map[string]ModuleKey
	// OriginalDeps is the same mapping as first parsed from the module
	// file; never rewritten.
	OriginalDeps map[string]ModuleKey
	// DepOrder preserves the source declaration order of repo names in
	// Deps/OriginalDeps, since Go maps do not preserve iteration order
	// and ordering is part of the resolution contract (spec §4.3.5).
	DepOrder []string

	// NodepDeps participate in version selection (they can raise a
	// target's selected version) but are not followed for reachability
	// pruning. A Bazel 7.6+ feature, used by module-extension repo
	// imports; absent from most modules.
	NodepDeps map[string]ModuleKey

	// DepMaxCompatibilityLevel records, per repo name present in Deps or
	// NodepDeps, the bazel_dep(max_compatibility_level=...) ceiling above
	// which Selection must reject the resolved target. -1 (or a missing
	// entry) means unset.
	DepMaxCompatibilityLevel map[string]int

	// Registry identifies which registry served this module, or "" for
	// the root and for modules under a NonRegistryOverride.
	Registry string

	ExtensionUsages []ExtensionUsage

	ExecutionPlatformsToRegister []string
	ToolchainsToRegister         []string

	// BazelCompatibility is this module's bazel_compatibility attribute,
	// consumed only by bazeltools.CheckCompatibility as a non-blocking
	// diagnostic; it plays no role in selection.
	BazelCompatibility []string
}

// Clone returns a deep-enough copy of m suitable for structural mutation
// (Selection's dep rewrite) without aliasing the receiver's maps/slices.
func (m *Module) Clone() *Module {
	clone := *m
	clone.Deps = cloneKeyMap(m.Deps)
	clone.OriginalDeps = cloneKeyMap(m.OriginalDeps)
	clone.NodepDeps = cloneKeyMap(m.NodepDeps)
	if m.DepMaxCompatibilityLevel != nil {
		clone.DepMaxCompatibilityLevel = make(map[string]int, len(m.DepMaxCompatibilityLevel))
		for k, v := range m.DepMaxCompatibilityLevel {
			clone.DepMaxCompatibilityLevel[k] = v
		}
	}
	clone.DepOrder = append([]string(nil), m.DepOrder...)
	clone.ExtensionUsages = append([]ExtensionUsage(nil), m.ExtensionUsages...)
	clone.ExecutionPlatformsToRegister = append([]string(nil), m.ExecutionPlatformsToRegister...)
	clone.ToolchainsToRegister = append([]string(nil), m.ToolchainsToRegister...)
	clone.BazelCompatibility = append([]string(nil), m.BazelCompatibility...)
	return &clone
}

func cloneKeyMap(m map[string]ModuleKey) map[string]ModuleKey {
	if m == nil {
		return nil
	}
	out := make(map[string]ModuleKey, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Override is a root-only directive altering how a dependency is fetched
// or which version participates in selection.
type Override interface {
	isOverride()
}

// SingleVersionOverride pins a module to one version, optionally from a
// different registry, with additional patches applied on top of the
// registry's own.
type SingleVersionOverride struct {
	Version    string // empty means "keep raw version, only registry/patches change"
	Registry   string
	Patches    []string
	PatchStrip int
}

func (SingleVersionOverride) isOverride() {}

// MultipleVersionOverride allows several versions of a module to coexist
// (one per compatibility level), snapped to the allowed set's ceiling.
type MultipleVersionOverride struct {
	Versions []string // non-empty, at least 2
	Registry string
}

func (MultipleVersionOverride) isOverride() {}

// ArchiveOverride bypasses the registry, fetching an archive directly.
type ArchiveOverride struct {
	URLs        []string
	Integrity   string
	StripPrefix string
	Patches     []string
	PatchStrip  int
}

func (ArchiveOverride) isOverride() {}

// GitOverride bypasses the registry, fetching source from a git remote.
type GitOverride struct {
	Remote     string
	Commit     string
	Patches    []string
	PatchStrip int
}

func (GitOverride) isOverride() {}

// LocalPathOverride bypasses the registry, reading source from a local path.
type LocalPathOverride struct {
	Path string
}

func (LocalPathOverride) isOverride() {}

// IsNonRegistry reports whether o is one of the three overrides that
// bypass the registry entirely (and so assign the empty version).
func IsNonRegistry(o Override) bool {
	switch o.(type) {
	case ArchiveOverride, GitOverride, LocalPathOverride:
		return true
	default:
		return false
	}
}

// AugmentedModule extends Module with inspection-only fields computed by
// the inspect package after Discovery and Selection have both run.
type AugmentedModule struct {
	Module

	// Dependants are modules that depend on this one in the resolved graph.
	Dependants []ModuleKey
	// OriginalDependants are modules that depended on this one's raw key
	// before resolution; may include modules later pruned away.
	OriginalDependants []ModuleKey

	// UnusedDeps is a bidirectional map of repo-name <-> key for original
	// deps that did not survive into the resolved graph.
	UnusedDeps *BiMap[string, ModuleKey]

	// DepReasons explains, per repo name, why the resolved dep points
	// where it does.
	DepReasons map[string]ResolutionReason

	// Loaded records whether this module's file was fetched. Augment sets
	// it to true for every module it builds: placeholders that discovery
	// inserted without fetching a file (built-ins, non-registry overrides
	// it could not read) are not told apart and also report true.
	Loaded bool
}

// IsUsed reports whether this module is reachable in the resolved graph:
// it has at least one dependant, or it is the root.
func (a *AugmentedModule) IsUsed() bool {
	return a.Key.IsRoot() || len(a.Dependants) > 0
}

// ValidateExtensionUsage checks the injectivity invariant on imports. The
// error taxonomy types that wrap this live in the resolve package (§4.5);
// bzlmodule only validates the shapes it owns.
func ValidateExtensionUsage(u ExtensionUsage) error {
	if u.Imports == nil {
		return nil
	}
	return u.Imports.validate()
}
