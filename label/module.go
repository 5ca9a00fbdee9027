// Package label provides strongly-typed, validated label components for
// Bazel modules and module extensions.
//
// All types in this package are immutable and validate their values at
// construction time. Zero values are generally invalid - use the
// constructor functions (NewModule, NewApparentRepo, etc.) to create valid
// instances.
//
// # Types
//
// The main types are:
//   - [Module]: A validated module name (e.g., "rules_go")
//   - [ApparentRepo]: A repository name as it appears in labels
//   - [CanonicalRepo]: A fully-qualified module repo name
//   - [CanonicalExtensionRepo]: A fully-qualified module-extension repo name
//   - [ApparentLabel]: A Bazel label (e.g., "@rules_go//go:def.bzl")
//   - [StarlarkIdentifier]: A valid Starlark identifier
//
// # Validation Patterns
//
// Module names must match: [a-z]([a-z0-9._-]*[a-z0-9])?
// Repository names must match: [a-zA-Z][a-zA-Z0-9._-]*
// Starlark identifiers must match: [a-zA-Z_][a-zA-Z0-9_]*
package label

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bazeldeps/resolve/version"
)

// Module represents a validated Bazel module name.
// Module names must match: [a-z]([a-z0-9._-]*[a-z0-9])?
type Module struct {
	name string
}

var moduleNameRegex = regexp.MustCompile(`^[a-z]([a-z0-9._-]*[a-z0-9])?$`)

// NewModule creates a validated Module from a string.
func NewModule(name string) (Module, error) {
	if name == "" {
		return Module{}, fmt.Errorf("module name cannot be empty")
	}
	if !moduleNameRegex.MatchString(name) {
		return Module{}, fmt.Errorf("invalid module name %q: must match pattern [a-z]([a-z0-9._-]*[a-z0-9])?", name)
	}
	return Module{name: name}, nil
}

// MustModule creates a Module or panics. Use only for constants/tests.
func MustModule(name string) Module {
	m, err := NewModule(name)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the module name string.
func (m Module) String() string {
	return m.name
}

// IsEmpty returns true if this is a zero-value Module.
func (m Module) IsEmpty() bool {
	return m.name == ""
}

// ApparentRepo represents a repository name as it appears in the current context.
// This is the name used in labels like @repo_name//pkg:target.
type ApparentRepo struct {
	name string
}

var apparentRepoRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

// NewApparentRepo creates a validated ApparentRepo.
func NewApparentRepo(name string) (ApparentRepo, error) {
	if name == "" {
		return ApparentRepo{}, nil // Empty is valid (means use module name)
	}
	if !apparentRepoRegex.MatchString(name) {
		return ApparentRepo{}, fmt.Errorf("invalid repo name %q", name)
	}
	return ApparentRepo{name: name}, nil
}

// String returns the repo name or empty string.
func (r ApparentRepo) String() string {
	return r.name
}

// IsEmpty returns true if no custom repo name is set.
func (r ApparentRepo) IsEmpty() bool {
	return r.name == ""
}

// CanonicalRepo is the fully-qualified, internal name assigned to a module
// repository. The exact format is dot-joined rather than Bazel's real
// "+"/"~" syntax; callers must treat it as an opaque internal identifier
// and pass it through unchanged rather than parse it.
type CanonicalRepo struct {
	module  Module
	version version.Version
}

// NewCanonicalRepo creates a CanonicalRepo.
func NewCanonicalRepo(module Module, v version.Version) CanonicalRepo {
	return CanonicalRepo{module: module, version: v}
}

// String returns "<module_name>.<version>".
func (r CanonicalRepo) String() string {
	return r.module.String() + "." + r.version.String()
}

// Module returns the module component.
func (r CanonicalRepo) Module() Module {
	return r.module
}

// Version returns the version component.
func (r CanonicalRepo) Version() version.Version {
	return r.version
}

// CanonicalExtensionRepo is the fully-qualified, internal name assigned to
// a repo imported through a module extension.
type CanonicalExtensionRepo struct {
	module        Module
	version       version.Version
	extensionName StarlarkIdentifier
	repoName      string
}

// NewCanonicalExtensionRepo creates a CanonicalExtensionRepo.
func NewCanonicalExtensionRepo(module Module, v version.Version, extensionName StarlarkIdentifier, repoName string) CanonicalExtensionRepo {
	return CanonicalExtensionRepo{module: module, version: v, extensionName: extensionName, repoName: repoName}
}

// String returns "<module_name>.<version>.<extension_name>.<repo_name>".
func (r CanonicalExtensionRepo) String() string {
	return strings.Join([]string{r.module.String(), r.version.String(), r.extensionName.String(), r.repoName}, ".")
}

// StarlarkIdentifier represents a valid Starlark identifier.
type StarlarkIdentifier struct {
	name string
}

var starlarkIdentRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewStarlarkIdentifier creates a validated StarlarkIdentifier.
func NewStarlarkIdentifier(name string) (StarlarkIdentifier, error) {
	if name == "" {
		return StarlarkIdentifier{}, fmt.Errorf("identifier cannot be empty")
	}
	if !starlarkIdentRegex.MatchString(name) {
		return StarlarkIdentifier{}, fmt.Errorf("invalid Starlark identifier %q", name)
	}
	return StarlarkIdentifier{name: name}, nil
}

// String returns the identifier name.
func (i StarlarkIdentifier) String() string {
	return i.name
}

// ApparentLabel represents a label in the current context.
// Format: @repo//package:target or //package:target or :target
type ApparentLabel struct {
	repo   ApparentRepo
	pkg    string
	target string
	raw    string
}

// ParseApparentLabel parses a label string.
func ParseApparentLabel(s string) (ApparentLabel, error) {
	label := ApparentLabel{raw: s}

	// Handle @repo//pkg:target
	if strings.HasPrefix(s, "@") {
		idx := strings.Index(s, "//")
		if idx == -1 {
			return ApparentLabel{}, fmt.Errorf("invalid label %q: missing //", s)
		}
		repoName := s[1:idx]
		repo, err := NewApparentRepo(repoName)
		if err != nil {
			return ApparentLabel{}, fmt.Errorf("invalid label %q: %w", s, err)
		}
		label.repo = repo
		s = s[idx:]
	}

	// Handle //pkg:target
	if strings.HasPrefix(s, "//") {
		s = s[2:]
		idx := strings.Index(s, ":")
		if idx == -1 {
			// //pkg means //pkg:pkg
			label.pkg = s
			parts := strings.Split(s, "/")
			label.target = parts[len(parts)-1]
		} else {
			label.pkg = s[:idx]
			label.target = s[idx+1:]
		}
	} else if strings.HasPrefix(s, ":") {
		// :target (relative)
		label.target = s[1:]
	} else {
		return ApparentLabel{}, fmt.Errorf("invalid label %q", s)
	}

	return label, nil
}

// String returns the original label string.
func (l ApparentLabel) String() string {
	return l.raw
}

// Repo returns the repository component.
func (l ApparentLabel) Repo() ApparentRepo {
	return l.repo
}

// Package returns the package path.
func (l ApparentLabel) Package() string {
	return l.pkg
}

// Target returns the target name.
func (l ApparentLabel) Target() string {
	return l.target
}
