// Package modulefile parses a MODULE.bazel file — via
// github.com/bazelbuild/buildtools/build, the same AST the real Bazel
// toolchain uses — into the bzlmodule domain types that Discovery,
// Selection, and Inspection operate on.
package modulefile

import "github.com/bazeldeps/resolve/bzlmodule"

// Dep is one bazel_dep(...) declaration.
type Dep struct {
	Name                  string
	Version               string
	RepoName              string
	DevDependency         bool
	MaxCompatibilityLevel int // -1 means unset
}

// File is the parsed, structured form of one MODULE.bazel file. Overrides
// are only meaningful (and only legal) on the root module file.
type File struct {
	Path string

	ModuleName         string
	ModuleVersion       string
	CompatibilityLevel  int
	RepoName            string
	BazelCompatibility  []string

	Deps       []Dep
	Extensions []bzlmodule.ExtensionUsage

	// Overrides maps module name -> override. A second override for the
	// same module name within a file is a *ParseError; for the root file,
	// Resolve reports it as InvalidModuleFileError, not BadOverrideError.
	Overrides map[string]bzlmodule.Override

	ExecutionPlatformsToRegister []string
	ToolchainsToRegister         []string
}
