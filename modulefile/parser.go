package modulefile

import (
	"fmt"

	"github.com/bazelbuild/buildtools/build"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/internal/buildutil"
)

// ParseError is a parse-level failure attributed to a file location. For
// the root file, the resolve package wraps it in InvalidModuleFileError.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// extensionProxy tracks the local variable a use_extension() result was
// bound to, so later `<var>.<tag>(...)` calls and use_repo(<var>, ...)
// calls can be attributed to the right ExtensionUsage.
type extensionProxy struct {
	usageIndex int
}

// Parse parses raw MODULE.bazel content into a File.
func Parse(path string, content []byte) (*File, error) {
	f, err := build.ParseModule(path, content)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}

	out := &File{Path: path, Overrides: make(map[string]bzlmodule.Override)}
	proxies := make(map[string]*extensionProxy)

	for _, stmt := range f.Stmt {
		switch e := stmt.(type) {
		case *build.CallExpr:
			if err := parseTopLevelCall(out, proxies, e); err != nil {
				return nil, err
			}
		case *build.AssignExpr:
			if err := parseAssign(out, proxies, e); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func parseAssign(out *File, proxies map[string]*extensionProxy, e *build.AssignExpr) error {
	lhs, ok := e.LHS.(*build.Ident)
	if !ok {
		return nil
	}
	call, ok := e.RHS.(*build.CallExpr)
	if !ok || !buildutil.IsFuncCall(call, "use_extension") {
		return nil
	}

	usage := parseUseExtension(call)
	out.Extensions = append(out.Extensions, usage)
	proxies[lhs.Name] = &extensionProxy{usageIndex: len(out.Extensions) - 1}
	return nil
}

func parseTopLevelCall(out *File, proxies map[string]*extensionProxy, call *build.CallExpr) error {
	// Dotted call: <proxy>.<tag>(...)
	if dot, ok := call.X.(*build.DotExpr); ok {
		ident, ok := dot.X.(*build.Ident)
		if !ok {
			return nil
		}
		proxy, ok := proxies[ident.Name]
		if !ok {
			return nil
		}
		out.Extensions[proxy.usageIndex].Tags = append(out.Extensions[proxy.usageIndex].Tags, parseTag(dot.Name, call))
		return nil
	}

	funcName := buildutil.FuncName(call)
	switch funcName {
	case "module":
		parseModuleDecl(out, call)
	case "bazel_dep":
		out.Deps = append(out.Deps, parseBazelDep(call))
	case "use_extension":
		// Bare (unassigned) use_extension — no tags possible, but the
		// extension is still declared (e.g. used only for side effects).
		out.Extensions = append(out.Extensions, parseUseExtension(call))
	case "use_repo":
		applyUseRepo(out, proxies, call)
	case "single_version_override":
		name, ov := parseSingleVersionOverride(call)
		return addOverride(out, name, ov)
	case "multiple_version_override":
		name, ov, err := parseMultipleVersionOverride(out.Path, call)
		if err != nil {
			return err
		}
		return addOverride(out, name, ov)
	case "archive_override":
		name, ov := parseArchiveOverride(call)
		return addOverride(out, name, ov)
	case "git_override":
		name, ov := parseGitOverride(call)
		return addOverride(out, name, ov)
	case "local_path_override":
		name, ov := parseLocalPathOverride(call)
		return addOverride(out, name, ov)
	case "register_toolchains":
		patterns := buildutil.PositionalStrings(call, 0)
		out.ToolchainsToRegister = append(out.ToolchainsToRegister, patterns...)
	case "register_execution_platforms":
		patterns := buildutil.PositionalStrings(call, 0)
		out.ExecutionPlatformsToRegister = append(out.ExecutionPlatformsToRegister, patterns...)
	}
	return nil
}

func addOverride(out *File, name string, ov bzlmodule.Override) error {
	if _, exists := out.Overrides[name]; exists {
		return &ParseError{Path: out.Path, Message: fmt.Sprintf("duplicate override for module %q", name)}
	}
	out.Overrides[name] = ov
	return nil
}

func parseModuleDecl(out *File, call *build.CallExpr) {
	out.ModuleName = buildutil.String(call, "name")
	out.ModuleVersion = buildutil.String(call, "version")
	out.CompatibilityLevel = buildutil.Int(call, "compatibility_level")
	out.RepoName = buildutil.String(call, "repo_name")
	out.BazelCompatibility = buildutil.StringList(call, "bazel_compatibility")
	out.ExecutionPlatformsToRegister = append(out.ExecutionPlatformsToRegister, buildutil.StringList(call, "execution_platforms_to_register")...)
	out.ToolchainsToRegister = append(out.ToolchainsToRegister, buildutil.StringList(call, "toolchains_to_register")...)
}

func parseBazelDep(call *build.CallExpr) Dep {
	name := buildutil.String(call, "name")
	dep := Dep{
		Name:          name,
		Version:       buildutil.String(call, "version"),
		RepoName:      buildutil.String(call, "repo_name"),
		DevDependency: buildutil.Bool(call, "dev_dependency"),
	}
	if dep.RepoName == "" {
		dep.RepoName = name
	}
	dep.MaxCompatibilityLevel = -1
	if buildutil.Int(call, "max_compatibility_level") != 0 {
		dep.MaxCompatibilityLevel = buildutil.Int(call, "max_compatibility_level")
	}
	return dep
}

func parseUseExtension(call *build.CallExpr) bzlmodule.ExtensionUsage {
	return bzlmodule.ExtensionUsage{
		ExtensionBzlFile: buildutil.String(call, ""),
		ExtensionName:    secondPositionalOrNamed(call, "extension_name"),
		DevDependency:    buildutil.Bool(call, "dev_dependency"),
		Isolate:          buildutil.Bool(call, "isolate"),
		Imports:          bzlmodule.NewBiMap[string, string](),
	}
}

// secondPositionalOrNamed handles use_extension(path, name) where both
// arguments are positional, since buildutil.String only resolves the
// first positional argument when name is "".
func secondPositionalOrNamed(call *build.CallExpr, name string) string {
	if v := buildutil.String(call, name); v != "" {
		return v
	}
	positionals := buildutil.PositionalStrings(call, 1)
	if len(positionals) > 0 {
		return positionals[0]
	}
	return ""
}

func parseTag(tagName string, call *build.CallExpr) bzlmodule.Tag {
	attrs := make(map[string]any)
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		ident, ok := assign.LHS.(*build.Ident)
		if !ok {
			continue
		}
		attrs[ident.Name] = buildutil.ExtractValue(assign.RHS)
	}
	return bzlmodule.Tag{Name: tagName, Attributes: attrs}
}

func applyUseRepo(out *File, proxies map[string]*extensionProxy, call *build.CallExpr) {
	if len(call.List) == 0 {
		return
	}
	ident, ok := call.List[0].(*build.Ident)
	if !ok {
		return
	}
	proxy, ok := proxies[ident.Name]
	if !ok {
		return
	}
	usage := &out.Extensions[proxy.usageIndex]

	for _, arg := range call.List[1:] {
		switch a := arg.(type) {
		case *build.StringExpr:
			_ = usage.Imports.Insert(a.Value, a.Value)
		case *build.AssignExpr:
			lhs, ok := a.LHS.(*build.Ident)
			if !ok {
				continue
			}
			if str, ok := a.RHS.(*build.StringExpr); ok {
				_ = usage.Imports.Insert(lhs.Name, str.Value)
			}
		}
	}
}

func parseSingleVersionOverride(call *build.CallExpr) (string, bzlmodule.Override) {
	name := buildutil.String(call, "module_name")
	return name, bzlmodule.SingleVersionOverride{
		Version:    buildutil.String(call, "version"),
		Registry:   buildutil.String(call, "registry"),
		Patches:    buildutil.StringList(call, "patches"),
		PatchStrip: buildutil.Int(call, "patch_strip"),
	}
}

func parseMultipleVersionOverride(path string, call *build.CallExpr) (string, bzlmodule.Override, error) {
	name := buildutil.String(call, "module_name")
	versions := buildutil.StringList(call, "versions")
	if len(versions) < 2 {
		return "", nil, &ParseError{Path: path, Message: fmt.Sprintf("multiple_version_override(%q) requires at least 2 versions, got %d", name, len(versions))}
	}
	return name, bzlmodule.MultipleVersionOverride{
		Versions: versions,
		Registry: buildutil.String(call, "registry"),
	}, nil
}

func parseArchiveOverride(call *build.CallExpr) (string, bzlmodule.Override) {
	name := buildutil.String(call, "module_name")
	return name, bzlmodule.ArchiveOverride{
		URLs:        buildutil.StringList(call, "urls"),
		Integrity:   buildutil.String(call, "integrity"),
		StripPrefix: buildutil.String(call, "strip_prefix"),
		Patches:     buildutil.StringList(call, "patches"),
		PatchStrip:  buildutil.Int(call, "patch_strip"),
	}
}

func parseGitOverride(call *build.CallExpr) (string, bzlmodule.Override) {
	name := buildutil.String(call, "module_name")
	return name, bzlmodule.GitOverride{
		Remote:     buildutil.String(call, "remote"),
		Commit:     buildutil.String(call, "commit"),
		Patches:    buildutil.StringList(call, "patches"),
		PatchStrip: buildutil.Int(call, "patch_strip"),
	}
}

func parseLocalPathOverride(call *build.CallExpr) (string, bzlmodule.Override) {
	name := buildutil.String(call, "module_name")
	return name, bzlmodule.LocalPathOverride{
		Path: buildutil.String(call, "path"),
	}
}
