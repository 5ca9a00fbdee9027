package registry

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// RepoSpec is the materialization recipe for one canonical repo name: a
// Starlark repository-rule class (e.g. "http_archive", "git_repository")
// and the attribute map to invoke it with. A Registry only ever returns
// the recipe; fetching the archive or cloning the remote it names is the
// caller's job, not this package's.
type RepoSpec struct {
	RuleClassName string
	Attributes    map[string]any
}

// WithPatchOverride returns a copy of s with patches appended to the
// "patches" attribute and "patch_args" set to ["-p"+patchStrip]. This is
// how a SingleVersionOverride's extra patches are layered onto the
// registry's own RepoSpec: the registry answers with the recipe for the
// module as published, and the caller holding the override is the one
// that knows about additional local patches, so it appends them itself
// rather than asking the registry to know about overrides at all.
func (s *RepoSpec) WithPatchOverride(patches []string, patchStrip int) *RepoSpec {
	if len(patches) == 0 {
		return s
	}
	out := &RepoSpec{RuleClassName: s.RuleClassName, Attributes: make(map[string]any, len(s.Attributes)+2)}
	for k, v := range s.Attributes {
		out.Attributes[k] = v
	}
	existing, _ := out.Attributes["patches"].([]string)
	out.Attributes["patches"] = append(append([]string(nil), existing...), patches...)
	out.Attributes["patch_args"] = []string{"-p" + strconv.Itoa(patchStrip)}
	return out
}

// repoSpecFromSource translates a source.json payload into the RepoSpec
// Bazel's own repository rules expect: http_archive for an archive
// source, git_repository for a git one.
func repoSpecFromSource(src *Source, canonicalName string) *RepoSpec {
	attrs := map[string]any{"name": canonicalName}

	if src.IsLocalPath() {
		attrs["path"] = src.Path
		return &RepoSpec{RuleClassName: "local_repository", Attributes: attrs}
	}

	if src.IsGitRepository() {
		attrs["remote"] = src.Remote
		if src.Commit != "" {
			attrs["commit"] = src.Commit
		}
		if src.Tag != "" {
			attrs["tag"] = src.Tag
		}
		if src.ShallowSince != "" {
			attrs["shallow_since"] = src.ShallowSince
		}
		if src.InitSubmodules {
			attrs["init_submodules"] = true
		}
		if src.VerboseVersion {
			attrs["verbose"] = true
		}
		addPatchAttrs(attrs, src)
		return &RepoSpec{RuleClassName: "git_repository", Attributes: attrs}
	}

	attrs["urls"] = src.AllURLs()
	attrs["integrity"] = src.Integrity
	if src.StripPrefix != "" {
		attrs["strip_prefix"] = src.StripPrefix
	}
	addPatchAttrs(attrs, src)
	if len(src.Overlay) > 0 {
		attrs["remote_file_urls"] = src.Overlay
	}
	return &RepoSpec{RuleClassName: "http_archive", Attributes: attrs}
}

func addPatchAttrs(attrs map[string]any, src *Source) {
	if len(src.Patches) == 0 {
		return
	}
	names := make([]string, 0, len(src.Patches))
	for name := range src.Patches {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs["patches"] = names
	attrs["patch_args"] = []string{"-p" + strconv.Itoa(src.PatchStrip)}
}

// GetRepoSpec fetches name@version's source.json and translates it into
// a RepoSpec for canonicalName.
func (c *Client) GetRepoSpec(ctx context.Context, moduleName, version, canonicalName string) (*RepoSpec, error) {
	src, err := c.GetSource(ctx, moduleName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to build repo spec for %s@%s: %w", moduleName, version, err)
	}
	return repoSpecFromSource(src, canonicalName), nil
}

// GetRepoSpec routes to whichever registry owns moduleName, matching
// GetSource's own chain semantics.
func (c *Chain) GetRepoSpec(ctx context.Context, moduleName, version, canonicalName string) (*RepoSpec, error) {
	if idx, ok := c.ownerOf(moduleName); ok {
		return c.registries[idx].GetRepoSpec(ctx, moduleName, version, canonicalName)
	}

	var lastErr error
	for i, reg := range c.registries {
		spec, err := reg.GetRepoSpec(ctx, moduleName, version, canonicalName)
		if err == nil {
			c.setOwner(moduleName, i)
			return spec, nil
		}
		lastErr = err
	}
	return nil, c.notFound(moduleName, version, lastErr)
}

// GetRepoSpec reads source.json from the local registry root and
// translates it the same way Client does.
func (l *Local) GetRepoSpec(ctx context.Context, moduleName, version, canonicalName string) (*RepoSpec, error) {
	src, err := l.GetSource(ctx, moduleName, version)
	if err != nil {
		return nil, err
	}
	return repoSpecFromSource(src, canonicalName), nil
}
