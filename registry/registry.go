package registry

import (
	"context"
	"fmt"
)

// Registry is the minimal surface discovery needs from a module source:
// BCR itself, a mirror, a Chain of several, or a Local on-disk registry
// for airgapped resolution. Client, Chain, and Local all implement it.
type Registry interface {
	BaseURL() string
	GetMetadata(ctx context.Context, moduleName string) (*Metadata, error)
	GetSource(ctx context.Context, moduleName, version string) (*Source, error)
	GetModuleFile(ctx context.Context, moduleName, version string) ([]byte, error)
	// GetRepoSpec returns the materialization recipe for moduleName@version
	// under canonicalName: a rule class and attribute map (URLs, integrity,
	// strip_prefix, patches, patch_args) built from the registry's
	// source.json. It never applies override patches itself; a caller
	// holding a SingleVersionOverride does that via RepoSpec.WithPatchOverride.
	GetRepoSpec(ctx context.Context, moduleName, version, canonicalName string) (*RepoSpec, error)
}

var _ Registry = (*Client)(nil)

// DefaultURL is the Bazel Central Registry.
const DefaultURL = "https://bcr.bazel.build"

// DefaultMirrorURL is the GitHub-hosted mirror of the Bazel Central
// Registry, used as a fallback when bcr.bazel.build itself is unreachable.
const DefaultMirrorURL = "https://raw.githubusercontent.com/bazelbuild/bazel-central-registry/main"

// DefaultURLs is BCR followed by its GitHub mirror, suitable as the urls
// argument to OpenChain for a resilient default configuration.
var DefaultURLs = []string{DefaultURL, DefaultMirrorURL}

// Open builds a Registry from a URL: file:// for a Local on-disk registry,
// anything else for a remote Client.
func Open(url string, opts ...ClientOption) (Registry, error) {
	if IsFileURL(url) {
		path, err := ParseFileURL(url)
		if err != nil {
			return nil, err
		}
		return NewLocal(path), nil
	}
	return NewClient(url, opts...), nil
}

// OpenChain builds a Chain from a list of URLs, each opened with Open.
func OpenChain(urls []string, opts ...ClientOption) (*Chain, error) {
	registries := make([]Registry, 0, len(urls))
	for _, url := range urls {
		reg, err := Open(url, opts...)
		if err != nil {
			return nil, fmt.Errorf("registry: open %s: %w", url, err)
		}
		registries = append(registries, reg)
	}
	return NewChain(registries...), nil
}
