package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local serves registry data from a directory on disk, following the same
// layout as a remote registry:
//
//	{root}/modules/{name}/metadata.json
//	{root}/modules/{name}/{version}/MODULE.bazel
//	{root}/modules/{name}/{version}/source.json
//
// This is how airgapped or vendored resolution works: point Local at a
// pre-populated mirror instead of reaching the network at all.
type Local struct {
	root string
}

var _ Registry = (*Local)(nil)

// NewLocal returns a Local registry rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: filepath.Clean(dir)}
}

// ParseFileURL extracts the filesystem path from a file:// URL, used to
// recognize a -registry flag of the form file:///path/to/registry.
func ParseFileURL(url string) (string, error) {
	if !strings.HasPrefix(url, "file://") {
		return "", fmt.Errorf("registry: not a file:// URL: %s", url)
	}
	path := strings.TrimPrefix(url, "file://")
	if len(path) >= 3 && path[0] == '/' && isDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}
	return filepath.Clean(path), nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// IsFileURL reports whether url uses the file:// scheme.
func IsFileURL(url string) bool {
	return strings.HasPrefix(url, "file://")
}

// BaseURL returns the file:// URL for this registry's root directory.
func (l *Local) BaseURL() string {
	return "file://" + filepath.ToSlash(l.root)
}

// GetMetadata reads {root}/modules/{name}/metadata.json.
func (l *Local) GetMetadata(ctx context.Context, moduleName string) (*Metadata, error) {
	path := filepath.Join(l.root, "modules", moduleName, "metadata.json")
	data, err := l.readFile(path, moduleName, "")
	if err != nil {
		return nil, err
	}
	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return &metadata, nil
}

// GetSource reads {root}/modules/{name}/{version}/source.json.
func (l *Local) GetSource(ctx context.Context, moduleName, version string) (*Source, error) {
	path := filepath.Join(l.root, "modules", moduleName, version, "source.json")
	data, err := l.readFile(path, moduleName, version)
	if err != nil {
		return nil, err
	}
	var source Source
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return &source, nil
}

// GetModuleFile reads {root}/modules/{name}/{version}/MODULE.bazel.
func (l *Local) GetModuleFile(ctx context.Context, moduleName, version string) ([]byte, error) {
	path := filepath.Join(l.root, "modules", moduleName, version, "MODULE.bazel")
	return l.readFile(path, moduleName, version)
}

func (l *Local) readFile(path, moduleName, version string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StatusError{StatusCode: 404, ModuleName: moduleName, Version: version, URL: "file://" + filepath.ToSlash(path)}
		}
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return data, nil
}
