package registry

import (
	"context"
	"fmt"
	"sync"
)

// Chain queries several registries in order and remembers, per module
// name, which registry first answered for it: once a module is found in
// one registry, every subsequent version lookup for that module name goes
// straight there, matching Bazel's own registry-chain semantics
// (ModuleFileFunction.java). Unlike Bazel, Chain falls back to the next
// registry on any error, not just 404 — a certificate outage or a flaky
// mirror on entry zero should not sink resolution when entry one is fine.
type Chain struct {
	registries []Registry

	mu     sync.RWMutex
	owner  map[string]int // module name -> index into registries
}

// NewChain builds a Chain over registries, tried in the given order.
func NewChain(registries ...Registry) *Chain {
	return &Chain{
		registries: registries,
		owner:      make(map[string]int),
	}
}

var _ Registry = (*Chain)(nil)

// BaseURL returns the first registry's URL, for display purposes.
func (c *Chain) BaseURL() string {
	if len(c.registries) == 0 {
		return ""
	}
	return c.registries[0].BaseURL()
}

func (c *Chain) ownerOf(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.owner[name]
	return idx, ok
}

func (c *Chain) setOwner(name string, idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.owner[name]; !exists {
		c.owner[name] = idx
	}
}

// GetMetadata tries each registry in order, pinning the module name to
// whichever one answers first.
func (c *Chain) GetMetadata(ctx context.Context, moduleName string) (*Metadata, error) {
	if idx, ok := c.ownerOf(moduleName); ok {
		return c.registries[idx].GetMetadata(ctx, moduleName)
	}

	var lastErr error
	for i, reg := range c.registries {
		metadata, err := reg.GetMetadata(ctx, moduleName)
		if err == nil {
			c.setOwner(moduleName, i)
			return metadata, nil
		}
		lastErr = err
	}
	return nil, c.notFound(moduleName, "", lastErr)
}

// GetSource tries each registry in order, pinning the module name to
// whichever one answers first.
func (c *Chain) GetSource(ctx context.Context, moduleName, version string) (*Source, error) {
	if idx, ok := c.ownerOf(moduleName); ok {
		return c.registries[idx].GetSource(ctx, moduleName, version)
	}

	var lastErr error
	for i, reg := range c.registries {
		source, err := reg.GetSource(ctx, moduleName, version)
		if err == nil {
			c.setOwner(moduleName, i)
			return source, nil
		}
		lastErr = err
	}
	return nil, c.notFound(moduleName, version, lastErr)
}

// GetModuleFile tries each registry in order, pinning the module name to
// whichever one answers first.
func (c *Chain) GetModuleFile(ctx context.Context, moduleName, version string) ([]byte, error) {
	if idx, ok := c.ownerOf(moduleName); ok {
		return c.registries[idx].GetModuleFile(ctx, moduleName, version)
	}

	var lastErr error
	for i, reg := range c.registries {
		data, err := reg.GetModuleFile(ctx, moduleName, version)
		if err == nil {
			c.setOwner(moduleName, i)
			return data, nil
		}
		lastErr = err
	}
	return nil, c.notFound(moduleName, version, lastErr)
}

func (c *Chain) notFound(moduleName, version string, lastErr error) error {
	if lastErr == nil {
		if version != "" {
			return fmt.Errorf("%s@%s: %w", moduleName, version, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", moduleName, ErrNotFound)
	}
	return fmt.Errorf("not found in any of %d registries: %w", len(c.registries), lastErr)
}

// OwnerOf returns the base URL of the registry that resolved moduleName,
// or "" if moduleName has not been looked up yet.
func (c *Chain) OwnerOf(moduleName string) string {
	idx, ok := c.ownerOf(moduleName)
	if !ok {
		return ""
	}
	return c.registries[idx].BaseURL()
}
