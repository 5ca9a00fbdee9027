package registry

import (
	"context"
	"testing"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "rules_go", "0.41.0"); err != nil || found {
		t.Fatalf("Get() on empty cache = (_, %v, %v), want (_, false, nil)", found, err)
	}

	content := []byte(`module(name = "rules_go", version = "0.41.0")`)
	if err := c.Put(ctx, "rules_go", "0.41.0", content); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := c.Get(ctx, "rules_go", "0.41.0")
	if err != nil || !found {
		t.Fatalf("Get() after Put = (_, %v, %v), want (_, true, nil)", found, err)
	}
	if string(got) != string(content) {
		t.Errorf("Get() = %q, want %q", got, content)
	}

	got[0] = 'X'
	got2, _, _ := c.Get(ctx, "rules_go", "0.41.0")
	if got2[0] == 'X' {
		t.Error("Get() returned an aliased slice; mutating the result corrupted the cache")
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestFailingCache_AlwaysErrors(t *testing.T) {
	c := NewFailingCache(nil, nil)
	ctx := context.Background()

	if _, _, err := c.Get(ctx, "x", "1.0"); err == nil {
		t.Error("Get() expected to fail")
	}
	if err := c.Put(ctx, "x", "1.0", nil); err == nil {
		t.Error("Put() expected to fail")
	}
}

func TestNoopCache_AlwaysMisses(t *testing.T) {
	c := NoopCache{}
	ctx := context.Background()

	if err := c.Put(ctx, "x", "1.0", []byte("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, found, err := c.Get(ctx, "x", "1.0"); err != nil || found {
		t.Errorf("Get() = (_, %v, %v), want (_, false, nil) even after Put", found, err)
	}
}

func TestClient_WithCache_SkipsNetworkOnHit(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	content := []byte(`module(name = "cached_mod", version = "1.0.0")`)
	if err := cache.Put(ctx, "cached_mod", "1.0.0", content); err != nil {
		t.Fatal(err)
	}

	// baseURL points at a closed local port on purpose: any network access
	// would fail and the test would error, proving the cache short-circuits it.
	c := NewClient("http://127.0.0.1:1", WithCache(cache), WithValidation(false))

	got, err := c.GetModuleFile(ctx, "cached_mod", "1.0.0")
	if err != nil {
		t.Fatalf("GetModuleFile() error = %v, want cache hit with no network access", err)
	}
	if string(got) != string(content) {
		t.Errorf("GetModuleFile() = %q, want %q", got, content)
	}
}
