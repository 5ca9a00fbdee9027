package discovery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/modulefile"
	"github.com/bazeldeps/resolve/registry"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency bounds how many module files Run fetches from a
// registry in parallel within a single round, when Options.MaxConcurrency
// is unset. One round is one Engine Outcome's full Pending batch; a module
// requiring several rounds of transitive deps still only ever has this
// many requests in flight at once.
const DefaultMaxConcurrency = 8

// Result is the completed output of a discovery run: the raw dependency
// graph in BFS order, plus the override table the root module declared
// (selection needs it to resolve multiple_version_override ceilings).
type Result struct {
	Graph     map[bzlmodule.ModuleKey]*bzlmodule.Module
	Order     []bzlmodule.ModuleKey
	Overrides map[string]bzlmodule.Override
}

// Run drives an Engine to completion, fetching every Pending batch from reg
// with bounded concurrency until the walk reports Done.
func Run(ctx context.Context, rootFile *modulefile.File, reg registry.Registry, opts Options) (*Result, error) {
	logger := slog.Default().With("component", "discovery")
	e := New(opts)

	outcome, err := e.Start(rootFile)
	if err != nil {
		return nil, err
	}

	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}

	for !outcome.Done {
		logger.Debug("fetching round", "pending", len(outcome.Pending))

		results, err := fetchRound(ctx, reg, outcome.Pending, limit)
		if err != nil {
			return nil, err
		}

		outcome, err = e.Resume(results)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Graph:     outcome.Graph,
		Order:     outcome.Order,
		Overrides: e.Overrides(),
	}, nil
}

// fetchRound fetches every key in pending concurrently, capped at limit in
// flight, and returns a result per key regardless of whether the
// individual fetch succeeded (the error travels inside FetchResult rather
// than aborting the whole round, so Resume can turn a not-found into an
// attributed NotFoundError).
func fetchRound(ctx context.Context, reg registry.Registry, pending []bzlmodule.ModuleKey, limit int) (map[bzlmodule.ModuleKey]FetchResult, error) {
	results := make(map[bzlmodule.ModuleKey]FetchResult, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, key := range pending {
		key := key
		g.Go(func() error {
			data, err := reg.GetModuleFile(gctx, key.Name, key.Version.String())
			mu.Lock()
			results[key] = FetchResult{Content: data, Err: err}
			mu.Unlock()
			return nil
		})
	}

	// No g.Go function returns a non-nil error (failures are captured
	// per-key), so Wait returns nil; a cancelled ctx shows up as the
	// per-key fetch errors instead.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
