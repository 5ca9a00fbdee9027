// Package discovery implements the BFS expansion of a Bazel module's
// dependency graph from its root MODULE.bazel file, fetching unknown
// module files from a registry as the frontier grows.
//
// The engine is a restartable continuation rather than a function that
// blocks on I/O: Start and Resume each return an Outcome that is either
// Done (the raw graph is complete) or carries a batch of Pending keys the
// caller must fetch before calling Resume again. Run wraps this loop with
// a concrete, errgroup-based host that fetches from a registry.Registry.
package discovery

import (
	"fmt"
	"sort"

	"github.com/bazeldeps/resolve/bazeltools"
	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/modulefile"
	"github.com/bazeldeps/resolve/version"
)

// FetchResult is what a host loop supplies back to Resume for one key that
// was previously reported Pending.
type FetchResult struct {
	Content []byte
	Err     error
}

// Outcome is the result of one discovery step: either the graph is
// complete, or more module files are needed before the walk can continue.
type Outcome struct {
	Done bool

	// Pending lists module keys whose MODULE.bazel the caller must fetch
	// and pass to Resume. Only meaningful when Done is false.
	Pending []bzlmodule.ModuleKey

	// Graph and Order are only populated when Done is true: Graph is the
	// raw dependency graph, Order its BFS discovery order (the same
	// ordering the resolved and unpruned graphs must preserve downstream).
	Graph map[bzlmodule.ModuleKey]*bzlmodule.Module
	Order []bzlmodule.ModuleKey
}

// LocalFileReader reads the content of a file at path, used to resolve
// local_path_override without going through a registry. Engine treats a
// nil reader as "local overrides are opaque": their module is inserted as
// a dependency-free leaf at the empty version rather than an error, since
// materializing their repo content is outside discovery's scope (see
// registry.RepoSpec).
type LocalFileReader func(path string) ([]byte, error)

// Options configures a new Engine.
type Options struct {
	// Overrides is the root module file's override table. Only the root's
	// overrides are consulted: overrides declared in any other module file
	// are ignored, not reported as an error.
	Overrides map[string]bzlmodule.Override

	// IncludeDevDeps controls whether the root module's own
	// dev_dependency bazel_deps and use_extensions are kept. Per the
	// dev-dependency policy, only the root's dev deps are ever eligible
	// regardless of this flag; every other module's dev deps are always
	// dropped.
	IncludeDevDeps bool

	// BazelVersion is passed to bazeltools.BuiltinModules, which returns
	// the same fixed built-in set (bazel_tools, local_config_platform) for
	// every version; that set is injected into every non-built-in module's
	// deps.
	BazelVersion string

	// LocalReader resolves local_path_override content; see
	// LocalFileReader.
	LocalReader LocalFileReader

	// MaxConcurrency bounds Run's concurrent registry fetches per round.
	// Zero means DefaultMaxConcurrency.
	MaxConcurrency int
}

// Engine runs one resolution's discovery walk. It is not safe for
// concurrent use by multiple goroutines, but the Start/Resume cycle itself
// is what makes it safe to suspend across an I/O boundary.
type Engine struct {
	overrides      map[string]bzlmodule.Override
	includeDevDeps bool
	builtins       []bazeltools.BuiltinModule
	localReader    LocalFileReader

	graph map[bzlmodule.ModuleKey]*bzlmodule.Module
	order []bzlmodule.ModuleKey
	queue []bzlmodule.ModuleKey

	pending     map[bzlmodule.ModuleKey]bool
	requestedBy map[bzlmodule.ModuleKey][]bzlmodule.ModuleKey

	rootName    string
	rootVersion version.Version
}

// New creates an Engine ready for Start.
func New(opts Options) *Engine {
	overrides := opts.Overrides
	if overrides == nil {
		overrides = map[string]bzlmodule.Override{}
	}
	return &Engine{
		overrides:      overrides,
		includeDevDeps: opts.IncludeDevDeps,
		builtins:       bazeltools.BuiltinModules(opts.BazelVersion),
		localReader:    opts.LocalReader,
		graph:          make(map[bzlmodule.ModuleKey]*bzlmodule.Module),
		pending:        make(map[bzlmodule.ModuleKey]bool),
		requestedBy:    make(map[bzlmodule.ModuleKey][]bzlmodule.ModuleKey),
	}
}

// Start seeds the walk with the root module file and runs discovery until
// it either completes or needs fetches.
func (e *Engine) Start(rootFile *modulefile.File) (*Outcome, error) {
	rv, err := version.Parse(rootFile.ModuleVersion)
	if err != nil {
		return nil, fmt.Errorf("discovery: root module version: %w", err)
	}
	e.rootName = rootFile.ModuleName
	e.rootVersion = rv

	for name, ov := range rootFile.Overrides {
		e.overrides[name] = ov
	}

	root, err := e.buildModule(bzlmodule.Root, rootFile, true)
	if err != nil {
		return nil, err
	}
	e.insert(bzlmodule.Root, root)
	return e.advance()
}

// Resume supplies the results of fetching every key from the previous
// Outcome's Pending list (fetches not requested are ignored) and continues
// the walk.
func (e *Engine) Resume(results map[bzlmodule.ModuleKey]FetchResult) (*Outcome, error) {
	// Sorted for deterministic error attribution when several fetches in
	// the same batch fail.
	keys := make([]bzlmodule.ModuleKey, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sortKeys(keys)

	for _, key := range keys {
		if !e.pending[key] {
			continue
		}
		res := results[key]
		delete(e.pending, key)

		if res.Err != nil {
			parents := e.requestedBy[key]
			if isNotFound(res.Err) {
				return nil, &NotFoundError{Key: key, RequestedBy: parents, Cause: res.Err}
			}
			return nil, &RegistryIOError{Key: key, Cause: res.Err}
		}

		file, err := modulefile.Parse(key.String(), res.Content)
		if err != nil {
			return nil, err
		}
		m, err := e.buildModule(key, file, false)
		if err != nil {
			return nil, err
		}
		e.insert(key, m)
	}
	return e.advance()
}

func (e *Engine) insert(key bzlmodule.ModuleKey, m *bzlmodule.Module) {
	e.graph[key] = m
	e.order = append(e.order, key)
	e.queue = append(e.queue, key)
	delete(e.pending, key)
}

// advance drains the expansion queue, synchronously resolving built-in and
// non-registry-override deps as it goes, until either the queue and
// pending set are both empty (Done) or new fetches are required.
func (e *Engine) advance() (*Outcome, error) {
	for len(e.queue) > 0 {
		key := e.queue[0]
		e.queue = e.queue[1:]
		if err := e.expand(key); err != nil {
			return nil, err
		}
	}

	if len(e.pending) == 0 {
		return &Outcome{
			Done:  true,
			Graph: e.graph,
			Order: append([]bzlmodule.ModuleKey(nil), e.order...),
		}, nil
	}

	pendingKeys := make([]bzlmodule.ModuleKey, 0, len(e.pending))
	for k := range e.pending {
		pendingKeys = append(pendingKeys, k)
	}
	sortKeys(pendingKeys)
	return &Outcome{Pending: pendingKeys}, nil
}

// expand looks at one already-inserted module's deps and, for each target
// key not yet in the graph, either resolves it immediately (built-ins,
// local-path overrides with a reader, any non-registry override without
// one) or marks it pending for the caller to fetch.
func (e *Engine) expand(key bzlmodule.ModuleKey) error {
	m := e.graph[key]

	targets := make([]bzlmodule.ModuleKey, 0, len(m.DepOrder)+len(m.NodepDeps))
	for _, repoName := range m.DepOrder {
		targets = append(targets, m.Deps[repoName])
	}
	for _, target := range m.NodepDeps {
		targets = append(targets, target)
	}

	for _, target := range targets {
		if _, ok := e.graph[target]; ok {
			continue
		}
		if e.pending[target] {
			e.requestedBy[target] = append(e.requestedBy[target], key)
			continue
		}

		if bazeltools.IsBuiltin(target.Name) {
			e.insertTrivial(target)
			continue
		}

		if ov, ok := e.overrides[target.Name]; ok && bzlmodule.IsNonRegistry(ov) {
			if lp, ok := ov.(bzlmodule.LocalPathOverride); ok && e.localReader != nil {
				if data, rerr := e.localReader(lp.Path); rerr == nil {
					if file, perr := modulefile.Parse(lp.Path, data); perr == nil {
						if built, berr := e.buildModule(target, file, false); berr == nil {
							e.insert(target, built)
							continue
						}
					}
				}
			}
			e.insertTrivial(target)
			continue
		}

		e.pending[target] = true
		e.requestedBy[target] = append(e.requestedBy[target], key)
	}
	return nil
}

// insertTrivial inserts a dependency-free placeholder for a key discovery
// will never fetch a module file for: a built-in module, or a
// non-registry-overridden module whose source this engine has no way to
// read. The placeholder carries no marker of being unfetched, so
// inspect.Augment reports Loaded = true for it like for any other module.
func (e *Engine) insertTrivial(key bzlmodule.ModuleKey) {
	e.insert(key, &bzlmodule.Module{
		Key:          key,
		Name:         key.Name,
		Version:      key.Version,
		Deps:         map[string]bzlmodule.ModuleKey{},
		OriginalDeps: map[string]bzlmodule.ModuleKey{},
		NodepDeps:    map[string]bzlmodule.ModuleKey{},
	})
}

// buildModule converts a parsed module file at key into a bzlmodule.Module:
// applying the dev-dependency policy, override-driven version rewriting,
// and built-in module injection.
func (e *Engine) buildModule(key bzlmodule.ModuleKey, file *modulefile.File, isRoot bool) (*bzlmodule.Module, error) {
	declaredVersion := key.Version
	if fv, err := version.Parse(file.ModuleVersion); err == nil {
		// The file's own declared version can differ from the key's
		// version for an overridden module (the key collapses to EMPTY,
		// but the local/archive/git source still declares its real one).
		declaredVersion = fv
	}

	m := &bzlmodule.Module{
		Key:                          key,
		Name:                         file.ModuleName,
		Version:                      declaredVersion,
		CompatibilityLevel:           file.CompatibilityLevel,
		Deps:                         make(map[string]bzlmodule.ModuleKey),
		OriginalDeps:                 make(map[string]bzlmodule.ModuleKey),
		NodepDeps:                    make(map[string]bzlmodule.ModuleKey),
		DepMaxCompatibilityLevel:     make(map[string]int),
		ExecutionPlatformsToRegister: append([]string(nil), file.ExecutionPlatformsToRegister...),
		ToolchainsToRegister:         append([]string(nil), file.ToolchainsToRegister...),
		BazelCompatibility:           append([]string(nil), file.BazelCompatibility...),
	}

	keepDev := isRoot && e.includeDevDeps

	for _, dep := range file.Deps {
		if dep.DevDependency && !keepDev {
			continue
		}
		v, err := version.Parse(dep.Version)
		if err != nil {
			return nil, fmt.Errorf("discovery: module %s dep %s: %w", key, dep.Name, err)
		}
		repoName := dep.RepoName
		if repoName == "" {
			repoName = dep.Name
		}
		if _, exists := m.Deps[repoName]; exists {
			return nil, &RepoNameCollisionError{Module: key, RepoName: repoName}
		}

		target := rewrite(bzlmodule.ModuleKey{Name: dep.Name, Version: v}, e.rootName, e.rootVersion, e.overrides)
		m.Deps[repoName] = target
		m.OriginalDeps[repoName] = target
		m.DepOrder = append(m.DepOrder, repoName)
		if dep.MaxCompatibilityLevel > 0 {
			m.DepMaxCompatibilityLevel[repoName] = dep.MaxCompatibilityLevel
		}
	}

	for _, ext := range file.Extensions {
		if ext.DevDependency && !keepDev {
			continue
		}
		m.ExtensionUsages = append(m.ExtensionUsages, ext)
	}

	if !bazeltools.IsBuiltin(key.Name) {
		for _, builtin := range e.builtins {
			if _, exists := m.Deps[builtin.Name]; exists {
				continue
			}
			target := bzlmodule.ModuleKey{Name: builtin.Name, Version: version.Empty()}
			m.Deps[builtin.Name] = target
			m.OriginalDeps[builtin.Name] = target
			m.DepOrder = append(m.DepOrder, builtin.Name)
		}
	}

	return m, nil
}

// Overrides returns the root module's override table, including whatever
// Start folded in from the root file itself. Run uses this to decide how
// to fetch a non-registry-overridden module's source.
func (e *Engine) Overrides() map[string]bzlmodule.Override {
	return e.overrides
}

func sortKeys(keys []bzlmodule.ModuleKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Version.Less(keys[j].Version)
	})
}
