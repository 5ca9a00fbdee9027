package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bazeldeps/resolve/discovery"
	"github.com/bazeldeps/resolve/registry"
)

// YankPolicy controls how a resolved graph containing a yanked version is
// treated; left to caller policy rather than a single hardcoded behavior.
type YankPolicy int

const (
	// YankWarn logs the yanked module at warn level and keeps it in the
	// resolved graph. This is the default.
	YankWarn YankPolicy = iota
	// YankError fails the resolution outright.
	YankError
	// YankIgnore does nothing; the yanked version is resolved silently.
	YankIgnore
)

// Option configures a Resolve call.
type Option func(*config) error

// config accumulates Option values before Resolve validates and uses them:
// a plain struct plus small functional-option setters, validated once up
// front.
type config struct {
	includeDevDeps bool
	bazelVersion   string
	registries     []string
	maxConcurrency int
	localReader    discovery.LocalFileReader
	yankPolicy     YankPolicy
	httpClient     *http.Client
	logger         *slog.Logger
	timeout        time.Duration
	cache          registry.Cache

	// testRegistry, when set, is used verbatim instead of building a
	// registry.Chain from registries. Only set by this package's own
	// tests; there is no exported Option for it since a real caller
	// configures registries by URL, not by injecting a Registry value.
	testRegistry registry.Registry
}

// WithDevDeps includes the root module's dev_dependency bazel_deps and
// use_extensions in the resolution.
func WithDevDeps() Option {
	return func(c *config) error {
		c.includeDevDeps = true
		return nil
	}
}

// WithBazelVersion sets the Bazel version that Result.FieldWarnings checks
// fields against. It is also passed to Discovery, whose injected built-in
// set (bazel_tools, local_config_platform) is the same for every version.
func WithBazelVersion(v string) Option {
	return func(c *config) error {
		c.bazelVersion = v
		return nil
	}
}

// WithRegistries sets the registry URLs to search, in priority order. The
// first registry a module is found in is used for every version of that
// module (matching registry.Chain's contract). Without it,
// registry.DefaultURLs is used.
func WithRegistries(urls ...string) Option {
	return func(c *config) error {
		c.registries = append(c.registries, urls...)
		return nil
	}
}

// WithMaxConcurrency bounds how many MODULE.bazel files discovery.Run
// fetches in parallel within one round.
func WithMaxConcurrency(n int) Option {
	return func(c *config) error {
		c.maxConcurrency = n
		return nil
	}
}

// WithLocalFileReader supplies the hook Discovery uses to read through a
// local_path_override instead of treating it as an opaque leaf.
func WithLocalFileReader(r discovery.LocalFileReader) Option {
	return func(c *config) error {
		c.localReader = r
		return nil
	}
}

// WithYankPolicy sets how a yanked version surfaces once resolved.
func WithYankPolicy(p YankPolicy) Option {
	return func(c *config) error {
		c.yankPolicy = p
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for registry requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		c.httpClient = client
		return nil
	}
}

// WithLogger sets a structured logger for resolution diagnostics. Resolve
// is silent by default; pass slog.Default() to opt back in.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithTimeout sets the per-request HTTP timeout used when building the
// default registry client.
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.timeout = d
		return nil
	}
}

// WithCache sets an external cache for fetched MODULE.bazel files, shared
// across the registry chain's clients.
func WithCache(cache registry.Cache) Option {
	return func(c *config) error {
		c.cache = cache
		return nil
	}
}

func (c *config) validate() error {
	if c.maxConcurrency < 0 {
		return errors.New("resolve: MaxConcurrency must not be negative")
	}
	if c.timeout < 0 {
		return errors.New("resolve: timeout must not be negative")
	}
	return nil
}

func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a no-op slog.Handler, used when the caller never opts
// into logging via WithLogger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		maxConcurrency: discovery.DefaultMaxConcurrency,
		timeout:        15 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if len(c.registries) == 0 {
		c.registries = append([]string(nil), registry.DefaultURLs...)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
