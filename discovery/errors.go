package discovery

import (
	"errors"
	"fmt"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/registry"
)

// isNotFound reports whether err represents a registry miss rather than a
// transient I/O failure, so Resume can attribute it to NotFoundError
// instead of RegistryIOError.
func isNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotFound)
}

// RepoNameCollisionError reports two bazel_dep (or use_repo) declarations
// within a single module claiming the same local repo name.
type RepoNameCollisionError struct {
	Module   bzlmodule.ModuleKey
	RepoName string
}

func (e *RepoNameCollisionError) Error() string {
	return fmt.Sprintf("module %s declares repo name %q more than once", e.Module, e.RepoName)
}

// NotFoundError reports a dependency whose module/version was absent from
// every registry consulted, attributed to whichever modules requested it.
type NotFoundError struct {
	Key         bzlmodule.ModuleKey
	RequestedBy []bzlmodule.ModuleKey
	Cause       error
}

func (e *NotFoundError) Error() string {
	if len(e.RequestedBy) == 0 {
		return fmt.Sprintf("module %s not found", e.Key)
	}
	return fmt.Sprintf("module %s not found, required by %v", e.Key, e.RequestedBy)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// RegistryIOError wraps a transient registry failure (network error, 5xx,
// malformed response) as retryable by the host loop, per the core's
// contract that RegistryIO never becomes a persistent resolution error on
// its own.
type RegistryIOError struct {
	Key   bzlmodule.ModuleKey
	Cause error
}

func (e *RegistryIOError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Key, e.Cause)
}

func (e *RegistryIOError) Unwrap() error { return e.Cause }
