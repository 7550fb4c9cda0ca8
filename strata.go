package strata

import (
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/platform"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typed"
)

// --- Types ---

// Connection is the public handle: every repository operation goes through
// it.
type Connection = conn.Connection

// DocumentModel is a public alias for the typed document model.
type DocumentModel[T any] = typed.DocumentModel[T]

// TypedRepository is a public alias for the typed repository.
type TypedRepository[T any] = typed.Repository[T]

// --- Configuration ---

// Option defines a functional option for configuring strata.
type Option = platform.Option

// WithBackend injects a custom storage backend.
func WithBackend(b core.Backend) Option {
	return platform.WithBackend(b)
}

// WithLogger sets the logger for the connection and the backend.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithLifecycle injects a custom connection lifecycle hook.
func WithLifecycle(life conn.Lifecycle) Option {
	return platform.WithLifecycle(life)
}

// WithRepositoryID fixes the repository id instead of generating one.
func WithRepositoryID(id string) Option {
	return platform.WithRepositoryID(id)
}

// WithName sets the human-readable repository name.
func WithName(name string) Option {
	return platform.WithName(name)
}

// WithDescription sets the repository description.
func WithDescription(d string) Option {
	return platform.WithDescription(d)
}

// WithSnapshot makes the repository load from (and save to) a snapshot
// file.
func WithSnapshot(path string) Option {
	return platform.WithSnapshot(path)
}

// WithMustExist requires the snapshot file to already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithACLCapability sets how far ACLs are supported.
func WithACLCapability(c core.ACLCapability) Option {
	return platform.WithACLCapability(c)
}

// WithCapabilities overrides the optional capability set.
func WithCapabilities(caps core.Capabilities) Option {
	return platform.WithCapabilities(caps)
}

// WithPermissions declares repository permission names beyond the basic
// three.
func WithPermissions(names ...string) Option {
	return platform.WithPermissions(names...)
}

// WithPrincipalAnyone overrides the pseudo-principal granted to everyone.
func WithPrincipalAnyone(principal string) Option {
	return platform.WithPrincipalAnyone(principal)
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// --- Factory ---

// New assembles a repository connection from the options.
func New(opts ...Option) (*Connection, error) {
	return platform.New(opts...)
}

// Save persists the connection's backend to a snapshot file.
func Save(c *Connection, path string) error {
	return platform.Save(c, path)
}

// --- Typed Factories ---

// NewTypedRepository creates a type-safe wrapper for one document type.
func NewTypedRepository[T any](c *Connection, caller, typeID string) *typed.Repository[T] {
	return typed.NewRepository[T](c, caller, typeID)
}

// --- Utils ---

// FindRepositoryRoot recursively looks upwards for a repository indicator.
func FindRepositoryRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
