// Package conn implements the connection layer: the single entry point for
// every repository operation. It validates each call against the type
// system, the versioning state and the repository's capabilities, delegates
// to the storage backend, and shapes results into filtered, paginated
// projections.
package conn

import (
	"context"
	"log/slog"

	"github.com/aretw0/strata/pkg/core"
)

// Lifecycle is the per-connection strategy hook. The composing process
// injects one; the connection never reaches for ambient state.
type Lifecycle interface {
	// CheckConnection runs before every operation, typically verifying the
	// caller is still attached to a live session.
	CheckConnection(ctx context.Context, caller string) error

	// ValidateChangeToken compares the token a caller last observed against
	// the object's current one. A mismatch is an optimistic-concurrency
	// conflict.
	ValidateChangeToken(ctx context.Context, obj core.Object, supplied string) error
}

// StrictTokens is the standard Lifecycle: callers may omit the change token,
// but a supplied token must match exactly.
type StrictTokens struct{}

// CheckConnection implements Lifecycle.
func (StrictTokens) CheckConnection(ctx context.Context, caller string) error { return nil }

// ValidateChangeToken implements Lifecycle.
func (StrictTokens) ValidateChangeToken(ctx context.Context, obj core.Object, supplied string) error {
	if supplied == "" {
		return nil
	}
	if current := obj.Core().ChangeToken; supplied != current {
		return core.Errorf(core.ErrConflict, "change token %q is stale for object %q", supplied, obj.Core().ID)
	}
	return nil
}

// Connection orchestrates repository operations against one backend. It is
// stateless per call and safe for concurrent use; every blocking step is the
// backend's.
type Connection struct {
	backend core.Backend
	life    Lifecycle
	logger  *slog.Logger
}

// Option configures a Connection.
type Option func(*Connection)

// WithLogger sets the logger. A nil logger silences the connection.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) { c.logger = logger }
}

// WithLifecycle injects a custom lifecycle hook.
func WithLifecycle(life Lifecycle) Option {
	return func(c *Connection) { c.life = life }
}

// New builds a connection over a backend.
func New(backend core.Backend, opts ...Option) *Connection {
	c := &Connection{
		backend: backend,
		life:    StrictTokens{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend exposes the underlying storage contract, mainly for composition
// roots that need to wire extra adapters around it.
func (c *Connection) Backend() core.Backend { return c.backend }

// begin runs the pre-operation hook and resolves the repository info the
// operation will validate against.
func (c *Connection) begin(ctx context.Context, caller string) (*core.RepositoryInfo, error) {
	if err := c.life.CheckConnection(ctx, caller); err != nil {
		return nil, err
	}
	info, err := c.backend.RepositoryInfo(ctx)
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, err, "loading repository info")
	}
	return info, nil
}

// RepositoryInfo returns the backend's repository descriptor.
func (c *Connection) RepositoryInfo(ctx context.Context, caller string) (*core.RepositoryInfo, error) {
	return c.begin(ctx, caller)
}

func (c *Connection) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Connection) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
