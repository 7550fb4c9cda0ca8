package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

// options holds the internal configuration for a strata repository.
type options struct {
	backend      core.Backend
	logger       *slog.Logger
	lifecycle    conn.Lifecycle
	repositoryID string
	name         string
	description  string

	snapshotPath string
	mustExist    bool

	aclCapability core.ACLCapability
	capabilities  *core.Capabilities
	permissions   []string
	anyone        string
	clock         func() time.Time
}

// Option defines a functional option for configuring strata.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithBackend injects a custom storage backend. If provided, the default
// in-memory adapter (and any snapshot loading) is skipped.
func WithBackend(b core.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sets the logger for the connection and the backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLifecycle injects a custom connection lifecycle hook.
func WithLifecycle(life conn.Lifecycle) Option {
	return func(o *options) { o.lifecycle = life }
}

// WithRepositoryID fixes the repository id instead of generating one.
func WithRepositoryID(id string) Option {
	return func(o *options) { o.repositoryID = id }
}

// WithName sets the human-readable repository name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDescription sets the repository description.
func WithDescription(d string) Option {
	return func(o *options) { o.description = d }
}

// WithSnapshot makes the repository load from (and save to) a snapshot
// file. A missing file starts empty unless WithMustExist is set.
func WithSnapshot(path string) Option {
	return func(o *options) { o.snapshotPath = path }
}

// WithMustExist requires the snapshot file to already exist.
func WithMustExist(must bool) Option {
	return func(o *options) { o.mustExist = must }
}

// WithACLCapability sets how far ACLs are supported (none, discover,
// manage). Defaults to manage.
func WithACLCapability(c core.ACLCapability) Option {
	return func(o *options) { o.aclCapability = c }
}

// WithCapabilities overrides the optional capability set. Defaults to
// everything enabled.
func WithCapabilities(caps core.Capabilities) Option {
	return func(o *options) { o.capabilities = &caps }
}

// WithPermissions declares repository permission names beyond the basic
// three.
func WithPermissions(names ...string) Option {
	return func(o *options) { o.permissions = names }
}

// WithPrincipalAnyone overrides the pseudo-principal granted to everyone.
func WithPrincipalAnyone(principal string) Option {
	return func(o *options) { o.anyone = principal }
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}
