// Package platform is the composition root: it wires a storage backend, a
// connection and the optional snapshot persistence together from functional
// options. The public strata package re-exports it.
package platform

import (
	"errors"
	"io/fs"
	"os"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

// New builds a connection over a backend assembled from the options: an
// injected backend, a snapshot-loaded store, or a fresh in-memory one.
func New(opts ...Option) (*conn.Connection, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	backend := o.backend
	if backend == nil {
		store, err := openStore(o)
		if err != nil {
			return nil, err
		}
		backend = store
	}

	connOpts := []conn.Option{conn.WithLogger(o.logger)}
	if o.lifecycle != nil {
		connOpts = append(connOpts, conn.WithLifecycle(o.lifecycle))
	}
	return conn.New(backend, connOpts...), nil
}

func openStore(o *options) (*memory.Store, error) {
	cfg := memory.Config{
		RepositoryID:    o.repositoryID,
		Name:            o.name,
		Description:     o.description,
		ACLCapability:   o.aclCapability,
		Capabilities:    o.capabilities,
		PrincipalAnyone: o.anyone,
		Permissions:     o.permissions,
		Logger:          o.logger,
		Clock:           o.clock,
	}

	if o.snapshotPath != "" {
		if _, err := os.Stat(o.snapshotPath); err == nil {
			return memory.LoadSnapshot(o.snapshotPath, cfg)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, core.Wrap(core.ErrStorage, err, "checking snapshot %q", o.snapshotPath)
		}
	}
	if o.mustExist {
		return nil, core.Errorf(core.ErrStorage, "snapshot %q does not exist", o.snapshotPath)
	}
	return memory.New(cfg), nil
}

// Save persists the connection's backend to a snapshot file. Only the
// in-memory store knows how to snapshot itself.
func Save(c *conn.Connection, path string) error {
	store, ok := c.Backend().(*memory.Store)
	if !ok {
		return core.Errorf(core.ErrNotSupported, "backend does not support snapshots")
	}
	return store.SaveSnapshot(path)
}
