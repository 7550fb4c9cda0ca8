package conn

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/strata/pkg/core"
)

// ConnectionState exposes internal state for observability.
type ConnectionState struct {
	BackendType   string `json:"backend_type"`
	Watchable     bool   `json:"watchable"`
	LifecycleType string `json:"lifecycle_type"`
}

// State implements introspection.Introspectable.
func (c *Connection) State() any {
	backendType := "backend"
	if comp, ok := c.backend.(introspection.Component); ok {
		backendType = comp.ComponentType()
	}
	_, watchable := c.backend.(core.Watchable)

	lifeType := "strict-tokens"
	if comp, ok := c.life.(introspection.Component); ok {
		lifeType = comp.ComponentType()
	}

	return ConnectionState{
		BackendType:   backendType,
		Watchable:     watchable,
		LifecycleType: lifeType,
	}
}

// ComponentType implements introspection.Component.
func (c *Connection) ComponentType() string {
	return "connection"
}

var _ introspection.Introspectable = (*Connection)(nil)
var _ introspection.Component = (*Connection)(nil)
