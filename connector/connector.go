// Package connector opens and pools database connections for sessions.
// Providers register per driver; sessions ask for a Connection by provider
// name and a Config.
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/Konsultn-Engineering/sqlbind/dialect"
)

// Connection is an open, pooled database handle plus the dialect sessions
// need to compile statements against it.
type Connection interface {
	DB() *sql.DB
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// Provider knows how to open connections for one driver.
type Provider interface {
	Connect(ctx context.Context, cfg Config) (Connection, error)
	Dialect() dialect.Dialect
}

var registry = struct {
	sync.RWMutex
	providers map[string]Provider
}{providers: make(map[string]Provider)}

// Register makes a provider available under name. Later registrations for
// the same name win.
func Register(name string, p Provider) {
	registry.Lock()
	defer registry.Unlock()
	registry.providers[name] = p
}

// Open connects through the named provider, honoring the config's retry
// policy when one is set.
func Open(ctx context.Context, name string, cfg Config) (Connection, error) {
	registry.RLock()
	p, ok := registry.providers[name]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connector: provider %q not registered", name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Retry != nil {
		return retryConnect(ctx, *cfg.Retry, func(ctx context.Context) (Connection, error) {
			return p.Connect(ctx, cfg)
		})
	}
	return p.Connect(ctx, cfg)
}
