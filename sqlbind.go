// Package sqlbind is the front door: open a connection through a registered
// provider, build a configuration of mapped statements and interceptors, and
// open sessions to run them.
package sqlbind

import (
	"context"

	"github.com/Konsultn-Engineering/sqlbind/connector"
	"github.com/Konsultn-Engineering/sqlbind/dialect"
	"github.com/Konsultn-Engineering/sqlbind/session"
)

type (
	Config  = session.Config
	Factory = session.Factory
	Session = session.Session
	Options = session.Options
)

const (
	ExecutorSimple = session.ExecutorSimple
	ExecutorReuse  = session.ExecutorReuse
)

// Connect opens a pooled connection through the named provider.
func Connect(ctx context.Context, provider string, cfg connector.Config) (connector.Connection, error) {
	return connector.Open(ctx, provider, cfg)
}

// NewConfig starts an empty configuration for the given dialect.
func NewConfig(d dialect.Dialect) *Config {
	return session.NewConfig(d)
}

// NewFactory builds a session factory over an open connection, using its
// dialect-matched database handle.
func NewFactory(cfg *Config, conn connector.Connection, txManager string) (*Factory, error) {
	return session.NewFactory(cfg, conn.DB(), txManager)
}
