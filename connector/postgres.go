package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/Konsultn-Engineering/sqlbind/dialect"
)

func init() {
	Register("postgres", &PostgresProvider{})
}

// PostgresProvider opens pgx pools and exposes them through database/sql.
type PostgresProvider struct{}

func (*PostgresProvider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (pv *PostgresProvider) Connect(ctx context.Context, cfg Config) (Connection, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool := cfg.Pool
	if pool.MaxOpen <= 0 {
		pool.MaxOpen = 10
	}
	if pool.MaxIdle < 0 {
		pool.MaxIdle = 5
	}
	if pool.MaxLifetime == 0 {
		pool.MaxLifetime = time.Hour
	}
	if pool.MaxIdleTime == 0 {
		pool.MaxIdleTime = 30 * time.Minute
	}

	poolCfg, err := pgxpool.ParseConfig(buildPostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("connector: parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = int32(pool.MaxOpen)
	poolCfg.MinConns = int32(pool.MaxIdle)
	poolCfg.MaxConnLifetime = pool.MaxLifetime
	poolCfg.MaxConnIdleTime = pool.MaxIdleTime
	if pool.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = pool.HealthCheckFreq
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connector: open postgres pool: %w", err)
	}
	return &postgresConnection{pool: p, dialect: pv.Dialect()}, nil
}

func buildPostgresDSN(cfg Config) string {
	return NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, cfg.Port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params).
		Build()
}

type postgresConnection struct {
	pool    *pgxpool.Pool
	dialect dialect.Dialect

	dbOnce sync.Once
	db     *sql.DB
}

// DB adapts the pgx pool to database/sql, which is what executors and the
// statement cache run against. The handle is built once and shared; Close
// releases it alongside the pool.
func (c *postgresConnection) DB() *sql.DB {
	c.dbOnce.Do(func() {
		c.db = stdlib.OpenDBFromPool(c.pool)
	})
	return c.db
}

func (c *postgresConnection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *postgresConnection) Health(ctx context.Context) error {
	if c.pool == nil {
		return fmt.Errorf("connector: not connected")
	}
	return c.pool.Ping(ctx)
}

func (c *postgresConnection) Stats() ConnectionStats {
	if c.pool == nil {
		return ConnectionStats{}
	}
	s := c.pool.Stat()
	return ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *postgresConnection) Close() error {
	var err error
	if c.db != nil {
		err = c.db.Close()
		c.db = nil
	}
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return err
}
