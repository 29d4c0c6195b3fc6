// Package transaction scopes statement execution to a unit of work. The
// runtime does not manage pooling itself; it works against database/sql
// handles (backed by pgx through the connector providers) and only decides
// when commit and rollback actually happen.
package transaction

import (
	"context"
	"database/sql"
)

// Conn is the executable surface a transaction hands to executors.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy it.
type Conn interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Transaction owns the connection handle for one session's statements.
// Conn is lazy: no database work happens until the first statement runs.
type Transaction interface {
	Conn(ctx context.Context) (Conn, error)
	Commit() error
	Rollback() error
	Close() error
}

// Factory builds transactions for new sessions. Selected once per
// environment at configuration time.
type Factory interface {
	NewTransaction(db *sql.DB, level sql.IsolationLevel, autoCommit bool) Transaction
}
