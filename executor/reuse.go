package executor

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Konsultn-Engineering/sqlbind/cache"
	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
)

// DefaultStatementCacheSize bounds a ReuseExecutor's prepared statements.
const DefaultStatementCacheSize = 128

// ReuseExecutor keeps prepared statements in an LRU cache keyed by the
// expanded SQL, so repeated invocations of the same statement skip the
// prepare round trip. Cached statements are closed on eviction and when the
// executor closes.
type ReuseExecutor struct {
	tx      transaction.Transaction
	factory HandlerFactory
	stmts   *cache.StatementCache
	logger  *slog.Logger
}

// NewReuseExecutor builds a statement-reusing executor over tx.
func NewReuseExecutor(tx transaction.Transaction, factory HandlerFactory, size int, logger *slog.Logger) *ReuseExecutor {
	if size <= 0 {
		size = DefaultStatementCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReuseExecutor{tx: tx, factory: factory, stmts: cache.NewStatementCache(size), logger: logger}
}

func (e *ReuseExecutor) Query(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) ([]map[string]any, error) {
	errctx.From(ctx).Resource(ms.Resource).Activity("executing a query").Object(ms.ID)

	h, err := e.factory(ctx, ms, params)
	if err != nil {
		return nil, err
	}
	stmt, err := e.prepared(ctx, ms, h.BoundSQL().SQL)
	if err != nil {
		return nil, err
	}
	return h.Query(ctx, stmt)
}

func (e *ReuseExecutor) Update(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (int64, error) {
	errctx.From(ctx).Resource(ms.Resource).Activity("executing an update").Object(ms.ID)

	h, err := e.factory(ctx, ms, params)
	if err != nil {
		return 0, err
	}
	stmt, err := e.prepared(ctx, ms, h.BoundSQL().SQL)
	if err != nil {
		return 0, err
	}
	return h.Update(ctx, stmt)
}

func (e *ReuseExecutor) prepared(ctx context.Context, ms *mapping.MappedStatement, sqlText string) (*sql.Stmt, error) {
	conn, err := e.tx.Conn(ctx)
	if err != nil {
		return nil, err
	}
	// Keyed by statement ID and expanded SQL: two statements expanding to the
	// same text still get their own prepared handles.
	key := cache.Mix(cache.Fingerprint(ms.ID), cache.Fingerprint(sqlText))
	stmt, err := e.stmts.GetOrPrepare(ctx, key, conn, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (e *ReuseExecutor) Commit(ctx context.Context) error {
	errctx.From(ctx).Activity("committing a transaction")
	// Statements prepared on the current transaction are closed by
	// database/sql when it ends; drop them before the handles go stale.
	e.stmts.Purge()
	return e.tx.Commit()
}

func (e *ReuseExecutor) Rollback(ctx context.Context) error {
	errctx.From(ctx).Activity("rolling back a transaction")
	e.stmts.Purge()
	return e.tx.Rollback()
}

func (e *ReuseExecutor) Close() error {
	if err := e.stmts.Close(); err != nil {
		e.logger.Warn("closing statement cache", "error", err)
	}
	return e.tx.Close()
}
