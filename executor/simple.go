package executor

import (
	"context"
	"log/slog"

	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
)

// SimpleExecutor prepares a fresh statement for every invocation and closes
// it when the invocation finishes.
type SimpleExecutor struct {
	tx      transaction.Transaction
	factory HandlerFactory
	logger  *slog.Logger
}

// NewSimpleExecutor builds an executor over tx.
func NewSimpleExecutor(tx transaction.Transaction, factory HandlerFactory, logger *slog.Logger) *SimpleExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimpleExecutor{tx: tx, factory: factory, logger: logger}
}

func (e *SimpleExecutor) Query(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) ([]map[string]any, error) {
	errctx.From(ctx).Resource(ms.Resource).Activity("executing a query").Object(ms.ID)

	h, err := e.factory(ctx, ms, params)
	if err != nil {
		return nil, err
	}
	conn, err := e.tx.Conn(ctx)
	if err != nil {
		return nil, err
	}
	stmt, err := h.Prepare(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return h.Query(ctx, stmt)
}

func (e *SimpleExecutor) Update(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (int64, error) {
	errctx.From(ctx).Resource(ms.Resource).Activity("executing an update").Object(ms.ID)

	h, err := e.factory(ctx, ms, params)
	if err != nil {
		return 0, err
	}
	conn, err := e.tx.Conn(ctx)
	if err != nil {
		return 0, err
	}
	stmt, err := h.Prepare(ctx, conn)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	return h.Update(ctx, stmt)
}

func (e *SimpleExecutor) Commit(ctx context.Context) error {
	errctx.From(ctx).Activity("committing a transaction")
	return e.tx.Commit()
}

func (e *SimpleExecutor) Rollback(ctx context.Context) error {
	errctx.From(ctx).Activity("rolling back a transaction")
	return e.tx.Rollback()
}

func (e *SimpleExecutor) Close() error {
	return e.tx.Close()
}
