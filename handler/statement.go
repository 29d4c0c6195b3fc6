// Package handler drives one statement's execution against a connection:
// prepare, bind arguments, run, and hand rows to the result handler.
package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/param"
	"github.com/Konsultn-Engineering/sqlbind/result"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
)

// StatementHandler is the statement-execution capability role.
type StatementHandler interface {
	// BoundSQL exposes the executable SQL and its parameter mappings.
	BoundSQL() *mapping.BoundSQL
	// Prepare compiles the statement on conn. Callers own the returned
	// statement's lifetime (close or cache it).
	Prepare(ctx context.Context, conn transaction.Conn) (*sql.Stmt, error)
	// Query runs the prepared statement and maps its rows.
	Query(ctx context.Context, stmt *sql.Stmt) ([]map[string]any, error)
	// Update runs the prepared statement and reports affected rows.
	Update(ctx context.Context, stmt *sql.Stmt) (int64, error)
}

// PreparedHandler is the stock StatementHandler for placeholder statements.
type PreparedHandler struct {
	ms      *mapping.MappedStatement
	bound   *mapping.BoundSQL
	binder  param.Binder
	results result.Handler
	logger  *slog.Logger
}

// NewPreparedHandler wires a handler for one invocation of ms. The binder
// and result handler arrive already built (and possibly wrapped by
// interceptors).
func NewPreparedHandler(ms *mapping.MappedStatement, bound *mapping.BoundSQL, binder param.Binder, results result.Handler, logger *slog.Logger) *PreparedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreparedHandler{ms: ms, bound: bound, binder: binder, results: results, logger: logger}
}

func (h *PreparedHandler) BoundSQL() *mapping.BoundSQL {
	return h.bound
}

func (h *PreparedHandler) Prepare(ctx context.Context, conn transaction.Conn) (*sql.Stmt, error) {
	errctx.From(ctx).Activity("preparing the statement").Object(h.ms.ID).SQL(h.bound.SQL)

	stmt, err := conn.PrepareContext(ctx, h.bound.SQL)
	if err != nil {
		return nil, fmt.Errorf("handler: preparing %s: %w", h.ms.ID, err)
	}
	return stmt, nil
}

func (h *PreparedHandler) Query(ctx context.Context, stmt *sql.Stmt) ([]map[string]any, error) {
	ctx, cancel := h.applyTimeout(ctx)
	defer cancel()

	args, err := h.binder.Bind(ctx)
	if err != nil {
		return nil, err
	}

	errctx.From(ctx).Activity("executing a query").Object(h.ms.ID).SQL(h.bound.SQL)
	h.logger.Debug("executing query", "statement", h.ms.ID, "args", len(args))

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}

	errctx.From(ctx).Activity("handling results").Object(h.ms.ID)
	return h.results.HandleRows(rows)
}

func (h *PreparedHandler) Update(ctx context.Context, stmt *sql.Stmt) (int64, error) {
	ctx, cancel := h.applyTimeout(ctx)
	defer cancel()

	args, err := h.binder.Bind(ctx)
	if err != nil {
		return 0, err
	}

	errctx.From(ctx).Activity("executing an update").Object(h.ms.ID).SQL(h.bound.SQL)
	h.logger.Debug("executing update", "statement", h.ms.ID, "args", len(args))

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("handler: affected rows for %s: %w", h.ms.ID, err)
	}
	return affected, nil
}

func (h *PreparedHandler) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.ms.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.ms.Timeout)
}
