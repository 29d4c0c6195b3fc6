package transaction

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// LocalFactory builds driver-managed transactions: the runtime itself opens,
// commits and rolls back through database/sql.
type LocalFactory struct {
	Logger *slog.Logger
}

func (f LocalFactory) NewTransaction(db *sql.DB, level sql.IsolationLevel, autoCommit bool) Transaction {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalTransaction{db: db, level: level, autoCommit: autoCommit, logger: logger}
}

// LocalTransaction defers BeginTx until the first statement needs a
// connection. In auto-commit mode statements run directly against the pool
// and Commit/Rollback are no-ops.
type LocalTransaction struct {
	db         *sql.DB
	tx         *sql.Tx
	level      sql.IsolationLevel
	autoCommit bool
	logger     *slog.Logger
}

func (t *LocalTransaction) Conn(ctx context.Context) (Conn, error) {
	if t.autoCommit {
		return t.db, nil
	}
	if t.tx == nil {
		tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: t.level})
		if err != nil {
			return nil, fmt.Errorf("transaction: begin: %w", err)
		}
		t.logger.Debug("opened local transaction", "isolation", t.level.String())
		t.tx = tx
	}
	return t.tx, nil
}

func (t *LocalTransaction) Commit() error {
	if t.autoCommit || t.tx == nil {
		return nil
	}
	err := t.tx.Commit()
	t.tx = nil
	if err != nil {
		return fmt.Errorf("transaction: commit: %w", err)
	}
	t.logger.Debug("committed local transaction")
	return nil
}

func (t *LocalTransaction) Rollback() error {
	if t.autoCommit || t.tx == nil {
		return nil
	}
	err := t.tx.Rollback()
	t.tx = nil
	if err != nil {
		return fmt.Errorf("transaction: rollback: %w", err)
	}
	t.logger.Debug("rolled back local transaction")
	return nil
}

func (t *LocalTransaction) Close() error {
	// An uncommitted transaction is rolled back, never silently committed.
	return t.Rollback()
}
