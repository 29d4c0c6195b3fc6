package transaction

import (
	"context"
	"database/sql"
	"log/slog"
)

// ManagedFactory builds transactions whose lifecycle belongs to a hosting
// container (an outer framework or an ambient distributed transaction).
// Commit and Rollback requests from the runtime are ignored; only the
// container's own demarcation takes effect.
type ManagedFactory struct {
	// CloseConnection controls whether Close releases the handle. Containers
	// that pool connections themselves set this to false.
	CloseConnection bool
	Logger          *slog.Logger
}

func (f ManagedFactory) NewTransaction(db *sql.DB, _ sql.IsolationLevel, _ bool) Transaction {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ManagedTransaction{db: db, closeConn: f.CloseConnection, logger: logger}
}

// ManagedTransaction executes statements on the raw handle and leaves all
// transaction demarcation to the container. Running update statements under
// a managed transaction without a container that commits means the writes
// never take effect.
type ManagedTransaction struct {
	db        *sql.DB
	closeConn bool
	logger    *slog.Logger
}

func (t *ManagedTransaction) Conn(ctx context.Context) (Conn, error) {
	t.logger.Debug("using container-managed connection")
	return t.db, nil
}

// Commit does nothing: the container manages the transaction.
func (t *ManagedTransaction) Commit() error { return nil }

// Rollback does nothing: the container manages the transaction.
func (t *ManagedTransaction) Rollback() error { return nil }

func (t *ManagedTransaction) Close() error {
	if !t.closeConn {
		return nil
	}
	t.logger.Debug("closing container-managed connection")
	return t.db.Close()
}
