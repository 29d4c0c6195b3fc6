package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/executor"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
)

// Factory opens sessions against one database handle. Safe for concurrent
// use; the sessions it opens are not.
type Factory struct {
	config    *Config
	db        *sql.DB
	txFactory transaction.Factory
}

// NewFactory wires a session factory. txManager selects the transaction
// manager by name ("local" or "managed"); empty means local.
func NewFactory(cfg *Config, db *sql.DB, txManager string) (*Factory, error) {
	txf, err := transaction.ForName(txManager, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Factory{config: cfg, db: db, txFactory: txf}, nil
}

// Options tune one session.
type Options struct {
	AutoCommit bool
	Isolation  sql.IsolationLevel
}

// Open starts a transactional session with default isolation.
func (f *Factory) Open() (*Session, error) {
	return f.OpenWith(Options{})
}

// OpenWith starts a session with explicit options.
func (f *Factory) OpenWith(opts Options) (*Session, error) {
	tx := f.txFactory.NewTransaction(f.db, opts.Isolation, opts.AutoCommit)
	exec, err := f.config.NewExecutor(tx)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	f.config.Logger.Debug("session opened", "session", id, "auto_commit", opts.AutoCommit)
	return &Session{
		id:     id,
		config: f.config,
		exec:   exec,
		logger: f.config.Logger.With(slog.String("session", id)),
	}, nil
}

// Session runs mapped statements inside one unit of work. Not safe for
// concurrent use.
type Session struct {
	id     string
	config *Config
	exec   executor.Executor
	logger *slog.Logger
	closed bool
}

func (s *Session) ID() string { return s.id }

// Query runs the select registered under id and returns its mapped rows.
func (s *Session) Query(ctx context.Context, id string, params map[string]any) ([]map[string]any, error) {
	ms, err := s.config.Statement(id)
	if err != nil {
		return nil, err
	}
	ec := errctx.New()
	rows, err := s.exec.Query(errctx.With(ctx, ec), ms, params)
	if err != nil {
		return nil, s.describe(ec, err)
	}
	return rows, nil
}

// QueryOne runs a select expected to return at most one row. No rows yields
// nil without error; more than one row is an error.
func (s *Session) QueryOne(ctx context.Context, id string, params map[string]any) (map[string]any, error) {
	rows, err := s.Query(ctx, id, params)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("session: statement %s returned %d rows, expected one", id, len(rows))
	}
}

// Exec runs the insert, update or delete registered under id and returns
// the affected row count.
func (s *Session) Exec(ctx context.Context, id string, params map[string]any) (int64, error) {
	ms, err := s.config.Statement(id)
	if err != nil {
		return 0, err
	}
	ec := errctx.New()
	n, err := s.exec.Update(errctx.With(ctx, ec), ms, params)
	if err != nil {
		return 0, s.describe(ec, err)
	}
	return n, nil
}

func (s *Session) Commit(ctx context.Context) error {
	ec := errctx.New()
	if err := s.exec.Commit(errctx.With(ctx, ec)); err != nil {
		return s.describe(ec, err)
	}
	return nil
}

func (s *Session) Rollback(ctx context.Context) error {
	ec := errctx.New()
	if err := s.exec.Rollback(errctx.With(ctx, ec)); err != nil {
		return s.describe(ec, err)
	}
	return nil
}

// Close releases the session's transaction. Uncommitted work is rolled
// back by the transaction manager's policy.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("session closed")
	return s.exec.Close()
}

// describe wraps err with the execution breadcrumbs collected on the way
// down, keeping err reachable for errors.Is and errors.As.
func (s *Session) describe(ec *errctx.Context, err error) error {
	detail := ec.String()
	if detail == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, detail)
}
