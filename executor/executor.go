// Package executor runs mapped statements inside one transaction's scope.
package executor

import (
	"context"

	"github.com/Konsultn-Engineering/sqlbind/handler"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
)

// Executor is the statement-execution capability role a session drives.
// An executor owns its transaction: Commit, Rollback and Close act on it.
type Executor interface {
	Query(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) ([]map[string]any, error)
	Update(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close() error
}

// HandlerFactory builds the statement handler for one invocation. The
// session's configuration supplies it, applying key generation, template
// binding and interceptor wrapping before the executor sees the handler.
type HandlerFactory func(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (handler.StatementHandler, error)
