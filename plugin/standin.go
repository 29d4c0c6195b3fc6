package plugin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqlbind/executor"
	"github.com/Konsultn-Engineering/sqlbind/handler"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/param"
	"github.com/Konsultn-Engineering/sqlbind/result"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
)

// The stand-in types below are the wrapping layer: one per capability role,
// each implementing its role's full interface. A declared method routes
// through the interceptor with a proceed closure bound to the inner target;
// every other method delegates directly, so errors and results from
// unintercepted calls reach the caller untouched.

// arg asserts one proceed argument back to its declared type. A nil slot
// yields the type's zero value so interceptors may blank out arguments
// such as optional parameter maps.
func arg[T any](inv *Invocation, args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("plugin: %v.%s expects argument %d, got %d arguments", inv.Role, inv.Method, i, len(args))
	}
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("plugin: %v.%s argument %d: have %T, want %T", inv.Role, inv.Method, i, args[i], zero)
	}
	return v, nil
}

// ret asserts the interceptor's result to the operation's declared return
// type. nil maps to the zero value, letting interceptors suppress results.
func ret[T any](inv *Invocation, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("plugin: %v.%s interceptor returned %T, want %T", inv.Role, inv.Method, v, zero)
	}
	return out, nil
}

type executorStandIn struct {
	target  executor.Executor
	itc     Interceptor
	methods methodSet
}

func (s *executorStandIn) Query(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) ([]map[string]any, error) {
	if !s.methods.has("Query") {
		return s.target.Query(ctx, ms, params)
	}
	inv := &Invocation{Target: s.target, Role: RoleExecutor, Method: "Query", Args: []any{ctx, ms, params}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		m, err := arg[*mapping.MappedStatement](inv, args, 1)
		if err != nil {
			return nil, err
		}
		p, err := arg[map[string]any](inv, args, 2)
		if err != nil {
			return nil, err
		}
		return s.target.Query(c, m, p)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return nil, err
	}
	return ret[[]map[string]any](inv, v)
}

func (s *executorStandIn) Update(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (int64, error) {
	if !s.methods.has("Update") {
		return s.target.Update(ctx, ms, params)
	}
	inv := &Invocation{Target: s.target, Role: RoleExecutor, Method: "Update", Args: []any{ctx, ms, params}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		m, err := arg[*mapping.MappedStatement](inv, args, 1)
		if err != nil {
			return nil, err
		}
		p, err := arg[map[string]any](inv, args, 2)
		if err != nil {
			return nil, err
		}
		return s.target.Update(c, m, p)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return 0, err
	}
	return ret[int64](inv, v)
}

func (s *executorStandIn) Commit(ctx context.Context) error {
	if !s.methods.has("Commit") {
		return s.target.Commit(ctx)
	}
	inv := &Invocation{Target: s.target, Role: RoleExecutor, Method: "Commit", Args: []any{ctx}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		return nil, s.target.Commit(c)
	}
	_, err := s.itc.Intercept(inv)
	return err
}

func (s *executorStandIn) Rollback(ctx context.Context) error {
	if !s.methods.has("Rollback") {
		return s.target.Rollback(ctx)
	}
	inv := &Invocation{Target: s.target, Role: RoleExecutor, Method: "Rollback", Args: []any{ctx}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		return nil, s.target.Rollback(c)
	}
	_, err := s.itc.Intercept(inv)
	return err
}

func (s *executorStandIn) Close() error {
	if !s.methods.has("Close") {
		return s.target.Close()
	}
	inv := &Invocation{Target: s.target, Role: RoleExecutor, Method: "Close"}
	inv.call = func([]any) (any, error) {
		return nil, s.target.Close()
	}
	_, err := s.itc.Intercept(inv)
	return err
}

type binderStandIn struct {
	target  param.Binder
	itc     Interceptor
	methods methodSet
}

// ParameterObject carries no error return, so it is never interceptable and
// always delegates.
func (s *binderStandIn) ParameterObject() map[string]any {
	return s.target.ParameterObject()
}

func (s *binderStandIn) Bind(ctx context.Context) ([]any, error) {
	if !s.methods.has("Bind") {
		return s.target.Bind(ctx)
	}
	inv := &Invocation{Target: s.target, Role: RoleParameterBinder, Method: "Bind", Args: []any{ctx}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		return s.target.Bind(c)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return nil, err
	}
	return ret[[]any](inv, v)
}

type resultStandIn struct {
	target  result.Handler
	itc     Interceptor
	methods methodSet
}

func (s *resultStandIn) HandleRows(rows *sql.Rows) ([]map[string]any, error) {
	if !s.methods.has("HandleRows") {
		return s.target.HandleRows(rows)
	}
	inv := &Invocation{Target: s.target, Role: RoleResultSetHandler, Method: "HandleRows", Args: []any{rows}}
	inv.call = func(args []any) (any, error) {
		r, err := arg[*sql.Rows](inv, args, 0)
		if err != nil {
			return nil, err
		}
		return s.target.HandleRows(r)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return nil, err
	}
	return ret[[]map[string]any](inv, v)
}

type statementStandIn struct {
	target  handler.StatementHandler
	itc     Interceptor
	methods methodSet
}

// BoundSQL is an accessor without an error return and always delegates.
func (s *statementStandIn) BoundSQL() *mapping.BoundSQL {
	return s.target.BoundSQL()
}

func (s *statementStandIn) Prepare(ctx context.Context, conn transaction.Conn) (*sql.Stmt, error) {
	if !s.methods.has("Prepare") {
		return s.target.Prepare(ctx, conn)
	}
	inv := &Invocation{Target: s.target, Role: RoleStatementHandler, Method: "Prepare", Args: []any{ctx, conn}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		cn, err := arg[transaction.Conn](inv, args, 1)
		if err != nil {
			return nil, err
		}
		return s.target.Prepare(c, cn)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return nil, err
	}
	return ret[*sql.Stmt](inv, v)
}

func (s *statementStandIn) Query(ctx context.Context, stmt *sql.Stmt) ([]map[string]any, error) {
	if !s.methods.has("Query") {
		return s.target.Query(ctx, stmt)
	}
	inv := &Invocation{Target: s.target, Role: RoleStatementHandler, Method: "Query", Args: []any{ctx, stmt}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		st, err := arg[*sql.Stmt](inv, args, 1)
		if err != nil {
			return nil, err
		}
		return s.target.Query(c, st)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return nil, err
	}
	return ret[[]map[string]any](inv, v)
}

func (s *statementStandIn) Update(ctx context.Context, stmt *sql.Stmt) (int64, error) {
	if !s.methods.has("Update") {
		return s.target.Update(ctx, stmt)
	}
	inv := &Invocation{Target: s.target, Role: RoleStatementHandler, Method: "Update", Args: []any{ctx, stmt}}
	inv.call = func(args []any) (any, error) {
		c, err := arg[context.Context](inv, args, 0)
		if err != nil {
			return nil, err
		}
		st, err := arg[*sql.Stmt](inv, args, 1)
		if err != nil {
			return nil, err
		}
		return s.target.Update(c, st)
	}
	v, err := s.itc.Intercept(inv)
	if err != nil {
		return 0, err
	}
	return ret[int64](inv, v)
}
