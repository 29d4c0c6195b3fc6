// Package session is the top of the runtime: configuration built once at
// startup, and sessions opened per unit of work that run mapped statements
// through executors, binders, result handlers and the interceptor chain.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Konsultn-Engineering/sqlbind/builder"
	"github.com/Konsultn-Engineering/sqlbind/dialect"
	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/executor"
	"github.com/Konsultn-Engineering/sqlbind/handler"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/naming"
	"github.com/Konsultn-Engineering/sqlbind/param"
	"github.com/Konsultn-Engineering/sqlbind/plugin"
	"github.com/Konsultn-Engineering/sqlbind/result"
	"github.com/Konsultn-Engineering/sqlbind/transaction"
	"github.com/Konsultn-Engineering/sqlbind/typehandler"
)

// ExecutorKind selects how an executor treats prepared statements.
type ExecutorKind string

const (
	// ExecutorSimple prepares a fresh statement per invocation.
	ExecutorSimple ExecutorKind = "simple"
	// ExecutorReuse caches prepared statements for the session's lifetime.
	ExecutorReuse ExecutorKind = "reuse"
)

// Config holds everything shared across sessions: the statement registry,
// dialect, naming and properties, type handlers and the interceptor chain.
// Build it fully during startup; it is read-only once sessions open.
type Config struct {
	Dialect  dialect.Dialect
	Naming   naming.Strategy
	Props    map[string]string
	Logger   *slog.Logger
	Executor ExecutorKind

	typeHandlers *typehandler.Registry
	plugins      *plugin.Chain
	statements   map[string]*mapping.MappedStatement
}

func NewConfig(d dialect.Dialect) *Config {
	logger := slog.Default()
	return &Config{
		Dialect:      d,
		Naming:       naming.Default(),
		Logger:       logger,
		Executor:     ExecutorSimple,
		typeHandlers: typehandler.NewRegistry(),
		plugins:      plugin.NewChain(logger),
		statements:   make(map[string]*mapping.MappedStatement),
	}
}

// AddStatement registers one mapped statement. IDs are unique across the
// whole configuration, namespaces included.
func (c *Config) AddStatement(ms *mapping.MappedStatement) error {
	if ms.ID == "" {
		return fmt.Errorf("session: statement without id from %s", ms.Resource)
	}
	if _, dup := c.statements[ms.ID]; dup {
		return fmt.Errorf("session: duplicate statement id %q", ms.ID)
	}
	c.statements[ms.ID] = ms
	return nil
}

// LoadMapperFile parses a mapper file and registers its statements.
func (c *Config) LoadMapperFile(path string) error {
	stmts, err := builder.LoadMapperFile(path)
	if err != nil {
		return err
	}
	for _, ms := range stmts {
		if err := c.AddStatement(ms); err != nil {
			return err
		}
	}
	c.Logger.Debug("mapper loaded", "resource", path, "statements", len(stmts))
	return nil
}

// Statement looks up a registered statement by its qualified ID.
func (c *Config) Statement(id string) (*mapping.MappedStatement, error) {
	ms, ok := c.statements[id]
	if !ok {
		return nil, fmt.Errorf("session: statement %q is not registered", id)
	}
	return ms, nil
}

// Use registers an interceptor with its properties. Declaration mistakes
// surface here, during configuration.
func (c *Config) Use(itc plugin.Interceptor, props map[string]string) error {
	return c.plugins.Register(itc, props)
}

// TypeHandlers exposes the registry so callers can add converters.
func (c *Config) TypeHandlers() *typehandler.Registry {
	return c.typeHandlers
}

// NewExecutor builds the configured executor kind over tx and runs it
// through the interceptor chain.
func (c *Config) NewExecutor(tx transaction.Transaction) (executor.Executor, error) {
	factory := c.handlerFactory()

	var e executor.Executor
	switch c.Executor {
	case "", ExecutorSimple:
		e = executor.NewSimpleExecutor(tx, factory, c.Logger)
	case ExecutorReuse:
		e = executor.NewReuseExecutor(tx, factory, executor.DefaultStatementCacheSize, c.Logger)
	default:
		return nil, fmt.Errorf("session: unknown executor kind %q", c.Executor)
	}

	wrapped, err := c.plugins.WrapAll(e)
	if err != nil {
		return nil, err
	}
	out, ok := wrapped.(executor.Executor)
	if !ok {
		return nil, fmt.Errorf("session: interceptor chain produced %T, not an executor", wrapped)
	}
	return out, nil
}

// handlerFactory assembles the per-invocation pipeline: key generation for
// inserts, template binding, then binder, result handler and statement
// handler, each offered to the interceptor chain.
func (c *Config) handlerFactory() executor.HandlerFactory {
	translator := mapping.NewTranslator(c.Dialect, c.Naming, c.Props)

	return func(ctx context.Context, ms *mapping.MappedStatement, params map[string]any) (handler.StatementHandler, error) {
		if ms.Command == mapping.CommandInsert && ms.KeyGenerator != nil && ms.KeyGenerator.Type() != "none" {
			if params == nil {
				params = make(map[string]any, 1)
			}
			// Key generation is a nested concern; its breadcrumbs must not
			// clobber the statement's own.
			ec := errctx.From(ctx).Store()
			ec.Activity("generating a key").Object(ms.ID)
			err := ms.KeyGenerator.Assign(params, ms.KeyProperty)
			ec.Recall()
			if err != nil {
				return nil, fmt.Errorf("session: statement %s: %w", ms.ID, err)
			}
		}

		bound, err := translator.Bind(ms, params)
		if err != nil {
			return nil, err
		}

		binder, err := c.wrapBinder(param.NewDefaultBinder(ms, bound, c.typeHandlers))
		if err != nil {
			return nil, err
		}
		results, err := c.wrapResultHandler(result.NewMapHandler(c.Naming))
		if err != nil {
			return nil, err
		}
		return c.wrapStatementHandler(handler.NewPreparedHandler(ms, bound, binder, results, c.Logger))
	}
}

func (c *Config) wrapBinder(b param.Binder) (param.Binder, error) {
	wrapped, err := c.plugins.WrapAll(b)
	if err != nil {
		return nil, err
	}
	out, ok := wrapped.(param.Binder)
	if !ok {
		return nil, fmt.Errorf("session: interceptor chain produced %T, not a binder", wrapped)
	}
	return out, nil
}

func (c *Config) wrapResultHandler(h result.Handler) (result.Handler, error) {
	wrapped, err := c.plugins.WrapAll(h)
	if err != nil {
		return nil, err
	}
	out, ok := wrapped.(result.Handler)
	if !ok {
		return nil, fmt.Errorf("session: interceptor chain produced %T, not a result handler", wrapped)
	}
	return out, nil
}

func (c *Config) wrapStatementHandler(h handler.StatementHandler) (handler.StatementHandler, error) {
	wrapped, err := c.plugins.WrapAll(h)
	if err != nil {
		return nil, err
	}
	out, ok := wrapped.(handler.StatementHandler)
	if !ok {
		return nil, fmt.Errorf("session: interceptor chain produced %T, not a statement handler", wrapped)
	}
	return out, nil
}
