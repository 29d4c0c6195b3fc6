// Package errctx carries diagnostic breadcrumbs for a single statement
// execution: which mapped statement, which resource it came from, what the
// runtime was doing, and the SQL involved. The context value is passed
// explicitly on context.Context rather than held in goroutine-ambient state,
// so a value is always scoped to the call tree that created it.
package errctx

import (
	"context"
	"strings"
)

type ctxKey struct{}

// Context accumulates the facts about an in-flight statement execution.
// Setters return the receiver for fluent updates. A Context is owned by a
// single call tree and is not safe for concurrent mutation.
type Context struct {
	stored *Context

	resource string
	activity string
	object   string
	message  string
	sql      string
	cause    error
}

// New returns an empty diagnostic context.
func New() *Context {
	return &Context{}
}

// With attaches ec to ctx. From retrieves it later anywhere down the call
// tree.
func With(ctx context.Context, ec *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ec)
}

// From returns the diagnostic context attached to ctx, or a fresh discarded
// one so callers never need a nil check.
func From(ctx context.Context) *Context {
	if ec, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return ec
	}
	return New()
}

func (ec *Context) Resource(resource string) *Context {
	ec.resource = resource
	return ec
}

func (ec *Context) Activity(activity string) *Context {
	ec.activity = activity
	return ec
}

func (ec *Context) Object(object string) *Context {
	ec.object = object
	return ec
}

func (ec *Context) Message(message string) *Context {
	ec.message = message
	return ec
}

func (ec *Context) SQL(sql string) *Context {
	ec.sql = sql
	return ec
}

func (ec *Context) Cause(cause error) *Context {
	ec.cause = cause
	return ec
}

// Store pushes the current state aside and returns a clean context, keeping
// a link back for Recall. Used around nested statements (key generation
// inside an insert) so the inner statement's breadcrumbs do not clobber the
// outer ones.
func (ec *Context) Store() *Context {
	prev := *ec
	*ec = Context{stored: &prev}
	return ec
}

// Recall restores the state saved by the matching Store. Without a prior
// Store it is a no-op.
func (ec *Context) Recall() *Context {
	if ec.stored != nil {
		*ec = *ec.stored
	}
	return ec
}

// Reset clears every field.
func (ec *Context) Reset() *Context {
	*ec = Context{}
	return ec
}

// String renders the accumulated breadcrumbs, one "### " line per known
// fact, suitable for inclusion in a wrapped error message.
func (ec *Context) String() string {
	var b strings.Builder
	line := func(prefix, v string) {
		if v == "" {
			return
		}
		b.WriteString("\n### ")
		b.WriteString(prefix)
		b.WriteString(v)
	}
	line("", ec.message)
	line("The error may exist in ", ec.resource)
	line("The error may involve ", ec.object)
	line("The error occurred while ", ec.activity)
	if ec.sql != "" {
		flat := strings.Join(strings.Fields(ec.sql), " ")
		line("SQL: ", flat)
	}
	if ec.cause != nil {
		line("Cause: ", ec.cause.Error())
	}
	return b.String()
}
