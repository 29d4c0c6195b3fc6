// Package param resolves a statement's parameter mappings into the ordered
// driver argument list.
package param

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/sqlbind/errctx"
	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/typehandler"
)

// Binder is the parameter-binding capability role. It may be wrapped by
// interceptors, so implementations must carry no call-scoped state beyond
// the statement they were built for.
type Binder interface {
	// ParameterObject exposes the caller's parameters as supplied.
	ParameterObject() map[string]any
	// Bind resolves the bound statement's mappings into driver arguments,
	// in placeholder order.
	Bind(ctx context.Context) ([]any, error)
}

// DefaultBinder resolves each mapping against the parameter map and runs
// values through their named type handlers. A property absent from the map
// binds NULL, matching how partial parameter objects behave elsewhere in the
// runtime.
type DefaultBinder struct {
	ms       *mapping.MappedStatement
	bound    *mapping.BoundSQL
	registry *typehandler.Registry
}

// NewDefaultBinder builds the stock binder for one bound statement.
func NewDefaultBinder(ms *mapping.MappedStatement, bound *mapping.BoundSQL, registry *typehandler.Registry) *DefaultBinder {
	return &DefaultBinder{ms: ms, bound: bound, registry: registry}
}

func (b *DefaultBinder) ParameterObject() map[string]any {
	return b.bound.Params
}

func (b *DefaultBinder) Bind(ctx context.Context) ([]any, error) {
	errctx.From(ctx).Activity("binding parameters").Object(b.ms.ID)

	args := make([]any, 0, len(b.bound.Mappings))
	for _, pm := range b.bound.Mappings {
		var value any
		if b.bound.Params != nil {
			value = b.bound.Params[pm.Property]
		}
		if pm.Handler != "" {
			h, err := b.registry.Get(pm.Handler)
			if err != nil {
				return nil, fmt.Errorf("param: statement %s property %s: %w", b.ms.ID, pm.Property, err)
			}
			converted, err := h.ToDriver(value)
			if err != nil {
				return nil, fmt.Errorf("param: statement %s property %s: %w", b.ms.ID, pm.Property, err)
			}
			value = converted
		}
		args = append(args, value)
	}
	return args, nil
}
