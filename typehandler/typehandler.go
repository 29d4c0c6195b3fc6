// Package typehandler converts individual parameter and result values at the
// driver boundary. Only named, explicitly-requested conversions live here;
// the runtime has no per-type conversion tables and trusts the driver for
// everything not named in a parameter mapping.
package typehandler

import (
	"encoding/json"
	"fmt"
	"sync"
)

// TypeHandler converts one value in each direction across the driver
// boundary.
type TypeHandler interface {
	// ToDriver converts a caller-supplied value into a driver argument.
	ToDriver(v any) (any, error)
	// FromDriver converts a scanned column value back to a caller value.
	FromDriver(v any) (any, error)
}

// Registry maps handler names (as referenced from #{prop,handler=name}
// mappings) to handlers. Population happens at configuration time; lookups
// afterwards are read-mostly.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]TypeHandler
}

// NewRegistry returns a registry preloaded with the stock handlers.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]TypeHandler)}
	r.Register("json", JSONHandler{})
	return r
}

// Register installs a handler under name, replacing any previous entry.
func (r *Registry) Register(name string, h TypeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (TypeHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("typehandler: no handler registered under %q", name)
	}
	return h, nil
}

// Passthrough hands values to the driver unchanged.
type Passthrough struct{}

func (Passthrough) ToDriver(v any) (any, error)   { return v, nil }
func (Passthrough) FromDriver(v any) (any, error) { return v, nil }

// JSONHandler stores a value as its JSON encoding and decodes result columns
// back into generic values. Useful for document-shaped columns.
type JSONHandler struct{}

func (JSONHandler) ToDriver(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("typehandler: encoding json parameter: %w", err)
	}
	return b, nil
}

func (JSONHandler) FromDriver(v any) (any, error) {
	var raw []byte
	switch src := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	default:
		return nil, fmt.Errorf("typehandler: cannot decode json from %T", v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("typehandler: decoding json column: %w", err)
	}
	return out, nil
}
