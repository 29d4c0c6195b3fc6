package plugin

import (
	"fmt"
	"log/slog"
)

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

// Chain holds the registered interceptors and applies them to execution
// objects. Interceptors stack in registration order: the last registered
// becomes the outermost layer, so it observes calls first on the way in and
// last on the way out.
type Chain struct {
	entries []chainEntry
	logger  *slog.Logger
}

type chainEntry struct {
	itc      Interceptor
	resolved map[Role]methodSet
}

func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{logger: logger}
}

// Register validates the interceptor's signatures, hands it its properties
// and appends it to the chain. Declaration mistakes surface here, long
// before any statement runs.
func (c *Chain) Register(itc Interceptor, props map[string]string) error {
	resolved, err := resolveSignatures(itc)
	if err != nil {
		return err
	}
	if pr, ok := itc.(PropertyReceiver); ok {
		pr.SetProperties(props)
	}
	c.entries = append(c.entries, chainEntry{itc: itc, resolved: resolved})
	c.logger.Debug("interceptor registered",
		slog.String("interceptor", typeName(itc)),
		slog.Int("position", len(c.entries)-1))
	return nil
}

// All returns the registered interceptors in registration order.
func (c *Chain) All() []Interceptor {
	out := make([]Interceptor, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.itc
	}
	return out
}

// WrapAll runs target through every registered interceptor in order. Each
// pass either layers a stand-in or returns its input unchanged, so a target
// matching no interceptor comes back identical.
func (c *Chain) WrapAll(target any) (any, error) {
	var err error
	for _, e := range c.entries {
		target, err = wrapResolved(target, e.itc, e.resolved)
		if err != nil {
			return nil, err
		}
	}
	return target, nil
}
