package parsing

import (
	"fmt"
	"strings"
)

// DefaultValueSeparator splits a variable name from its fallback inside a
// span, e.g. ${host:localhost}.
const DefaultValueSeparator = ":"

// VariableHandler substitutes variables from a lookup map. When
// EnableDefaults is set, content after the first separator is used as the
// fallback for unknown names; otherwise unknown names are an error so that
// half-configured templates fail loudly instead of executing with a literal
// placeholder in the SQL.
type VariableHandler struct {
	Vars           map[string]string
	EnableDefaults bool
}

// NewVariableHandler builds a handler with default-value support enabled.
func NewVariableHandler(vars map[string]string) *VariableHandler {
	return &VariableHandler{Vars: vars, EnableDefaults: true}
}

func (h *VariableHandler) HandleToken(content string) (string, error) {
	name := content
	fallback := ""
	hasFallback := false
	if h.EnableDefaults {
		if i := strings.Index(content, DefaultValueSeparator); i >= 0 {
			name = content[:i]
			fallback = content[i+len(DefaultValueSeparator):]
			hasFallback = true
		}
	}
	if v, ok := h.Vars[name]; ok {
		return v, nil
	}
	if hasFallback {
		return fallback, nil
	}
	return "", fmt.Errorf("parsing: undefined variable %q", name)
}
