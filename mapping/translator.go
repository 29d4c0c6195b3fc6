package mapping

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/sqlbind/dialect"
	"github.com/Konsultn-Engineering/sqlbind/naming"
	"github.com/Konsultn-Engineering/sqlbind/parsing"
)

const (
	dynamicOpen  = "${"
	dynamicClose = "}"
	paramOpen    = "#{"
	paramClose   = "}"

	// tableVariable is resolved from the statement's entity name through the
	// naming strategy when the template does not define it itself.
	tableVariable = "table"
)

// Translator turns statement templates into BoundSQL. It is configured once
// and shared; Bind allocates only per-call state.
type Translator struct {
	Dialect dialect.Dialect
	Naming  naming.Strategy
	// Props are configuration-level variables available to every ${...}
	// span, lowest precedence.
	Props map[string]string
}

// NewTranslator builds a translator with the default naming strategy applied
// when none is given.
func NewTranslator(d dialect.Dialect, n naming.Strategy, props map[string]string) *Translator {
	if n == nil {
		n = naming.Default()
	}
	return &Translator{Dialect: d, Naming: n, Props: props}
}

// Bind produces the executable SQL for one invocation of ms. Dynamic ${...}
// spans are substituted first (properties, then the ${table} builtin, then
// caller parameters, with later sources winning), then #{...} spans are compiled
// into dialect placeholders.
func (t *Translator) Bind(ms *MappedStatement, params map[string]any) (*BoundSQL, error) {
	vars := t.variables(ms, params)

	expanded, err := parsing.NewTokenParser(dynamicOpen, dynamicClose, parsing.NewVariableHandler(vars)).Parse(ms.SQL)
	if err != nil {
		return nil, fmt.Errorf("mapping: expanding %s: %w", ms.ID, err)
	}

	var mappings []ParameterMapping
	n := 0
	compiled, err := parsing.NewTokenParser(paramOpen, paramClose, parsing.TokenHandlerFunc(func(content string) (string, error) {
		pm, err := parseMapping(content)
		if err != nil {
			return "", fmt.Errorf("mapping: statement %s: %w", ms.ID, err)
		}
		mappings = append(mappings, pm)
		n++
		return t.Dialect.Placeholder(n), nil
	})).Parse(expanded)
	if err != nil {
		return nil, err
	}

	return &BoundSQL{SQL: compiled, Mappings: mappings, Params: params}, nil
}

func (t *Translator) variables(ms *MappedStatement, params map[string]any) map[string]string {
	vars := make(map[string]string, len(t.Props)+len(params)+1)
	for k, v := range t.Props {
		vars[k] = v
	}
	if ms.Entity != "" {
		vars[tableVariable] = t.Naming.TableName(ms.Entity)
	}
	for k, v := range params {
		vars[k] = fmt.Sprint(v)
	}
	return vars
}

// parseMapping reads #{...} content: a property name optionally followed by
// comma-separated attributes, of which handler=<name> is understood.
func parseMapping(content string) (ParameterMapping, error) {
	parts := strings.Split(content, ",")
	prop := strings.TrimSpace(parts[0])
	if prop == "" {
		return ParameterMapping{}, fmt.Errorf("empty parameter property in #{%s}", content)
	}
	pm := ParameterMapping{Property: prop}
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		k, v, ok := strings.Cut(attr, "=")
		if !ok {
			return ParameterMapping{}, fmt.Errorf("malformed attribute %q in #{%s}", attr, content)
		}
		switch strings.TrimSpace(k) {
		case "handler":
			pm.Handler = strings.TrimSpace(v)
		default:
			return ParameterMapping{}, fmt.Errorf("unknown attribute %q in #{%s}", k, content)
		}
	}
	return pm, nil
}
