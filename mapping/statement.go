// Package mapping models configured SQL statements and turns their templates
// into executable SQL. A statement's text goes through two passes: ${...}
// spans are textually substituted from properties and caller parameters, and
// #{...} spans are compiled into dialect placeholders with an ordered list of
// parameter mappings for the binder.
package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/sqlbind/keygen"
)

// CommandType classifies what a statement does.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandSelect
	CommandInsert
	CommandUpdate
	CommandDelete
)

// CommandTypeOf parses a command name as written in mapper sources.
func CommandTypeOf(name string) (CommandType, error) {
	switch strings.ToLower(name) {
	case "select":
		return CommandSelect, nil
	case "insert":
		return CommandInsert, nil
	case "update":
		return CommandUpdate, nil
	case "delete":
		return CommandDelete, nil
	default:
		return CommandUnknown, fmt.Errorf("mapping: unknown command type %q", name)
	}
}

func (c CommandType) String() string {
	switch c {
	case CommandSelect:
		return "select"
	case CommandInsert:
		return "insert"
	case CommandUpdate:
		return "update"
	case CommandDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// MappedStatement is one configured statement. Instances are built during
// startup configuration and immutable afterwards.
type MappedStatement struct {
	// ID is the namespace-qualified statement identifier.
	ID string
	// Resource names the mapper source the statement came from, for
	// diagnostics.
	Resource string
	Command  CommandType
	// SQL is the raw template text, prior to any substitution.
	SQL string
	// Entity optionally names the domain entity the statement works on; it
	// powers the ${table} builtin through the naming strategy.
	Entity string

	KeyGenerator keygen.KeyGenerator
	KeyProperty  string

	Timeout time.Duration
}

// ParameterMapping is one #{...} occurrence, in textual order.
type ParameterMapping struct {
	// Property is the parameter map key the binder resolves.
	Property string
	// Handler optionally names a registered type handler.
	Handler string
}

// BoundSQL is the executable form of a statement for one invocation:
// expanded SQL with driver placeholders, the mappings those placeholders
// stand for, and the caller's parameters.
type BoundSQL struct {
	SQL      string
	Mappings []ParameterMapping
	Params   map[string]any
}
