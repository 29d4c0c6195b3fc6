// Package plugin lets third-party code wrap the runtime's execution objects
// (executors, parameter binders, result handlers and statement handlers)
// with before/after behavior, without the wrapped object or its callers
// knowing interception occurred.
//
// An interceptor declares, as a static table, which operations on which
// capability roles it wants to observe. Wrap builds a stand-in exposing the
// target's role; declared operations route through the interceptor, the rest
// pass straight through. Registering several interceptors layers stand-ins
// into an onion evaluated outermost-last-registered-first.
package plugin

import (
	"errors"
	"fmt"
)

// Role identifies one of the four fixed capability roles that can be
// intercepted.
type Role int

const (
	RoleExecutor Role = iota
	RoleParameterBinder
	RoleResultSetHandler
	RoleStatementHandler
)

func (r Role) String() string {
	switch r {
	case RoleExecutor:
		return "Executor"
	case RoleParameterBinder:
		return "ParameterBinder"
	case RoleResultSetHandler:
		return "ResultSetHandler"
	case RoleStatementHandler:
		return "StatementHandler"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Signature names one operation an interceptor wants to observe.
type Signature struct {
	Role   Role
	Method string
}

// Interceptor is an opaque behavior unit wrapped around execution objects.
//
// Intercept receives the invocation record for a matched call. It may
// inspect or replace arguments and proceed inward, fabricate a result
// without proceeding, or fail; its return value becomes the call's result.
//
// Signatures declares the operations of interest. It must be static per
// instance: it is resolved and validated once, before any wrapping happens.
type Interceptor interface {
	Intercept(inv *Invocation) (any, error)
	Signatures() []Signature
}

// PropertyReceiver is implemented by interceptors that take configuration
// properties at registration time.
type PropertyReceiver interface {
	SetProperties(props map[string]string)
}

// Configuration errors, surfaced when an interceptor is registered or a
// chain is built, never at call time.
var (
	// ErrNoSignatures: the interceptor declares no signature metadata.
	ErrNoSignatures = errors.New("plugin: interceptor declares no signatures")
	// ErrUnknownRole: a signature names a role outside the four fixed roles.
	ErrUnknownRole = errors.New("plugin: unknown capability role")
	// ErrUnknownMethod: a declared operation does not exist on its role.
	ErrUnknownMethod = errors.New("plugin: method not declared by capability role")
	// ErrNotInterceptable: the operation exists but cannot propagate an
	// interceptor failure (no error return), so it cannot be intercepted.
	ErrNotInterceptable = errors.New("plugin: method is not interceptable")
	// ErrAmbiguousTarget: the target implements more than one declared role;
	// execution objects are expected to carry exactly one role each.
	ErrAmbiguousTarget = errors.New("plugin: target implements multiple intercepted roles")
)

// Invocation is the ephemeral record of one intercepted call.
type Invocation struct {
	// Target is the object the stand-in wraps; it may itself be a stand-in
	// produced by an earlier registration.
	Target any
	Role   Role
	Method string
	// Args holds the call's arguments in declaration order.
	Args []any

	call func(args []any) (any, error)
}

// Proceed continues the call inward with the original arguments.
func (inv *Invocation) Proceed() (any, error) {
	return inv.call(inv.Args)
}

// ProceedWith continues the call inward with substituted arguments. The
// argument list must match the operation's declaration; a mismatch is
// reported as an error, not a panic.
func (inv *Invocation) ProceedWith(args ...any) (any, error) {
	return inv.call(args)
}
