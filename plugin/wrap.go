package plugin

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/sqlbind/executor"
	"github.com/Konsultn-Engineering/sqlbind/handler"
	"github.com/Konsultn-Engineering/sqlbind/param"
	"github.com/Konsultn-Engineering/sqlbind/result"
)

var roleTypes = map[Role]reflect.Type{
	RoleExecutor:         reflect.TypeOf((*executor.Executor)(nil)).Elem(),
	RoleParameterBinder:  reflect.TypeOf((*param.Binder)(nil)).Elem(),
	RoleResultSetHandler: reflect.TypeOf((*result.Handler)(nil)).Elem(),
	RoleStatementHandler: reflect.TypeOf((*handler.StatementHandler)(nil)).Elem(),
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// methodSet is the set of operations an interceptor observes on one role.
type methodSet map[string]struct{}

func (m methodSet) has(name string) bool {
	_, ok := m[name]
	return ok
}

// resolveSignatures validates an interceptor's declared signatures against
// the role interfaces and folds them into a per-role method set. Every
// declared operation must exist on its role and be able to propagate an
// error; anything else is a configuration mistake reported immediately.
func resolveSignatures(itc Interceptor) (map[Role]methodSet, error) {
	sigs := itc.Signatures()
	if len(sigs) == 0 {
		return nil, fmt.Errorf("%w: %T", ErrNoSignatures, itc)
	}
	resolved := make(map[Role]methodSet)
	for _, sig := range sigs {
		roleType, ok := roleTypes[sig.Role]
		if !ok {
			return nil, fmt.Errorf("%w: %v declared by %T", ErrUnknownRole, sig.Role, itc)
		}
		m, ok := roleType.MethodByName(sig.Method)
		if !ok {
			return nil, fmt.Errorf("%w: %v.%s declared by %T", ErrUnknownMethod, sig.Role, sig.Method, itc)
		}
		if !returnsError(m.Type) {
			return nil, fmt.Errorf("%w: %v.%s declared by %T", ErrNotInterceptable, sig.Role, sig.Method, itc)
		}
		set, ok := resolved[sig.Role]
		if !ok {
			set = make(methodSet)
			resolved[sig.Role] = set
		}
		set[sig.Method] = struct{}{}
	}
	return resolved, nil
}

func returnsError(fn reflect.Type) bool {
	n := fn.NumOut()
	return n > 0 && fn.Out(n-1) == errType
}

// Wrap returns a stand-in for target routing the interceptor's declared
// operations through it. When the target carries none of the declared roles
// the identical target is returned, unwrapped. A target carrying more than
// one declared role is a configuration error.
func Wrap(target any, itc Interceptor) (any, error) {
	resolved, err := resolveSignatures(itc)
	if err != nil {
		return nil, err
	}
	return wrapResolved(target, itc, resolved)
}

func wrapResolved(target any, itc Interceptor, resolved map[Role]methodSet) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("plugin: nil wrap target for %T", itc)
	}
	var (
		matched Role
		count   int
	)
	for role := RoleExecutor; role <= RoleStatementHandler; role++ {
		set, ok := resolved[role]
		if !ok || len(set) == 0 {
			continue
		}
		if reflect.TypeOf(target).Implements(roleTypes[role]) {
			matched = role
			count++
		}
	}
	if count == 0 {
		return target, nil
	}
	if count > 1 {
		return nil, fmt.Errorf("%w: %T", ErrAmbiguousTarget, target)
	}
	switch matched {
	case RoleExecutor:
		return &executorStandIn{target: target.(executor.Executor), itc: itc, methods: resolved[matched]}, nil
	case RoleParameterBinder:
		return &binderStandIn{target: target.(param.Binder), itc: itc, methods: resolved[matched]}, nil
	case RoleResultSetHandler:
		return &resultStandIn{target: target.(result.Handler), itc: itc, methods: resolved[matched]}, nil
	default:
		return &statementStandIn{target: target.(handler.StatementHandler), itc: itc, methods: resolved[matched]}, nil
	}
}
