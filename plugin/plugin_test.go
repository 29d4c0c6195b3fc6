package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqlbind/mapping"
	"github.com/Konsultn-Engineering/sqlbind/plugin"
)

type fakeExecutor struct {
	queries    int
	updates    int
	commits    int
	lastParams map[string]any
	rows       []map[string]any
	err        error
}

func (f *fakeExecutor) Query(_ context.Context, _ *mapping.MappedStatement, params map[string]any) ([]map[string]any, error) {
	f.queries++
	f.lastParams = params
	return f.rows, f.err
}

func (f *fakeExecutor) Update(_ context.Context, _ *mapping.MappedStatement, params map[string]any) (int64, error) {
	f.updates++
	f.lastParams = params
	return 1, f.err
}

func (f *fakeExecutor) Commit(context.Context) error { f.commits++; return nil }
func (f *fakeExecutor) Rollback(context.Context) error { return nil }
func (f *fakeExecutor) Close() error                   { return nil }

// tracing appends its name to a shared log and proceeds unchanged.
type tracing struct {
	name string
	log  *[]string
	sigs []plugin.Signature
}

func (t *tracing) Intercept(inv *plugin.Invocation) (any, error) {
	*t.log = append(*t.log, t.name)
	return inv.Proceed()
}

func (t *tracing) Signatures() []plugin.Signature { return t.sigs }

func executorQuerySig() []plugin.Signature {
	return []plugin.Signature{{Role: plugin.RoleExecutor, Method: "Query"}}
}

func TestWrapRoutesDeclaredMethod(t *testing.T) {
	target := &fakeExecutor{rows: []map[string]any{{"id": int64(1)}}}
	var log []string
	wrapped, err := plugin.Wrap(target, &tracing{name: "A", log: &log, sigs: executorQuerySig()})
	require.NoError(t, err)
	require.NotSame(t, target, wrapped)

	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	rows, err := exec.Query(context.Background(), &mapping.MappedStatement{ID: "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"id": int64(1)}}, rows)
	assert.Equal(t, []string{"A"}, log)
	assert.Equal(t, 1, target.queries)
}

func TestWrapIdentityOnEmptyIntersection(t *testing.T) {
	target := &fakeExecutor{}
	wrapped, err := plugin.Wrap(target, &tracing{log: new([]string), sigs: []plugin.Signature{
		{Role: plugin.RoleStatementHandler, Method: "Prepare"},
	}})
	require.NoError(t, err)
	assert.Same(t, target, wrapped, "a target outside the declared roles is returned untouched")
}

func TestWrapExactCapabilitySurface(t *testing.T) {
	target := &fakeExecutor{}
	var log []string
	wrapped, err := plugin.Wrap(target, &tracing{name: "A", log: &log, sigs: executorQuerySig()})
	require.NoError(t, err)

	exec := wrapped.(interface {
		Update(context.Context, *mapping.MappedStatement, map[string]any) (int64, error)
		Commit(context.Context) error
	})
	n, err := exec.Update(context.Background(), &mapping.MappedStatement{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, exec.Commit(context.Background()))
	assert.Empty(t, log, "undeclared operations never reach the interceptor")
	assert.Equal(t, 1, target.updates)
	assert.Equal(t, 1, target.commits)
}

func TestChainOrderLastRegisteredOutermost(t *testing.T) {
	target := &fakeExecutor{rows: []map[string]any{{"n": int64(7)}}}
	var log []string
	chain := plugin.NewChain(nil)
	require.NoError(t, chain.Register(&tracing{name: "A", log: &log, sigs: executorQuerySig()}, nil))
	require.NoError(t, chain.Register(&tracing{name: "B", log: &log, sigs: executorQuerySig()}, nil))

	wrapped, err := chain.WrapAll(target)
	require.NoError(t, err)
	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	rows, err := exec.Query(context.Background(), &mapping.MappedStatement{}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, log)
	assert.Equal(t, 1, target.queries, "the real target runs exactly once")
	assert.Equal(t, []map[string]any{{"n": int64(7)}}, rows)
}

func TestErrorPassesThroughUnchanged(t *testing.T) {
	boom := errors.New("boom")
	target := &fakeExecutor{err: boom}
	wrapped, err := plugin.Wrap(target, &tracing{name: "A", log: new([]string), sigs: executorQuerySig()})
	require.NoError(t, err)

	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	_, err = exec.Query(context.Background(), &mapping.MappedStatement{}, nil)
	assert.Same(t, boom, err)
}

type shortCircuit struct{}

func (shortCircuit) Intercept(*plugin.Invocation) (any, error) {
	return []map[string]any{{"cached": true}}, nil
}

func (shortCircuit) Signatures() []plugin.Signature { return executorQuerySig() }

func TestInterceptorShortCircuits(t *testing.T) {
	target := &fakeExecutor{rows: []map[string]any{{"real": true}}}
	wrapped, err := plugin.Wrap(target, shortCircuit{})
	require.NoError(t, err)

	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	rows, err := exec.Query(context.Background(), &mapping.MappedStatement{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"cached": true}}, rows)
	assert.Zero(t, target.queries, "the target is never invoked")
}

type substituting struct{}

func (substituting) Intercept(inv *plugin.Invocation) (any, error) {
	return inv.ProceedWith(inv.Args[0], inv.Args[1], map[string]any{"limit": 10})
}

func (substituting) Signatures() []plugin.Signature { return executorQuerySig() }

func TestInterceptorSubstitutesArguments(t *testing.T) {
	target := &fakeExecutor{}
	wrapped, err := plugin.Wrap(target, substituting{})
	require.NoError(t, err)

	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	_, err = exec.Query(context.Background(), &mapping.MappedStatement{}, map[string]any{"limit": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": 10}, target.lastParams)
}

type badReturn struct{}

func (badReturn) Intercept(*plugin.Invocation) (any, error) { return "not rows", nil }
func (badReturn) Signatures() []plugin.Signature            { return executorQuerySig() }

func TestMismatchedReturnIsAnError(t *testing.T) {
	wrapped, err := plugin.Wrap(&fakeExecutor{}, badReturn{})
	require.NoError(t, err)
	exec := wrapped.(interface {
		Query(context.Context, *mapping.MappedStatement, map[string]any) ([]map[string]any, error)
	})
	_, err = exec.Query(context.Background(), &mapping.MappedStatement{}, nil)
	assert.ErrorContains(t, err, "interceptor returned")
}

type declared struct{ sigs []plugin.Signature }

func (declared) Intercept(inv *plugin.Invocation) (any, error) { return inv.Proceed() }
func (d declared) Signatures() []plugin.Signature              { return d.sigs }

func TestConfigurationErrors(t *testing.T) {
	t.Run("no signatures", func(t *testing.T) {
		_, err := plugin.Wrap(&fakeExecutor{}, declared{})
		assert.ErrorIs(t, err, plugin.ErrNoSignatures)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := plugin.Wrap(&fakeExecutor{}, declared{sigs: []plugin.Signature{
			{Role: plugin.RoleExecutor, Method: "Explain"},
		}})
		assert.ErrorIs(t, err, plugin.ErrUnknownMethod)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := plugin.Wrap(&fakeExecutor{}, declared{sigs: []plugin.Signature{
			{Role: plugin.Role(42), Method: "Query"},
		}})
		assert.ErrorIs(t, err, plugin.ErrUnknownRole)
	})

	t.Run("accessor without error return", func(t *testing.T) {
		_, err := plugin.Wrap(&fakeExecutor{}, declared{sigs: []plugin.Signature{
			{Role: plugin.RoleParameterBinder, Method: "ParameterObject"},
		}})
		assert.ErrorIs(t, err, plugin.ErrNotInterceptable)
	})

	t.Run("chain rejects eagerly", func(t *testing.T) {
		chain := plugin.NewChain(nil)
		err := chain.Register(declared{}, nil)
		assert.ErrorIs(t, err, plugin.ErrNoSignatures)
		assert.Empty(t, chain.All())
	})
}

// multiRole implements both Executor and Binder.
type multiRole struct{ fakeExecutor }

func (*multiRole) ParameterObject() map[string]any     { return nil }
func (*multiRole) Bind(context.Context) ([]any, error) { return nil, nil }

func TestAmbiguousTargetRejected(t *testing.T) {
	_, err := plugin.Wrap(&multiRole{}, declared{sigs: []plugin.Signature{
		{Role: plugin.RoleExecutor, Method: "Query"},
		{Role: plugin.RoleParameterBinder, Method: "Bind"},
	}})
	assert.ErrorIs(t, err, plugin.ErrAmbiguousTarget)
}

type configured struct {
	declared
	props map[string]string
}

func (c *configured) SetProperties(props map[string]string) { c.props = props }

func TestChainDeliversProperties(t *testing.T) {
	itc := &configured{declared: declared{sigs: executorQuerySig()}}
	chain := plugin.NewChain(nil)
	require.NoError(t, chain.Register(itc, map[string]string{"limit": "10"}))
	assert.Equal(t, map[string]string{"limit": "10"}, itc.props)
	require.Len(t, chain.All(), 1)
	assert.Same(t, itc, chain.All()[0])
}
