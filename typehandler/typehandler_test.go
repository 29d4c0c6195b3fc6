package typehandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	h, err := r.Get("json")
	require.NoError(t, err)
	assert.IsType(t, JSONHandler{}, h)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("json", Passthrough{})

	h, err := r.Get("json")
	require.NoError(t, err)
	assert.IsType(t, Passthrough{}, h)
}

func TestJSONHandlerRoundTrip(t *testing.T) {
	h := JSONHandler{}

	driverVal, err := h.ToDriver(map[string]any{"name": "Alice"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alice"}`, string(driverVal.([]byte)))

	back, err := h.FromDriver(driverVal)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Alice"}, back)
}

func TestJSONHandlerNil(t *testing.T) {
	h := JSONHandler{}

	v, err := h.ToDriver(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = h.FromDriver(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONHandlerRejectsUnknownSource(t *testing.T) {
	_, err := JSONHandler{}.FromDriver(42)
	assert.Error(t, err)
}
