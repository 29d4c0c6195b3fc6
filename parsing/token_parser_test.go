package parsing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperHandler(t *testing.T) TokenHandler {
	t.Helper()
	return TokenHandlerFunc(func(content string) (string, error) {
		return "[" + content + "]", nil
	})
}

func mapHandler(vars map[string]string) TokenHandler {
	return TokenHandlerFunc(func(content string) (string, error) {
		return vars[content], nil
	})
}

func TestParseSubstitutesSpans(t *testing.T) {
	p := NewTokenParser("${", "}", mapHandler(map[string]string{
		"name":  "Alice",
		"count": "3",
	}))

	got, err := p.Parse("Hello ${name}, you have ${count} items")
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice, you have 3 items", got)
}

func TestParseEmptyInput(t *testing.T) {
	p := NewTokenParser("${", "}", upperHandler(t))
	got, err := p.Parse("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestParseNoTokens(t *testing.T) {
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(string) (string, error) {
		t.Fatal("handler must not be called")
		return "", nil
	}))
	got, err := p.Parse("SELECT 1 FROM dual")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM dual", got)
}

func TestParseEscapedOpenToken(t *testing.T) {
	called := false
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(string) (string, error) {
		called = true
		return "", nil
	}))

	got, err := p.Parse(`a\${b}c`)
	require.NoError(t, err)
	assert.Equal(t, "a${b}c", got)
	assert.False(t, called, "escaped span must not invoke the handler")
}

func TestParseEscapedCloseToken(t *testing.T) {
	var seen string
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(content string) (string, error) {
		seen = content
		return "X", nil
	}))

	got, err := p.Parse(`a${b\}c}d`)
	require.NoError(t, err)
	assert.Equal(t, "aXd", got)
	assert.Equal(t, "b}c", seen, "escaped close belongs to the span content")
}

func TestParseUnterminatedSpan(t *testing.T) {
	called := false
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(string) (string, error) {
		called = true
		return "", nil
	}))

	got, err := p.Parse("x ${unterminated")
	require.NoError(t, err)
	assert.Equal(t, "x ${unterminated", got)
	assert.False(t, called)
}

func TestParseUnterminatedAfterComplete(t *testing.T) {
	p := NewTokenParser("${", "}", mapHandler(map[string]string{"a": "1"}))
	got, err := p.Parse("${a} then ${b")
	require.NoError(t, err)
	assert.Equal(t, "1 then ${b", got)
}

func TestParseAdjacentSpans(t *testing.T) {
	p := NewTokenParser("${", "}", upperHandler(t))
	got, err := p.Parse("${a}${b}")
	require.NoError(t, err)
	assert.Equal(t, "[a][b]", got)
}

func TestParseTokenAtBoundaries(t *testing.T) {
	p := NewTokenParser("${", "}", upperHandler(t))

	got, err := p.Parse("${first} middle ${last}")
	require.NoError(t, err)
	assert.Equal(t, "[first] middle [last]", got)

	got, err = p.Parse("${only}")
	require.NoError(t, err)
	assert.Equal(t, "[only]", got)
}

func TestParseEqualDelimiters(t *testing.T) {
	p := NewTokenParser("%%", "%%", upperHandler(t))
	got, err := p.Parse("a %%b%% c")
	require.NoError(t, err)
	assert.Equal(t, "a [b] c", got)
}

func TestParseEmptySpanContent(t *testing.T) {
	var seen string
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(content string) (string, error) {
		seen = content
		return "_", nil
	}))
	got, err := p.Parse("a${}b")
	require.NoError(t, err)
	assert.Equal(t, "a_b", got)
	assert.Equal(t, "", seen)
}

func TestParseIdempotentWhenNoPairsReintroduced(t *testing.T) {
	p := NewTokenParser("${", "}", mapHandler(map[string]string{
		"name":  "Alice",
		"count": "3",
	}))

	once, err := p.Parse("Hello ${name}, you have ${count} items")
	require.NoError(t, err)
	twice, err := p.Parse(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestParseHandlerErrorPropagates(t *testing.T) {
	boom := errors.New("lookup failed")
	p := NewTokenParser("${", "}", TokenHandlerFunc(func(string) (string, error) {
		return "", boom
	}))

	_, err := p.Parse("before ${x} after")
	assert.ErrorIs(t, err, boom)
}

func TestParseDelimitersAreLiteralNotPatterns(t *testing.T) {
	p := NewTokenParser("(*", "*)", upperHandler(t))
	got, err := p.Parse("a (*x*) b")
	require.NoError(t, err)
	assert.Equal(t, "a [x] b", got)
}

func TestVariableHandler(t *testing.T) {
	h := NewVariableHandler(map[string]string{"host": "db1"})
	p := NewTokenParser("${", "}", h)

	got, err := p.Parse("connect ${host}:${port:5432}")
	require.NoError(t, err)
	assert.Equal(t, "connect db1:5432", got)

	_, err = p.Parse("connect ${missing}")
	assert.Error(t, err)
}

func TestVariableHandlerNoDefaults(t *testing.T) {
	h := &VariableHandler{Vars: map[string]string{"a:b": "v"}}
	p := NewTokenParser("${", "}", h)

	got, err := p.Parse("${a:b}")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
