package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqlbind/dialect"
)

func pgTranslator(props map[string]string) *Translator {
	return NewTranslator(dialect.NewPostgresDialect(), nil, props)
}

func TestBindCompilesPlaceholders(t *testing.T) {
	tr := pgTranslator(nil)
	ms := &MappedStatement{
		ID:      "user.findByNameAndAge",
		Command: CommandSelect,
		SQL:     "SELECT * FROM users WHERE name = #{name} AND age > #{age}",
	}

	bound, err := tr.Bind(ms, map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE name = $1 AND age > $2", bound.SQL)
	require.Len(t, bound.Mappings, 2)
	assert.Equal(t, "name", bound.Mappings[0].Property)
	assert.Equal(t, "age", bound.Mappings[1].Property)
}

func TestBindMySQLPlaceholders(t *testing.T) {
	tr := NewTranslator(dialect.NewMySQLDialect(), nil, nil)
	ms := &MappedStatement{ID: "s", SQL: "UPDATE t SET a = #{a}, b = #{b}"}

	bound, err := tr.Bind(ms, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET a = ?, b = ?", bound.SQL)
}

func TestBindHandlerAttribute(t *testing.T) {
	tr := pgTranslator(nil)
	ms := &MappedStatement{ID: "s", SQL: "INSERT INTO docs(payload) VALUES (#{payload, handler=json})"}

	bound, err := tr.Bind(ms, nil)
	require.NoError(t, err)
	require.Len(t, bound.Mappings, 1)
	assert.Equal(t, "payload", bound.Mappings[0].Property)
	assert.Equal(t, "json", bound.Mappings[0].Handler)
}

func TestBindRejectsMalformedMapping(t *testing.T) {
	tr := pgTranslator(nil)

	_, err := tr.Bind(&MappedStatement{ID: "s", SQL: "SELECT #{}"}, nil)
	assert.Error(t, err)

	_, err = tr.Bind(&MappedStatement{ID: "s", SQL: "SELECT #{a, nonsense}"}, nil)
	assert.Error(t, err)

	_, err = tr.Bind(&MappedStatement{ID: "s", SQL: "SELECT #{a, color=red}"}, nil)
	assert.Error(t, err)
}

func TestBindExpandsDynamicText(t *testing.T) {
	tr := pgTranslator(map[string]string{"schema": "app"})
	ms := &MappedStatement{
		ID:  "user.findByID",
		SQL: "SELECT * FROM ${schema}.${table} WHERE id = #{id}",
		// Entity drives the ${table} builtin.
		Entity: "UserAccount",
	}

	bound, err := tr.Bind(ms, map[string]any{"id": 7})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM app.user_accounts WHERE id = $1", bound.SQL)
}

func TestBindParamsOverrideProps(t *testing.T) {
	tr := pgTranslator(map[string]string{"order": "id ASC"})
	ms := &MappedStatement{ID: "s", SQL: "SELECT * FROM t ORDER BY ${order}"}

	bound, err := tr.Bind(ms, map[string]any{"order": "name DESC"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t ORDER BY name DESC", bound.SQL)
}

func TestBindUndefinedDynamicVariableFails(t *testing.T) {
	tr := pgTranslator(nil)
	_, err := tr.Bind(&MappedStatement{ID: "s", SQL: "SELECT * FROM ${missing}"}, nil)
	assert.Error(t, err)
}

func TestBindEscapedDelimitersSurvive(t *testing.T) {
	tr := pgTranslator(nil)
	ms := &MappedStatement{ID: "s", SQL: `SELECT '\${literal}' AS raw, #{v}`}

	bound, err := tr.Bind(ms, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '${literal}' AS raw, $1", bound.SQL)
}

func TestCommandTypeOf(t *testing.T) {
	for name, want := range map[string]CommandType{
		"select": CommandSelect,
		"INSERT": CommandInsert,
		"update": CommandUpdate,
		"delete": CommandDelete,
	} {
		got, err := CommandTypeOf(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := CommandTypeOf("merge")
	assert.Error(t, err)
}
