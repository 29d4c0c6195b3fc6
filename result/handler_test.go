package result

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/sqlbind/internal/fakedb"
	"github.com/Konsultn-Engineering/sqlbind/naming"
)

func TestHandleRowsToMaps(t *testing.T) {
	db, rec := fakedb.New()
	defer db.Close()

	rec.WillReturnRows("SELECT id, first_name FROM users", fakedb.RowSet{
		Columns: []string{"id", "first_name"},
		Values: [][]driver.Value{
			{int64(1), "Alice"},
			{int64(2), "Bob"},
		},
	})

	rows, err := db.Query("SELECT id, first_name FROM users")
	require.NoError(t, err)

	got, err := NewMapHandler(nil).HandleRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0]["id"])
	assert.Equal(t, "Alice", got[0]["first_name"])
	assert.Equal(t, "Bob", got[1]["first_name"])
}

func TestHandleRowsAppliesNaming(t *testing.T) {
	db, rec := fakedb.New()
	defer db.Close()

	rec.WillReturnRows("SELECT 1", fakedb.RowSet{
		Columns: []string{"first_name", "user_id"},
		Values:  [][]driver.Value{{"Alice", int64(7)}},
	})

	rows, err := db.Query("SELECT 1")
	require.NoError(t, err)

	camel := naming.New(naming.CamelCase, naming.SnakeCase, true)
	got, err := NewMapHandler(camel).HandleRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0]["firstName"])
	assert.Equal(t, int64(7), got[0]["userId"])
}

func TestHandleRowsEmpty(t *testing.T) {
	db, rec := fakedb.New()
	defer db.Close()

	rec.WillReturnRows("SELECT 1", fakedb.RowSet{Columns: []string{"id"}})

	rows, err := db.Query("SELECT 1")
	require.NoError(t, err)

	got, err := NewMapHandler(nil).HandleRows(rows)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHandleRowsCopiesBytes(t *testing.T) {
	db, rec := fakedb.New()
	defer db.Close()

	rec.WillReturnRows("SELECT 1", fakedb.RowSet{
		Columns: []string{"payload"},
		Values:  [][]driver.Value{{[]byte(`{"a":1}`)}, {[]byte(`{"b":2}`)}},
	})

	rows, err := db.Query("SELECT 1")
	require.NoError(t, err)

	got, err := NewMapHandler(nil).HandleRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte(`{"a":1}`), got[0]["payload"])
	assert.Equal(t, []byte(`{"b":2}`), got[1]["payload"])
}
