// Package result turns driver row sets into caller-facing values. Full
// object-relational mapping is out of scope; the stock handler produces
// generic maps with keys shaped by the configured naming strategy.
package result

import (
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqlbind/naming"
)

// Handler is the result-mapping capability role.
type Handler interface {
	HandleRows(rows *sql.Rows) ([]map[string]any, error)
}

// MapHandler scans every row into a map keyed by the naming strategy's
// rendering of the column name. Byte slices are copied, since the driver may
// reuse its buffers between rows.
type MapHandler struct {
	naming naming.ColumnStrategy
}

// NewMapHandler builds the stock handler; a nil strategy keeps column names
// untouched.
func NewMapHandler(strategy naming.ColumnStrategy) *MapHandler {
	return &MapHandler{naming: strategy}
}

func (h *MapHandler) HandleRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("result: reading columns: %w", err)
	}
	keys := make([]string, len(cols))
	for i, c := range cols {
		if h.naming != nil {
			keys[i] = h.naming.ColumnName(c)
		} else {
			keys[i] = c
		}
	}

	var out []map[string]any
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("result: scanning row %d: %w", len(out), err)
		}
		row := make(map[string]any, len(cols))
		for i, key := range keys {
			v := values[i]
			if b, ok := v.([]byte); ok {
				cp := make([]byte, len(b))
				copy(cp, b)
				v = cp
			}
			row[key] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result: iterating rows: %w", err)
	}
	return out, nil
}
