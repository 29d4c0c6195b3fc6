// Package fakedb is a scriptable database/sql driver used by tests. It
// records prepares, executions and transaction demarcation, and plays back
// configured row sets and errors per SQL text.
package fakedb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
)

// Call records one statement execution.
type Call struct {
	Query string
	Args  []driver.Value
}

// FakeDB scripts responses and records traffic. Zero value is unusable; use
// New.
type FakeDB struct {
	mu sync.Mutex

	Prepared  []string
	Queries   []Call
	Execs     []Call
	Commits   int
	Rollbacks int

	rows    map[string]RowSet
	results map[string]ExecResult
	errs    map[string]error
}

// RowSet is the scripted result of a query.
type RowSet struct {
	Columns []string
	Values  [][]driver.Value
}

// ExecResult is the scripted result of an exec.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}

// New returns a sql.DB backed by a fresh FakeDB.
func New() (*sql.DB, *FakeDB) {
	f := &FakeDB{
		rows:    make(map[string]RowSet),
		results: make(map[string]ExecResult),
		errs:    make(map[string]error),
	}
	return sql.OpenDB(connector{f}), f
}

// WillReturnRows scripts rows for the exact SQL text.
func (f *FakeDB) WillReturnRows(query string, rs RowSet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[query] = rs
}

// WillReturnResult scripts an exec result for the exact SQL text.
func (f *FakeDB) WillReturnResult(query string, res ExecResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[query] = res
}

// WillReturnError scripts a failure for the exact SQL text.
func (f *FakeDB) WillReturnError(query string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[query] = err
}

// PrepareCount reports how many times query was prepared.
func (f *FakeDB) PrepareCount(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.Prepared {
		if q == query {
			n++
		}
	}
	return n
}

// --- driver plumbing ---

type connector struct{ f *FakeDB }

func (c connector) Connect(context.Context) (driver.Conn, error) { return &conn{f: c.f}, nil }
func (c connector) Driver() driver.Driver                        { return fakeDriver{c.f} }

type fakeDriver struct{ f *FakeDB }

func (d fakeDriver) Open(string) (driver.Conn, error) { return &conn{f: d.f}, nil }

type conn struct{ f *FakeDB }

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.Prepared = append(c.f.Prepared, query)
	return &stmt{f: c.f, query: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) { return &tx{f: c.f}, nil }

type tx struct{ f *FakeDB }

func (t *tx) Commit() error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.Commits++
	return nil
}

func (t *tx) Rollback() error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.Rollbacks++
	return nil
}

type stmt struct {
	f     *FakeDB
	query string
}

func (s *stmt) Close() error  { return nil }
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.Execs = append(s.f.Execs, Call{Query: s.query, Args: args})
	if err, ok := s.f.errs[s.query]; ok {
		return nil, err
	}
	res := s.f.results[s.query]
	return execResult{res}, nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.Queries = append(s.f.Queries, Call{Query: s.query, Args: args})
	if err, ok := s.f.errs[s.query]; ok {
		return nil, err
	}
	rs, ok := s.f.rows[s.query]
	if !ok {
		rs = RowSet{}
	}
	return &rows{set: rs}, nil
}

type execResult struct{ r ExecResult }

func (e execResult) LastInsertId() (int64, error) { return e.r.LastInsertID, nil }
func (e execResult) RowsAffected() (int64, error) { return e.r.RowsAffected, nil }

type rows struct {
	set RowSet
	pos int
}

func (r *rows) Columns() []string { return r.set.Columns }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.set.Values) {
		return io.EOF
	}
	row := r.set.Values[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("fakedb: row %d has %d values, want %d", r.pos, len(row), len(dest))
	}
	copy(dest, row)
	r.pos++
	return nil
}
