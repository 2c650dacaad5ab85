// Package driver enables schoolsql to be used with the go database/sql
// package.
package driver

// TODO several context methods are not implemented.
// Transactions are not supported; the engine has no transaction layer.

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/engine"
)

func init() {
	sql.Register("schoolsql", new())
}

func new() *schoolSQLDriver {
	return &schoolSQLDriver{}
}

type schoolSQLDriver struct{}

// Open implements driver.Driver. name selects the catalog a connection
// starts with: ":memory:" or "" opens an empty catalog, "seeded" opens a
// catalog pre-populated with the protected students/tutor_groups/grades
// tables. There is no on-disk persistence; schoolsql is in-memory only
// (spec section 1's non-goals), so unlike the teacher's filename argument
// this name only ever selects a starting catalog shape.
func (d *schoolSQLDriver) Open(name string) (driver.Conn, error) {
	seeded := name == "seeded"
	cn := &conn{engine: engine.New(seeded)}
	return cn, nil
}

type conn struct {
	engine *engine.Engine
}

// Begin implements driver.Conn. schoolsql has no transaction layer.
func (c *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions are not supported")
}

// Close implements driver.Conn.
func (c *conn) Close() error {
	return nil
}

// Prepare implements driver.Conn. Each statement is compiled fresh on
// Exec/Query since schoolsql has no plan cache to prepare into.
func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{engine: c.engine, query: query}, nil
}

type stmt struct {
	engine *engine.Engine
	query  string
}

// Close implements driver.Stmt.
func (s *stmt) Close() error {
	return nil
}

// NumInput implements driver.Stmt. schoolsql's grammar has no placeholder
// syntax, so every statement takes zero bound parameters.
func (s *stmt) NumInput() int {
	return 0
}

// Exec implements driver.Stmt.
func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	out, err := s.engine.Execute(s.query)
	if err != nil {
		return nil, err
	}
	return &result{rowsAffected: int64(out.RowCount)}, nil
}

// Query implements driver.Stmt.
func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	out, err := s.engine.Execute(s.query)
	if err != nil {
		return nil, err
	}
	return &rows{cols: out.Columns, values: out.Rows}, nil
}

type result struct {
	rowsAffected int64
}

// LastInsertId implements driver.Result. schoolsql does not report a
// single generated id; the AUTO_INCREMENT value, if any, is only visible
// through a subsequent SELECT.
func (r *result) LastInsertId() (int64, error) {
	return 0, errors.New("LastInsertId is not supported")
}

// RowsAffected implements driver.Result.
func (r *result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

type rows struct {
	cols   []string
	values [][]catalog.Value
	rowIdx int
}

// Close implements driver.Rows.
func (r *rows) Close() error {
	return nil
}

// Columns implements driver.Rows.
func (r *rows) Columns() []string {
	return r.cols
}

// Next implements driver.Rows.
func (r *rows) Next(dest []driver.Value) error {
	if r.rowIdx == len(r.values) {
		return io.EOF
	}
	for i, v := range r.values[r.rowIdx] {
		dest[i] = valueToDriver(v)
	}
	r.rowIdx++
	return nil
}

func valueToDriver(v catalog.Value) driver.Value {
	switch v.Kind {
	case catalog.KindNull:
		return nil
	case catalog.KindNumber:
		return v.Num
	case catalog.KindString:
		return v.Str
	case catalog.KindBoolean:
		return v.Bool
	default:
		return nil
	}
}
