// Package catalog holds the schema and row data the engine operates on.
// A Catalog is plain data plus helper predicates; it performs no parsing
// or SQL semantics of its own. Mutations are performed in place, but the
// executor is expected to stage work on a cloned table (see CloneTable
// and CommitTable) and swap it in only once every constraint check has
// passed, which is how the engine upholds "no partial effect on error"
// without a transaction log.
package catalog

import (
	"fmt"

	"github.com/kpalmer/schoolsql/coltype"
)

// ColumnDef describes one column of a table.
type ColumnDef struct {
	Name          string
	Type          coltype.Type
	Size          int
	NotNull       bool
	PrimaryKey    bool
	AutoIncrement bool
}

// TableSchema describes the shape of a table.
type TableSchema struct {
	Columns []ColumnDef
	// PrimaryKey is the column name acting as the primary key, or "" if
	// the table has none.
	PrimaryKey string
	// Protected tables cannot be targeted by DDL or DML.
	Protected bool
}

// ColumnNames returns the schema's column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the definition for name, if present.
func (s TableSchema) Column(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Row maps every declared column of a table to its value. A Row always
// has exactly the column set of its table's schema.
type Row map[string]Value

// Clone returns a shallow copy of the row; Value is not itself a
// pointer-bearing type so a shallow copy is a deep copy here.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type table struct {
	schema  TableSchema
	rows    []Row
	autoInc map[string]float64
}

// Catalog is the mapping of table name to schema plus a parallel mapping
// of table name to row data. The two mappings always share the same key
// set.
type Catalog struct {
	tables map[string]*table
}

// New returns an empty catalog with no tables.
func New() *Catalog {
	return &Catalog{tables: map[string]*table{}}
}

// NewSeeded returns a catalog pre-populated with the protected students,
// tutor_groups, and grades tables (see seed.go).
func NewSeeded() *Catalog {
	c := New()
	seed(c)
	return c
}

// --- read-only view -------------------------------------------------

// Tables returns the table names currently in the catalog, in no
// particular order.
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for n := range c.tables {
		names = append(names, n)
	}
	return names
}

// Schema returns the schema for name.
func (c *Catalog) Schema(name string) (TableSchema, bool) {
	t, ok := c.tables[name]
	if !ok {
		return TableSchema{}, false
	}
	return t.schema, true
}

// Rows returns a copy of the rows stored for name, in insertion order.
func (c *Catalog) Rows(name string) ([]Row, bool) {
	t, ok := c.tables[name]
	if !ok {
		return nil, false
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out, true
}

// HasTable reports whether name is a table in the catalog.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// HasColumn reports whether table has a column named col.
func (c *Catalog) HasColumn(table, col string) bool {
	t, ok := c.tables[table]
	if !ok {
		return false
	}
	_, ok = t.schema.Column(col)
	return ok
}

// ColumnsOf returns the column definitions of table in declaration
// order, or nil if the table does not exist.
func (c *Catalog) ColumnsOf(table string) []ColumnDef {
	t, ok := c.tables[table]
	if !ok {
		return nil
	}
	return t.schema.Columns
}

// IsProtected reports whether table is one of the seeded, immutable
// tables.
func (c *Catalog) IsProtected(table string) bool {
	t, ok := c.tables[table]
	return ok && t.schema.Protected
}

// --- schema mutation -------------------------------------------------

// CreateTable adds a new, empty table. The caller is responsible for
// validating the name does not already exist and that the schema is
// otherwise well formed; CreateTable itself only guards against
// clobbering an existing entry.
func (c *Catalog) CreateTable(name string, schema TableSchema) error {
	if _, ok := c.tables[name]; ok {
		return fmt.Errorf("table %q already exists", name)
	}
	counters := map[string]float64{}
	for _, col := range schema.Columns {
		if col.AutoIncrement {
			counters[col.Name] = 0
		}
	}
	c.tables[name] = &table{schema: schema, rows: []Row{}, autoInc: counters}
	return nil
}

// DropTable removes a table and its rows entirely.
func (c *Catalog) DropTable(name string) error {
	if _, ok := c.tables[name]; !ok {
		return fmt.Errorf("table %q does not exist", name)
	}
	delete(c.tables, name)
	return nil
}

// --- staged row mutation ---------------------------------------------

// StagedTable is a detached copy of one table's schema, rows, and
// auto-increment counters. The executor mutates a StagedTable freely;
// nothing is visible to readers of the live catalog until CommitTable is
// called.
type StagedTable struct {
	Schema  TableSchema
	Rows    []Row
	autoInc map[string]float64
	name    string
}

// NextAutoIncrement advances and returns the next value for an
// AUTO_INCREMENT column on the staged table.
func (s *StagedTable) NextAutoIncrement(col string) float64 {
	s.autoInc[col]++
	return s.autoInc[col]
}

// RaiseAutoIncrementFloor ensures the counter for col is at least value,
// which preserves the invariant that the counter never falls below the
// largest numeric value ever stored at that column, even when the value
// arrived via an explicit INSERT/UPDATE rather than AUTO_INCREMENT.
func (s *StagedTable) RaiseAutoIncrementFloor(col string, value float64) {
	if _, tracked := s.autoInc[col]; !tracked {
		return
	}
	if value > s.autoInc[col] {
		s.autoInc[col] = value
	}
}

// CloneTable detaches a copy of table for staged mutation.
func (c *Catalog) CloneTable(name string) (*StagedTable, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", name)
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Clone()
	}
	counters := make(map[string]float64, len(t.autoInc))
	for k, v := range t.autoInc {
		counters[k] = v
	}
	cols := make([]ColumnDef, len(t.schema.Columns))
	copy(cols, t.schema.Columns)
	schema := t.schema
	schema.Columns = cols
	return &StagedTable{Schema: schema, Rows: rows, autoInc: counters, name: name}, nil
}

// CommitTable atomically replaces the live table with a staged copy.
// Callers must only do this after every constraint check has passed.
func (c *Catalog) CommitTable(staged *StagedTable) {
	c.tables[staged.name] = &table{
		schema:  staged.Schema,
		rows:    staged.Rows,
		autoInc: staged.autoInc,
	}
}
