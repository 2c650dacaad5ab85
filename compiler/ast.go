package compiler

import "github.com/kpalmer/schoolsql/coltype"

// ast (Abstract Syntax Tree) defines the data structures representing a
// SQL statement. The AST is generated by the parser and is consumed by
// the validator (for Query statements) and the executor.

// Stmt is the sum type of every statement kind the parser can produce:
// *QueryStmt, *CreateTableStmt, *AlterTableStmt, *DropTableStmt,
// *InsertStmt, *UpdateStmt, *DeleteStmt, or *ExplainStmt.
type Stmt interface {
	stmtTag()
}

// ExplainStmt wraps another statement so the engine reports a summary of
// the plan instead of running it.
type ExplainStmt struct {
	Inner Stmt
}

func (*ExplainStmt) stmtTag() {}

// ColumnRef is an (optionally qualified) reference to a column. Table is
// empty until the validator resolves it, at which point it is filled in
// with the table the column actually belongs to (resolved table).
// ExplicitTable records whether the original text qualified the
// reference (t.c) so the executor can reproduce the written form in
// projected column names even after Table has been resolved.
type ColumnRef struct {
	Table         string
	Column        string
	ExplicitTable bool
	Pos           int
}

// Expr is the sum type of operands: *ColumnRef, *NumberLit, *StringLit,
// *BoolLit, or *NullLit.
type Expr interface {
	exprTag()
}

func (*ColumnRef) exprTag() {}

type NumberLit struct {
	Value float64
	Pos   int
}

func (*NumberLit) exprTag() {}

type StringLit struct {
	Value string
	Pos   int
}

func (*StringLit) exprTag() {}

type BoolLit struct {
	Value bool
	Pos   int
}

func (*BoolLit) exprTag() {}

type NullLit struct {
	Pos int
}

func (*NullLit) exprTag() {}

// AggFunc identifies one of the five supported aggregate functions.
type AggFunc string

const (
	AggCount AggFunc = "COUNT"
	AggSum   AggFunc = "SUM"
	AggAvg   AggFunc = "AVG"
	AggMin   AggFunc = "MIN"
	AggMax   AggFunc = "MAX"
)

// AggExpr is an aggregate call such as COUNT(*) or AVG(t.score).
type AggExpr struct {
	Func AggFunc
	Star bool
	Arg  *ColumnRef
	Pos  int
}

// Item is one entry of a select list: either a column reference or an
// aggregate call, with an optional alias.
type Item struct {
	Column *ColumnRef
	Agg    *AggExpr
	Alias  string
}

// Comparison is one predicate term. A bare boolean operand (no operator)
// is normalised by the parser into Op "=" against a BoolLit true, per
// the grammar's "bool_literal" shorthand for "WHERE <boolean column>".
type Comparison struct {
	Left  Expr
	Op    string // "=", "!=", "<", "<=", ">", ">=", "LIKE"
	Right Expr
	Pos   int
}

// JoinClause is an INNER JOIN with its ON equality condition.
type JoinClause struct {
	Table string
	On    Comparison
	Pos   int
}

// OrderByClause is the ORDER BY column and direction.
type OrderByClause struct {
	Col  ColumnRef
	Desc bool
}

// QueryStmt is a SELECT statement.
type QueryStmt struct {
	Distinct    bool
	Star        bool
	SelectList  []Item
	From        string
	FromPos     int
	Join        *JoinClause
	Where       []Comparison
	GroupBy     []ColumnRef
	OrderBy     *OrderByClause
	Limit       *int
}

func (*QueryStmt) stmtTag() {}

// ColDef is one column definition inside CREATE TABLE or ALTER TABLE ADD
// COLUMN.
type ColDef struct {
	Name          string
	Type          coltype.Type
	Size          *int
	NotNull       bool
	PrimaryKey    bool
	AutoIncrement bool
	Pos           int
}

// CreateTableStmt is a CREATE TABLE statement.
type CreateTableStmt struct {
	TableName  string
	Columns    []ColDef
	PrimaryKey string
	Pos        int
}

func (*CreateTableStmt) stmtTag() {}

// AlterTableStmt is an ALTER TABLE ... ADD [COLUMN] statement.
type AlterTableStmt struct {
	TableName string
	AddColumn ColDef
	Pos       int
}

func (*AlterTableStmt) stmtTag() {}

// DropTableStmt is a DROP TABLE statement.
type DropTableStmt struct {
	TableName string
	Pos       int
}

func (*DropTableStmt) stmtTag() {}

// InsertStmt is an INSERT INTO statement. Values holds literal
// expressions only (*NumberLit, *StringLit, *BoolLit, *NullLit).
type InsertStmt struct {
	TableName string
	Columns   []string
	Values    []Expr
	Pos       int
}

func (*InsertStmt) stmtTag() {}

// Assignment is one `column = literal` pair in an UPDATE's SET clause.
type Assignment struct {
	Column string
	Value  Expr
	Pos    int
}

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       []Comparison
	Pos         int
}

func (*UpdateStmt) stmtTag() {}

// DeleteStmt is a DELETE FROM statement.
type DeleteStmt struct {
	TableName string
	Where     []Comparison
	Pos       int
}

func (*DeleteStmt) stmtTag() {}
