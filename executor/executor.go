// Package executor evaluates a validated statement AST against a
// catalog and returns a tabular result or a structured error. DDL/DML
// statements stage their writes on a cloned table (see
// catalog.CloneTable/CommitTable) and only commit once every
// constraint check has passed, which is how the engine upholds
// per-statement atomicity without a transaction log.
package executor

import (
	"fmt"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
)

// Output is the result of one statement. For SELECT, Columns/Rows carry
// the projected table. For DDL/DML, Columns/Rows are empty and Message
// carries a human-readable summary; Modified is true and RowCount is the
// number of affected rows.
type Output struct {
	Columns  []string
	Rows     [][]catalog.Value
	RowCount int
	Modified bool
	Message  string
}

// Execute dispatches on the statement kind and evaluates it against cat.
// The caller is responsible for running validator.Validate on a
// *compiler.QueryStmt first; Execute assumes every reachable ColumnRef
// already has its Table field resolved.
func Execute(stmt compiler.Stmt, cat *catalog.Catalog) (Output, error) {
	switch s := stmt.(type) {
	case *compiler.QueryStmt:
		return executeQuery(s, cat)
	case *compiler.CreateTableStmt:
		return executeCreateTable(s, cat)
	case *compiler.AlterTableStmt:
		return executeAlterTable(s, cat)
	case *compiler.DropTableStmt:
		return executeDropTable(s, cat)
	case *compiler.InsertStmt:
		return executeInsert(s, cat)
	case *compiler.UpdateStmt:
		return executeUpdate(s, cat)
	case *compiler.DeleteStmt:
		return executeDelete(s, cat)
	case *compiler.ExplainStmt:
		return executeExplain(s, cat)
	default:
		return Output{}, sqlerr.SyntaxNoPos(fmt.Sprintf("unhandled statement type %T", stmt))
	}
}

func guardMutationTarget(cat *catalog.Catalog, table string, pos int) error {
	if cat.IsProtected(table) {
		return sqlerr.Constraint(sqlerr.ProtectedTable, table, "table %q is protected and cannot be modified", table)
	}
	if !cat.HasTable(table) {
		return sqlerr.UnknownTableErr(pos, table)
	}
	return nil
}
