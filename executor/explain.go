package executor

import (
	"fmt"
	"strings"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
)

// executeExplain never touches the catalog: it returns a single-column
// textual summary of the wrapped statement's shape (tables touched,
// whether it has a predicate, whether it mutates) instead of running it.
func executeExplain(s *compiler.ExplainStmt, cat *catalog.Catalog) (Output, error) {
	summary := describeStmt(s.Inner)
	return Output{Columns: []string{"plan"}, Rows: [][]catalog.Value{{catalog.StringValue(summary)}}, RowCount: 1}, nil
}

func describeStmt(stmt compiler.Stmt) string {
	switch s := stmt.(type) {
	case *compiler.QueryStmt:
		tables := []string{s.From}
		if s.Join != nil {
			tables = append(tables, s.Join.Table)
		}
		parts := []string{fmt.Sprintf("scan %s", strings.Join(tables, " join "))}
		if len(s.Where) > 0 {
			parts = append(parts, "filter")
		}
		if len(s.GroupBy) > 0 {
			parts = append(parts, "group")
		}
		if s.OrderBy != nil {
			parts = append(parts, "sort")
		}
		if s.Limit != nil {
			parts = append(parts, fmt.Sprintf("limit %d", *s.Limit))
		}
		return strings.Join(parts, " -> ")
	case *compiler.CreateTableStmt:
		return fmt.Sprintf("create table %s", s.TableName)
	case *compiler.AlterTableStmt:
		return fmt.Sprintf("alter table %s add column %s", s.TableName, s.AddColumn.Name)
	case *compiler.DropTableStmt:
		return fmt.Sprintf("drop table %s", s.TableName)
	case *compiler.InsertStmt:
		return fmt.Sprintf("insert into %s (%d column(s))", s.TableName, len(s.Columns))
	case *compiler.UpdateStmt:
		summary := fmt.Sprintf("update %s (%d assignment(s))", s.TableName, len(s.Assignments))
		if len(s.Where) > 0 {
			summary += " -> filter"
		}
		return summary
	case *compiler.DeleteStmt:
		summary := fmt.Sprintf("delete from %s", s.TableName)
		if len(s.Where) > 0 {
			summary += " -> filter"
		}
		return summary
	default:
		return "unknown statement"
	}
}
