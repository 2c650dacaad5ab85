package executor

import (
	"fmt"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
)

func executeCreateTable(s *compiler.CreateTableStmt, cat *catalog.Catalog) (Output, error) {
	if cat.HasTable(s.TableName) {
		return Output{}, sqlerr.Constraint(sqlerr.DuplicateTable, s.TableName, "table %q already exists", s.TableName)
	}

	seen := map[string]bool{}
	cols := make([]catalog.ColumnDef, len(s.Columns))
	for i, c := range s.Columns {
		if seen[c.Name] {
			return Output{}, sqlerr.Constraint(sqlerr.DuplicateColumn, c.Name, "column %q is declared more than once", c.Name)
		}
		seen[c.Name] = true
		cols[i] = columnDefFromAST(c)
	}

	schema := catalog.TableSchema{Columns: cols, PrimaryKey: s.PrimaryKey}
	if err := cat.CreateTable(s.TableName, schema); err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}
	return Output{Modified: true, Message: fmt.Sprintf("table %q created", s.TableName)}, nil
}

func columnDefFromAST(c compiler.ColDef) catalog.ColumnDef {
	size := 0
	if c.Size != nil {
		size = *c.Size
	}
	return catalog.ColumnDef{
		Name:          c.Name,
		Type:          c.Type,
		Size:          size,
		NotNull:       c.NotNull,
		PrimaryKey:    c.PrimaryKey,
		AutoIncrement: c.AutoIncrement,
	}
}

func executeAlterTable(s *compiler.AlterTableStmt, cat *catalog.Catalog) (Output, error) {
	if err := guardMutationTarget(cat, s.TableName, s.Pos); err != nil {
		return Output{}, err
	}

	staged, err := cat.CloneTable(s.TableName)
	if err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}

	if _, exists := staged.Schema.Column(s.AddColumn.Name); exists {
		return Output{}, sqlerr.Constraint(sqlerr.DuplicateColumn, s.AddColumn.Name,
			"column %q already exists on table %q", s.AddColumn.Name, s.TableName)
	}

	newCol := columnDefFromAST(s.AddColumn)
	if len(staged.Rows) > 0 && (newCol.NotNull || newCol.PrimaryKey || newCol.AutoIncrement) {
		return Output{}, sqlerr.Constraint(sqlerr.NotNullViolation, newCol.Name,
			"cannot add NOT NULL/PRIMARY KEY/AUTO_INCREMENT column %q to non-empty table %q", newCol.Name, s.TableName)
	}

	staged.Schema.Columns = append(staged.Schema.Columns, newCol)
	for i := range staged.Rows {
		if newCol.AutoIncrement {
			staged.Rows[i][newCol.Name] = catalog.NumberValue(staged.NextAutoIncrement(newCol.Name))
		} else {
			staged.Rows[i][newCol.Name] = catalog.Null
		}
	}

	cat.CommitTable(staged)
	return Output{Modified: true, Message: fmt.Sprintf("column %q added to %q", newCol.Name, s.TableName)}, nil
}

func executeDropTable(s *compiler.DropTableStmt, cat *catalog.Catalog) (Output, error) {
	if err := guardMutationTarget(cat, s.TableName, s.Pos); err != nil {
		return Output{}, err
	}
	if err := cat.DropTable(s.TableName); err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}
	return Output{Modified: true, Message: fmt.Sprintf("table %q dropped", s.TableName)}, nil
}
