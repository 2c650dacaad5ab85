package executor

import (
	"fmt"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
)

func literalValue(e compiler.Expr) catalog.Value {
	switch v := e.(type) {
	case *compiler.NumberLit:
		return catalog.NumberValue(v.Value)
	case *compiler.StringLit:
		return catalog.StringValue(v.Value)
	case *compiler.BoolLit:
		return catalog.BooleanValue(v.Value)
	case *compiler.NullLit:
		return catalog.Null
	default:
		return catalog.Null
	}
}

// checkValue enforces a cell's NOT NULL and type constraints.
func checkValue(v catalog.Value, col catalog.ColumnDef) error {
	if v.IsNull() {
		if col.NotNull {
			return sqlerr.Constraint(sqlerr.NotNullViolation, col.Name, "column %q cannot be NULL", col.Name)
		}
		return nil
	}
	if v.Type() != col.Type {
		return sqlerr.Constraint(sqlerr.TypeMismatch, col.Name,
			"column %q expects %s but got %s", col.Name, col.Type, v.Type())
	}
	return nil
}

// resolveWhereColumns fills in the table for every unqualified ColumnRef
// in an UPDATE/DELETE predicate, since those statements only ever have
// one table in scope and so never go through the SELECT validator.
func resolveWhereColumns(comparisons []compiler.Comparison, schema catalog.TableSchema, table string) error {
	resolve := func(e compiler.Expr) error {
		ref, ok := e.(*compiler.ColumnRef)
		if !ok {
			return nil
		}
		if ref.Table == "" {
			ref.Table = table
		} else if ref.Table != table {
			return sqlerr.UnknownTableErr(ref.Pos, ref.Table)
		}
		if _, ok := schema.Column(ref.Column); !ok {
			return sqlerr.UnknownColumnErr(ref.Pos, ref.Column)
		}
		return nil
	}
	for i := range comparisons {
		if err := resolve(comparisons[i].Left); err != nil {
			return err
		}
		if err := resolve(comparisons[i].Right); err != nil {
			return err
		}
	}
	return nil
}

func checkPrimaryKeyUnique(staged *catalog.StagedTable, skipIdx int, value catalog.Value) error {
	if staged.Schema.PrimaryKey == "" || value.IsNull() {
		return nil
	}
	for i, r := range staged.Rows {
		if i == skipIdx {
			continue
		}
		if existing, ok := r[staged.Schema.PrimaryKey]; ok && !existing.IsNull() && existing.Equal(value) {
			return sqlerr.Constraint(sqlerr.PrimaryKeyDuplicate, staged.Schema.PrimaryKey,
				"duplicate value %s for primary key %q", value.String(), staged.Schema.PrimaryKey)
		}
	}
	return nil
}

func executeInsert(s *compiler.InsertStmt, cat *catalog.Catalog) (Output, error) {
	if err := guardMutationTarget(cat, s.TableName, s.Pos); err != nil {
		return Output{}, err
	}

	staged, err := cat.CloneTable(s.TableName)
	if err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}

	for _, col := range s.Columns {
		if _, ok := staged.Schema.Column(col); !ok {
			return Output{}, sqlerr.UnknownColumnErr(s.Pos, col)
		}
	}

	row := catalog.Row{}
	for _, colDef := range staged.Schema.Columns {
		row[colDef.Name] = catalog.Null
	}
	for i, colName := range s.Columns {
		row[colName] = literalValue(s.Values[i])
	}

	for _, colDef := range staged.Schema.Columns {
		v := row[colDef.Name]
		if v.IsNull() {
			if colDef.AutoIncrement {
				v = catalog.NumberValue(staged.NextAutoIncrement(colDef.Name))
				row[colDef.Name] = v
			}
		} else if colDef.AutoIncrement {
			staged.RaiseAutoIncrementFloor(colDef.Name, v.Num)
		}
		if err := checkValue(row[colDef.Name], colDef); err != nil {
			return Output{}, err
		}
	}

	if staged.Schema.PrimaryKey != "" {
		if err := checkPrimaryKeyUnique(staged, -1, row[staged.Schema.PrimaryKey]); err != nil {
			return Output{}, err
		}
	}

	staged.Rows = append(staged.Rows, row)
	cat.CommitTable(staged)
	return Output{Modified: true, RowCount: 1, Message: fmt.Sprintf("1 row inserted into %q", s.TableName)}, nil
}

func executeUpdate(s *compiler.UpdateStmt, cat *catalog.Catalog) (Output, error) {
	if err := guardMutationTarget(cat, s.TableName, s.Pos); err != nil {
		return Output{}, err
	}

	staged, err := cat.CloneTable(s.TableName)
	if err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}

	for _, a := range s.Assignments {
		if _, ok := staged.Schema.Column(a.Column); !ok {
			return Output{}, sqlerr.UnknownColumnErr(a.Pos, a.Column)
		}
	}
	if err := resolveWhereColumns(s.Where, staged.Schema, s.TableName); err != nil {
		return Output{}, err
	}

	affected := 0
	for i := range staged.Rows {
		row := scopedRow{s.TableName: staged.Rows[i]}
		if len(s.Where) > 0 && !evalPredicate(s.Where, row) {
			continue
		}
		for _, a := range s.Assignments {
			colDef, _ := staged.Schema.Column(a.Column)
			v := literalValue(a.Value)
			if err := checkValue(v, colDef); err != nil {
				return Output{}, err
			}
			if colDef.Name == staged.Schema.PrimaryKey {
				if err := checkPrimaryKeyUnique(staged, i, v); err != nil {
					return Output{}, err
				}
			}
			if colDef.AutoIncrement && !v.IsNull() {
				staged.RaiseAutoIncrementFloor(colDef.Name, v.Num)
			}
			staged.Rows[i][a.Column] = v
		}
		affected++
	}

	cat.CommitTable(staged)
	return Output{Modified: true, RowCount: affected, Message: fmt.Sprintf("%d row(s) updated in %q", affected, s.TableName)}, nil
}

func executeDelete(s *compiler.DeleteStmt, cat *catalog.Catalog) (Output, error) {
	if err := guardMutationTarget(cat, s.TableName, s.Pos); err != nil {
		return Output{}, err
	}

	staged, err := cat.CloneTable(s.TableName)
	if err != nil {
		return Output{}, sqlerr.SyntaxNoPos(err.Error())
	}

	if len(s.Where) == 0 {
		deleted := len(staged.Rows)
		staged.Rows = nil
		cat.CommitTable(staged)
		return Output{Modified: true, RowCount: deleted, Message: fmt.Sprintf("%d row(s) deleted from %q", deleted, s.TableName)}, nil
	}

	if err := resolveWhereColumns(s.Where, staged.Schema, s.TableName); err != nil {
		return Output{}, err
	}

	kept := make([]catalog.Row, 0, len(staged.Rows))
	deleted := 0
	for _, r := range staged.Rows {
		row := scopedRow{s.TableName: r}
		if evalPredicate(s.Where, row) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	staged.Rows = kept
	cat.CommitTable(staged)
	return Output{Modified: true, RowCount: deleted, Message: fmt.Sprintf("%d row(s) deleted from %q", deleted, s.TableName)}, nil
}
