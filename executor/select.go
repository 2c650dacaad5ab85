package executor

import (
	"fmt"
	"sort"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
)

func executeQuery(q *compiler.QueryStmt, cat *catalog.Catalog) (Output, error) {
	scope := buildScopeTables(q)

	rows, err := buildScopedRows(q, cat)
	if err != nil {
		return Output{}, err
	}

	if len(q.Where) > 0 {
		filtered := make([]scopedRow, 0, len(rows))
		for _, r := range rows {
			if evalPredicate(q.Where, r) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	hasAgg := false
	for _, item := range q.SelectList {
		if item.Agg != nil {
			hasAgg = true
			break
		}
	}

	multiTable := len(scope) > 1
	columns := projectionColumns(q, cat, scope, multiTable)

	var projected [][]catalog.Value
	var representative []scopedRow

	if hasAgg || len(q.GroupBy) > 0 {
		groups := groupRows(rows, q.GroupBy)
		for _, g := range groups {
			var rep scopedRow
			if len(g.rows) > 0 {
				rep = g.rows[0]
			}
			projected = append(projected, projectGroup(q, g, rep))
			representative = append(representative, rep)
		}
	} else {
		for _, r := range rows {
			projected = append(projected, projectRow(q, cat, scope, r))
			representative = append(representative, r)
		}
	}

	if q.Distinct {
		projected, representative = distinctRows(projected, representative)
	}

	if q.OrderBy != nil {
		projected, representative = sortRows(q, columns, multiTable, projected, representative)
	}

	if q.Limit != nil && *q.Limit < len(projected) {
		projected = projected[:*q.Limit]
	}

	return Output{Columns: columns, Rows: projected, RowCount: len(projected)}, nil
}

func buildScopeTables(q *compiler.QueryStmt) []string {
	scope := []string{q.From}
	if q.Join != nil {
		scope = append(scope, q.Join.Table)
	}
	return scope
}

func buildScopedRows(q *compiler.QueryStmt, cat *catalog.Catalog) ([]scopedRow, error) {
	fromRows, _ := cat.Rows(q.From)
	rows := make([]scopedRow, 0, len(fromRows))
	for _, r := range fromRows {
		rows = append(rows, scopedRow{q.From: r})
	}
	if q.Join == nil {
		return rows, nil
	}

	joinRows, _ := cat.Rows(q.Join.Table)
	out := make([]scopedRow, 0, len(rows)*len(joinRows))
	for _, left := range rows {
		for _, jr := range joinRows {
			combined := scopedRow{q.From: left[q.From], q.Join.Table: jr}
			if evalComparison(q.Join.On, combined) {
				out = append(out, combined)
			}
		}
	}
	return out, nil
}

func tableColumnNames(cat *catalog.Catalog, table string) []string {
	cols := cat.ColumnsOf(table)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// projectionColumns computes the output column names, which for '*'
// expand to every column of every in-scope table (schema order within
// each table, table order = FROM then JOIN), qualified with the table
// name whenever more than one table is in scope.
func projectionColumns(q *compiler.QueryStmt, cat *catalog.Catalog, scope []string, multiTable bool) []string {
	if q.Star {
		var cols []string
		for _, t := range scope {
			for _, c := range tableColumnNames(cat, t) {
				if multiTable {
					cols = append(cols, t+"."+c)
				} else {
					cols = append(cols, c)
				}
			}
		}
		return cols
	}
	cols := make([]string, len(q.SelectList))
	for i, item := range q.SelectList {
		cols[i] = itemDisplayName(item, multiTable)
	}
	return cols
}

func itemDisplayName(item compiler.Item, multiTable bool) string {
	if item.Alias != "" {
		return item.Alias
	}
	if item.Agg != nil {
		arg := "*"
		if item.Agg.Arg != nil {
			arg = columnWrittenForm(item.Agg.Arg, multiTable)
		}
		return fmt.Sprintf("%s(%s)", item.Agg.Func, arg)
	}
	return columnWrittenForm(item.Column, multiTable)
}

func columnWrittenForm(ref *compiler.ColumnRef, multiTable bool) string {
	if ref.ExplicitTable || multiTable {
		return ref.Table + "." + ref.Column
	}
	return ref.Column
}

func projectRow(q *compiler.QueryStmt, cat *catalog.Catalog, scope []string, r scopedRow) []catalog.Value {
	if q.Star {
		var out []catalog.Value
		for _, t := range scope {
			for _, c := range tableColumnNames(cat, t) {
				out = append(out, r[t][c])
			}
		}
		return out
	}
	out := make([]catalog.Value, len(q.SelectList))
	for i, item := range q.SelectList {
		out[i] = evalOperand(item.Column, r)
	}
	return out
}

func projectGroup(q *compiler.QueryStmt, g group, rep scopedRow) []catalog.Value {
	out := make([]catalog.Value, len(q.SelectList))
	for i, item := range q.SelectList {
		if item.Agg != nil {
			out[i] = evalAggregate(item.Agg, g.rows)
			continue
		}
		out[i] = evalOperand(item.Column, rep)
	}
	return out
}

func distinctRows(rows [][]catalog.Value, rep []scopedRow) ([][]catalog.Value, []scopedRow) {
	var out [][]catalog.Value
	var outRep []scopedRow
	for i, r := range rows {
		dup := false
		for _, seen := range out {
			if rowsEqual(seen, r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
			outRep = append(outRep, rep[i])
		}
	}
	return out, outRep
}

func rowsEqual(a, b []catalog.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// sortRows orders projected rows by the ORDER BY column. If that column
// is one of the projected columns (by written name) it sorts on the
// projected value; otherwise it falls back to the underlying scoped row
// value when the ORDER BY table is still available there, and leaves the
// rows unsorted when neither is resolvable (spec section 9, open
// question (a)).
func sortRows(q *compiler.QueryStmt, columns []string, multiTable bool, rows [][]catalog.Value, rep []scopedRow) ([][]catalog.Value, []scopedRow) {
	wanted := columnWrittenForm(&q.OrderBy.Col, multiTable)
	colIdx := -1
	for i, name := range columns {
		if name == wanted || name == q.OrderBy.Col.Column {
			colIdx = i
			break
		}
	}

	keyFor := func(i int) (catalog.Value, bool) {
		if colIdx >= 0 {
			return rows[i][colIdx], true
		}
		r := rep[i]
		if r == nil {
			return catalog.Null, false
		}
		tableRow, ok := r[q.OrderBy.Col.Table]
		if !ok {
			return catalog.Null, false
		}
		v, ok := tableRow[q.OrderBy.Col.Column]
		return v, ok
	}

	if colIdx < 0 && len(rows) > 0 {
		if _, ok := keyFor(0); !ok {
			return rows, rep
		}
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, _ := keyFor(idx[a])
		vb, _ := keyFor(idx[b])
		cmp := compareValues(va, vb)
		if q.OrderBy.Desc {
			return cmp > 0
		}
		return cmp < 0
	})

	sortedRows := make([][]catalog.Value, len(rows))
	sortedRep := make([]scopedRow, len(rep))
	for i, j := range idx {
		sortedRows[i] = rows[j]
		sortedRep[i] = rep[j]
	}
	return sortedRows, sortedRep
}

// compareValues implements the ORDER BY comparator: Null sorts first,
// numbers compare numerically, everything else compares as strings.
func compareValues(a, b catalog.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	if a.Kind == catalog.KindNumber && b.Kind == catalog.KindNumber {
		return compareFloat(a.Num, b.Num)
	}
	return stringCompare(a.String(), b.String())
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
