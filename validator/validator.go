// Package validator performs the semantic checks a SELECT statement
// needs before it can be executed: table and column resolution,
// ambiguity detection, and the aggregate/GROUP BY discipline. It never
// touches row data and never mutates the catalog; it only annotates the
// AST with resolved table names and reports the first failing check.
package validator

import (
	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
)

// Validate resolves every column reference in q against cat and enforces
// the aggregate/GROUP BY discipline. On success every ColumnRef reachable
// from q.SelectList, q.Where, q.Join, q.GroupBy, and q.OrderBy has its
// Table field set to the table it was resolved against.
func Validate(q *compiler.QueryStmt, cat *catalog.Catalog) error {
	scope, err := resolveScope(q, cat)
	if err != nil {
		return err
	}

	if q.Star && len(q.GroupBy) > 0 {
		return sqlerr.Syntax(q.FromPos, "SELECT * cannot be combined with GROUP BY")
	}

	for i := range q.SelectList {
		item := &q.SelectList[i]
		if item.Agg != nil {
			if item.Agg.Arg != nil {
				if err := resolveColumnRef(item.Agg.Arg, scope, cat); err != nil {
					return err
				}
			}
			continue
		}
		if err := resolveColumnRef(item.Column, scope, cat); err != nil {
			return err
		}
	}

	for i := range q.Where {
		if err := resolveComparisonOperands(&q.Where[i], scope, cat); err != nil {
			return err
		}
	}

	if q.Join != nil {
		if err := resolveComparisonOperands(&q.Join.On, scope, cat); err != nil {
			return err
		}
	}

	for i := range q.GroupBy {
		if err := resolveColumnRef(&q.GroupBy[i], scope, cat); err != nil {
			return err
		}
	}

	if q.OrderBy != nil {
		if err := resolveColumnRef(&q.OrderBy.Col, scope, cat); err != nil {
			return err
		}
	}

	return checkAggregateDiscipline(q)
}

func resolveScope(q *compiler.QueryStmt, cat *catalog.Catalog) ([]string, error) {
	if !cat.HasTable(q.From) {
		return nil, sqlerr.UnknownTableErr(q.FromPos, q.From)
	}
	scope := []string{q.From}
	if q.Join != nil {
		if !cat.HasTable(q.Join.Table) {
			return nil, sqlerr.UnknownTableErr(q.Join.Pos, q.Join.Table)
		}
		scope = append(scope, q.Join.Table)
	}
	return scope, nil
}

// resolveColumnRef fills in ref.Table. A qualified reference must name a
// table in scope that has the column; an unqualified reference must
// match exactly one table in scope.
func resolveColumnRef(ref *compiler.ColumnRef, scope []string, cat *catalog.Catalog) error {
	if ref.ExplicitTable {
		if !inScope(ref.Table, scope) {
			return sqlerr.UnknownTableErr(ref.Pos, ref.Table)
		}
		if !cat.HasColumn(ref.Table, ref.Column) {
			return sqlerr.UnknownColumnErr(ref.Pos, ref.Column)
		}
		return nil
	}
	var matches []string
	for _, t := range scope {
		if cat.HasColumn(t, ref.Column) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return sqlerr.UnknownColumnErr(ref.Pos, ref.Column)
	case 1:
		ref.Table = matches[0]
		return nil
	default:
		return sqlerr.AmbiguousColumnErr(ref.Pos, ref.Column, matches)
	}
}

func resolveComparisonOperands(c *compiler.Comparison, scope []string, cat *catalog.Catalog) error {
	if err := resolveOperand(c.Left, scope, cat); err != nil {
		return err
	}
	return resolveOperand(c.Right, scope, cat)
}

func resolveOperand(e compiler.Expr, scope []string, cat *catalog.Catalog) error {
	ref, ok := e.(*compiler.ColumnRef)
	if !ok {
		return nil
	}
	return resolveColumnRef(ref, scope, cat)
}

func inScope(table string, scope []string) bool {
	for _, t := range scope {
		if t == table {
			return true
		}
	}
	return false
}

// checkAggregateDiscipline enforces that every bare (non-aggregate)
// column in the select list is also a GROUP BY key whenever aggregates
// or GROUP BY are present.
func checkAggregateDiscipline(q *compiler.QueryStmt) error {
	hasAgg := false
	for _, item := range q.SelectList {
		if item.Agg != nil {
			hasAgg = true
			break
		}
	}
	if !hasAgg && len(q.GroupBy) == 0 {
		return nil
	}

	grouped := map[string]bool{}
	for _, g := range q.GroupBy {
		grouped[g.Table+"."+g.Column] = true
	}

	for _, item := range q.SelectList {
		if item.Agg != nil {
			continue
		}
		key := item.Column.Table + "." + item.Column.Column
		if !grouped[key] {
			return sqlerr.Syntax(item.Column.Pos,
				"column %q must appear in GROUP BY or be used inside an aggregate function", item.Column.Column)
		}
	}
	return nil
}
