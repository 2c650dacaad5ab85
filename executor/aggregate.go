package executor

import (
	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/shopspring/decimal"
)

// group is one partition of scoped rows sharing equal GROUP BY values
// (or, when there is no GROUP BY but an aggregate is present, the single
// implicit group over the whole rowset).
type group struct {
	rows []scopedRow
}

// groupRows partitions rows by the tuple of values at groupBy, preserving
// first-seen group order (spec section 5's ordering guarantee). When
// groupBy is empty, every row belongs to the single returned group, even
// when rows is empty, so that COUNT(*) over an empty rowset still yields
// one row.
func groupRows(rows []scopedRow, groupBy []compiler.ColumnRef) []group {
	if len(groupBy) == 0 {
		return []group{{rows: rows}}
	}
	order := []string{}
	byKey := map[string]*group{}
	for _, r := range rows {
		key := groupKey(r, groupBy)
		g, ok := byKey[key]
		if !ok {
			g = &group{}
			byKey[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
	}
	out := make([]group, len(order))
	for i, k := range order {
		out[i] = *byKey[k]
	}
	return out
}

func groupKey(row scopedRow, groupBy []compiler.ColumnRef) string {
	key := ""
	for _, col := range groupBy {
		key += row[col.Table][col.Column].String() + "\x1f"
	}
	return key
}

// evalAggregate computes one aggregate function over a group's rows.
func evalAggregate(agg *compiler.AggExpr, rows []scopedRow) catalog.Value {
	if agg.Func == compiler.AggCount && agg.Star {
		return catalog.NumberValue(float64(len(rows)))
	}

	nonNull := make([]catalog.Value, 0, len(rows))
	for _, r := range rows {
		v := r[agg.Arg.Table][agg.Arg.Column]
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}

	if agg.Func == compiler.AggCount {
		return catalog.NumberValue(float64(len(nonNull)))
	}

	numbers := make([]decimal.Decimal, 0, len(nonNull))
	for _, v := range nonNull {
		if v.Kind == catalog.KindNumber {
			numbers = append(numbers, decimal.NewFromFloat(v.Num))
		}
	}
	if len(numbers) == 0 {
		return catalog.Null
	}

	switch agg.Func {
	case compiler.AggSum:
		sum := decimal.Zero
		for _, n := range numbers {
			sum = sum.Add(n)
		}
		f, _ := sum.Float64()
		return catalog.NumberValue(f)
	case compiler.AggAvg:
		sum := decimal.Zero
		for _, n := range numbers {
			sum = sum.Add(n)
		}
		avg := sum.DivRound(decimal.NewFromInt(int64(len(numbers))), 2)
		f, _ := avg.Float64()
		return catalog.NumberValue(f)
	case compiler.AggMin:
		min := numbers[0]
		for _, n := range numbers[1:] {
			if n.LessThan(min) {
				min = n
			}
		}
		f, _ := min.Float64()
		return catalog.NumberValue(f)
	case compiler.AggMax:
		max := numbers[0]
		for _, n := range numbers[1:] {
			if n.GreaterThan(max) {
				max = n
			}
		}
		f, _ := max.Float64()
		return catalog.NumberValue(f)
	default:
		return catalog.Null
	}
}
