package executor

import (
	"math"
	"strconv"
	"strings"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
)

// scopedRow maps table name to the row contributed by that table, for
// the tables in scope of one SELECT (FROM, then JOIN).
type scopedRow map[string]catalog.Row

func evalOperand(e compiler.Expr, row scopedRow) catalog.Value {
	switch v := e.(type) {
	case *compiler.ColumnRef:
		return row[v.Table][v.Column]
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

func evalPredicate(comparisons []compiler.Comparison, row scopedRow) bool {
	for _, c := range comparisons {
		if !evalComparison(c, row) {
			return false
		}
	}
	return true
}

// evalComparison implements spec section 4.6's comparison rules: any
// NULL operand makes the comparison false; equality/ordering compares
// numerically when both sides parse as finite numbers, otherwise as
// strings; LIKE is a case-insensitive, fully anchored pattern match.
func evalComparison(c compiler.Comparison, row scopedRow) bool {
	left := evalOperand(c.Left, row)
	right := evalOperand(c.Right, row)
	if left.IsNull() || right.IsNull() {
		return false
	}
	if c.Op == "LIKE" {
		return likeMatch(left.String(), right.String())
	}

	ln, lok := asFiniteNumber(left)
	rn, rok := asFiniteNumber(right)
	if lok && rok {
		return compareOrdered(c.Op, compareFloat(ln, rn))
	}
	return compareOrdered(c.Op, strings.Compare(left.String(), right.String()))
}

func asFiniteNumber(v catalog.Value) (float64, bool) {
	if v.Kind == catalog.KindNumber {
		return v.Num, true
	}
	if v.Kind == catalog.KindString {
		n, err := strconv.ParseFloat(v.Str, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareOrdered(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// likeMatch implements SQL LIKE with '%' matching any sequence of
// characters (including empty); every other character, including the
// other classic SQL wildcard '_', is matched literally since the
// grammar only specifies '%'. Matching is case-insensitive and anchored
// to the full string.
func likeMatch(s, pattern string) bool {
	return likeMatchFold(strings.ToUpper(s), strings.ToUpper(pattern))
}

func likeMatchFold(s, pattern string) bool {
	segments := strings.Split(pattern, "%")
	if len(segments) == 1 {
		return s == pattern
	}
	if !strings.HasPrefix(s, segments[0]) {
		return false
	}
	s = s[len(segments[0]):]
	last := len(segments) - 1
	if !strings.HasSuffix(s, segments[last]) {
		return false
	}
	if last > 0 {
		s = s[:len(s)-len(segments[last])]
	}
	for _, mid := range segments[1:last] {
		idx := strings.Index(s, mid)
		if idx < 0 {
			return false
		}
		s = s[idx+len(mid):]
	}
	return true
}
