package catalog

import (
	"fmt"
	"strconv"

	"github.com/kpalmer/schoolsql/coltype"
)

// ValueKind tags which variant of Value is populated.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindString
	KindBoolean
)

// Value is the tagged union of runtime values a cell may hold. Null never
// satisfies any comparison operator, including = and !=.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

var Null = Value{Kind: KindNull}

func NumberValue(n float64) Value   { return Value{Kind: KindNumber, Num: n} }
func StringValue(s string) Value    { return Value{Kind: KindString, Str: s} }
func BooleanValue(b bool) Value     { return Value{Kind: KindBoolean, Bool: b} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Type reports the coltype.Type that this value's kind implies. Null has
// no type of its own.
func (v Value) Type() coltype.Type {
	switch v.Kind {
	case KindNumber:
		return coltype.Number
	case KindString:
		return coltype.String
	case KindBoolean:
		return coltype.Boolean
	default:
		return coltype.Unknown
	}
}

// String renders the value the way it should print in a result table.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Equal is value equality used by DISTINCT: Null == Null, numbers by
// numeric equality, strings by byte equality, booleans by truth.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	default:
		return false
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("Value{%s}", v.String())
}
