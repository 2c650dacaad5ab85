package validator

import (
	"testing"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, sql string) *compiler.QueryStmt {
	t.Helper()
	stmt, err := compiler.Compile(sql)
	require.NoError(t, err)
	q, ok := stmt.(*compiler.QueryStmt)
	require.True(t, ok)
	return q
}

func asSQLErr(t *testing.T, err error) *sqlerr.Error {
	t.Helper()
	se, ok := err.(*sqlerr.Error)
	require.True(t, ok, "expected *sqlerr.Error, got %T", err)
	return se
}

func TestValidateResolvesUnqualifiedColumn(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT forename FROM students")
	require.NoError(t, Validate(q, cat))
	assert.Equal(t, "students", q.SelectList[0].Column.Table)
}

func TestValidateUnknownTable(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT * FROM nonexistent")
	err := Validate(q, cat)
	require.Error(t, err)
	assert.Equal(t, sqlerr.UnknownTable, asSQLErr(t, err).Kind)
}

func TestValidateUnknownColumn(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT not_a_column FROM students")
	err := Validate(q, cat)
	require.Error(t, err)
	assert.Equal(t, sqlerr.UnknownColumn, asSQLErr(t, err).Kind)
}

func TestValidateAmbiguousColumn(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT tutor_group_id FROM students INNER JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id")
	err := Validate(q, cat)
	require.Error(t, err)
	assert.Equal(t, sqlerr.AmbiguousColumn, asSQLErr(t, err).Kind)
}

func TestValidateQualifiedColumnMustBeInScope(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT grades.score FROM students")
	err := Validate(q, cat)
	require.Error(t, err)
	assert.Equal(t, sqlerr.UnknownTable, asSQLErr(t, err).Kind)
}

func TestValidateJoinOnResolvesBothSides(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT * FROM students INNER JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id")
	require.NoError(t, Validate(q, cat))
	left := q.Join.On.Left.(*compiler.ColumnRef)
	right := q.Join.On.Right.(*compiler.ColumnRef)
	assert.Equal(t, "students", left.Table)
	assert.Equal(t, "tutor_groups", right.Table)
}

func TestValidateBareColumnWithoutGroupByRejected(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT surname, COUNT(*) FROM students")
	err := Validate(q, cat)
	require.Error(t, err)
}

func TestValidateBareColumnNotInGroupByRejected(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT forename, COUNT(*) FROM students GROUP BY surname")
	err := Validate(q, cat)
	require.Error(t, err)
}

func TestValidateGroupByWithMatchingColumnAccepted(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT tutor_group_id, COUNT(*) FROM students GROUP BY tutor_group_id")
	require.NoError(t, Validate(q, cat))
}

func TestValidateStarWithGroupByRejected(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT * FROM students GROUP BY tutor_group_id")
	err := Validate(q, cat)
	require.Error(t, err)
}

func TestValidateOrderByColumnResolved(t *testing.T) {
	cat := catalog.NewSeeded()
	q := compile(t, "SELECT forename FROM students ORDER BY surname")
	require.NoError(t, Validate(q, cat))
	assert.Equal(t, "students", q.OrderBy.Col.Table)
}
