package executor

import (
	"testing"

	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/sqlerr"
	"github.com/kpalmer/schoolsql/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cat *catalog.Catalog, sql string) (Output, error) {
	t.Helper()
	stmt, err := compiler.Compile(sql)
	require.NoError(t, err)
	if q, ok := stmt.(*compiler.QueryStmt); ok {
		if verr := validator.Validate(q, cat); verr != nil {
			return Output{}, verr
		}
	}
	return Execute(stmt, cat)
}

func mustRun(t *testing.T, cat *catalog.Catalog, sql string) Output {
	t.Helper()
	out, err := run(t, cat, sql)
	require.NoError(t, err)
	return out
}

func sqlErrKind(t *testing.T, err error) sqlerr.Kind {
	t.Helper()
	se, ok := err.(*sqlerr.Error)
	require.True(t, ok, "expected *sqlerr.Error, got %T", err)
	return se.Kind
}

func TestSelectStarAllStudents(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT * FROM students")
	assert.Equal(t, []string{"student_id", "forename", "surname", "tutor_group_id"}, out.Columns)
	assert.Len(t, out.Rows, 10)
}

func TestSelectWithWhereEquality(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT forename, surname FROM students WHERE surname = 'Smith'")
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Alice", out.Rows[0][0].Str)
	assert.Equal(t, "Charlie", out.Rows[1][0].Str)
}

func TestSelectJoinWhereOrderByLimit(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, `SELECT students.forename, students.surname, tutor_groups.tutor_name
		FROM students INNER JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id
		WHERE tutor_groups.room = 'B12' ORDER BY students.surname ASC LIMIT 20`)
	require.Len(t, out.Rows, 4)
	var surnames []string
	for _, r := range out.Rows {
		surnames = append(surnames, r[1].Str)
		assert.Equal(t, "Clive Anderson", r[2].Str)
	}
	assert.Equal(t, []string{"Johnson", "Miller", "Smith", "Taylor"}, surnames)
}

func TestSelectAmbiguousColumnFromJoin(t *testing.T) {
	cat := catalog.NewSeeded()
	_, err := run(t, cat, "SELECT tutor_group_id FROM students INNER JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id")
	require.Error(t, err)
	assert.Equal(t, sqlerr.AmbiguousColumn, sqlErrKind(t, err))
}

func TestSelectDistinctOrderBy(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT DISTINCT tutor_group_id FROM students ORDER BY tutor_group_id")
	require.Len(t, out.Rows, 3)
	assert.Equal(t, float64(1), out.Rows[0][0].Num)
	assert.Equal(t, float64(2), out.Rows[1][0].Num)
	assert.Equal(t, float64(3), out.Rows[2][0].Num)
}

func TestAutoIncrementSequence(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE statuses (id INT AUTO_INCREMENT PRIMARY KEY, active BOOLEAN NOT NULL)")
	mustRun(t, cat, "INSERT INTO statuses (active) VALUES (TRUE)")
	mustRun(t, cat, "INSERT INTO statuses (active) VALUES (FALSE)")
	out := mustRun(t, cat, "SELECT id, active FROM statuses ORDER BY id")
	require.Len(t, out.Rows, 2)
	assert.Equal(t, float64(1), out.Rows[0][0].Num)
	assert.True(t, out.Rows[0][1].Bool)
	assert.Equal(t, float64(2), out.Rows[1][0].Num)
	assert.False(t, out.Rows[1][1].Bool)
}

func TestNotNullViolationLeavesTableEmpty(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE people (id INT PRIMARY KEY, name TEXT NOT NULL)")
	_, err := run(t, cat, "INSERT INTO people (id, name) VALUES (1, NULL)")
	require.Error(t, err)
	assert.Equal(t, sqlerr.ConstraintViolation, sqlErrKind(t, err))
	rows, _ := cat.Rows("people")
	assert.Empty(t, rows)
}

func TestCountStar(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT COUNT(*) FROM students")
	require.Len(t, out.Rows, 1)
	assert.Equal(t, float64(10), out.Rows[0][0].Num)
	assert.Equal(t, []string{"COUNT(*)"}, out.Columns)
}

func TestAvgRoundsToTwoDecimals(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE grades2 (student_id INT, score DECIMAL)")
	mustRun(t, cat, "INSERT INTO grades2 (student_id, score) VALUES (1, 1)")
	mustRun(t, cat, "INSERT INTO grades2 (student_id, score) VALUES (2, 2)")
	mustRun(t, cat, "INSERT INTO grades2 (student_id, score) VALUES (3, 2)")
	out := mustRun(t, cat, "SELECT AVG(score) FROM grades2")
	assert.InDelta(t, 1.67, out.Rows[0][0].Num, 0.001)
}

func TestGroupByCount(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT tutor_group_id, COUNT(*) FROM students GROUP BY tutor_group_id ORDER BY tutor_group_id")
	require.Len(t, out.Rows, 3)
	assert.Equal(t, float64(1), out.Rows[0][0].Num)
	assert.Equal(t, float64(4), out.Rows[0][1].Num)
}

func TestProtectedTableRejectsInsert(t *testing.T) {
	cat := catalog.NewSeeded()
	_, err := run(t, cat, "INSERT INTO students (forename, surname) VALUES ('X', 'Y')")
	require.Error(t, err)
	se, ok := err.(*sqlerr.Error)
	require.True(t, ok)
	assert.Equal(t, sqlerr.ConstraintViolation, se.Kind)
	assert.Equal(t, sqlerr.ProtectedTable, se.Reason)
}

func TestUpdateWithWhereAndPrimaryKeyDuplicateRejected(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY, label TEXT)")
	mustRun(t, cat, "INSERT INTO t (id, label) VALUES (1, 'a')")
	mustRun(t, cat, "INSERT INTO t (id, label) VALUES (2, 'b')")
	_, err := run(t, cat, "UPDATE t SET id = 1 WHERE id = 2")
	require.Error(t, err)
	assert.Equal(t, sqlerr.ConstraintViolation, sqlErrKind(t, err))
	rows, _ := cat.Rows("t")
	assert.Equal(t, float64(2), rows[1]["id"].Num)
}

func TestDeleteWithoutWhereTruncates(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (1)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (2)")
	out := mustRun(t, cat, "DELETE FROM t")
	assert.Equal(t, 2, out.RowCount)
	rows, _ := cat.Rows("t")
	assert.Empty(t, rows)
}

func TestDeleteWithWhere(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (1)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (2)")
	out := mustRun(t, cat, "DELETE FROM t WHERE id = 1")
	assert.Equal(t, 1, out.RowCount)
	rows, _ := cat.Rows("t")
	require.Len(t, rows, 1)
	assert.Equal(t, float64(2), rows[0]["id"].Num)
}

func TestAlterTableAddColumnBackfillsNull(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (1)")
	mustRun(t, cat, "ALTER TABLE t ADD COLUMN nickname TEXT")
	rows, _ := cat.Rows("t")
	assert.True(t, rows[0]["nickname"].IsNull())
}

func TestAlterTableRejectsNotNullOnNonEmptyTable(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (1)")
	_, err := run(t, cat, "ALTER TABLE t ADD COLUMN nickname TEXT NOT NULL")
	require.Error(t, err)
}

func TestDropTableRemovesSchemaAndRows(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT PRIMARY KEY)")
	mustRun(t, cat, "DROP TABLE t")
	assert.False(t, cat.HasTable("t"))
}

func TestDropProtectedTableRejected(t *testing.T) {
	cat := catalog.NewSeeded()
	_, err := run(t, cat, "DROP TABLE students")
	require.Error(t, err)
	assert.True(t, cat.HasTable("students"))
}

func TestLikePattern(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT forename FROM students WHERE forename LIKE 'A%'")
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Alice", out.Rows[0][0].Str)
}

func TestLikeAnyMatchesEveryString(t *testing.T) {
	cat := catalog.NewSeeded()
	out := mustRun(t, cat, "SELECT forename FROM students WHERE forename LIKE '%'")
	assert.Len(t, out.Rows, 10)
}

func TestNullNeverEqualsAnything(t *testing.T) {
	cat := catalog.New()
	mustRun(t, cat, "CREATE TABLE t (id INT, label TEXT)")
	mustRun(t, cat, "INSERT INTO t (id) VALUES (1)")
	out := mustRun(t, cat, "SELECT id FROM t WHERE label = label")
	assert.Empty(t, out.Rows)
}

func TestExplainDoesNotMutateCatalog(t *testing.T) {
	cat := catalog.New()
	out := mustRun(t, cat, "EXPLAIN CREATE TABLE t (id INT PRIMARY KEY)")
	assert.False(t, cat.HasTable("t"))
	assert.Equal(t, []string{"plan"}, out.Columns)
}
