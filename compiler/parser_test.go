package compiler

import (
	"testing"

	"github.com/kpalmer/schoolsql/coltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, sql string) Stmt {
	t.Helper()
	toks, err := NewLexer(sql).Lex()
	require.NoError(t, err)
	stmt, err := NewParser(toks).Parse()
	require.NoError(t, err)
	return stmt
}

func parseErr(t *testing.T, sql string) error {
	t.Helper()
	toks, err := NewLexer(sql).Lex()
	require.NoError(t, err)
	_, err = NewParser(toks).Parse()
	require.Error(t, err)
	return err
}

func TestParseSelectStar(t *testing.T) {
	stmt := parse(t, "SELECT * FROM students").(*QueryStmt)
	assert.True(t, stmt.Star)
	assert.Equal(t, "students", stmt.From)
}

func TestParseSelectListWithImplicitAlias(t *testing.T) {
	stmt := parse(t, "SELECT forename nickname, surname FROM students").(*QueryStmt)
	require.Len(t, stmt.SelectList, 2)
	assert.Equal(t, "forename", stmt.SelectList[0].Column.Column)
	assert.Equal(t, "nickname", stmt.SelectList[0].Alias)
	assert.Equal(t, "surname", stmt.SelectList[1].Column.Column)
	assert.Equal(t, "", stmt.SelectList[1].Alias)
}

func TestParseSelectListWithExplicitAlias(t *testing.T) {
	stmt := parse(t, "SELECT forename AS first_name FROM students").(*QueryStmt)
	assert.Equal(t, "first_name", stmt.SelectList[0].Alias)
}

func TestParseAliasStopsBeforeClauseKeyword(t *testing.T) {
	stmt := parse(t, "SELECT forename FROM students WHERE surname = 'Lee'").(*QueryStmt)
	assert.Equal(t, "", stmt.SelectList[0].Alias)
	require.Len(t, stmt.Where, 1)
}

func TestParseCountStar(t *testing.T) {
	stmt := parse(t, "SELECT COUNT(*) FROM students").(*QueryStmt)
	require.NotNil(t, stmt.SelectList[0].Agg)
	assert.Equal(t, AggCount, stmt.SelectList[0].Agg.Func)
	assert.True(t, stmt.SelectList[0].Agg.Star)
}

func TestParseAvgColumn(t *testing.T) {
	stmt := parse(t, "SELECT AVG(score) FROM grades").(*QueryStmt)
	require.NotNil(t, stmt.SelectList[0].Agg)
	assert.Equal(t, AggAvg, stmt.SelectList[0].Agg.Func)
	assert.Equal(t, "score", stmt.SelectList[0].Agg.Arg.Column)
}

func TestParseJoin(t *testing.T) {
	stmt := parse(t, "SELECT * FROM students JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id").(*QueryStmt)
	require.NotNil(t, stmt.Join)
	assert.Equal(t, "tutor_groups", stmt.Join.Table)
	left := stmt.Join.On.Left.(*ColumnRef)
	assert.Equal(t, "students", left.Table)
	assert.Equal(t, "tutor_group_id", left.Column)
}

func TestParseWhereWithAnd(t *testing.T) {
	stmt := parse(t, "SELECT * FROM students WHERE surname = 'Lee' AND student_id > 2").(*QueryStmt)
	require.Len(t, stmt.Where, 2)
	assert.Equal(t, "=", stmt.Where[0].Op)
	assert.Equal(t, ">", stmt.Where[1].Op)
}

func TestParseBareBooleanPredicateShorthand(t *testing.T) {
	stmt := parse(t, "SELECT * FROM students WHERE is_active").(*QueryStmt)
	require.Len(t, stmt.Where, 1)
	assert.Equal(t, "=", stmt.Where[0].Op)
	lit, ok := stmt.Where[0].Right.(*BoolLit)
	require.True(t, ok)
	assert.True(t, lit.Value)
}

func TestParseGroupByOrderByLimit(t *testing.T) {
	stmt := parse(t, "SELECT tutor_group_id, COUNT(*) FROM students GROUP BY tutor_group_id ORDER BY tutor_group_id DESC LIMIT 5").(*QueryStmt)
	require.Len(t, stmt.GroupBy, 1)
	assert.Equal(t, "tutor_group_id", stmt.GroupBy[0].Column)
	require.NotNil(t, stmt.OrderBy)
	assert.True(t, stmt.OrderBy.Desc)
	require.NotNil(t, stmt.Limit)
	assert.Equal(t, 5, *stmt.Limit)
}

func TestParseDistinct(t *testing.T) {
	stmt := parse(t, "SELECT DISTINCT surname FROM students").(*QueryStmt)
	assert.True(t, stmt.Distinct)
}

func TestParseExplainWrapsInner(t *testing.T) {
	stmt := parse(t, "EXPLAIN SELECT * FROM students").(*ExplainStmt)
	inner, ok := stmt.Inner.(*QueryStmt)
	require.True(t, ok)
	assert.True(t, inner.Star)
}

func TestParseCreateTableWithAutoIncrementPrimaryKey(t *testing.T) {
	stmt := parse(t, "CREATE TABLE clubs (club_id INTEGER PRIMARY KEY AUTO_INCREMENT, name VARCHAR(30) NOT NULL)").(*CreateTableStmt)
	assert.Equal(t, "clubs", stmt.TableName)
	assert.Equal(t, "club_id", stmt.PrimaryKey)
	require.Len(t, stmt.Columns, 2)
	assert.Equal(t, coltype.Number, stmt.Columns[0].Type)
	assert.True(t, stmt.Columns[0].AutoIncrement)
	assert.True(t, stmt.Columns[0].NotNull)
	assert.Equal(t, coltype.String, stmt.Columns[1].Type)
	require.NotNil(t, stmt.Columns[1].Size)
	assert.Equal(t, 30, *stmt.Columns[1].Size)
}

func TestParseCreateTableRejectsSecondPrimaryKey(t *testing.T) {
	parseErr(t, "CREATE TABLE t (a INTEGER PRIMARY KEY, b INTEGER PRIMARY KEY)")
}

func TestParseAlterTableAddColumn(t *testing.T) {
	stmt := parse(t, "ALTER TABLE students ADD COLUMN email VARCHAR(50)").(*AlterTableStmt)
	assert.Equal(t, "students", stmt.TableName)
	assert.Equal(t, "email", stmt.AddColumn.Name)
}

func TestParseDropTable(t *testing.T) {
	stmt := parse(t, "DROP TABLE clubs").(*DropTableStmt)
	assert.Equal(t, "clubs", stmt.TableName)
}

func TestParseInsert(t *testing.T) {
	stmt := parse(t, "INSERT INTO students (forename, surname) VALUES ('Sam', 'Lee')").(*InsertStmt)
	assert.Equal(t, []string{"forename", "surname"}, stmt.Columns)
	require.Len(t, stmt.Values, 2)
	assert.Equal(t, "Sam", stmt.Values[0].(*StringLit).Value)
}

func TestParseInsertColumnValueCountMismatch(t *testing.T) {
	parseErr(t, "INSERT INTO students (forename, surname) VALUES ('Sam')")
}

func TestParseInsertRejectsColumnReferenceInValues(t *testing.T) {
	parseErr(t, "INSERT INTO students (forename) VALUES (surname)")
}

func TestParseUpdate(t *testing.T) {
	stmt := parse(t, "UPDATE students SET surname = 'Lee' WHERE student_id = 1").(*UpdateStmt)
	require.Len(t, stmt.Assignments, 1)
	assert.Equal(t, "surname", stmt.Assignments[0].Column)
	require.Len(t, stmt.Where, 1)
}

func TestParseDelete(t *testing.T) {
	stmt := parse(t, "DELETE FROM students WHERE student_id = 1").(*DeleteStmt)
	assert.Equal(t, "students", stmt.TableName)
	require.Len(t, stmt.Where, 1)
}

func TestParseRejectsReservedKeyword(t *testing.T) {
	parseErr(t, "SELECT * FROM students LEFT JOIN tutor_groups ON students.tutor_group_id = tutor_groups.tutor_group_id")
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	parseErr(t, "SELECT * FROM students; DROP TABLE students")
}
