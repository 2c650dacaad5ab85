package catalog

import "github.com/kpalmer/schoolsql/coltype"

// seed populates c with the three protected tables every fresh catalog
// starts with: students, tutor_groups, and grades. The row data for
// students and tutor_groups is bit-exact per the external interface
// contract; grades starts empty and is filled in by the host
// application.
func seed(c *Catalog) {
	seedStudents(c)
	seedTutorGroups(c)
	seedGrades(c)
}

func seedStudents(c *Catalog) {
	schema := TableSchema{
		Protected:  true,
		PrimaryKey: "student_id",
		Columns: []ColumnDef{
			{Name: "student_id", Type: coltype.Number, NotNull: true, PrimaryKey: true},
			{Name: "forename", Type: coltype.String},
			{Name: "surname", Type: coltype.String},
			{Name: "tutor_group_id", Type: coltype.Number},
		},
	}
	_ = c.CreateTable("students", schema)
	type student struct {
		id                float64
		forename, surname string
		tutorGroup        float64
	}
	rows := []student{
		{1, "Alice", "Smith", 1},
		{2, "Bob", "Johnson", 1},
		{3, "Charlie", "Smith", 2},
		{4, "Diana", "Brown", 2},
		{5, "Eve", "Williams", 3},
		{6, "Frank", "Davis", 3},
		{7, "Grace", "Miller", 1},
		{8, "Henry", "Wilson", 2},
		{9, "Iris", "Moore", 3},
		{10, "Jack", "Taylor", 1},
	}
	t := c.tables["students"]
	for _, s := range rows {
		t.rows = append(t.rows, Row{
			"student_id":     NumberValue(s.id),
			"forename":       StringValue(s.forename),
			"surname":        StringValue(s.surname),
			"tutor_group_id": NumberValue(s.tutorGroup),
		})
	}
}

func seedTutorGroups(c *Catalog) {
	schema := TableSchema{
		Protected:  true,
		PrimaryKey: "tutor_group_id",
		Columns: []ColumnDef{
			{Name: "tutor_group_id", Type: coltype.Number, NotNull: true, PrimaryKey: true},
			{Name: "tutor_name", Type: coltype.String},
			{Name: "room", Type: coltype.String},
		},
	}
	_ = c.CreateTable("tutor_groups", schema)
	type group struct {
		id              float64
		tutorName, room string
	}
	rows := []group{
		{1, "Clive Anderson", "B12"},
		{2, "Amelia Bennett", "A5"},
		{3, "Sidney Carter", "C3"},
	}
	t := c.tables["tutor_groups"]
	for _, g := range rows {
		t.rows = append(t.rows, Row{
			"tutor_group_id": NumberValue(g.id),
			"tutor_name":     StringValue(g.tutorName),
			"room":           StringValue(g.room),
		})
	}
}

func seedGrades(c *Catalog) {
	schema := TableSchema{
		Protected: true,
		Columns: []ColumnDef{
			{Name: "student_id", Type: coltype.Number},
			{Name: "module", Type: coltype.String},
			{Name: "paper", Type: coltype.Number},
			{Name: "score", Type: coltype.Number},
		},
	}
	_ = c.CreateTable("grades", schema)
}
