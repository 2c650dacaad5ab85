// parser takes tokens from the lexer and produces an AST (Abstract Syntax
// Tree). The AST is consumed by the validator and the executor.
package compiler

import (
	"strconv"

	"github.com/kpalmer/schoolsql/coltype"
	"github.com/kpalmer/schoolsql/sqlerr"
)

// clauseKeywords terminate a select item's implicit (AS-less) alias: a
// bare identifier right after an item is the alias only if what follows
// it is one of these, a comma, or end of input.
var clauseKeywords = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "ORDER": true, "LIMIT": true,
}

type parser struct {
	tokens []Token
	i      int
}

// NewParser returns a parser over the given token stream.
func NewParser(tokens []Token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) cur() Token {
	return p.tokens[p.i]
}

func (p *parser) peekAt(offset int) Token {
	idx := p.i + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) advance() Token {
	t := p.cur()
	if t.Kind != TEOF {
		p.i++
	}
	return t
}

func (p *parser) isKeyword(word string) bool {
	t := p.cur()
	return t.Kind == TKeyword && t.Value == word
}

func (p *parser) expectKeyword(word string) (Token, error) {
	t := p.cur()
	if t.Kind != TKeyword || t.Value != word {
		return t, sqlerr.Syntax(t.Pos, "expected %s but got %q", word, tokenText(t))
	}
	return p.advance(), nil
}

func (p *parser) expectKind(kind TokenKind, what string) (Token, error) {
	t := p.cur()
	if t.Kind != kind {
		return t, sqlerr.Syntax(t.Pos, "expected %s but got %q", what, tokenText(t))
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (Token, error) {
	t := p.cur()
	if t.Kind == TKeyword && reserved[t.Value] {
		return t, sqlerr.Unsupported(t.Pos, t.Value)
	}
	return p.expectKind(TIdent, "identifier")
}

func tokenText(t Token) string {
	if t.Kind == TEOF {
		return "end of input"
	}
	return t.Value
}

// Parse consumes the full token stream and returns exactly one
// statement. A trailing semicolon is optional and consumed silently;
// a reserved keyword left over (such as LEFT, OR or HAVING) is an
// UnsupportedFeature, and anything else left over is a SyntaxError.
func (p *parser) Parse() (Stmt, error) {
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TSemicolon {
		p.advance()
	}
	if p.cur().Kind != TEOF {
		t := p.cur()
		if t.Kind == TKeyword && reserved[t.Value] {
			return nil, sqlerr.Unsupported(t.Pos, t.Value)
		}
		return nil, sqlerr.Syntax(t.Pos, "unexpected trailing input %q", tokenText(t))
	}
	return stmt, nil
}

func (p *parser) parseStmt() (Stmt, error) {
	t := p.cur()
	if t.Kind == TKeyword && reserved[t.Value] {
		return nil, sqlerr.Unsupported(t.Pos, t.Value)
	}
	if t.Kind != TKeyword {
		return nil, sqlerr.Syntax(t.Pos, "expected a statement but got %q", tokenText(t))
	}
	switch t.Value {
	case "EXPLAIN":
		p.advance()
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ExplainStmt{Inner: inner}, nil
	case "SELECT":
		return p.parseQuery()
	case "CREATE":
		return p.parseCreateTable()
	case "ALTER":
		return p.parseAlterTable()
	case "DROP":
		return p.parseDropTable()
	case "INSERT":
		return p.parseInsert()
	case "UPDATE":
		return p.parseUpdate()
	case "DELETE":
		return p.parseDelete()
	default:
		return nil, sqlerr.Syntax(t.Pos, "unexpected keyword %q", t.Value)
	}
}

// --- SELECT -----------------------------------------------------------

func (p *parser) parseQuery() (*QueryStmt, error) {
	if _, err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	stmt := &QueryStmt{}
	if p.isKeyword("DISTINCT") {
		p.advance()
		stmt.Distinct = true
	}
	if p.cur().Kind == TStar {
		p.advance()
		stmt.Star = true
	} else {
		items, err := p.parseSelectList()
		if err != nil {
			return nil, err
		}
		stmt.SelectList = items
	}

	fromTok, err := p.expectKeyword("FROM")
	if err != nil {
		return nil, err
	}
	tableTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt.From = tableTok.Value
	stmt.FromPos = fromTok.Pos

	if p.isKeyword("INNER") {
		p.advance()
	}
	if p.isKeyword("JOIN") {
		joinPos := p.cur().Pos
		p.advance()
		joinTable, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("ON"); err != nil {
			return nil, err
		}
		left, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		eqTok := p.cur()
		if eqTok.Kind != TEq {
			return nil, sqlerr.Syntax(eqTok.Pos, "expected = in join condition but got %q", tokenText(eqTok))
		}
		p.advance()
		right, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		stmt.Join = &JoinClause{
			Table: joinTable.Value,
			On:    Comparison{Left: left, Op: "=", Right: right, Pos: eqTok.Pos},
			Pos:   joinPos,
		}
	}

	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.isKeyword("GROUP") {
		p.advance()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, *col)
			if p.cur().Kind == TComma {
				p.advance()
				continue
			}
			break
		}
	}

	if p.isKeyword("ORDER") {
		p.advance()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		ob := &OrderByClause{Col: *col}
		if p.isKeyword("ASC") {
			p.advance()
		} else if p.isKeyword("DESC") {
			p.advance()
			ob.Desc = true
		}
		stmt.OrderBy = ob
	}

	if p.isKeyword("LIMIT") {
		p.advance()
		t := p.cur()
		if t.Kind != TNumber {
			return nil, sqlerr.Syntax(t.Pos, "expected a non-negative integer LIMIT but got %q", tokenText(t))
		}
		p.advance()
		if containsDot(t.Value) {
			return nil, sqlerr.Syntax(t.Pos, "LIMIT must be an integer, got %q", t.Value)
		}
		n, err := strconv.Atoi(t.Value)
		if err != nil || n < 0 {
			return nil, sqlerr.Syntax(t.Pos, "LIMIT must be a non-negative integer, got %q", t.Value)
		}
		stmt.Limit = &n
	}

	return stmt, nil
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

func (p *parser) parseSelectList() ([]Item, error) {
	items := []Item{}
	for {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur().Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *parser) parseItem() (Item, error) {
	item := Item{}
	if agg, ok := aggKeyword(p.cur()); ok {
		aggPos := p.cur().Pos
		p.advance()
		if _, err := p.expectKind(TLParen, "("); err != nil {
			return item, err
		}
		ae := &AggExpr{Func: agg, Pos: aggPos}
		if p.cur().Kind == TStar {
			if agg != AggCount {
				return item, sqlerr.Syntax(p.cur().Pos, "* is only valid inside COUNT")
			}
			p.advance()
			ae.Star = true
		} else {
			col, err := p.parseColumnRef()
			if err != nil {
				return item, err
			}
			ae.Arg = col
		}
		if _, err := p.expectKind(TRParen, ")"); err != nil {
			return item, err
		}
		item.Agg = ae
	} else {
		col, err := p.parseColumnRef()
		if err != nil {
			return item, err
		}
		item.Column = col
	}
	alias, err := p.maybeParseAlias()
	if err != nil {
		return item, err
	}
	item.Alias = alias
	return item, nil
}

func aggKeyword(t Token) (AggFunc, bool) {
	if t.Kind != TKeyword {
		return "", false
	}
	switch t.Value {
	case "COUNT":
		return AggCount, true
	case "SUM":
		return AggSum, true
	case "AVG":
		return AggAvg, true
	case "MIN":
		return AggMin, true
	case "MAX":
		return AggMax, true
	}
	return "", false
}

// maybeParseAlias implements the alias-without-AS lookahead: a bare
// identifier is only consumed as an alias when what follows it is a
// comma, end of input, or a clause keyword.
func (p *parser) maybeParseAlias() (string, error) {
	if p.isKeyword("AS") {
		p.advance()
		t, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		return t.Value, nil
	}
	if p.cur().Kind == TIdent {
		next := p.peekAt(1)
		if next.Kind == TComma || next.Kind == TEOF || (next.Kind == TKeyword && clauseKeywords[next.Value]) {
			t := p.advance()
			return t.Value, nil
		}
	}
	return "", nil
}

func (p *parser) parseColumnRef() (*ColumnRef, error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TDot {
		p.advance()
		second, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ColumnRef{Table: first.Value, Column: second.Value, ExplicitTable: true, Pos: first.Pos}, nil
	}
	return &ColumnRef{Column: first.Value, Pos: first.Pos}, nil
}

// --- predicates ---------------------------------------------------------

func (p *parser) parsePredicate() ([]Comparison, error) {
	comparisons := []Comparison{}
	for {
		c, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, c)
		if p.isKeyword("AND") {
			p.advance()
			continue
		}
		break
	}
	return comparisons, nil
}

func comparisonOp(t Token) (string, bool) {
	switch t.Kind {
	case TEq:
		return "=", true
	case TNeq:
		return "!=", true
	case TLt:
		return "<", true
	case TLte:
		return "<=", true
	case TGt:
		return ">", true
	case TGte:
		return ">=", true
	}
	if t.Kind == TKeyword && t.Value == "LIKE" {
		return "LIKE", true
	}
	return "", false
}

func (p *parser) parseComparison() (Comparison, error) {
	pos := p.cur().Pos
	left, err := p.parseOperand()
	if err != nil {
		return Comparison{}, err
	}
	if op, ok := comparisonOp(p.cur()); ok {
		p.advance()
		right, err := p.parseOperand()
		if err != nil {
			return Comparison{}, err
		}
		return Comparison{Left: left, Op: op, Right: right, Pos: pos}, nil
	}
	// Bare boolean operand shorthand for "<operand> = TRUE".
	return Comparison{Left: left, Op: "=", Right: &BoolLit{Value: true, Pos: pos}, Pos: pos}, nil
}

func (p *parser) parseOperand() (Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == TIdent:
		return p.parseColumnRef()
	case t.Kind == TNumber:
		p.advance()
		n, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, sqlerr.InvalidLit(t.Pos, "invalid number literal %q", t.Value)
		}
		return &NumberLit{Value: n, Pos: t.Pos}, nil
	case t.Kind == TString:
		p.advance()
		return &StringLit{Value: t.Value, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "TRUE":
		p.advance()
		return &BoolLit{Value: true, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "FALSE":
		p.advance()
		return &BoolLit{Value: false, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "NULL":
		p.advance()
		return &NullLit{Pos: t.Pos}, nil
	case t.Kind == TKeyword && reserved[t.Value]:
		return nil, sqlerr.Unsupported(t.Pos, t.Value)
	default:
		return nil, sqlerr.Syntax(t.Pos, "expected a column, literal, or NULL but got %q", tokenText(t))
	}
}

// parseLiteral parses a literal value for INSERT VALUES and UPDATE SET,
// which unlike a predicate operand never accept a column reference.
func (p *parser) parseLiteral() (Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == TNumber:
		p.advance()
		n, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, sqlerr.InvalidLit(t.Pos, "invalid number literal %q", t.Value)
		}
		return &NumberLit{Value: n, Pos: t.Pos}, nil
	case t.Kind == TString:
		p.advance()
		return &StringLit{Value: t.Value, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "TRUE":
		p.advance()
		return &BoolLit{Value: true, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "FALSE":
		p.advance()
		return &BoolLit{Value: false, Pos: t.Pos}, nil
	case t.Kind == TKeyword && t.Value == "NULL":
		p.advance()
		return &NullLit{Pos: t.Pos}, nil
	case t.Kind == TKeyword && reserved[t.Value]:
		return nil, sqlerr.Unsupported(t.Pos, t.Value)
	default:
		return nil, sqlerr.InvalidLit(t.Pos, "expected a literal but got %q", tokenText(t))
	}
}

// --- DDL ----------------------------------------------------------------

func (p *parser) parseCreateTable() (*CreateTableStmt, error) {
	createTok, err := p.expectKeyword("CREATE")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(TLParen, "("); err != nil {
		return nil, err
	}
	stmt := &CreateTableStmt{TableName: name.Value, Pos: createTok.Pos}
	for {
		col, err := p.parseColDef()
		if err != nil {
			return nil, err
		}
		if col.PrimaryKey {
			if stmt.PrimaryKey != "" {
				return nil, sqlerr.Syntax(col.Pos, "multiple primary keys not supported")
			}
			stmt.PrimaryKey = col.Name
		}
		stmt.Columns = append(stmt.Columns, col)
		if p.cur().Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectKind(TRParen, ")"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseColDef() (ColDef, error) {
	nameTok, err := p.expectIdent()
	if err != nil {
		return ColDef{}, err
	}
	col := ColDef{Name: nameTok.Value, Pos: nameTok.Pos}
	typeTok := p.cur()
	if typeTok.Kind != TKeyword {
		return ColDef{}, sqlerr.Syntax(typeTok.Pos, "expected a column type but got %q", tokenText(typeTok))
	}
	t, ok := coltype.FromTypeName(typeTok.Value)
	if !ok {
		return ColDef{}, sqlerr.Syntax(typeTok.Pos, "unknown column type %q", typeTok.Value)
	}
	p.advance()
	col.Type = t
	if p.cur().Kind == TLParen {
		p.advance()
		sizeTok := p.cur()
		if sizeTok.Kind != TNumber {
			return ColDef{}, sqlerr.Syntax(sizeTok.Pos, "expected a size but got %q", tokenText(sizeTok))
		}
		p.advance()
		size, err := strconv.Atoi(sizeTok.Value)
		if err != nil || size <= 0 {
			return ColDef{}, sqlerr.Syntax(sizeTok.Pos, "size must be a positive integer, got %q", sizeTok.Value)
		}
		col.Size = &size
		if _, err := p.expectKind(TRParen, ")"); err != nil {
			return ColDef{}, err
		}
	}
	for {
		if p.isKeyword("PRIMARY") {
			p.advance()
			if _, err := p.expectKeyword("KEY"); err != nil {
				return ColDef{}, err
			}
			col.PrimaryKey = true
			col.NotNull = true
			continue
		}
		if p.isKeyword("AUTO_INCREMENT") {
			p.advance()
			col.AutoIncrement = true
			col.NotNull = true
			continue
		}
		if p.isKeyword("NOT") {
			p.advance()
			if _, err := p.expectKeyword("NULL"); err != nil {
				return ColDef{}, err
			}
			col.NotNull = true
			continue
		}
		if p.isKeyword("NULL") {
			p.advance()
			continue
		}
		break
	}
	if col.AutoIncrement && col.Type != coltype.Number {
		return ColDef{}, sqlerr.Syntax(col.Pos, "AUTO_INCREMENT is only valid on Number columns")
	}
	return col, nil
}

func (p *parser) parseAlterTable() (*AlterTableStmt, error) {
	alterTok, err := p.expectKeyword("ALTER")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("ADD"); err != nil {
		return nil, err
	}
	if p.isKeyword("COLUMN") {
		p.advance()
	}
	col, err := p.parseColDef()
	if err != nil {
		return nil, err
	}
	return &AlterTableStmt{TableName: name.Value, AddColumn: col, Pos: alterTok.Pos}, nil
}

func (p *parser) parseDropTable() (*DropTableStmt, error) {
	dropTok, err := p.expectKeyword("DROP")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &DropTableStmt{TableName: name.Value, Pos: dropTok.Pos}, nil
}

// --- DML ------------------------------------------------------------------

func (p *parser) parseInsert() (*InsertStmt, error) {
	insertTok, err := p.expectKeyword("INSERT")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{TableName: name.Value, Pos: insertTok.Pos}
	if _, err := p.expectKind(TLParen, "("); err != nil {
		return nil, err
	}
	for {
		c, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, c.Value)
		if p.cur().Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectKind(TRParen, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(TLParen, "("); err != nil {
		return nil, err
	}
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, lit)
		if p.cur().Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectKind(TRParen, ")"); err != nil {
		return nil, err
	}
	if len(stmt.Columns) != len(stmt.Values) {
		return nil, sqlerr.Constraint(sqlerr.ColumnCountMismatch, stmt.TableName,
			"insert supplies %d column(s) but %d value(s)", len(stmt.Columns), len(stmt.Values))
	}
	return stmt, nil
}

func (p *parser) parseUpdate() (*UpdateStmt, error) {
	updateTok, err := p.expectKeyword("UPDATE")
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt := &UpdateStmt{TableName: name.Value, Pos: updateTok.Pos}
	if _, err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	for {
		colTok, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		eqTok := p.cur()
		if eqTok.Kind != TEq {
			return nil, sqlerr.Syntax(eqTok.Pos, "expected = but got %q", tokenText(eqTok))
		}
		p.advance()
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{Column: colTok.Value, Value: val, Pos: colTok.Pos})
		if p.cur().Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *parser) parseDelete() (*DeleteStmt, error) {
	deleteTok, err := p.expectKeyword("DELETE")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt := &DeleteStmt{TableName: name.Value, Pos: deleteTok.Pos}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}
