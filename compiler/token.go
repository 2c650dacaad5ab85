package compiler

// TokenKind identifies the lexical category of a Token.
type TokenKind int

const (
	TEOF TokenKind = iota
	TKeyword
	TIdent
	TNumber
	TString
	TDot
	TComma
	TSemicolon
	TStar
	TLParen
	TRParen
	TEq
	TNeq
	TLt
	TLte
	TGt
	TGte
)

// Token is one lexical unit with its byte offset into the source text.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
}

// supported is the keyword set the parser understands.
var supported = map[string]bool{
	"SELECT": true, "DISTINCT": true, "FROM": true, "WHERE": true,
	"INNER": true, "JOIN": true, "ON": true, "AND": true,
	"GROUP": true, "BY": true, "ORDER": true, "ASC": true, "DESC": true,
	"LIMIT": true, "AS": true, "LIKE": true,
	"TRUE": true, "FALSE": true, "NULL": true,
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"CREATE": true, "TABLE": true, "ALTER": true, "ADD": true, "COLUMN": true,
	"DROP": true, "INSERT": true, "INTO": true, "VALUES": true,
	"UPDATE": true, "SET": true, "DELETE": true,
	"PRIMARY": true, "KEY": true, "AUTO_INCREMENT": true, "NOT": true,
	"INT": true, "INTEGER": true, "NUMBER": true, "DECIMAL": true,
	"FLOAT": true, "NUMERIC": true, "REAL": true, "DOUBLE": true,
	"VARCHAR": true, "CHAR": true, "TEXT": true, "STRING": true,
	"BOOLEAN": true, "BOOL": true,
	"EXPLAIN": true,
}

// reserved are keywords the grammar recognises only to reject with
// UnsupportedFeature rather than treating them as an identifier.
var reserved = map[string]bool{
	"OR": true, "IN": true, "BETWEEN": true, "HAVING": true,
	"LEFT": true, "RIGHT": true, "OUTER": true, "FULL": true,
}

func isKeyword(upper string) bool {
	return supported[upper] || reserved[upper]
}

// IsReserved reports whether upper is a reserved-for-error keyword.
func IsReserved(upper string) bool {
	return reserved[upper]
}
