// compiler is composed of a lexer and a parser. These modules work in
// order to generate an AST (abstract syntax tree) from a SQL string. This
// AST is then passed to the validator and the executor.
package compiler

import "github.com/kpalmer/schoolsql/sqlerr"

// Compile lexes and parses text into a single statement.
func Compile(text string) (Stmt, error) {
	tokens, err := NewLexer(text).Lex()
	if err != nil {
		return nil, err
	}
	stmt, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, sqlerr.SyntaxNoPos("empty statement")
	}
	return stmt, nil
}
