// Package engine is the single entry point that orchestrates the
// tokenizer, parser, validator, and executor: text and a catalog go in,
// a tabular result or a structured error comes out. This mirrors
// db.DB in the teacher repository, which wires the same four stages
// behind one Execute method.
package engine

import (
	"github.com/kpalmer/schoolsql/catalog"
	"github.com/kpalmer/schoolsql/compiler"
	"github.com/kpalmer/schoolsql/executor"
	"github.com/kpalmer/schoolsql/validator"
)

// Execute is the core API: lex and parse text, validate it when it is a
// SELECT, then execute it against cat. cat is mutated in place for
// DDL/DML; a returned error leaves cat unchanged (per-statement
// atomicity is upheld inside executor via the catalog's staging
// discipline).
func Execute(text string, cat *catalog.Catalog) (executor.Output, error) {
	stmt, err := compiler.Compile(text)
	if err != nil {
		return executor.Output{}, err
	}

	if q, ok := unwrapQuery(stmt); ok {
		if err := validator.Validate(q, cat); err != nil {
			return executor.Output{}, err
		}
	}

	return executor.Execute(stmt, cat)
}

// unwrapQuery finds the *compiler.QueryStmt to validate, looking through
// an EXPLAIN wrapper since EXPLAIN never executes its inner statement but
// still needs it to be a well-formed query to describe.
func unwrapQuery(stmt compiler.Stmt) (*compiler.QueryStmt, bool) {
	switch s := stmt.(type) {
	case *compiler.QueryStmt:
		return s, true
	case *compiler.ExplainStmt:
		return unwrapQuery(s.Inner)
	default:
		return nil, false
	}
}

// Engine is a stateful convenience wrapper around Execute for callers
// that want to hold a session's catalog across calls (the REPL, the
// database/sql driver) instead of managing one themselves.
type Engine struct {
	catalog *catalog.Catalog
}

// New returns an Engine. When seeded is true the catalog starts with the
// protected students/tutor_groups/grades tables; otherwise it starts
// empty.
func New(seeded bool) *Engine {
	if seeded {
		return &Engine{catalog: catalog.NewSeeded()}
	}
	return &Engine{catalog: catalog.New()}
}

// Execute runs text against the engine's own catalog.
func (e *Engine) Execute(text string) (executor.Output, error) {
	return Execute(text, e.catalog)
}

// Catalog returns the read-only view over the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Reset replaces the engine's catalog with a fresh one, seeded or empty.
func (e *Engine) Reset(seeded bool) {
	if seeded {
		e.catalog = catalog.NewSeeded()
		return
	}
	e.catalog = catalog.New()
}
