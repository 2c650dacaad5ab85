// Command schoolsql launches an interactive REPL over the in-memory SQL
// engine.
package main

import (
	"flag"
	"log"

	"github.com/kpalmer/schoolsql/engine"
	"github.com/kpalmer/schoolsql/repl"
)

func main() {
	seed := flag.Bool("seed", true, "start with the seeded students/tutor_groups/grades catalog")
	flag.Parse()

	e := engine.New(*seed)
	defer func() {
		if r := recover(); r != nil {
			log.Fatal(r)
		}
	}()
	repl.New(e).Run()
}
