// repl (read eval print loop) adapts engine to the command line.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/kpalmer/schoolsql/engine"
	"github.com/kpalmer/schoolsql/executor"
	"golang.org/x/term"
)

const (
	// emptyRowValue is printed when the cell in a row is NULL.
	emptyRowValue = "NULL"
	// emptyHeaderValue is printed when the cell in a header is the empty string.
	emptyHeaderValue = "<anonymous>"
	// prompt is the prompt.
	prompt = "schoolsql> "
	// promptContinued is the prompt when input is pending termination by a
	// semicolon.
	promptContinued = "       ..> "
)

type repl struct {
	engine   *engine.Engine
	terminal *term.Terminal
}

// New returns a repl driving e. e may be nil only for tests that exercise
// row formatting without reading input.
func New(e *engine.Engine) *repl {
	r := &repl{
		engine:   e,
		terminal: term.NewTerminal(os.Stdin, prompt),
	}
	r.loadHistory()
	return r
}

func (r *repl) Run() {
	r.writeLn("Welcome to schoolsql. Type .exit to exit")

	// Handling kill signals works under two methods for the REPL. When the
	// terminal is in raw mode the signals are caught by readline as bytes.
	// When the terminal is not in raw mode the signals are caught by the
	// following channel.
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		r.exitGracefully()
	}()

	previousInput := ""
	for {
		line := r.readLine(previousInput)
		input := previousInput + line
		if len(strings.TrimSpace(input)) == 0 {
			previousInput = ""
			continue
		}
		if input[0] == '.' {
			if input == ".exit" {
				r.exitGracefully()
			}
			r.writeLn("Command not supported")
			continue
		}

		if !strings.Contains(input, ";") {
			previousInput = input + "\n"
			continue
		}
		previousInput = ""

		out, err := r.engine.Execute(input)
		if err != nil {
			r.writeLn("Err: " + err.Error())
			continue
		}
		if out.Message != "" {
			r.writeLn(out.Message)
		}
		if len(out.Rows) != 0 || len(out.Columns) != 0 {
			r.writeLn(r.printRows(r.renderRows(out)))
		}
	}
}

func (r *repl) renderRows(out executor.Output) [][]*string {
	rows := make([][]*string, 0, len(out.Rows)+1)
	header := make([]*string, len(out.Columns))
	for i, c := range out.Columns {
		c := c
		header[i] = &c
	}
	rows = append(rows, header)
	for _, row := range out.Rows {
		rendered := make([]*string, len(row))
		for i, v := range row {
			if v.IsNull() {
				rendered[i] = nil
				continue
			}
			s := v.String()
			rendered[i] = &s
		}
		rows = append(rows, rendered)
	}
	return rows
}

func (r *repl) readLine(previousInput string) string {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		panic(err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)
	if previousInput == "" {
		r.terminal.SetPrompt(prompt)
	} else {
		r.terminal.SetPrompt(promptContinued)
	}
	line, err := r.terminal.ReadLine()
	if err != nil {
		if err == io.EOF {
			term.Restore(int(os.Stdin.Fd()), oldState)
			r.exitGracefully()
		}
		panic("err reading line: " + err.Error())
	}
	return line
}

func (r *repl) writeLn(text string) {
	r.terminal.Write(([]byte)(text + "\n"))
}

func (r *repl) writeWarning(text string) {
	r.terminal.Write(r.terminal.Escape.Yellow)
	r.writeLn(text)
	r.terminal.Write(r.terminal.Escape.Reset)
}

// printRows renders rows where rows[0] is the header and the remainder are
// data rows; a nil cell prints as NULL, an empty header cell prints as
// <anonymous>.
func (r *repl) printRows(rows [][]*string) string {
	if len(rows) == 0 {
		return "(0 rows)\n"
	}
	header := rows[0]
	dataRows := rows[1:]
	widths := r.getWidths(header, dataRows)
	ret := r.printHeader(header, widths)
	ret += "\n"
	for _, row := range dataRows {
		ret += r.printRow(row, widths)
		ret += "\n"
	}
	if len(dataRows) == 0 {
		ret += "(0 rows)\n"
	}
	return ret
}

func (*repl) getWidths(header []*string, rows [][]*string) []int {
	widths := make([]int, len(header))
	for i, hCol := range header {
		size := len(emptyHeaderValue)
		if hCol != nil && *hCol != "" {
			size = len(*hCol)
		}
		widths[i] = size
	}
	for _, row := range rows {
		for i, column := range row {
			size := len(emptyRowValue)
			if column != nil {
				size = len(*column)
			}
			if widths[i] < size {
				widths[i] = size
			}
		}
	}
	return widths
}

func (*repl) printHeader(row []*string, widths []int) string {
	ret := ""
	for i, column := range row {
		v := emptyHeaderValue
		if column != nil && *column != "" {
			v = *column
		}
		ret += fmt.Sprintf(" %-*s ", widths[i], v)
		if i != len(row)-1 {
			ret += "|"
		}
	}
	ret += "\n"
	for i := range row {
		ret += fmt.Sprintf("-%s-", strings.Repeat("-", widths[i]))
		if i != len(row)-1 {
			ret += "+"
		}
	}
	return ret
}

func (*repl) printRow(row []*string, widths []int) string {
	ret := ""
	for i, column := range row {
		v := emptyRowValue
		if column != nil {
			v = *column
		}
		ret += fmt.Sprintf(" %-*s ", widths[i], v)
		if i != len(row)-1 {
			ret += "|"
		}
	}
	return ret
}

func (r *repl) exitGracefully() {
	r.saveHistory()
	os.Exit(0)
}

func (r *repl) loadHistory() {
	p, err := r.getHistoryPath()
	if err != nil {
		r.writeWarning("failed to get history path " + err.Error())
		return
	}
	contents, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		r.writeWarning("failed to load history " + err.Error())
		return
	}
	lines := strings.Split((string)(contents), "\n")
	slices.Reverse(lines)
	for _, line := range lines {
		if line == "" {
			continue
		}
		r.terminal.History.Add(line)
	}
}

func (r *repl) saveHistory() {
	history := []byte{}
	for i := range r.terminal.History.Len() {
		entry := r.terminal.History.At(i)
		history = append(history, ([]byte)(entry+"\n")...)
	}
	p, err := r.getHistoryPath()
	if err != nil {
		r.writeWarning("failed to get history path for saving " + err.Error())
		return
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.writeWarning("failed to open history file for saving " + err.Error())
		return
	}
	defer f.Close()
	if err := f.Truncate(0); err != nil {
		r.writeWarning("failed to overwrite history " + err.Error())
		return
	}
	if _, err := f.Write(history); err != nil {
		r.writeWarning("failed to write history " + err.Error())
		return
	}
}

func (r *repl) getHistoryPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return dir + "/.schoolsql_history", nil
}
