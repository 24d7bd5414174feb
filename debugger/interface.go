package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RunCLI drives the line-mode debugger REPL, reading commands from in and
// writing prompts and output to out, until "quit"/"q" or EOF.
func RunCLI(dbg *Debugger, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "(crvm-dbg) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "q" || line == "exit" {
			fmt.Fprintln(out, "exiting")
			break
		}

		if err := dbg.ExecuteCommand(line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if output := dbg.GetOutput(); output != "" {
			fmt.Fprint(out, output)
		}
	}

	return scanner.Err()
}

// RunTUI runs the tcell/tview full-screen debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
