package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ceruleanvm/ceruleanvm/vm"
)

// Debugger holds the REPL's session state around one running Engine: its
// breakpoints, command history, and the output buffer the CLI and TUI both
// drain after each command.
type Debugger struct {
	Engine      *vm.Engine
	Hooks       Hooks
	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running     bool
	LastCommand string
	Output      strings.Builder
}

func NewDebugger(engine *vm.Engine) *Debugger {
	return &Debugger{
		Engine:      engine,
		Hooks:       EngineHooks{Engine: engine},
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
	}
}

// ParseAddress accepts either a bare decimal or a 0x-prefixed hex address.
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	addr, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %w", err)
	}
	return addr, nil
}

// ExecuteCommand parses and dispatches a single REPL line.
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "step", "s":
		return d.cmdStep(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "list", "l":
		return d.cmdList(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) Printf(format string, args ...any) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...any) {
	fmt.Fprintln(&d.Output, args...)
}

// GetOutput drains and returns everything written since the last call.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}
