package vm

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/ceruleanvm/ceruleanvm/internal/vmlog"
)

// ExecutionState is the coarse status of an Engine, surfaced to callers and
// to the debugger so they can distinguish "still going" from the different
// ways execution can stop.
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateError
)

func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Engine is the complete CRVM machine state: registers, segmented memory,
// and the program counter, plus the bookkeeping needed to run it safely to
// completion or step it one instruction at a time under a debugger.
type Engine struct {
	Regs RegisterFile
	Mem  *Memory
	PC   uint64

	State     ExecutionState
	Cycles    uint64
	MaxCycles uint64
	LastErr   error

	Out io.Writer
	in  *bufio.Reader // per-engine; a package-level shared reader would race across concurrently-run Engines
	Log *slog.Logger

	// Trace, when set, causes Step to log every decoded instruction before
	// executing it. Expensive; intended for debugging, not hot loops.
	Trace bool
}

// Options configures a new Engine. Zero values fall back to defaults
// matching DefaultHeapSize/DefaultStackSize and unlimited cycles.
type Options struct {
	CodeSize  int
	HeapSize  int
	StackSize int
	MaxCycles uint64
	Out       io.Writer
	In        io.Reader
}

// NewEngine constructs an Engine with fresh, zeroed memory and registers.
// The stack pointer is initialized to StackTop, the emulator's usual
// empty-stack convention; the first push leaves StackTop's own byte unused.
func NewEngine(opts Options) *Engine {
	if opts.HeapSize == 0 {
		opts.HeapSize = DefaultHeapSize
	}
	if opts.StackSize == 0 {
		opts.StackSize = DefaultStackSize
	}
	if opts.CodeSize == 0 {
		opts.CodeSize = 1 << 16
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	e := &Engine{
		Mem:       NewMemory(opts.CodeSize, opts.StackSize, opts.HeapSize),
		MaxCycles: opts.MaxCycles,
		Out:       out,
		in:        bufio.NewReader(in),
		Log:       vmlog.New(os.Stderr),
	}
	e.Regs.SetU64(RegSP, StackTop)
	return e
}

// Load installs bytecode as the program to execute and resets pc/state.
func (e *Engine) Load(bytecode []byte) error {
	if err := e.Mem.LoadCode(bytecode); err != nil {
		return err
	}
	e.PC = 0
	e.State = StateRunning
	e.Cycles = 0
	e.LastErr = nil
	return nil
}

// IsHalted reports whether the engine has stopped, successfully or not.
func (e *Engine) IsHalted() bool {
	return e.State != StateRunning
}

// Register exposes a register's raw 64-bit contents, for the debugger and
// trace output; it does not interpret the bits as any particular type.
func (e *Engine) Register(index int) uint64 {
	return e.Regs.Raw(index)
}

// Run steps the engine until it halts, errors, or exceeds MaxCycles (when
// nonzero), returning the first fatal error encountered, if any.
func (e *Engine) Run() error {
	for !e.IsHalted() {
		if e.MaxCycles != 0 && e.Cycles >= e.MaxCycles {
			e.State = StateError
			e.LastErr = newError(ErrKindCycleLimitExceeded, e.PC, "")
			return e.LastErr
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return e.LastErr
}
