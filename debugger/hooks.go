package debugger

import "github.com/ceruleanvm/ceruleanvm/vm"

// Hooks is the narrow surface the debugger needs from a running machine:
// advance one instruction, ask whether it has stopped, and inspect its
// program counter and registers. Keeping it this small means the REPL and
// TUI never reach into vm.Engine directly, and can be driven by a fake in
// tests.
type Hooks interface {
	Step() error
	IsHalted() bool
	PC() uint64
	Register(i int) uint64
}

// EngineHooks adapts a *vm.Engine to Hooks.
type EngineHooks struct {
	Engine *vm.Engine
}

func (h EngineHooks) Step() error          { return h.Engine.Step() }
func (h EngineHooks) IsHalted() bool       { return h.Engine.IsHalted() }
func (h EngineHooks) PC() uint64           { return h.Engine.PC }
func (h EngineHooks) Register(i int) uint64 { return h.Engine.Register(i) }

// RunUntil steps h until it halts, errors, or its PC lands on one of
// breakpoints. It always executes at least one instruction, so a breakpoint
// set on the current PC does not immediately re-trigger.
func RunUntil(h Hooks, breakpoints map[uint64]struct{}) (hitBreakpoint bool, err error) {
	for {
		if err := h.Step(); err != nil {
			return false, err
		}
		if h.IsHalted() {
			return false, nil
		}
		if _, hit := breakpoints[h.PC()]; hit {
			return true, nil
		}
	}
}
