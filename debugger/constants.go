package debugger

// Disassembly Context Constants
const (
	// ListContextInstrsBefore is how many instructions the "list" command and
	// TUI disassembly view show before pc.
	ListContextInstrsBefore = 8

	// ListContextInstrsAfter is how many instructions they show after pc.
	ListContextInstrsAfter = 8
)

// Stack Display Constants
const (
	// StackDisplayCells is the number of 8-byte stack cells the TUI stack
	// view shows, starting at sp and moving up toward StackTop.
	StackDisplayCells = 16
)

// Register Display Constants
const (
	// RegisterGroupSize is the number of registers shown per row in the TUI
	// register view.
	RegisterGroupSize = 4
)
