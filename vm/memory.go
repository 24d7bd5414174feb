package vm

// Virtual address layout, per the segmented address space this VM models:
// code grows up from 0, the heap grows up from a fixed base, and the
// stack grows down from StackTop (0xFFFFFFFF).
const (
	CodeBase  uint64 = 0x00000000
	HeapBase  uint64 = 0x10000000
	StackTop  uint64 = 0xFFFFFFFF

	// DefaultHeapSize and DefaultStackSize size the heap and stack segments
	// when a caller doesn't override them.
	DefaultHeapSize  = 1 << 20 // 1 MiB
	DefaultStackSize = 1 << 16 // 64 KiB
)

// Memory is CRVM's segmented virtual address space: a read-only code
// region filled by LoadCode, a bump-allocated heap, and a descending
// stack. Each region is a flat byte slice; classify maps a virtual
// address into one of them.
type Memory struct {
	code      []byte // fixed-size backing store; code occupies code[:codeLen]
	codeLen   int
	heap      []byte
	heapOff   int
	stack     []byte // stack[0] is the byte at StackTop, stack[i] is StackTop-i
	stackSize int
}

// NewMemory allocates a Memory with the given segment capacities.
func NewMemory(codeSize, stackSize, heapSize int) *Memory {
	return &Memory{
		code:      make([]byte, codeSize),
		heap:      make([]byte, heapSize),
		stack:     make([]byte, stackSize),
		stackSize: stackSize,
	}
}

// LoadCode copies bytecode into the code segment. It fails with
// ErrProgramTooLarge if bytecode doesn't fit.
func (m *Memory) LoadCode(bytecode []byte) error {
	if len(bytecode) > len(m.code) {
		return newError(ErrKindProgramTooLarge, 0, "")
	}
	copy(m.code, bytecode)
	m.codeLen = len(bytecode)
	return nil
}

// CodeLen returns the length of the loaded program, used by the engine to
// detect the pc-walked-past-the-end halting condition.
func (m *Memory) CodeLen() int {
	return m.codeLen
}

// CodeByte returns the instruction byte at pc without going through the
// segmented read path (the engine fetches instructions directly; it is
// the only reader allowed to see past codeLen up to cap(code), which
// never happens since the engine halts at codeLen).
func (m *Memory) CodeByte(pc uint64) byte {
	return m.code[pc]
}

// Alloc bump-allocates size bytes from the heap and returns its virtual
// address. It fails with ErrHeapExhausted if the remaining heap can't
// satisfy the request; the offset never decreases and is never reused.
func (m *Memory) Alloc(size int) (uint64, error) {
	if m.heapOff+size > len(m.heap) {
		return 0, newError(ErrKindHeapExhausted, 0, "")
	}
	addr := HeapBase + uint64(m.heapOff)
	m.heapOff += size
	return addr, nil
}

// region classifies which segment addr falls in, and — for the stack —
// the physical byte offset, computed in 64-bit unsigned arithmetic to
// avoid wraparound on addresses just below StackTop.
type region int

const (
	regionNone region = iota
	regionCode
	regionHeap
	regionStack
)

// stackBase returns the lowest legal stack address: the configured stack
// size below StackTop.
func (m *Memory) stackBase() uint64 {
	return StackTop - uint64(m.stackSize) + 1
}

func (m *Memory) classify(addr uint64) (region, int) {
	if addr >= CodeBase && addr < CodeBase+uint64(len(m.code)) {
		return regionCode, int(addr - CodeBase)
	}
	if addr >= HeapBase && addr < HeapBase+uint64(len(m.heap)) {
		return regionHeap, int(addr - HeapBase)
	}
	if addr >= m.stackBase() && addr <= StackTop {
		return regionStack, int(StackTop - addr)
	}
	return regionNone, 0
}

// readBytes returns a size-byte little-endian slice backing addr, or a
// fatal InvalidRead if any byte of the access falls outside every region
// or straddles a region boundary.
func (m *Memory) readBytes(addr uint64, size int) ([]byte, error) {
	reg, off := m.classify(addr)
	switch reg {
	case regionCode:
		if off+size > len(m.code) {
			return nil, newError(ErrKindInvalidRead, 0, "")
		}
		return m.code[off : off+size], nil
	case regionHeap:
		if off+size > len(m.heap) {
			return nil, newError(ErrKindInvalidRead, 0, "")
		}
		return m.heap[off : off+size], nil
	case regionStack:
		// Stack addresses descend as offsets ascend; a size-byte access
		// starting at addr occupies offsets [off-size+1, off].
		if off-size+1 < 0 {
			return nil, newError(ErrKindInvalidRead, 0, "")
		}
		buf := make([]byte, size)
		for i := 0; i < size; i++ {
			buf[i] = m.stack[off-i]
		}
		return buf, nil
	default:
		return nil, newError(ErrKindInvalidRead, 0, "")
	}
}

func (m *Memory) writeBytes(addr uint64, data []byte) error {
	reg, off := m.classify(addr)
	switch reg {
	case regionCode:
		return newError(ErrKindInvalidWrite, 0, "code segment is read-only")
	case regionHeap:
		if off+len(data) > len(m.heap) {
			return newError(ErrKindInvalidWrite, 0, "")
		}
		copy(m.heap[off:], data)
		return nil
	case regionStack:
		if off-len(data)+1 < 0 {
			return newError(ErrKindInvalidWrite, 0, "")
		}
		for i, b := range data {
			m.stack[off-i] = b
		}
		return nil
	default:
		return newError(ErrKindInvalidWrite, 0, "")
	}
}

// Read8/16/32/64 read little-endian unsigned integers of the named width.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	b, err := m.readBytes(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Memory) Read16(addr uint64) (uint16, error) {
	b, err := m.readBytes(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (m *Memory) Read32(addr uint64) (uint32, error) {
	b, err := m.readBytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (m *Memory) Read64(addr uint64) (uint64, error) {
	b, err := m.readBytes(addr, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v, nil
}

// Write8/16/32/64 write little-endian integers of the named width. Writes
// into the code region always fail with ErrInvalidWrite.
func (m *Memory) Write8(addr uint64, v uint8) error {
	return m.writeBytes(addr, []byte{v})
}

func (m *Memory) Write16(addr uint64, v uint16) error {
	return m.writeBytes(addr, []byte{byte(v), byte(v >> 8)})
}

func (m *Memory) Write32(addr uint64, v uint32) error {
	return m.writeBytes(addr, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (m *Memory) Write64(addr uint64, v uint64) error {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return m.writeBytes(addr, buf)
}
