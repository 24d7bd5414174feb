package vm_test

import (
	"bytes"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encRRR(op vm.Opcode, d, s1, s2 int) []byte {
	return []byte{byte(op), byte(d<<4 | s1), byte(s2 << 4), 0}
}

func encRRI(op vm.Opcode, d, s1 int, imm int16) []byte {
	return []byte{byte(op), byte(d<<4 | s1), byte(uint16(imm)), byte(uint16(imm) >> 8)}
}

func encRI(op vm.Opcode, d int, imm int16) []byte {
	return []byte{byte(op), byte(d << 4), byte(uint16(imm)), byte(uint16(imm) >> 8)}
}

func encR(op vm.Opcode, d int) []byte {
	return []byte{byte(op), byte(d << 4), 0, 0}
}

func encNone(op vm.Opcode) []byte {
	return []byte{byte(op), 0, 0, 0}
}

func assemble(instrs ...[]byte) []byte {
	var out []byte
	for _, i := range instrs {
		out = append(out, i...)
	}
	return out
}

func newTestEngine(t *testing.T, out *bytes.Buffer) *vm.Engine {
	t.Helper()
	return vm.NewEngine(vm.Options{CodeSize: 256, HeapSize: 256, StackSize: 256, Out: out})
}

func TestEngine_ImmediateArithmetic(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLLI, 0, 5),
		encRRI(vm.OpADD32I, 0, 0, 10),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, vm.StateHalted, e.State)
	assert.Equal(t, int64(15), e.Regs.I64(0))
}

func TestEngine_SignedAndUnsignedLoadExtension(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLUI, 1, 0x1000), // r1 = HeapBase (0x10000000)
		encRI(vm.OpLLI, 2, -1),     // r2 low16 = 0xFFFF
		encRRI(vm.OpSTORE8, 1, 2, 0),
		encRRI(vm.OpLOAD8, 3, 1, 0),
		encRRI(vm.OpLOADU8, 4, 1, 0),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, int64(-1), e.Regs.I64(3), "LOAD8 must sign-extend")
	assert.Equal(t, uint64(255), e.Regs.U64(4), "LOADU8 must zero-extend")
}

func TestEngine_CallRetRoundTrip(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLLI, 5, 12), // addr0: r5 = function address (12)
		encR(vm.OpCALL, 5),     // addr4
		encNone(vm.OpHALT),     // addr8: return lands here
		encRRI(vm.OpADD32I, 0, 0, 42), // addr12: function body
		encNone(vm.OpRET),             // addr16
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, vm.StateHalted, e.State)
	assert.Equal(t, int64(42), e.Regs.I64(0))
}

func TestEngine_BranchComparesUnsigned32(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLLI, 0, -1), // addr0
		encRI(vm.OpLUI, 0, -1), // addr4: r0 = 0xFFFFFFFF
		encRI(vm.OpLLI, 1, 1),  // addr8: r1 = 1
		encRI(vm.OpLLI, 2, 28), // addr12: r2 = branch target (28), not taken if unsigned
		encRRR(vm.OpBLT, 0, 1, 2), // addr16: if u32(r0) < u32(r1) jump to r2
		encRRI(vm.OpADD32I, 3, 3, 111), // addr20: fallthrough marker
		encNone(vm.OpHALT),             // addr24
		encRRI(vm.OpADD32I, 3, 3, 999), // addr28: only reached if branch wrongly taken
		encNone(vm.OpHALT),             // addr32
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, int64(111), e.Regs.I64(3), "0xFFFFFFFF must not compare less than 1 under unsigned semantics")
}

func TestEngine_DivideByZeroIsFatal(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRRR(vm.OpDIVI32, 0, 1, 2),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, vm.StateError, e.State)
	assert.ErrorIs(t, err, vm.ErrDivideByZero)
}

func TestEngine_SignedDivisionOverflowIsFatal(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLUI, 0, -0x8000), // r0 = INT32_MIN (0x80000000)
		encRI(vm.OpLLI, 1, -1),
		encRI(vm.OpLUI, 1, -1), // r1 = 0xFFFFFFFF (-1 as i32)
		encRRR(vm.OpDIVI32, 2, 0, 1),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrIntegerOverflow)
}

func TestEngine_PutcharWritesByteForByte(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(t, &out)
	code := assemble(
		encRI(vm.OpLLI, 0, 'H'),
		encR(vm.OpPUTCHAR, 0),
		encRI(vm.OpLLI, 0, 'i'),
		encR(vm.OpPUTCHAR, 0),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, "Hi", out.String())
}

func TestEngine_InvalidOpcodeHalts(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	require.NoError(t, e.Load([]byte{0xFF, 0, 0, 0}))
	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrInvalidOpcode)
}

func TestEngine_PCPastEndHalts(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	require.NoError(t, e.Load(encNone(vm.OpNOP)))
	require.NoError(t, e.Run())
	assert.Equal(t, vm.StateHalted, e.State)
	assert.NoError(t, e.LastErr)
}

func TestEngine_SyscallIsFatal(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encR(vm.OpSYSCALL, 0),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, vm.StateError, e.State)
	assert.ErrorIs(t, err, vm.ErrUnimplementedSyscall)
}

func TestEngine_PopOnEmptyStackIsFatal(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encR(vm.OpPOP, 0),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrStackOutOfBounds)
}

func TestEngine_PushBeyondStackSizeIsFatal(t *testing.T) {
	e := vm.NewEngine(vm.Options{CodeSize: 256, HeapSize: 256, StackSize: 8, Out: &bytes.Buffer{}})
	code := assemble(
		encRI(vm.OpLLI, 0, 1),
		encR(vm.OpPUSH, 0), // already too many: sp starts at StackTop, whose own byte stays unused, so one cell needs 9 bytes
		encR(vm.OpPUSH, 0), // not reached
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrStackOutOfBounds)
}

func TestEngine_PushPopRoundTrip(t *testing.T) {
	e := newTestEngine(t, &bytes.Buffer{})
	code := assemble(
		encRI(vm.OpLLI, 0, 777),
		encR(vm.OpPUSH, 0),
		encRI(vm.OpLLI, 0, 0),
		encR(vm.OpPOP, 1),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	require.NoError(t, e.Run())
	assert.Equal(t, int64(777), e.Regs.I64(1))
}
