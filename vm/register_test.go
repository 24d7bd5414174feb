package vm_test

import (
	"math"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
)

func TestRegisterFile_RawRoundTrip(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetRaw(3, 0xDEADBEEFCAFEBABE)
	assert.Equal(t, uint64(0xDEADBEEFCAFEBABE), rf.Raw(3))
}

func TestRegisterFile_SignedWriteSignExtends(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetI32(0, -1)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), rf.Raw(0), "negative i32 write must sign-extend the whole slot")
	assert.Equal(t, int64(-1), rf.I64(0))
}

func TestRegisterFile_UnsignedWriteZeroExtends(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetRaw(1, 0xFFFFFFFFFFFFFFFF)
	rf.SetU32(1, 0xFFFFFFFF)
	assert.Equal(t, uint64(0x00000000FFFFFFFF), rf.Raw(1), "unsigned u32 write must zero the upper 32 bits")
}

func TestRegisterFile_FloatBitPreserving(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetF32(2, 1.5)
	assert.Equal(t, uint64(math.Float32bits(1.5)), rf.Raw(2), "SetF32 must zero the upper 32 bits")
	assert.Equal(t, float32(1.5), rf.F32(2))

	rf.SetF64(2, -2.25)
	assert.Equal(t, math.Float64bits(-2.25), rf.Raw(2))
	assert.Equal(t, -2.25, rf.F64(2))
}

func TestRegisterFile_LLI_TouchesOnlyLow16(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetRaw(4, 0xFFFFFFFFFFFFFFFF)
	rf.SetLow16(4, 0x1234)
	assert.Equal(t, uint64(0xFFFFFFFFFFFF1234), rf.Raw(4))
}

func TestRegisterFile_LUI_TouchesOnlyBits31_16(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetRaw(5, 0xFFFFFFFFFFFFFFFF)
	rf.SetHigh16Of32(5, 0xABCD)
	assert.Equal(t, uint64(0xFFFFFFFFABCDFFFF), rf.Raw(5))
}

func TestRegisterFile_NarrowReadsTruncateBitPattern(t *testing.T) {
	var rf vm.RegisterFile
	rf.SetRaw(6, 0x1122334455667788)
	assert.Equal(t, uint8(0x88), rf.U8(6))
	assert.Equal(t, uint16(0x7788), rf.U16(6))
	assert.Equal(t, uint32(0x55667788), rf.U32(6))
	assert.Equal(t, int8(int8(0x88)), rf.I8(6))
}
