package vm_test

import (
	"testing"

	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
)

func TestDisassemble_RRR(t *testing.T) {
	// ADD32 r1, r2, r3
	insn := [4]byte{byte(vm.OpADD32), 0x12, 0x30, 0x00}
	assert.Equal(t, "add32 r1, r2, r3", vm.Disassemble(insn))
}

func TestDisassemble_RRI(t *testing.T) {
	// ADD32I r1, r2, 10
	insn := [4]byte{byte(vm.OpADD32I), 0x12, 0x0A, 0x00}
	assert.Equal(t, "add32i r1, r2, 10", vm.Disassemble(insn))
}

func TestDisassemble_None(t *testing.T) {
	insn := [4]byte{byte(vm.OpRET), 0, 0, 0}
	assert.Equal(t, "ret", vm.Disassemble(insn))
}

func TestDisassemble_UnknownOpcode(t *testing.T) {
	insn := [4]byte{0xFF, 0, 0, 0}
	assert.Equal(t, "DB 0xff", vm.Disassemble(insn))
}

func TestDisassemble_NegativeImmediate(t *testing.T) {
	// ADD32I r0, r0, -1 -> imm16 little-endian 0xFFFF
	insn := [4]byte{byte(vm.OpADD32I), 0x00, 0xFF, 0xFF}
	assert.Equal(t, "add32i r0, r0, -1", vm.Disassemble(insn))
}

func TestDisassembleProgram_SkipsTrailingPartialInstruction(t *testing.T) {
	code := []byte{byte(vm.OpNOP), 0, 0, 0, 0x01, 0x02}
	lines := vm.DisassembleProgram(code)
	if assert.Len(t, lines, 1) {
		assert.Contains(t, lines[0], "nop")
	}
}

func TestRegName_AllSixteen(t *testing.T) {
	want := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11", "r12", "ra", "bp", "sp"}
	for i, name := range want {
		assert.Equal(t, name, vm.RegName(i))
	}
}
