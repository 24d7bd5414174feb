package vm

import "fmt"

// regNames mirrors the calling-convention-flavored register names used by
// the reference toolchain: r0..r12 are general purpose, then the return
// value register, base pointer, and stack pointer.
var regNames = [NumRegisters]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11", "r12",
	"ra", "bp", "sp",
}

// RegName returns the display name for a register index, or a defensive
// numeric fallback if index is out of range.
func RegName(index int) string {
	if index < 0 || index >= NumRegisters {
		return fmt.Sprintf("r?%d", index)
	}
	return regNames[index]
}

// decodedFields are the nibble/immediate fields a 4-byte instruction can
// carry, extracted independent of opcode shape; Disassemble picks which of
// these a given shape actually uses.
type decodedFields struct {
	d, s1, s2, a int16
	imm         int16
}

func decodeFields(b [4]byte) decodedFields {
	return decodedFields{
		d:   int16(b[1] >> 4),
		s1:  int16(b[1] & 0x0F),
		s2:  int16(b[2] >> 4),
		a:   int16(b[2] & 0x0F),
		imm: int16(uint16(b[2]) | uint16(b[3])<<8),
	}
}

// Disassemble renders a single 4-byte instruction as text, e.g.
// "add32 r1, r2, r3" or "add32i r1, r2, 10". An unrecognized opcode byte
// renders as "DB 0xNN".
func Disassemble(b [4]byte) string {
	op := Opcode(b[0])
	info, ok := Lookup(op)
	if !ok {
		return fmt.Sprintf("DB 0x%02x", b[0])
	}
	f := decodeFields(b)
	switch info.Shape {
	case ShapeNone:
		return info.Mnemonic
	case ShapeR:
		return fmt.Sprintf("%s %s", info.Mnemonic, RegName(int(f.d)))
	case ShapeI:
		return fmt.Sprintf("%s %d", info.Mnemonic, f.imm)
	case ShapeRR:
		return fmt.Sprintf("%s %s, %s", info.Mnemonic, RegName(int(f.d)), RegName(int(f.s1)))
	case ShapeRI:
		return fmt.Sprintf("%s %s, %d", info.Mnemonic, RegName(int(f.d)), f.imm)
	case ShapeRRR:
		return fmt.Sprintf("%s %s, %s, %s", info.Mnemonic, RegName(int(f.d)), RegName(int(f.s1)), RegName(int(f.s2)))
	case ShapeRRI:
		return fmt.Sprintf("%s %s, %s, %d", info.Mnemonic, RegName(int(f.d)), RegName(int(f.s1)), f.imm)
	default:
		return fmt.Sprintf("DB 0x%02x", b[0])
	}
}

// DisassembleProgram disassembles a whole code segment, four bytes at a
// time, returning one "0xADDR: MNEMONIC ..." line per instruction. A
// trailing partial instruction (fewer than 4 bytes remaining) is skipped.
func DisassembleProgram(code []byte) []string {
	var lines []string
	for pc := 0; pc+4 <= len(code); pc += 4 {
		var b [4]byte
		copy(b[:], code[pc:pc+4])
		lines = append(lines, fmt.Sprintf("0x%08x: %s", pc, Disassemble(b)))
	}
	return lines
}
