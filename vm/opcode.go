package vm

// Opcode identifies one of the fixed-width instructions CRVM executes.
// Values below are the "newer" 32/64-bit-split opcode set described in the
// instruction set architecture this VM implements; the legacy 32-bit-only
// set is not supported (see OpcodeTable's construction).
type Opcode byte

const (
	OpInvalid Opcode = 0x00

	// Load/store — 0x01..0x0D
	OpLUI    Opcode = 0x01
	OpLLI    Opcode = 0x02
	OpLOAD8  Opcode = 0x03
	OpLOAD16 Opcode = 0x04
	OpLOAD32 Opcode = 0x05
	OpLOAD64 Opcode = 0x06
	OpLOADU8  Opcode = 0x07
	OpLOADU16 Opcode = 0x08
	OpLOADU32 Opcode = 0x09
	OpSTORE8  Opcode = 0x0A
	OpSTORE16 Opcode = 0x0B
	OpSTORE32 Opcode = 0x0C
	OpSTORE64 Opcode = 0x0D

	// Integer arithmetic, register forms — 0x10..0x1D
	OpADD32  Opcode = 0x10
	OpADD64  Opcode = 0x11
	OpSUB32  Opcode = 0x12
	OpSUB64  Opcode = 0x13
	OpMUL32  Opcode = 0x14
	OpMUL64  Opcode = 0x15
	OpDIVI32 Opcode = 0x16
	OpDIVI64 Opcode = 0x17
	OpDIVU32 Opcode = 0x18
	OpDIVU64 Opcode = 0x19
	OpMODI32 Opcode = 0x1A
	OpMODI64 Opcode = 0x1B
	OpMODU32 Opcode = 0x1C
	OpMODU64 Opcode = 0x1D

	// Integer arithmetic, 16-bit signed immediate forms — 0x20..0x2D
	OpADD32I  Opcode = 0x20
	OpADD64I  Opcode = 0x21
	OpSUB32I  Opcode = 0x22
	OpSUB64I  Opcode = 0x23
	OpMUL32I  Opcode = 0x24
	OpMUL64I  Opcode = 0x25
	OpDIVI32I Opcode = 0x26
	OpDIVI64I Opcode = 0x27
	OpDIVU32I Opcode = 0x28
	OpDIVU64I Opcode = 0x29
	OpMODI32I Opcode = 0x2A
	OpMODI64I Opcode = 0x2B
	OpMODU32I Opcode = 0x2C
	OpMODU64I Opcode = 0x2D

	// Floating-point arithmetic — 0x30..0x3D
	OpADDF32  Opcode = 0x30
	OpADDF64  Opcode = 0x31
	OpSUBF32  Opcode = 0x32
	OpSUBF64  Opcode = 0x33
	OpMULF32  Opcode = 0x34
	OpMULF64  Opcode = 0x35
	OpDIVF32  Opcode = 0x36
	OpDIVF64  Opcode = 0x37
	OpSQRTF32 Opcode = 0x38
	OpSQRTF64 Opcode = 0x39
	OpABSF32  Opcode = 0x3A
	OpABSF64  Opcode = 0x3B
	OpNEGF32  Opcode = 0x3C
	OpNEGF64  Opcode = 0x3D

	// Type conversions — 0x40..0x4D
	OpCVTI32I64 Opcode = 0x40
	OpCVTI64I32 Opcode = 0x41
	OpCVTU32U64 Opcode = 0x42
	OpCVTU64U32 Opcode = 0x43
	OpCVTI32F32 Opcode = 0x44
	OpCVTI64F64 Opcode = 0x45
	OpCVTU32F32 Opcode = 0x46
	OpCVTU64F64 Opcode = 0x47
	OpCVTF32I32 Opcode = 0x48
	OpCVTF64I64 Opcode = 0x49
	OpCVTF32U32 Opcode = 0x4A
	OpCVTF64U64 Opcode = 0x4B
	OpCVTF32F64 Opcode = 0x4C
	OpCVTF64F32 Opcode = 0x4D

	// Logical/bitwise, register forms — 0x50..0x5D
	OpSLL32 Opcode = 0x50
	OpSLL64 Opcode = 0x51
	OpSRL32 Opcode = 0x52
	OpSRL64 Opcode = 0x53
	OpSRA32 Opcode = 0x54
	OpSRA64 Opcode = 0x55
	OpOR32  Opcode = 0x56
	OpOR64  Opcode = 0x57
	OpAND32 Opcode = 0x58
	OpAND64 Opcode = 0x59
	OpXOR32 Opcode = 0x5A
	OpXOR64 Opcode = 0x5B
	OpNOT32 Opcode = 0x5C
	OpNOT64 Opcode = 0x5D

	// Logical/bitwise, 16-bit immediate forms — 0x60..0x6B
	OpSLL32I Opcode = 0x60
	OpSLL64I Opcode = 0x61
	OpSRL32I Opcode = 0x62
	OpSRL64I Opcode = 0x63
	OpSRA32I Opcode = 0x64
	OpSRA64I Opcode = 0x65
	OpOR32I  Opcode = 0x66
	OpOR64I  Opcode = 0x67
	OpAND32I Opcode = 0x68
	OpAND64I Opcode = 0x69
	OpXOR32I Opcode = 0x6A
	OpXOR64I Opcode = 0x6B

	// Branch/jump — 0x70..0x76
	OpBEQ Opcode = 0x70
	OpBNE Opcode = 0x71
	OpBLT Opcode = 0x72
	OpBLE Opcode = 0x73
	OpBGT Opcode = 0x74
	OpBGE Opcode = 0x75
	OpJMP Opcode = 0x76

	// Function support — 0x80..0x84
	OpCALL    Opcode = 0x80
	OpSYSCALL Opcode = 0x81
	OpRET     Opcode = 0x82
	OpPUSH    Opcode = 0x83
	OpPOP     Opcode = 0x84

	// Other — 0x90..0x93
	OpNOP     Opcode = 0x90
	OpHALT    Opcode = 0x91
	OpGETCHAR Opcode = 0x92
	OpPUTCHAR Opcode = 0x93
)

// OperandShape names the operand layout an opcode decodes, shared by the
// disassembler and the reference decoder.
type OperandShape string

const (
	ShapeNone OperandShape = ""
	ShapeR    OperandShape = "R"
	ShapeI    OperandShape = "I"
	ShapeRR   OperandShape = "RR"
	ShapeRI   OperandShape = "RI"
	ShapeRRR  OperandShape = "RRR"
	ShapeRRI  OperandShape = "RRI"
)

// OpcodeInfo is the static metadata for one opcode byte.
type OpcodeInfo struct {
	Mnemonic string
	Shape    OperandShape
	Desc     string
}

// OpcodeTable maps every opcode byte to its metadata. Unassigned bytes
// (including 0x00, INVALID) keep the zero value, whose empty Mnemonic is
// the disassembler's and the conformance check's signal of "no metadata".
var OpcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]OpcodeInfo {
	var t [256]OpcodeInfo
	add := func(op Opcode, mnemonic string, shape OperandShape, desc string) {
		t[op] = OpcodeInfo{Mnemonic: mnemonic, Shape: shape, Desc: desc}
	}

	add(OpLUI, "lui", ShapeRI, "load 16-bit imm into dest[31:16]")
	add(OpLLI, "lli", ShapeRI, "load lower 16 bits of imm into dest[15:0]")
	add(OpLOAD8, "load8", ShapeRRI, "sign-extending 8-bit load")
	add(OpLOAD16, "load16", ShapeRRI, "sign-extending 16-bit load")
	add(OpLOAD32, "load32", ShapeRRI, "sign-extending 32-bit load")
	add(OpLOAD64, "load64", ShapeRRI, "64-bit load")
	add(OpLOADU8, "loadu8", ShapeRRI, "zero-extending 8-bit load")
	add(OpLOADU16, "loadu16", ShapeRRI, "zero-extending 16-bit load")
	add(OpLOADU32, "loadu32", ShapeRRI, "zero-extending 32-bit load")
	add(OpSTORE8, "store8", ShapeRRI, "8-bit store")
	add(OpSTORE16, "store16", ShapeRRI, "16-bit store")
	add(OpSTORE32, "store32", ShapeRRI, "32-bit store")
	add(OpSTORE64, "store64", ShapeRRI, "64-bit store")

	add(OpADD32, "add32", ShapeRRR, "signed 32-bit add")
	add(OpADD64, "add64", ShapeRRR, "signed 64-bit add")
	add(OpSUB32, "sub32", ShapeRRR, "signed 32-bit subtract")
	add(OpSUB64, "sub64", ShapeRRR, "signed 64-bit subtract")
	add(OpMUL32, "mul32", ShapeRRR, "signed 32-bit multiply")
	add(OpMUL64, "mul64", ShapeRRR, "signed 64-bit multiply")
	add(OpDIVI32, "divi32", ShapeRRR, "signed 32-bit divide")
	add(OpDIVI64, "divi64", ShapeRRR, "signed 64-bit divide")
	add(OpDIVU32, "divu32", ShapeRRR, "unsigned 32-bit divide")
	add(OpDIVU64, "divu64", ShapeRRR, "unsigned 64-bit divide")
	add(OpMODI32, "modi32", ShapeRRR, "signed 32-bit modulo")
	add(OpMODI64, "modi64", ShapeRRR, "signed 64-bit modulo")
	add(OpMODU32, "modu32", ShapeRRR, "unsigned 32-bit modulo")
	add(OpMODU64, "modu64", ShapeRRR, "unsigned 64-bit modulo")

	add(OpADD32I, "add32i", ShapeRRI, "signed 32-bit add immediate")
	add(OpADD64I, "add64i", ShapeRRI, "signed 64-bit add immediate")
	add(OpSUB32I, "sub32i", ShapeRRI, "signed 32-bit subtract immediate")
	add(OpSUB64I, "sub64i", ShapeRRI, "signed 64-bit subtract immediate")
	add(OpMUL32I, "mul32i", ShapeRRI, "signed 32-bit multiply immediate")
	add(OpMUL64I, "mul64i", ShapeRRI, "signed 64-bit multiply immediate")
	add(OpDIVI32I, "divi32i", ShapeRRI, "signed 32-bit divide immediate")
	add(OpDIVI64I, "divi64i", ShapeRRI, "signed 64-bit divide immediate")
	add(OpDIVU32I, "divu32i", ShapeRRI, "unsigned 32-bit divide immediate")
	add(OpDIVU64I, "divu64i", ShapeRRI, "unsigned 64-bit divide immediate")
	add(OpMODI32I, "modi32i", ShapeRRI, "signed 32-bit modulo immediate")
	add(OpMODI64I, "modi64i", ShapeRRI, "signed 64-bit modulo immediate")
	add(OpMODU32I, "modu32i", ShapeRRI, "unsigned 32-bit modulo immediate")
	add(OpMODU64I, "modu64i", ShapeRRI, "unsigned 64-bit modulo immediate")

	add(OpADDF32, "addf32", ShapeRRR, "IEEE-754 single add")
	add(OpADDF64, "addf64", ShapeRRR, "IEEE-754 double add")
	add(OpSUBF32, "subf32", ShapeRRR, "IEEE-754 single subtract")
	add(OpSUBF64, "subf64", ShapeRRR, "IEEE-754 double subtract")
	add(OpMULF32, "mulf32", ShapeRRR, "IEEE-754 single multiply")
	add(OpMULF64, "mulf64", ShapeRRR, "IEEE-754 double multiply")
	add(OpDIVF32, "divf32", ShapeRRR, "IEEE-754 single divide")
	add(OpDIVF64, "divf64", ShapeRRR, "IEEE-754 double divide")
	add(OpSQRTF32, "sqrtf32", ShapeRR, "IEEE-754 single square root")
	add(OpSQRTF64, "sqrtf64", ShapeRR, "IEEE-754 double square root")
	add(OpABSF32, "absf32", ShapeRR, "IEEE-754 single absolute value")
	add(OpABSF64, "absf64", ShapeRR, "IEEE-754 double absolute value")
	add(OpNEGF32, "negf32", ShapeRR, "IEEE-754 single negate")
	add(OpNEGF64, "negf64", ShapeRR, "IEEE-754 double negate")

	add(OpCVTI32I64, "cvt.i32.i64", ShapeRR, "sign-extend 32-bit to 64-bit")
	add(OpCVTI64I32, "cvt.i64.i32", ShapeRR, "narrow 64-bit to signed 32-bit")
	add(OpCVTU32U64, "cvt.u32.u64", ShapeRR, "zero-extend 32-bit to 64-bit")
	add(OpCVTU64U32, "cvt.u64.u32", ShapeRR, "narrow 64-bit to unsigned 32-bit")
	add(OpCVTI32F32, "cvt.i32.f32", ShapeRR, "signed 32-bit int to float32")
	add(OpCVTI64F64, "cvt.i64.f64", ShapeRR, "signed 64-bit int to float64")
	add(OpCVTU32F32, "cvt.u32.f32", ShapeRR, "unsigned 32-bit int to float32")
	add(OpCVTU64F64, "cvt.u64.f64", ShapeRR, "unsigned 64-bit int to float64")
	add(OpCVTF32I32, "cvt.f32.i32", ShapeRR, "float32 to signed 32-bit, truncate toward zero")
	add(OpCVTF64I64, "cvt.f64.i64", ShapeRR, "float64 to signed 64-bit, truncate toward zero")
	add(OpCVTF32U32, "cvt.f32.u32", ShapeRR, "float32 to unsigned 32-bit, truncate toward zero")
	add(OpCVTF64U64, "cvt.f64.u64", ShapeRR, "float64 to unsigned 64-bit, truncate toward zero")
	add(OpCVTF32F64, "cvt.f32.f64", ShapeRR, "widen float32 to float64")
	add(OpCVTF64F32, "cvt.f64.f32", ShapeRR, "narrow float64 to float32")

	add(OpSLL32, "sll32", ShapeRRR, "32-bit shift left logical")
	add(OpSLL64, "sll64", ShapeRRR, "64-bit shift left logical")
	add(OpSRL32, "srl32", ShapeRRR, "32-bit shift right logical")
	add(OpSRL64, "srl64", ShapeRRR, "64-bit shift right logical")
	add(OpSRA32, "sra32", ShapeRRR, "32-bit shift right arithmetic")
	add(OpSRA64, "sra64", ShapeRRR, "64-bit shift right arithmetic")
	add(OpOR32, "or32", ShapeRRR, "32-bit bitwise or")
	add(OpOR64, "or64", ShapeRRR, "64-bit bitwise or")
	add(OpAND32, "and32", ShapeRRR, "32-bit bitwise and")
	add(OpAND64, "and64", ShapeRRR, "64-bit bitwise and")
	add(OpXOR32, "xor32", ShapeRRR, "32-bit bitwise xor")
	add(OpXOR64, "xor64", ShapeRRR, "64-bit bitwise xor")
	add(OpNOT32, "not32", ShapeRR, "32-bit bitwise not")
	add(OpNOT64, "not64", ShapeRR, "64-bit bitwise not")

	add(OpSLL32I, "sll32i", ShapeRRI, "32-bit shift left logical immediate")
	add(OpSLL64I, "sll64i", ShapeRRI, "64-bit shift left logical immediate")
	add(OpSRL32I, "srl32i", ShapeRRI, "32-bit shift right logical immediate")
	add(OpSRL64I, "srl64i", ShapeRRI, "64-bit shift right logical immediate")
	add(OpSRA32I, "sra32i", ShapeRRI, "32-bit shift right arithmetic immediate")
	add(OpSRA64I, "sra64i", ShapeRRI, "64-bit shift right arithmetic immediate")
	add(OpOR32I, "or32i", ShapeRRI, "32-bit bitwise or immediate")
	add(OpOR64I, "or64i", ShapeRRI, "64-bit bitwise or immediate")
	add(OpAND32I, "and32i", ShapeRRI, "32-bit bitwise and immediate")
	add(OpAND64I, "and64i", ShapeRRI, "64-bit bitwise and immediate")
	add(OpXOR32I, "xor32i", ShapeRRI, "32-bit bitwise xor immediate")
	add(OpXOR64I, "xor64i", ShapeRRI, "64-bit bitwise xor immediate")

	add(OpBEQ, "beq", ShapeRRR, "branch if equal (unsigned low-32 compare)")
	add(OpBNE, "bne", ShapeRRR, "branch if not equal (unsigned low-32 compare)")
	add(OpBLT, "blt", ShapeRRR, "branch if less than (unsigned low-32 compare)")
	add(OpBLE, "ble", ShapeRRR, "branch if less or equal (unsigned low-32 compare)")
	add(OpBGT, "bgt", ShapeRRR, "branch if greater than (unsigned low-32 compare)")
	add(OpBGE, "bge", ShapeRRR, "branch if greater or equal (unsigned low-32 compare)")
	add(OpJMP, "jmp", ShapeR, "unconditional jump")

	add(OpCALL, "call", ShapeR, "push return address, jump")
	add(OpSYSCALL, "syscall", ShapeR, "reserved; unimplemented")
	add(OpRET, "ret", ShapeNone, "pop return address, jump")
	add(OpPUSH, "push", ShapeR, "push register onto stack")
	add(OpPOP, "pop", ShapeR, "pop stack into register")

	add(OpNOP, "nop", ShapeNone, "no operation")
	add(OpHALT, "halt", ShapeNone, "halt execution")
	add(OpGETCHAR, "getchar", ShapeR, "read one byte from stdin")
	add(OpPUTCHAR, "putchar", ShapeR, "write one byte to stdout")

	return t
}

// Lookup returns the metadata for op, and whether it is defined. INVALID
// (0x00) and unassigned bytes report ok=false.
func Lookup(op Opcode) (OpcodeInfo, bool) {
	info := OpcodeTable[op]
	return info, info.Mnemonic != ""
}
