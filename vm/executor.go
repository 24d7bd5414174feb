package vm

import (
	"io"
	"math"
)

// getcharEOF is written into the destination register when GETCHAR hits
// end of stream; all bits set is a value no real byte can zero-extend to.
const getcharEOF uint64 = ^uint64(0)

// push writes value onto the stack, predecrementing sp by 8 — CRVM's
// stack cells are always 8 bytes regardless of the value's logical width.
func (e *Engine) push(value uint64) error {
	sp := e.Regs.U64(RegSP) - 8
	if sp < e.Mem.stackBase() || sp > StackTop {
		return newError(ErrKindStackOutOfBounds, e.PC, "push exceeds configured stack size")
	}
	if err := e.Mem.Write64(sp, value); err != nil {
		return err
	}
	e.Regs.SetU64(RegSP, sp)
	return nil
}

// pop reads the top 8-byte stack cell and postincrements sp.
func (e *Engine) pop() (uint64, error) {
	sp := e.Regs.U64(RegSP)
	if sp < e.Mem.stackBase() || sp+8 > StackTop+1 {
		return 0, newError(ErrKindStackOutOfBounds, e.PC, "pop on an empty stack")
	}
	v, err := e.Mem.Read64(sp)
	if err != nil {
		return 0, err
	}
	e.Regs.SetU64(RegSP, sp+8)
	return v, nil
}

func (e *Engine) fail(err error) error {
	e.State = StateError
	ve, ok := err.(*VMError)
	if !ok {
		ve = newError(ErrKindIO, e.PC, err.Error())
	} else if ve.PC == 0 {
		ve.PC = e.PC
	}
	e.LastErr = ve
	return ve
}

// Step decodes and executes exactly one instruction. It is a no-op once
// the engine has halted or errored.
func (e *Engine) Step() error {
	if e.IsHalted() {
		return nil
	}
	pcStart := e.PC
	if pcStart+4 > uint64(e.Mem.CodeLen()) {
		e.State = StateHalted
		return nil
	}

	var raw [4]byte
	for i := 0; i < 4; i++ {
		raw[i] = e.Mem.CodeByte(pcStart + uint64(i))
	}
	op := Opcode(raw[0])
	info, known := Lookup(op)
	if !known {
		return e.fail(newError(ErrKindInvalidOpcode, pcStart, ""))
	}
	if e.Trace && e.Log != nil {
		e.Log.Info("step", "pc", pcStart, "insn", Disassemble(raw))
	}

	f := decodeFields(raw)
	d, s1, s2 := int(f.d), int(f.s1), int(f.s2)
	imm := f.imm
	nextPC := pcStart + 4

	switch op {

	// --- Load/store ---
	case OpLUI:
		e.Regs.SetHigh16Of32(d, uint16(imm))
	case OpLLI:
		e.Regs.SetLow16(d, uint16(imm))
	case OpLOAD8:
		v, err := e.Mem.Read8(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetI64(d, int64(int8(v)))
	case OpLOAD16:
		v, err := e.Mem.Read16(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetI64(d, int64(int16(v)))
	case OpLOAD32:
		v, err := e.Mem.Read32(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetI64(d, int64(int32(v)))
	case OpLOAD64:
		v, err := e.Mem.Read64(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetU64(d, v)
	case OpLOADU8:
		v, err := e.Mem.Read8(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetU64(d, uint64(v))
	case OpLOADU16:
		v, err := e.Mem.Read16(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetU64(d, uint64(v))
	case OpLOADU32:
		v, err := e.Mem.Read32(e.effAddr(s1, imm))
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetU64(d, uint64(v))
	case OpSTORE8:
		if err := e.Mem.Write8(e.effAddr(d, imm), e.Regs.U8(s1)); err != nil {
			return e.fail(err)
		}
	case OpSTORE16:
		if err := e.Mem.Write16(e.effAddr(d, imm), e.Regs.U16(s1)); err != nil {
			return e.fail(err)
		}
	case OpSTORE32:
		if err := e.Mem.Write32(e.effAddr(d, imm), e.Regs.U32(s1)); err != nil {
			return e.fail(err)
		}
	case OpSTORE64:
		if err := e.Mem.Write64(e.effAddr(d, imm), e.Regs.U64(s1)); err != nil {
			return e.fail(err)
		}

	// --- Integer arithmetic, register forms ---
	case OpADD32:
		e.Regs.SetI32(d, e.Regs.I32(s1)+e.Regs.I32(s2))
	case OpADD64:
		e.Regs.SetI64(d, e.Regs.I64(s1)+e.Regs.I64(s2))
	case OpSUB32:
		e.Regs.SetI32(d, e.Regs.I32(s1)-e.Regs.I32(s2))
	case OpSUB64:
		e.Regs.SetI64(d, e.Regs.I64(s1)-e.Regs.I64(s2))
	case OpMUL32:
		e.Regs.SetI32(d, e.Regs.I32(s1)*e.Regs.I32(s2))
	case OpMUL64:
		e.Regs.SetI64(d, e.Regs.I64(s1)*e.Regs.I64(s2))
	case OpDIVI32:
		lhs, rhs := e.Regs.I32(s1), e.Regs.I32(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		if lhs == math.MinInt32 && rhs == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI32(d, lhs/rhs)
	case OpDIVI64:
		lhs, rhs := e.Regs.I64(s1), e.Regs.I64(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI64(d, lhs/rhs)
	case OpDIVU32:
		rhs := e.Regs.U32(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU32(d, e.Regs.U32(s1)/rhs)
	case OpDIVU64:
		rhs := e.Regs.U64(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU64(d, e.Regs.U64(s1)/rhs)
	case OpMODI32:
		lhs, rhs := e.Regs.I32(s1), e.Regs.I32(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		if lhs == math.MinInt32 && rhs == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI32(d, lhs%rhs)
	case OpMODI64:
		lhs, rhs := e.Regs.I64(s1), e.Regs.I64(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI64(d, lhs%rhs)
	case OpMODU32:
		rhs := e.Regs.U32(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU32(d, e.Regs.U32(s1)%rhs)
	case OpMODU64:
		rhs := e.Regs.U64(s2)
		if rhs == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU64(d, e.Regs.U64(s1)%rhs)

	// --- Integer arithmetic, immediate forms (dest, src1, imm) ---
	case OpADD32I:
		e.Regs.SetI32(d, e.Regs.I32(s1)+int32(imm))
	case OpADD64I:
		e.Regs.SetI64(d, e.Regs.I64(s1)+int64(imm))
	case OpSUB32I:
		e.Regs.SetI32(d, e.Regs.I32(s1)-int32(imm))
	case OpSUB64I:
		e.Regs.SetI64(d, e.Regs.I64(s1)-int64(imm))
	case OpMUL32I:
		e.Regs.SetI32(d, e.Regs.I32(s1)*int32(imm))
	case OpMUL64I:
		e.Regs.SetI64(d, e.Regs.I64(s1)*int64(imm))
	case OpDIVI32I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		lhs := e.Regs.I32(s1)
		if lhs == math.MinInt32 && imm == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI32(d, lhs/int32(imm))
	case OpDIVI64I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		lhs := e.Regs.I64(s1)
		if lhs == math.MinInt64 && imm == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI64(d, lhs/int64(imm))
	case OpDIVU32I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU32(d, e.Regs.U32(s1)/uint32(uint16(imm)))
	case OpDIVU64I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU64(d, e.Regs.U64(s1)/uint64(uint16(imm)))
	case OpMODI32I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		lhs := e.Regs.I32(s1)
		if lhs == math.MinInt32 && imm == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI32(d, lhs%int32(imm))
	case OpMODI64I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		lhs := e.Regs.I64(s1)
		if lhs == math.MinInt64 && imm == -1 {
			return e.fail(newError(ErrKindIntegerOverflow, pcStart, ""))
		}
		e.Regs.SetI64(d, lhs%int64(imm))
	case OpMODU32I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU32(d, e.Regs.U32(s1)%uint32(uint16(imm)))
	case OpMODU64I:
		if imm == 0 {
			return e.fail(newError(ErrKindDivideByZero, pcStart, ""))
		}
		e.Regs.SetU64(d, e.Regs.U64(s1)%uint64(uint16(imm)))

	// --- Floating-point arithmetic ---
	case OpADDF32:
		e.Regs.SetF32(d, e.Regs.F32(s1)+e.Regs.F32(s2))
	case OpADDF64:
		e.Regs.SetF64(d, e.Regs.F64(s1)+e.Regs.F64(s2))
	case OpSUBF32:
		e.Regs.SetF32(d, e.Regs.F32(s1)-e.Regs.F32(s2))
	case OpSUBF64:
		e.Regs.SetF64(d, e.Regs.F64(s1)-e.Regs.F64(s2))
	case OpMULF32:
		e.Regs.SetF32(d, e.Regs.F32(s1)*e.Regs.F32(s2))
	case OpMULF64:
		e.Regs.SetF64(d, e.Regs.F64(s1)*e.Regs.F64(s2))
	case OpDIVF32:
		e.Regs.SetF32(d, e.Regs.F32(s1)/e.Regs.F32(s2))
	case OpDIVF64:
		e.Regs.SetF64(d, e.Regs.F64(s1)/e.Regs.F64(s2))
	case OpSQRTF32:
		e.Regs.SetF32(d, float32(math.Sqrt(float64(e.Regs.F32(s1)))))
	case OpSQRTF64:
		e.Regs.SetF64(d, math.Sqrt(e.Regs.F64(s1)))
	case OpABSF32:
		e.Regs.SetF32(d, float32(math.Abs(float64(e.Regs.F32(s1)))))
	case OpABSF64:
		e.Regs.SetF64(d, math.Abs(e.Regs.F64(s1)))
	case OpNEGF32:
		e.Regs.SetF32(d, -e.Regs.F32(s1))
	case OpNEGF64:
		e.Regs.SetF64(d, -e.Regs.F64(s1))

	// --- Conversions ---
	case OpCVTI32I64:
		e.Regs.SetI64(d, int64(e.Regs.I32(s1)))
	case OpCVTI64I32:
		e.Regs.SetI32(d, int32(e.Regs.I64(s1)))
	case OpCVTU32U64:
		e.Regs.SetU64(d, uint64(e.Regs.U32(s1)))
	case OpCVTU64U32:
		e.Regs.SetU32(d, uint32(e.Regs.U64(s1)))
	case OpCVTI32F32:
		e.Regs.SetF32(d, float32(e.Regs.I32(s1)))
	case OpCVTI64F64:
		e.Regs.SetF64(d, float64(e.Regs.I64(s1)))
	case OpCVTU32F32:
		e.Regs.SetF32(d, float32(e.Regs.U32(s1)))
	case OpCVTU64F64:
		e.Regs.SetF64(d, float64(e.Regs.U64(s1)))
	case OpCVTF32I32:
		e.Regs.SetI32(d, cvtF32ToI32(e.Regs.F32(s1)))
	case OpCVTF64I64:
		e.Regs.SetI64(d, cvtF64ToI64(e.Regs.F64(s1)))
	case OpCVTF32U32:
		e.Regs.SetU32(d, cvtF32ToU32(e.Regs.F32(s1)))
	case OpCVTF64U64:
		e.Regs.SetU64(d, cvtF64ToU64(e.Regs.F64(s1)))
	case OpCVTF32F64:
		e.Regs.SetF64(d, float64(e.Regs.F32(s1)))
	case OpCVTF64F32:
		e.Regs.SetF32(d, float32(e.Regs.F64(s1)))

	// --- Bitwise, register forms ---
	case OpSLL32:
		e.Regs.SetU32(d, e.Regs.U32(s1)<<(e.Regs.U32(s2)&31))
	case OpSLL64:
		e.Regs.SetU64(d, e.Regs.U64(s1)<<(e.Regs.U64(s2)&63))
	case OpSRL32:
		e.Regs.SetU32(d, e.Regs.U32(s1)>>(e.Regs.U32(s2)&31))
	case OpSRL64:
		e.Regs.SetU64(d, e.Regs.U64(s1)>>(e.Regs.U64(s2)&63))
	case OpSRA32:
		e.Regs.SetI32(d, e.Regs.I32(s1)>>(e.Regs.U32(s2)&31))
	case OpSRA64:
		e.Regs.SetI64(d, e.Regs.I64(s1)>>(e.Regs.U64(s2)&63))
	case OpOR32:
		e.Regs.SetU32(d, e.Regs.U32(s1)|e.Regs.U32(s2))
	case OpOR64:
		e.Regs.SetU64(d, e.Regs.U64(s1)|e.Regs.U64(s2))
	case OpAND32:
		e.Regs.SetU32(d, e.Regs.U32(s1)&e.Regs.U32(s2))
	case OpAND64:
		e.Regs.SetU64(d, e.Regs.U64(s1)&e.Regs.U64(s2))
	case OpXOR32:
		e.Regs.SetU32(d, e.Regs.U32(s1)^e.Regs.U32(s2))
	case OpXOR64:
		e.Regs.SetU64(d, e.Regs.U64(s1)^e.Regs.U64(s2))
	case OpNOT32:
		e.Regs.SetU32(d, ^e.Regs.U32(s1))
	case OpNOT64:
		e.Regs.SetU64(d, ^e.Regs.U64(s1))

	// --- Bitwise, immediate forms ---
	case OpSLL32I:
		e.Regs.SetU32(d, e.Regs.U32(s1)<<(uint32(imm)&31))
	case OpSLL64I:
		e.Regs.SetU64(d, e.Regs.U64(s1)<<(uint64(uint16(imm))&63))
	case OpSRL32I:
		e.Regs.SetU32(d, e.Regs.U32(s1)>>(uint32(imm)&31))
	case OpSRL64I:
		e.Regs.SetU64(d, e.Regs.U64(s1)>>(uint64(uint16(imm))&63))
	case OpSRA32I:
		e.Regs.SetI32(d, e.Regs.I32(s1)>>(uint32(imm)&31))
	case OpSRA64I:
		e.Regs.SetI64(d, e.Regs.I64(s1)>>(uint64(uint16(imm))&63))
	case OpOR32I:
		e.Regs.SetU32(d, e.Regs.U32(s1)|uint32(uint16(imm)))
	case OpOR64I:
		e.Regs.SetU64(d, e.Regs.U64(s1)|uint64(uint16(imm)))
	case OpAND32I:
		e.Regs.SetU32(d, e.Regs.U32(s1)&uint32(uint16(imm)))
	case OpAND64I:
		e.Regs.SetU64(d, e.Regs.U64(s1)&uint64(uint16(imm)))
	case OpXOR32I:
		e.Regs.SetU32(d, e.Regs.U32(s1)^uint32(uint16(imm)))
	case OpXOR64I:
		e.Regs.SetU64(d, e.Regs.U64(s1)^uint64(uint16(imm)))

	// --- Branch/jump. D and S1 hold the compared operands, S2 holds the
	// branch target register; all comparisons are unsigned 32-bit
	// regardless of mnemonic. ---
	case OpBEQ:
		if e.Regs.U32(d) == e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpBNE:
		if e.Regs.U32(d) != e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpBLT:
		if e.Regs.U32(d) < e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpBLE:
		if e.Regs.U32(d) <= e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpBGT:
		if e.Regs.U32(d) > e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpBGE:
		if e.Regs.U32(d) >= e.Regs.U32(s1) {
			nextPC = e.Regs.U64(s2)
		}
	case OpJMP:
		nextPC = e.Regs.U64(d)

	// --- Function support ---
	case OpCALL:
		if err := e.push(pcStart); err != nil {
			return e.fail(err)
		}
		nextPC = e.Regs.U64(d)
	case OpSYSCALL:
		// Reserved for future expansion; every syscall number is currently
		// unimplemented, so surface it as a fatal error rather than silently
		// doing nothing.
		return e.fail(newError(ErrKindUnimplementedSyscall, pcStart, ""))
	case OpRET:
		retTo, err := e.pop()
		if err != nil {
			return e.fail(err)
		}
		nextPC = retTo + 4
	case OpPUSH:
		if err := e.push(e.Regs.U64(d)); err != nil {
			return e.fail(err)
		}
	case OpPOP:
		v, err := e.pop()
		if err != nil {
			return e.fail(err)
		}
		e.Regs.SetU64(d, v)

	// --- Other ---
	case OpNOP:
		// no operation
	case OpHALT:
		e.State = StateHalted
	case OpGETCHAR:
		b, err := e.in.ReadByte()
		switch {
		case err == io.EOF:
			e.Regs.SetU64(d, getcharEOF)
		case err != nil:
			return e.fail(newError(ErrKindIO, pcStart, err.Error()))
		default:
			e.Regs.SetU64(d, uint64(b))
		}
	case OpPUTCHAR:
		if _, err := e.Out.Write([]byte{e.Regs.U8(d)}); err != nil {
			return e.fail(newError(ErrKindIO, pcStart, err.Error()))
		}

	default:
		return e.fail(newError(ErrKindInvalidOpcode, pcStart, info.Mnemonic))
	}

	e.Cycles++
	if e.State == StateRunning {
		e.PC = nextPC
	}
	return nil
}

// effAddr computes a load/store effective address: the base register plus
// a sign-extended 16-bit displacement, in 64-bit unsigned arithmetic.
func (e *Engine) effAddr(base int, disp int16) uint64 {
	return e.Regs.U64(base) + uint64(int64(disp))
}
