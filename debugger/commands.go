package debugger

import (
	"fmt"
	"strconv"

	"github.com/ceruleanvm/ceruleanvm/vm"
)

// cmdStep executes exactly one instruction.
func (d *Debugger) cmdStep(args []string) error {
	if d.Engine.IsHalted() {
		return fmt.Errorf("program is not running")
	}
	if err := d.Engine.Step(); err != nil {
		d.Println("runtime error:", err)
		return nil
	}
	d.Printf("pc=0x%08x\n", d.Engine.PC)
	return nil
}

// cmdContinue runs until a breakpoint, a halt, or a fatal error.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Engine.IsHalted() {
		return fmt.Errorf("program is not running")
	}
	hit, err := RunUntil(d.Hooks, d.Breakpoints.Addresses())
	if err != nil {
		d.Println("runtime error:", err)
		return nil
	}
	if hit {
		bp := d.Breakpoints.Hit(d.Engine.PC)
		if bp != nil {
			d.Printf("breakpoint %d at 0x%08x\n", bp.ID, bp.Address)
		}
		return nil
	}
	d.Println("program halted")
	return nil
}

// cmdBreak arms a breakpoint at a numeric address.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <addr>")
	}
	addr, err := ParseAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, false)
	d.Printf("breakpoint %d at 0x%08x\n", bp.ID, bp.Address)
	return nil
}

// cmdDelete removes the breakpoint at a numeric address.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <addr>")
	}
	addr, err := ParseAddress(args[0])
	if err != nil {
		return err
	}
	return d.Breakpoints.DeleteAt(addr)
}

// cmdList disassembles a window of instructions around the current pc.
func (d *Debugger) cmdList(args []string) error {
	pc := d.Engine.PC
	codeLen := uint64(d.Engine.Mem.CodeLen())

	start := pc
	for i := 0; i < ListContextInstrsBefore && start >= 4; i++ {
		start -= 4
	}
	span := uint64(ListContextInstrsBefore+ListContextInstrsAfter+1) * 4
	for addr := start; addr < start+span && addr+4 <= codeLen; addr += 4 {
		var raw [4]byte
		for i := 0; i < 4; i++ {
			raw[i] = d.Engine.Mem.CodeByte(addr + uint64(i))
		}
		marker := "  "
		if addr == pc {
			marker = "->"
		}
		d.Printf("%s 0x%08x: %s\n", marker, addr, vm.Disassemble(raw))
	}
	return nil
}

// cmdPrint shows one register, or "pc", by name.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <reg>")
	}
	name := args[0]
	if name == "pc" {
		d.Printf("pc = 0x%08x\n", d.Engine.PC)
		return nil
	}
	idx, ok := regIndexByName(name)
	if !ok {
		return fmt.Errorf("unknown register: %s", name)
	}
	v := d.Engine.Register(idx)
	d.Printf("%s = 0x%016x (%d)\n", name, v, int64(v))
	return nil
}

func regIndexByName(name string) (int, bool) {
	for i := 0; i < vm.NumRegisters; i++ {
		if vm.RegName(i) == name {
			return i, true
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < vm.NumRegisters {
		return n, true
	}
	return 0, false
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println(`commands:
  s, step          execute one instruction
  c, continue      run until a breakpoint or halt
  b, break <addr>  set a breakpoint
  d, delete <addr> clear a breakpoint
  l, list          disassemble around pc
  p, print <reg>   show a register, or "pc"
  h, help          this message
  q, quit          exit the debugger`)
	return nil
}
