package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ceruleanvm/ceruleanvm/vm"
)

// TUI is the full-screen tcell/tview debugger: a disassembly panel, a
// register panel, a stack panel, an output log, and a command line. It
// drives the same Debugger.ExecuteCommand dispatch as the line-mode REPL.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex

	DisassemblyView *tview.TextView
	RegisterView    *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.StackView, 0, 1, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()
	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}
	t.RefreshAll()
}

func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) RefreshAll() {
	t.UpdateDisassemblyView()
	t.UpdateRegisterView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) UpdateDisassemblyView() {
	pc := t.Debugger.Engine.PC
	codeLen := uint64(t.Debugger.Engine.Mem.CodeLen())

	start := pc
	for i := 0; i < ListContextInstrsBefore && start >= 4; i++ {
		start -= 4
	}
	span := uint64(ListContextInstrsBefore+ListContextInstrsAfter+1) * 4

	var lines []string
	for addr := start; addr < start+span && addr+4 <= codeLen; addr += 4 {
		var raw [4]byte
		for i := 0; i < 4; i++ {
			raw[i] = t.Debugger.Engine.Mem.CodeByte(addr + uint64(i))
		}
		marker, color := "  ", "white"
		if addr == pc {
			marker, color = "->", "yellow"
		}
		if t.Debugger.Breakpoints.At(addr) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s 0x%08x: %s[white]", color, marker, addr, vm.Disassemble(raw)))
	}
	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateRegisterView() {
	e := t.Debugger.Engine
	var lines []string
	for row := 0; row < vm.NumRegisters/RegisterGroupSize; row++ {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			i := row*RegisterGroupSize + col
			cols = append(cols, fmt.Sprintf("%-3s: 0x%016x", vm.RegName(i), e.Register(i)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	lines = append(lines, fmt.Sprintf("pc: 0x%08x  state: %s  cycles: %d", e.PC, e.State, e.Cycles))
	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStackView() {
	e := t.Debugger.Engine
	sp := e.Regs.U64(vm.RegSP)
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]sp: 0x%08x[white]", sp))
	for i := 0; i < StackDisplayCells; i++ {
		addr := sp + uint64(i*8)
		word, err := e.Mem.Read64(addr)
		if err != nil {
			break
		}
		marker := "  "
		if addr == sp {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s 0x%08x: 0x%016x", marker, addr, word))
	}
	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.BreakpointsView.SetText("[yellow]no breakpoints[white]")
		return
	}
	var lines []string
	for _, bp := range bps {
		status, color := "enabled", "green"
		if !bp.Enabled {
			status, color = "disabled", "red"
		}
		lines = append(lines, fmt.Sprintf("%d: [%s]%s[white] 0x%08x (hits: %d)", bp.ID, color, status, bp.Address, bp.HitCount))
	}
	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]ceruleanvm debugger[white]\n")
	t.WriteOutput("F1 help, F5 continue, F11 step, Ctrl-C quit\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) Stop() {
	t.App.Stop()
}
