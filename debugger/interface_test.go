package debugger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/debugger"
	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCLI_StepThenPrintThenQuit(t *testing.T) {
	out := &bytes.Buffer{}
	code := []byte{byte(vm.OpLLI), 0x00, 0x05, 0x00, byte(vm.OpHALT), 0, 0, 0}

	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	require.NoError(t, e.Load(code))

	dbg := debugger.NewDebugger(e)
	in := strings.NewReader("step\nprint r0\nquit\n")

	require.NoError(t, debugger.RunCLI(dbg, in, out))
	text := out.String()
	assert.Contains(t, text, "pc=0x00000004")
	assert.Contains(t, text, "r0 = 0x0000000000000005 (5)")
}

func TestRunCLI_BreakThenContinueStopsAtBreakpoint(t *testing.T) {
	out := &bytes.Buffer{}
	code := []byte{
		byte(vm.OpNOP), 0, 0, 0,
		byte(vm.OpNOP), 0, 0, 0,
		byte(vm.OpHALT), 0, 0, 0,
	}
	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	require.NoError(t, e.Load(code))

	dbg := debugger.NewDebugger(e)
	in := strings.NewReader("break 0x4\ncontinue\nquit\n")
	require.NoError(t, debugger.RunCLI(dbg, in, out))
	assert.Contains(t, out.String(), "breakpoint 1 at 0x00000004")
}

func TestRunCLI_UnknownCommand(t *testing.T) {
	out := &bytes.Buffer{}
	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	require.NoError(t, e.Load([]byte{byte(vm.OpHALT), 0, 0, 0}))

	dbg := debugger.NewDebugger(e)
	in := strings.NewReader("frobnicate\nquit\n")
	require.NoError(t, debugger.RunCLI(dbg, in, out))
	assert.Contains(t, out.String(), "unknown command")
}
