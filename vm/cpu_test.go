package vm_test

import (
	"bytes"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_MaxCyclesExceededIsFatal(t *testing.T) {
	e := vm.NewEngine(vm.Options{CodeSize: 256, MaxCycles: 3, Out: &bytes.Buffer{}})
	code := assemble(
		encNone(vm.OpNOP),
		encNone(vm.OpNOP),
		encNone(vm.OpNOP),
		encNone(vm.OpNOP),
		encNone(vm.OpHALT),
	)
	require.NoError(t, e.Load(code))
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, vm.StateError, e.State)
	assert.ErrorIs(t, err, vm.ErrCycleLimitExceeded)
}
