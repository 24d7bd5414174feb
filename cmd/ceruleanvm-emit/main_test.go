package main

import (
	"bytes"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelloLoop_PrintsTenStarsAndNewline(t *testing.T) {
	var out bytes.Buffer
	e := vm.NewEngine(vm.Options{CodeSize: 256, Out: &out})
	require.NoError(t, e.Load(helloLoop()))
	require.NoError(t, e.Run())

	assert.Equal(t, "**********\n", out.String())
	assert.Equal(t, int64(10), e.Regs.I64(0))
	assert.Equal(t, vm.StateHalted, e.State)
}
