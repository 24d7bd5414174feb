package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/loader"
	"github.com/ceruleanvm/ceruleanvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes_LoadsRawStream(t *testing.T) {
	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	code := []byte{byte(vm.OpNOP), 0, 0, 0, byte(vm.OpHALT), 0, 0, 0}
	require.NoError(t, loader.FromBytes(e, code))
	assert.Equal(t, vm.StateRunning, e.State)
	assert.Equal(t, uint64(0), e.PC)
}

func TestFromFile_ReadsWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.bin")
	code := []byte{byte(vm.OpHALT), 0, 0, 0}
	require.NoError(t, os.WriteFile(path, code, 0o644))

	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	require.NoError(t, loader.FromFile(e, path))
	require.NoError(t, e.Run())
	assert.Equal(t, vm.StateHalted, e.State)
}

func TestFromFile_MissingFile(t *testing.T) {
	e := vm.NewEngine(vm.Options{CodeSize: 64, Out: &bytes.Buffer{}})
	err := loader.FromFile(e, filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}

func TestFromBytes_ProgramTooLarge(t *testing.T) {
	e := vm.NewEngine(vm.Options{CodeSize: 4, Out: &bytes.Buffer{}})
	err := loader.FromBytes(e, make([]byte, 8))
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrProgramTooLarge)
}
