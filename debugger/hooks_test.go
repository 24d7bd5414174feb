package debugger_test

import (
	"errors"
	"testing"

	"github.com/ceruleanvm/ceruleanvm/debugger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHooks struct {
	pcs    []uint64
	i      int
	halted bool
	failAt int
}

func (f *fakeHooks) Step() error {
	if f.failAt >= 0 && f.i == f.failAt {
		return errors.New("boom")
	}
	if f.i+1 >= len(f.pcs) {
		f.halted = true
		return nil
	}
	f.i++
	return nil
}

func (f *fakeHooks) IsHalted() bool          { return f.halted }
func (f *fakeHooks) PC() uint64               { return f.pcs[f.i] }
func (f *fakeHooks) Register(i int) uint64    { return 0 }

func TestRunUntil_StopsAtBreakpoint(t *testing.T) {
	h := &fakeHooks{pcs: []uint64{0, 4, 8, 12}, failAt: -1}
	hit, err := debugger.RunUntil(h, map[uint64]struct{}{8: {}})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, uint64(8), h.PC())
}

func TestRunUntil_RunsToHaltWithNoBreakpoints(t *testing.T) {
	h := &fakeHooks{pcs: []uint64{0, 4, 8}, failAt: -1}
	hit, err := debugger.RunUntil(h, nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, h.IsHalted())
}

func TestRunUntil_PropagatesStepError(t *testing.T) {
	h := &fakeHooks{pcs: []uint64{0, 4, 8}, failAt: 1}
	_, err := debugger.RunUntil(h, nil)
	assert.Error(t, err)
}
