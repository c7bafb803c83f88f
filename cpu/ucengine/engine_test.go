//go:build unicorn
// +build unicorn

package ucengine

import (
	"math"
	"testing"

	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
)

var _ cpu.Executor = (*Engine)(nil)

func TestEngineAddImmediate(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	// addi r4, r3, 337
	instr := types.Instruction(0x38830151)
	var in types.RegisterState
	in.GPR[0] = 1000
	out, err := e.Execute(instr, in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1337), out.GPR[1])
}

func TestEngineAgreesWithInterpreter(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()
	ip, err := cpu.NewInterpreter()
	require.NoError(t, err)

	// add. r5, r3, r4
	instr := types.Instruction(0x7CA32215)
	var in types.RegisterState
	in.GPR[0] = 0xFFFFFFFF
	in.GPR[1] = 2
	want, err := ip.Execute(instr, in)
	require.NoError(t, err)
	got, err := e.Execute(instr, in)
	require.NoError(t, err)
	assert.Equal(t, want.GPR, got.GPR)
	assert.Equal(t, want.CR, got.CR)
}

func TestEngineFloatAdd(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	// fadd f2, f3, f4
	instr := types.Instruction(0xFC43202A)
	var in types.RegisterState
	in.SetFloat(2, 1.5)
	in.SetFloat(3, 2.25)
	out, err := e.Execute(instr, in)
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(3.75), out.FPR[1])
}

// brokenReads fails every read of one register.
type brokenReads struct {
	uc.Unicorn
	reg int
}

func (b brokenReads) RegRead(reg int) (uint64, error) {
	if reg == b.reg {
		return 0, uc.UcError(uc.ERR_ARG)
	}
	return b.Unicorn.RegRead(reg)
}

func TestEngineRegisterReadFailureIsFault(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	defer e.Close()
	e.emu = brokenReads{Unicorn: e.emu, reg: uc.PPC_REG_0 + types.GPRBase + 1}

	var in types.RegisterState
	in.GPR[0] = 1000
	_, err = e.Execute(types.Instruction(0x38830151), in)
	assert.ErrorIs(t, err, hwerrors.ErrEEngineFault)
}
