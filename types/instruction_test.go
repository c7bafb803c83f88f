package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionFields(t *testing.T) {
	// addi r3, r4, -1
	instr := Instruction(0).WithOPCD(14).WithRD(3).WithRA(4).WithImm(0xFFFF)
	require.Equal(t, Instruction(0x3864FFFF), instr)
	assert.Equal(t, uint32(14), instr.OPCD())
	assert.Equal(t, uint32(3), instr.RD())
	assert.Equal(t, uint32(4), instr.RA())
	assert.Equal(t, int32(-1), instr.SIMM())
	assert.Equal(t, uint32(0xFFFF), instr.UIMM())
}

func TestInstructionModifierBits(t *testing.T) {
	// add. r3, r4, r5 with OE set is addo.
	instr := Instruction(0).WithOPCD(31).WithRD(3).WithRA(4).WithRB(5).WithXO2(266)
	assert.Equal(t, Instruction(0x7C642A14), instr)
	assert.False(t, instr.OE())
	assert.False(t, instr.Rc())

	instr = instr.WithOE(true).WithRc(true)
	assert.Equal(t, Instruction(0x7C642E15), instr)
	assert.True(t, instr.OE())
	assert.True(t, instr.Rc())
	assert.Equal(t, uint32(266), instr.XO2())

	assert.Equal(t, Instruction(0x7C642A14), instr.WithOE(false).WithRc(false))
}

func TestInstructionAFormFields(t *testing.T) {
	// fmadd f1, f2, f3, f4
	instr := Instruction(0).WithOPCD(63).WithRD(1).WithRA(2).WithRB(4).WithRC(3).WithXO4(29)
	assert.Equal(t, Instruction(0xFC2220FA), instr)
	assert.Equal(t, uint32(3), instr.RC())
	assert.Equal(t, uint32(29), instr.XO4())
}

func TestCRAccessors(t *testing.T) {
	cr := SetCRField(0, 0, CRLT|CRSO)
	assert.Equal(t, uint32(0x90000000), cr)
	assert.Equal(t, CRLT|CRSO, CRField(cr, 0))

	cr = SetCRField(cr, 7, CREQ)
	assert.Equal(t, uint32(0x90000002), cr)

	assert.Equal(t, uint32(1), CRBit(cr, 0))
	assert.Equal(t, uint32(1), CRBit(cr, 30))
	assert.Equal(t, uint32(0), CRBit(cr, 1))

	cr = SetCRBit(cr, 8, 1)
	assert.Equal(t, uint32(1)<<23, cr&(1<<23))
	cr = SetCRBit(cr, 8, 0)
	assert.Equal(t, uint32(0x90000002), cr)
}

func TestNaNBits(t *testing.T) {
	assert.True(t, IsNaNBits(0x7FF8000000000000))
	assert.True(t, IsNaNBits(0x7FF4000000000000))
	assert.True(t, IsSignalingNaNBits(0x7FF4000000000000))
	assert.False(t, IsSignalingNaNBits(0x7FF8000000000000))
	assert.False(t, IsNaNBits(math.Float64bits(math.Inf(1))))
	assert.False(t, IsNaNBits(0))

	var s RegisterState
	s.SetFloat(2, 1.5)
	assert.Equal(t, 1.5, s.Float(2))
	assert.False(t, s.HasNaN())
	s.FPR[3] = 0xFFF8000000000001
	assert.True(t, s.HasNaN())
}
