package types

import "fmt"

// Instruction is a raw 32-bit PowerPC instruction word. Field accessors use
// IBM bit numbering: bit 0 is the most significant bit of the word.
type Instruction uint32

func (i Instruction) bits(hi, lo uint) uint32 {
	width := lo - hi + 1
	return (uint32(i) >> (31 - lo)) & (1<<width - 1)
}

func (i Instruction) with(hi, lo uint, v uint32) Instruction {
	width := lo - hi + 1
	shift := 31 - lo
	mask := uint32(1<<width-1) << shift
	return Instruction((uint32(i) &^ mask) | ((v << shift) & mask))
}

// OPCD is the primary opcode, bits 0-5.
func (i Instruction) OPCD() uint32 { return i.bits(0, 5) }

// RD is rD/rS/frD/frS/crbD, bits 6-10.
func (i Instruction) RD() uint32 { return i.bits(6, 10) }

// CRFD is crfD, bits 6-8.
func (i Instruction) CRFD() uint32 { return i.bits(6, 8) }

// CRFS is crfS, bits 11-13.
func (i Instruction) CRFS() uint32 { return i.bits(11, 13) }

// L is the compare length bit, bit 10.
func (i Instruction) L() uint32 { return i.bits(10, 10) }

// RA is rA/frA/crbA, bits 11-15.
func (i Instruction) RA() uint32 { return i.bits(11, 15) }

// RB is rB/frB/crbB/SH, bits 16-20.
func (i Instruction) RB() uint32 { return i.bits(16, 20) }

// RC is frC/MB, bits 21-25.
func (i Instruction) RC() uint32 { return i.bits(21, 25) }

// ME is bits 26-30.
func (i Instruction) ME() uint32 { return i.bits(26, 30) }

// SIMM is the sign-extended 16-bit immediate, bits 16-31.
func (i Instruction) SIMM() int32 { return int32(int16(i.bits(16, 31))) }

// UIMM is the zero-extended 16-bit immediate, bits 16-31.
func (i Instruction) UIMM() uint32 { return i.bits(16, 31) }

// XO1 is the 10-bit X-form extended opcode, bits 21-30.
func (i Instruction) XO1() uint32 { return i.bits(21, 30) }

// XO2 is the 9-bit XO-form extended opcode, bits 22-30.
func (i Instruction) XO2() uint32 { return i.bits(22, 30) }

// XO4 is the 5-bit A-form extended opcode, bits 26-30.
func (i Instruction) XO4() uint32 { return i.bits(26, 30) }

// OE is the overflow-enable bit, bit 21.
func (i Instruction) OE() bool { return i.bits(21, 21) != 0 }

// Rc is the record bit, bit 31.
func (i Instruction) Rc() bool { return i.bits(31, 31) != 0 }

func (i Instruction) WithOPCD(v uint32) Instruction { return i.with(0, 5, v) }
func (i Instruction) WithRD(v uint32) Instruction   { return i.with(6, 10, v) }
func (i Instruction) WithCRFD(v uint32) Instruction { return i.with(6, 8, v) }
func (i Instruction) WithCRFS(v uint32) Instruction { return i.with(11, 13, v) }
func (i Instruction) WithRA(v uint32) Instruction   { return i.with(11, 15, v) }
func (i Instruction) WithRB(v uint32) Instruction   { return i.with(16, 20, v) }
func (i Instruction) WithRC(v uint32) Instruction   { return i.with(21, 25, v) }
func (i Instruction) WithME(v uint32) Instruction   { return i.with(26, 30, v) }
func (i Instruction) WithImm(v uint32) Instruction  { return i.with(16, 31, v) }
func (i Instruction) WithXO1(v uint32) Instruction  { return i.with(21, 30, v) }
func (i Instruction) WithXO2(v uint32) Instruction  { return i.with(22, 30, v) }
func (i Instruction) WithXO4(v uint32) Instruction  { return i.with(26, 30, v) }

func (i Instruction) WithOE(on bool) Instruction { return i.with(21, 21, b2u(on)) }
func (i Instruction) WithRc(on bool) Instruction { return i.with(31, 31, b2u(on)) }

func (i Instruction) String() string {
	return fmt.Sprintf("0x%08x", uint32(i))
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
