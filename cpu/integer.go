package cpu

import (
	"math/bits"

	"github.com/MoochMcGee/wiiu-emu/types"
)

func init() {
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return a, b, false }, false), "add")
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return a, b, false }, true), "addc")
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return a, b, true }, true), "adde")
	register(addForm(func(m *machine, a, _ uint32) (uint32, uint32, bool) { return a, 0xFFFFFFFF, true }, true), "addme")
	register(addForm(func(m *machine, a, _ uint32) (uint32, uint32, bool) { return a, 0, true }, true), "addze")
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return ^a, b, false }, false, 1), "subf")
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return ^a, b, false }, true, 1), "subfc")
	register(addForm(func(m *machine, a, b uint32) (uint32, uint32, bool) { return ^a, b, true }, true), "subfe")
	register(addForm(func(m *machine, a, _ uint32) (uint32, uint32, bool) { return ^a, 0xFFFFFFFF, true }, true), "subfme")
	register(addForm(func(m *machine, a, _ uint32) (uint32, uint32, bool) { return ^a, 0, true }, true), "subfze")
	register(addForm(func(m *machine, a, _ uint32) (uint32, uint32, bool) { return ^a, 0, false }, false, 1), "neg")

	register(addImmediate, "addi", "addis")
	register(addImmediateCarrying, "addic", "addic.")
	register(subfic, "subfic")
	register(mulli, "mulli")
	register(mullw, "mullw")
	register(mulhw, "mulhw", "mulhwu")
	register(divw, "divw")
	register(divwu, "divwu")

	register(logical, "and", "andc", "eqv", "nand", "nor", "or", "orc", "xor")
	register(logicalImmediate, "andi.", "andis.", "ori", "oris", "xori", "xoris")
	register(unaryLogical, "cntlzw", "extsb", "extsh")

	register(compare, "cmp", "cmpi", "cmpl", "cmpli")

	register(shift, "slw", "srw", "sraw", "srawi")
	register(rotate, "rlwimi", "rlwinm", "rlwnm")
}

// operands picks the two addends and whether XER[CA] is carried in.
type operands func(m *machine, a, b uint32) (x, y uint32, useCA bool)

// addForm builds an XO-form handler computing x + y + carry-in. extra is a
// constant carry-in used by the subtract-from forms (^a + b + 1).
func addForm(ops operands, setsCA bool, extra ...uint32) handler {
	return func(m *machine, instr types.Instruction) {
		a, b := m.gpr[instr.RA()], m.gpr[instr.RB()]
		x, y, useCA := ops(m, a, b)
		var cin uint32
		if useCA {
			cin = m.carry()
		}
		for _, e := range extra {
			cin += e
		}
		sum := uint64(x) + uint64(y) + uint64(cin)
		r := uint32(sum)
		m.gpr[instr.RD()] = r
		if setsCA {
			m.setCA(sum>>32 != 0)
		}
		if instr.OE() {
			m.setOV(((x^r)&(y^r))>>31 != 0)
		}
		if instr.Rc() {
			m.updateCR0(r)
		}
	}
}

func addImmediate(m *machine, instr types.Instruction) {
	imm := uint32(instr.SIMM())
	if instr.OPCD() == 15 {
		imm <<= 16
	}
	var base uint32
	if instr.RA() != 0 {
		base = m.gpr[instr.RA()]
	}
	m.gpr[instr.RD()] = base + imm
}

func addImmediateCarrying(m *machine, instr types.Instruction) {
	a := m.gpr[instr.RA()]
	sum := uint64(a) + uint64(uint32(instr.SIMM()))
	r := uint32(sum)
	m.gpr[instr.RD()] = r
	m.setCA(sum>>32 != 0)
	if instr.OPCD() == 13 {
		m.updateCR0(r)
	}
}

func subfic(m *machine, instr types.Instruction) {
	a := m.gpr[instr.RA()]
	sum := uint64(^a) + uint64(uint32(instr.SIMM())) + 1
	m.gpr[instr.RD()] = uint32(sum)
	m.setCA(sum>>32 != 0)
}

func mulli(m *machine, instr types.Instruction) {
	m.gpr[instr.RD()] = uint32(int64(int32(m.gpr[instr.RA()])) * int64(instr.SIMM()))
}

func mullw(m *machine, instr types.Instruction) {
	p := int64(int32(m.gpr[instr.RA()])) * int64(int32(m.gpr[instr.RB()]))
	r := uint32(p)
	m.gpr[instr.RD()] = r
	if instr.OE() {
		m.setOV(p != int64(int32(r)))
	}
	if instr.Rc() {
		m.updateCR0(r)
	}
}

func mulhw(m *machine, instr types.Instruction) {
	a, b := m.gpr[instr.RA()], m.gpr[instr.RB()]
	var r uint32
	if instr.XO2() == 75 {
		r = uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
	} else {
		hi, _ := bits.Mul32(a, b)
		r = hi
	}
	m.gpr[instr.RD()] = r
	if instr.Rc() {
		m.updateCR0(r)
	}
}

// divw leaves rD as all ones for a negative dividend and zero otherwise when
// the quotient is undefined, matching Broadway.
func divw(m *machine, instr types.Instruction) {
	a, b := int32(m.gpr[instr.RA()]), int32(m.gpr[instr.RB()])
	var r uint32
	overflow := b == 0 || (a == -0x80000000 && b == -1)
	switch {
	case overflow && a < 0:
		r = 0xFFFFFFFF
	case overflow:
		r = 0
	default:
		r = uint32(a / b)
	}
	m.gpr[instr.RD()] = r
	if instr.OE() {
		m.setOV(overflow)
	}
	if instr.Rc() {
		m.updateCR0(r)
	}
}

func divwu(m *machine, instr types.Instruction) {
	a, b := m.gpr[instr.RA()], m.gpr[instr.RB()]
	var r uint32
	if b != 0 {
		r = a / b
	}
	m.gpr[instr.RD()] = r
	if instr.OE() {
		m.setOV(b == 0)
	}
	if instr.Rc() {
		m.updateCR0(r)
	}
}

// X-form logical instructions keep rS in the rD slot and write rA.
func logical(m *machine, instr types.Instruction) {
	s, b := m.gpr[instr.RD()], m.gpr[instr.RB()]
	var r uint32
	switch instr.XO1() {
	case 28:
		r = s & b
	case 60:
		r = s &^ b
	case 284:
		r = ^(s ^ b)
	case 476:
		r = ^(s & b)
	case 124:
		r = ^(s | b)
	case 444:
		r = s | b
	case 412:
		r = s | ^b
	case 316:
		r = s ^ b
	}
	m.gpr[instr.RA()] = r
	if instr.Rc() {
		m.updateCR0(r)
	}
}

func logicalImmediate(m *machine, instr types.Instruction) {
	s, imm := m.gpr[instr.RD()], instr.UIMM()
	var r uint32
	switch instr.OPCD() {
	case 28:
		r = s & imm
	case 29:
		r = s & (imm << 16)
	case 24:
		r = s | imm
	case 25:
		r = s | (imm << 16)
	case 26:
		r = s ^ imm
	case 27:
		r = s ^ (imm << 16)
	}
	m.gpr[instr.RA()] = r
	if instr.OPCD() == 28 || instr.OPCD() == 29 {
		m.updateCR0(r)
	}
}

func unaryLogical(m *machine, instr types.Instruction) {
	s := m.gpr[instr.RD()]
	var r uint32
	switch instr.XO1() {
	case 26:
		r = uint32(bits.LeadingZeros32(s))
	case 954:
		r = uint32(int32(int8(s)))
	case 922:
		r = uint32(int32(int16(s)))
	}
	m.gpr[instr.RA()] = r
	if instr.Rc() {
		m.updateCR0(r)
	}
}

func compare(m *machine, instr types.Instruction) {
	a := m.gpr[instr.RA()]
	var (
		b      uint32
		signed bool
	)
	switch {
	case instr.OPCD() == 11:
		b, signed = uint32(instr.SIMM()), true
	case instr.OPCD() == 10:
		b = instr.UIMM()
	case instr.XO1() == 0:
		b, signed = m.gpr[instr.RB()], true
	default:
		b = m.gpr[instr.RB()]
	}

	var f uint32
	switch {
	case signed && int32(a) < int32(b), !signed && a < b:
		f = types.CRLT
	case signed && int32(a) > int32(b), !signed && a > b:
		f = types.CRGT
	default:
		f = types.CREQ
	}
	if m.xer&types.XERSO != 0 {
		f |= types.CRSO
	}
	m.cr = types.SetCRField(m.cr, uint(instr.CRFD()), f)
}

func shift(m *machine, instr types.Instruction) {
	s := m.gpr[instr.RD()]
	var n uint32
	if instr.XO1() == 824 {
		n = instr.RB()
	} else {
		n = m.gpr[instr.RB()] & 0x3F
	}

	var r uint32
	switch instr.XO1() {
	case 24:
		if n < 32 {
			r = s << n
		}
	case 536:
		if n < 32 {
			r = s >> n
		}
	case 792, 824:
		negative := int32(s) < 0
		if n < 32 {
			r = uint32(int32(s) >> n)
			m.setCA(negative && s&(1<<n-1) != 0)
		} else {
			r = uint32(int32(s) >> 31)
			m.setCA(negative)
		}
	}
	m.gpr[instr.RA()] = r
	if instr.Rc() {
		m.updateCR0(r)
	}
}

// rotateMask returns the IBM MASK(mb, me), wrapping when mb > me.
func rotateMask(mb, me uint32) uint32 {
	begin := uint32(0xFFFFFFFF) >> mb
	end := uint32(0xFFFFFFFF) << (31 - me)
	if mb <= me {
		return begin & end
	}
	return begin | end
}

func rotate(m *machine, instr types.Instruction) {
	s := m.gpr[instr.RD()]
	mask := rotateMask(instr.RC(), instr.ME())
	var r uint32
	switch instr.OPCD() {
	case 20:
		r = (bits.RotateLeft32(s, int(instr.RB())) & mask) | (m.gpr[instr.RA()] &^ mask)
	case 21:
		r = bits.RotateLeft32(s, int(instr.RB())) & mask
	case 23:
		r = bits.RotateLeft32(s, int(m.gpr[instr.RB()]&0x1F)) & mask
	}
	m.gpr[instr.RA()] = r
	if instr.Rc() {
		m.updateCR0(r)
	}
}
