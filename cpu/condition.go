package cpu

import "github.com/MoochMcGee/wiiu-emu/types"

func init() {
	register(conditionLogical, "crand", "crandc", "creqv", "crnand", "crnor", "cror", "crorc", "crxor")
	register(floatMove, "fabs", "fmr", "fnabs", "fneg")
}

func conditionLogical(m *machine, instr types.Instruction) {
	a := types.CRBit(m.cr, uint(instr.RA()))
	b := types.CRBit(m.cr, uint(instr.RB()))
	var d uint32
	switch instr.XO1() {
	case 257:
		d = a & b
	case 129:
		d = a &^ b
	case 289:
		d = ^(a ^ b)
	case 225:
		d = ^(a & b)
	case 33:
		d = ^(a | b)
	case 449:
		d = a | b
	case 417:
		d = a | ^b
	case 193:
		d = a ^ b
	}
	m.cr = types.SetCRBit(m.cr, uint(instr.RD()), d&1)
}

// Floating moves operate on the sign bit only and never touch FPSCR.
func floatMove(m *machine, instr types.Instruction) {
	const sign = uint64(1) << 63
	b := m.fpr[instr.RB()]
	var r uint64
	switch instr.XO1() {
	case 264:
		r = b &^ sign
	case 72:
		r = b
	case 136:
		r = b | sign
	case 40:
		r = b ^ sign
	}
	m.fpr[instr.RD()] = r
	if instr.Rc() {
		m.updateCR1()
	}
}
