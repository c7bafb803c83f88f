package cpu

import (
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// machine is the full architectural register file seen by one instruction.
// Only r3-r6 and f1-f4 are loaded from and stored back to a RegisterState;
// every other register reads as zero.
type machine struct {
	gpr   [32]uint32
	fpr   [32]uint64
	cr    uint32
	xer   uint32
	fpscr uint32
	ctr   uint32
}

func load(in types.RegisterState) *machine {
	m := &machine{cr: in.CR, xer: in.XER, fpscr: in.FPSCR, ctr: in.CTR}
	copy(m.gpr[types.GPRBase:], in.GPR[:])
	copy(m.fpr[types.FPRBase:], in.FPR[:])
	return m
}

func (m *machine) store() types.RegisterState {
	out := types.RegisterState{CR: m.cr, XER: m.xer, FPSCR: m.fpscr, CTR: m.ctr}
	copy(out.GPR[:], m.gpr[types.GPRBase:types.GPRBase+types.NumGPR])
	copy(out.FPR[:], m.fpr[types.FPRBase:types.FPRBase+types.NumFPR])
	return out
}

type handler func(m *machine, instr types.Instruction)

// Interpreter executes the integer, condition register and floating move
// instructions in Go. It serves as a reference engine when no hardware or
// full emulator is available.
type Interpreter struct {
	table *isa.Table
}

func NewInterpreter() (*Interpreter, error) {
	table, err := isa.Default()
	if err != nil {
		return nil, err
	}
	return &Interpreter{table: table}, nil
}

func (ip *Interpreter) Name() string { return "interp" }

// Supports reports whether mnemonic has a handler.
func (ip *Interpreter) Supports(mnemonic string) bool {
	_, ok := handlers[mnemonic]
	return ok
}

func (ip *Interpreter) Execute(instr types.Instruction, in types.RegisterState) (types.RegisterState, error) {
	shape, ok := ip.table.Lookup(instr)
	if !ok {
		return in, errors.Wrapf(hwerrors.ErrEUnsupportedInstruction, "%s", instr)
	}
	h, ok := handlers[shape.Mnemonic]
	if !ok {
		return in, errors.Wrapf(hwerrors.ErrEUnsupportedInstruction, "%s (%s)", shape.Mnemonic, instr)
	}
	m := load(in)
	h(m, instr)
	log.Trace(log.CPU, "executed", "engine", "interp", "instr", shape.Mnemonic)
	return m.store(), nil
}

var handlers = map[string]handler{}

func register(h handler, mnemonics ...string) {
	for _, mn := range mnemonics {
		handlers[mn] = h
	}
}

// updateCR0 records the signed comparison of r with zero, plus XER[SO].
func (m *machine) updateCR0(r uint32) {
	var f uint32
	switch {
	case int32(r) < 0:
		f = types.CRLT
	case int32(r) > 0:
		f = types.CRGT
	default:
		f = types.CREQ
	}
	if m.xer&types.XERSO != 0 {
		f |= types.CRSO
	}
	m.cr = types.SetCRField(m.cr, 0, f)
}

// updateCR1 copies FPSCR[FX,FEX,VX,OX] into CR1.
func (m *machine) updateCR1() {
	m.cr = types.SetCRField(m.cr, 1, m.fpscr>>28)
}

func (m *machine) setCA(on bool) {
	if on {
		m.xer |= types.XERCA
	} else {
		m.xer &^= types.XERCA
	}
}

// setOV sets or clears XER[OV]; SO is sticky.
func (m *machine) setOV(on bool) {
	if on {
		m.xer |= types.XEROV | types.XERSO
	} else {
		m.xer &^= types.XEROV
	}
}

func (m *machine) carry() uint32 {
	if m.xer&types.XERCA != 0 {
		return 1
	}
	return 0
}
