// Package compare checks executed register state against expected results.
//
// Every field of every case is compared and reported; a mismatch is a
// finding, never a failure of the run.
package compare

import (
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/storage"
	"github.com/MoochMcGee/wiiu-emu/types"
)

// Mismatch is one register field that differed.
type Mismatch struct {
	Field       string
	Expected    uint64
	Actual      uint64
	Instr       types.Instruction
	Disassembly string
	File        string
	Index       int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s[%d] %s (%s): %s expected 0x%x got 0x%x",
		m.File, m.Index, m.Instr, m.Disassembly, m.Field, m.Expected, m.Actual)
}

func (m Mismatch) Finding() storage.Finding {
	return storage.Finding{
		File:        m.File,
		Index:       m.Index,
		Field:       m.Field,
		Instr:       uint32(m.Instr),
		Disassembly: m.Disassembly,
		Expected:    m.Expected,
		Actual:      m.Actual,
	}
}

type field struct {
	name  string
	value uint64
}

// fields lists the compared registers in report order.
func fields(s *types.RegisterState) []field {
	out := []field{
		{"xer", uint64(s.XER)},
		{"cr", uint64(s.CR)},
		{"fpscr", uint64(s.FPSCR)},
		{"ctr", uint64(s.CTR)},
	}
	for i, v := range s.GPR {
		out = append(out, field{fmt.Sprintf("r%d", types.GPRBase+i), uint64(v)})
	}
	for i, v := range s.FPR {
		out = append(out, field{fmt.Sprintf("f%d", types.FPRBase+i), v})
	}
	return out
}

// Comparator compares cases under one FPSCR policy.
type Comparator struct {
	Policy Policy
}

func New(policy Policy) *Comparator {
	return &Comparator{Policy: policy}
}

// Compare returns every field of actual that differs from tc.Output.
func Compare(tc *types.TestCase, actual types.RegisterState) []Mismatch {
	return New(FPSCRExcludeOnNaN).Compare(tc, actual)
}

func (c *Comparator) Compare(tc *types.TestCase, actual types.RegisterState) []Mismatch {
	expected := tc.Output
	nan := c.Policy != FPSCRAlways && nanInvolved(&tc.Input, &expected, &actual)

	var (
		out    []Mismatch
		disasm string
	)
	act := fields(&actual)
	for i, exp := range fields(&expected) {
		e, a := exp.value, act[i].value
		if exp.name == "fpscr" && nan {
			if c.Policy == FPSCRExcludeOnNaN {
				continue
			}
			e &^= uint64(nanDependentBits)
			a &^= uint64(nanDependentBits)
		}
		if e == a {
			continue
		}
		if disasm == "" {
			disasm = isa.Disassemble(tc.Instr)
		}
		out = append(out, Mismatch{
			Field:       exp.name,
			Expected:    exp.value,
			Actual:      act[i].value,
			Instr:       tc.Instr,
			Disassembly: disasm,
		})
	}
	return out
}
