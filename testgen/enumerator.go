package testgen

import (
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// counters hands out register numbers per class. Reads draw first and
// writes continue from the same counters, so no two fields of one class
// share a register within a case.
type counters struct {
	gpr, fpr, crf, crb uint32
}

// Generate enumerates every combination of boundary values for the read
// fields of shape, once per setting of its modifier flags. Read-field digits
// vary fastest (field 0 first); the flag bits form the outer counter.
func Generate(shape *isa.InstructionShape) (*types.TestFile, error) {
	sizes := make([]int, len(shape.Read))
	total := 1
	for i, k := range shape.Read {
		n, err := DomainSize(k)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %s", shape.Mnemonic)
		}
		sizes[i] = n
		total *= n
	}
	total <<= len(shape.Flags)

	file := &types.TestFile{
		Name:  shape.Mnemonic,
		Tests: make([]types.TestCase, 0, total),
	}

	digits := make([]int, len(shape.Read))
	flagSet := make([]bool, len(shape.Flags))
	for {
		tc, err := buildCase(shape, digits, flagSet)
		if err != nil {
			return nil, err
		}
		file.Tests = append(file.Tests, tc)

		if increment(digits, sizes) {
			continue
		}
		if !incrementFlags(flagSet) {
			break
		}
	}

	log.Debug(log.TestGen, "generated", "instr", shape.Mnemonic, "cases", len(file.Tests))
	return file, nil
}

// increment advances the mixed-radix read counter and reports false when it
// wraps back to all zeros.
func increment(digits []int, sizes []int) bool {
	for i := range digits {
		digits[i]++
		if digits[i] < sizes[i] {
			return true
		}
		digits[i] = 0
	}
	return false
}

// incrementFlags advances the binary flag counter, flag 0 fastest, and
// reports false when every flag combination has been visited.
func incrementFlags(flagSet []bool) bool {
	for i := range flagSet {
		if !flagSet[i] {
			flagSet[i] = true
			return true
		}
		flagSet[i] = false
	}
	return false
}

func buildCase(shape *isa.InstructionShape, digits []int, flagSet []bool) (types.TestCase, error) {
	var (
		tc  types.TestCase
		c   counters
		err error
	)
	instr := shape.Base()

	for i, k := range shape.Read {
		idx := digits[i]
		switch k.Class() {
		case isa.ClassGPR:
			if c.gpr >= types.NumGPR {
				return tc, overflow(shape, k)
			}
			tc.Input.GPR[c.gpr] = ValuesGPR[idx]
			instr, err = isa.SetField(instr, k, c.gpr+types.GPRBase)
			c.gpr++
		case isa.ClassFPR:
			if c.fpr >= types.NumFPR {
				return tc, overflow(shape, k)
			}
			tc.Input.FPR[c.fpr] = ValuesFPR[idx]
			instr, err = isa.SetField(instr, k, c.fpr+types.FPRBase)
			c.fpr++
		case isa.ClassCRB:
			bit := c.crb + types.CRBBase
			tc.Input.CR = types.SetCRBit(tc.Input.CR, uint(bit), ValuesCRB[idx])
			instr, err = isa.SetField(instr, k, bit)
			c.crb++
		default:
			instr, err = readImmediate(&tc.Input, instr, k, idx)
		}
		if err != nil {
			return tc, err
		}
	}

	for _, k := range shape.Write {
		switch k.Class() {
		case isa.ClassGPR:
			if c.gpr >= types.NumGPR {
				return tc, overflow(shape, k)
			}
			instr, err = isa.SetField(instr, k, c.gpr+types.GPRBase)
			c.gpr++
		case isa.ClassFPR:
			if c.fpr >= types.NumFPR {
				return tc, overflow(shape, k)
			}
			instr, err = isa.SetField(instr, k, c.fpr+types.FPRBase)
			c.fpr++
		case isa.ClassCRF:
			instr, err = isa.SetField(instr, k, c.crf+types.CRFBase)
			c.crf++
		case isa.ClassCRB:
			instr, err = isa.SetField(instr, k, c.crb+types.CRBBase)
			c.crb++
		}
		if err != nil {
			return tc, err
		}
	}

	for i, f := range shape.Flags {
		instr = isa.SetFlag(instr, f, flagSet[i])
	}
	tc.Instr = instr
	return tc, nil
}

// readImmediate applies an immediate or status read field.
func readImmediate(in *types.RegisterState, instr types.Instruction, k isa.FieldKind, idx int) (types.Instruction, error) {
	switch k {
	case isa.FieldSIMM:
		return isa.SetField(instr, k, uint32(uint16(ValuesSIMM[idx])))
	case isa.FieldUIMM:
		return isa.SetField(instr, k, uint32(ValuesUIMM[idx]))
	case isa.FieldSH:
		return isa.SetField(instr, k, ValuesSH[idx])
	case isa.FieldMB:
		return isa.SetField(instr, k, ValuesMB[idx])
	case isa.FieldME:
		return isa.SetField(instr, k, ValuesME[idx])
	case isa.FieldXERC:
		in.XER = setMask(in.XER, types.XERCA, ValuesXERC[idx])
		return instr, nil
	case isa.FieldXERSO:
		in.XER = setMask(in.XER, types.XERSO, ValuesXERSO[idx])
		return instr, nil
	}
	return instr, errors.Wrapf(hwerrors.ErrGNoValueDomain, "read field %v", k)
}

func setMask(word, mask, v uint32) uint32 {
	if v != 0 {
		return word | mask
	}
	return word &^ mask
}

func overflow(shape *isa.InstructionShape, k isa.FieldKind) error {
	return errors.Wrapf(hwerrors.ErrGRegisterOverflow, "instruction %s field %v", shape.Mnemonic, k)
}
