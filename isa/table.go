package isa

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//go:embed instructions.yaml
var defaultTableYAML []byte

// InstructionShape describes which fields an instruction reads and writes and
// which modifier flags it accepts. Shapes are immutable once loaded.
type InstructionShape struct {
	Mnemonic string      `yaml:"name"`
	OPCD     uint32      `yaml:"opcd"`
	XO1      *uint32     `yaml:"xo1,omitempty"`
	XO2      *uint32     `yaml:"xo2,omitempty"`
	XO4      *uint32     `yaml:"xo4,omitempty"`
	Read     []FieldKind `yaml:"read"`
	Write    []FieldKind `yaml:"write"`
	Flags    []Flag      `yaml:"flags"`

	group string
}

// Group returns the name of the instruction group the shape was listed under.
func (s *InstructionShape) Group() string { return s.group }

// Base returns the encoding with only the opcode bits set.
func (s *InstructionShape) Base() types.Instruction {
	instr := types.Instruction(0).WithOPCD(s.OPCD)
	switch {
	case s.XO1 != nil:
		instr = instr.WithXO1(*s.XO1)
	case s.XO2 != nil:
		instr = instr.WithXO2(*s.XO2)
	case s.XO4 != nil:
		instr = instr.WithXO4(*s.XO4)
	}
	return instr
}

// Group is an ordered list of instruction mnemonics.
type Group struct {
	Name         string              `yaml:"name"`
	Instructions []*InstructionShape `yaml:"instructions"`
}

// FieldValue assigns a register number or immediate to one encoded field.
type FieldValue struct {
	Kind  FieldKind
	Value uint32
}

// Provider resolves mnemonics to shapes and encodes operand assignments.
type Provider interface {
	ShapeOf(mnemonic string) (*InstructionShape, error)
	Encode(mnemonic string, fields []FieldValue, flags []Flag) (types.Instruction, error)
}

// Table is the loaded instruction table.
type Table struct {
	Groups []Group `yaml:"groups"`

	byName map[string]*InstructionShape
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = ParseTable(defaultTableYAML)
	})
	return defaultTable, defaultErr
}

// ParseTable parses a YAML instruction table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(hwerrors.ErrGInvalidInstructionDB, err.Error())
	}
	t.byName = make(map[string]*InstructionShape)
	for gi := range t.Groups {
		g := &t.Groups[gi]
		for _, shape := range g.Instructions {
			if shape.Mnemonic == "" {
				return nil, errors.Wrapf(hwerrors.ErrGInvalidInstructionDB, "unnamed instruction in group %s", g.Name)
			}
			if _, dup := t.byName[shape.Mnemonic]; dup {
				return nil, errors.Wrapf(hwerrors.ErrGInvalidInstructionDB, "duplicate instruction %s", shape.Mnemonic)
			}
			xos := 0
			for _, xo := range []*uint32{shape.XO1, shape.XO2, shape.XO4} {
				if xo != nil {
					xos++
				}
			}
			if xos > 1 {
				return nil, errors.Wrapf(hwerrors.ErrGInvalidInstructionDB, "%s has more than one extended opcode", shape.Mnemonic)
			}
			shape.group = g.Name
			t.byName[shape.Mnemonic] = shape
		}
	}
	return &t, nil
}

// ShapeOf returns the shape registered for mnemonic.
func (t *Table) ShapeOf(mnemonic string) (*InstructionShape, error) {
	shape, ok := t.byName[mnemonic]
	if !ok {
		return nil, errors.Wrapf(hwerrors.ErrGUnknownInstruction, "%q", mnemonic)
	}
	return shape, nil
}

// Lookup finds the shape whose opcode bits match instr.
func (t *Table) Lookup(instr types.Instruction) (*InstructionShape, bool) {
	for _, g := range t.Groups {
		for _, shape := range g.Instructions {
			if shape.matches(instr) {
				return shape, true
			}
		}
	}
	return nil, false
}

func (s *InstructionShape) matches(instr types.Instruction) bool {
	if instr.OPCD() != s.OPCD {
		return false
	}
	switch {
	case s.XO1 != nil:
		return instr.XO1() == *s.XO1
	case s.XO2 != nil:
		return instr.XO2() == *s.XO2
	case s.XO4 != nil:
		return instr.XO4() == *s.XO4
	}
	return true
}

// Encode builds the encoding of mnemonic with the given field values and
// modifier flags set.
func (t *Table) Encode(mnemonic string, fields []FieldValue, flags []Flag) (types.Instruction, error) {
	shape, err := t.ShapeOf(mnemonic)
	if err != nil {
		return 0, err
	}
	instr := shape.Base()
	for _, f := range fields {
		instr, err = SetField(instr, f.Kind, f.Value)
		if err != nil {
			return 0, errors.Wrapf(err, "encode %s", mnemonic)
		}
	}
	for _, flag := range flags {
		instr = SetFlag(instr, flag, true)
	}
	return instr, nil
}

// SetField places v into the bits of instr that hold field kind k. Status
// fields live only in register state and leave the encoding untouched.
func SetField(instr types.Instruction, k FieldKind, v uint32) (types.Instruction, error) {
	switch k {
	case FieldRD, FieldRS, FieldFRD, FieldFRS, FieldCRBD:
		return instr.WithRD(v), nil
	case FieldCRFD:
		return instr.WithCRFD(v), nil
	case FieldCRFS:
		return instr.WithCRFS(v), nil
	case FieldRA, FieldFRA, FieldCRBA:
		return instr.WithRA(v), nil
	case FieldRB, FieldFRB, FieldCRBB, FieldSH:
		return instr.WithRB(v), nil
	case FieldFRC, FieldMB:
		return instr.WithRC(v), nil
	case FieldME:
		return instr.WithME(v), nil
	case FieldSIMM, FieldUIMM:
		return instr.WithImm(v & 0xFFFF), nil
	case FieldXERC, FieldXERSO, FieldFPSCR, FieldFCRISI, FieldFCRZDZ, FieldFCRIDI, FieldFCRSNAN:
		return instr, nil
	}
	return 0, errors.Wrapf(hwerrors.ErrGUnknownFieldKind, "%v", k)
}

// SetFlag sets or clears the modifier bit for flag.
func SetFlag(instr types.Instruction, flag Flag, on bool) types.Instruction {
	switch flag {
	case FlagRc:
		return instr.WithRc(on)
	case FlagOE:
		return instr.WithOE(on)
	}
	return instr
}

func (t *Table) String() string {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Instructions)
	}
	return fmt.Sprintf("%d groups, %d instructions", len(t.Groups), n)
}
