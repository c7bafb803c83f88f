package isa

import (
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/pkg/errors"
)

// FieldKind names an operand or state field an instruction reads or writes.
type FieldKind int

const (
	FieldRA FieldKind = iota
	FieldRB
	FieldRS
	FieldRD
	FieldFRA
	FieldFRB
	FieldFRC
	FieldFRS
	FieldFRD
	FieldCRBA
	FieldCRBB
	FieldCRBD
	FieldCRFD
	FieldCRFS
	FieldSIMM
	FieldUIMM
	FieldSH
	FieldMB
	FieldME
	FieldXERC
	FieldXERSO
	FieldFPSCR
	FieldFCRISI
	FieldFCRZDZ
	FieldFCRIDI
	FieldFCRSNAN
	numFieldKinds
)

var fieldNames = [numFieldKinds]string{
	FieldRA: "rA", FieldRB: "rB", FieldRS: "rS", FieldRD: "rD",
	FieldFRA: "frA", FieldFRB: "frB", FieldFRC: "frC", FieldFRS: "frS", FieldFRD: "frD",
	FieldCRBA: "crbA", FieldCRBB: "crbB", FieldCRBD: "crbD",
	FieldCRFD: "crfD", FieldCRFS: "crfS",
	FieldSIMM: "simm", FieldUIMM: "uimm",
	FieldSH: "sh", FieldMB: "mb", FieldME: "me",
	FieldXERC: "XERC", FieldXERSO: "XERSO",
	FieldFPSCR: "FPSCR", FieldFCRISI: "FCRISI", FieldFCRZDZ: "FCRZDZ", FieldFCRIDI: "FCRIDI", FieldFCRSNAN: "FCRSNAN",
}

func (k FieldKind) String() string {
	if k < 0 || k >= numFieldKinds {
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
	return fieldNames[k]
}

// ParseFieldKind maps a table name such as "frB" to its kind.
func ParseFieldKind(name string) (FieldKind, error) {
	for k, n := range fieldNames {
		if n == name {
			return FieldKind(k), nil
		}
	}
	return 0, errors.Wrapf(hwerrors.ErrGUnknownFieldKind, "field %q", name)
}

// UnmarshalYAML lets instruction tables name fields by their assembler spelling.
func (k *FieldKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseFieldKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Class groups field kinds that draw register numbers from the same counter.
type Class int

const (
	ClassNone Class = iota
	ClassGPR
	ClassFPR
	ClassCRB
	ClassCRF
	ClassImmediate
	ClassStatus
)

func (k FieldKind) Class() Class {
	switch k {
	case FieldRA, FieldRB, FieldRS, FieldRD:
		return ClassGPR
	case FieldFRA, FieldFRB, FieldFRC, FieldFRS, FieldFRD:
		return ClassFPR
	case FieldCRBA, FieldCRBB, FieldCRBD:
		return ClassCRB
	case FieldCRFD, FieldCRFS:
		return ClassCRF
	case FieldSIMM, FieldUIMM, FieldSH, FieldMB, FieldME:
		return ClassImmediate
	case FieldXERC, FieldXERSO, FieldFPSCR, FieldFCRISI, FieldFCRZDZ, FieldFCRIDI, FieldFCRSNAN:
		return ClassStatus
	}
	return ClassNone
}

// Flag is an instruction modifier bit that doubles the case count.
type Flag int

const (
	FlagRc Flag = iota // record bit, updates CR0 or CR1
	FlagOE             // overflow enable, updates XER OV/SO
)

func (f Flag) String() string {
	switch f {
	case FlagRc:
		return "rc"
	case FlagOE:
		return "oe"
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

func (f *Flag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "rc":
		*f = FlagRc
	case "oe":
		*f = FlagOE
	default:
		return errors.Wrapf(hwerrors.ErrGUnknownFieldKind, "flag %q", name)
	}
	return nil
}
