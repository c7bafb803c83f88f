package testgen

import (
	"math"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/pkg/errors"
)

// Boundary values per field kind. Table order is the enumeration order.
var (
	ValuesGPR = []uint32{
		0,
		1,
		0xFFFFFFFF,
		0x80000000,
		0x7FFFFFFF,
	}

	// ValuesFPR holds raw double bit patterns so the two NaN flavours stay distinct.
	ValuesFPR = []uint64{
		math.Float64bits(0.0),
		math.Float64bits(1.0),
		math.Float64bits(-1.0),
		0x0010000000000000, // smallest normal
		math.Float64bits(math.MaxFloat64),
		math.Float64bits(-math.MaxFloat64),
		math.Float64bits(math.Inf(1)),
		0x7FF8000000000000, // quiet NaN
		0x7FF4000000000000, // signaling NaN
		0x0000000000000001, // smallest denormal
		0x3CB0000000000000, // epsilon
	}

	ValuesSIMM = []int16{0, 1, -1, math.MinInt16, math.MaxInt16}
	ValuesUIMM = []uint16{0, 1, 0xFFFF, 0x8000, 0x7FFF}

	ValuesCRB   = []uint32{0, 1}
	ValuesXERC  = []uint32{0, 1}
	ValuesXERSO = []uint32{0, 1}

	ValuesSH = []uint32{0, 15, 23, 31}
	ValuesMB = []uint32{0, 15, 23, 31}
	ValuesME = []uint32{0, 15, 23, 31}
)

// DomainSize returns the number of values enumerated for a read field of kind k.
func DomainSize(k isa.FieldKind) (int, error) {
	switch k {
	case isa.FieldRA, isa.FieldRB, isa.FieldRS:
		return len(ValuesGPR), nil
	case isa.FieldFRA, isa.FieldFRB, isa.FieldFRC, isa.FieldFRS:
		return len(ValuesFPR), nil
	case isa.FieldCRBA, isa.FieldCRBB:
		return len(ValuesCRB), nil
	case isa.FieldSIMM:
		return len(ValuesSIMM), nil
	case isa.FieldUIMM:
		return len(ValuesUIMM), nil
	case isa.FieldSH:
		return len(ValuesSH), nil
	case isa.FieldMB:
		return len(ValuesMB), nil
	case isa.FieldME:
		return len(ValuesME), nil
	case isa.FieldXERC:
		return len(ValuesXERC), nil
	case isa.FieldXERSO:
		return len(ValuesXERSO), nil
	}
	return 0, errors.Wrapf(hwerrors.ErrGNoValueDomain, "read field %v", k)
}
