package types

import (
	"fmt"
	"math"
)

const (
	// GPRBase is the first general register carried in a RegisterState (r3).
	GPRBase = 3
	// FPRBase is the first floating register carried in a RegisterState (f1).
	FPRBase = 1
	// CRFBase is the first condition field handed out by the enumerator.
	CRFBase = 2
	// CRBBase is the first condition bit handed out by the enumerator.
	CRBBase = 8

	NumGPR = 4
	NumFPR = 4
)

// XER bits.
const (
	XERSO        uint32 = 0x80000000
	XEROV        uint32 = 0x40000000
	XERCA        uint32 = 0x20000000
	XERByteCount uint32 = 0x0000007F
)

// FPSCR bits.
const (
	FPSCRFX     uint32 = 0x80000000
	FPSCRFEX    uint32 = 0x40000000
	FPSCRVX     uint32 = 0x20000000
	FPSCROX     uint32 = 0x10000000
	FPSCRUX     uint32 = 0x08000000
	FPSCRZX     uint32 = 0x04000000
	FPSCRXX     uint32 = 0x02000000
	FPSCRVXSNAN uint32 = 0x01000000
	FPSCRVXISI  uint32 = 0x00800000
	FPSCRVXIDI  uint32 = 0x00400000
	FPSCRVXZDZ  uint32 = 0x00200000
	FPSCRVXIMZ  uint32 = 0x00100000
	FPSCRVXVC   uint32 = 0x00080000
	FPSCRFR     uint32 = 0x00040000
	FPSCRFI     uint32 = 0x00020000
	FPSCRFPRF   uint32 = 0x0001F000
	FPSCRVXSOFT uint32 = 0x00000400
	FPSCRVXSQRT uint32 = 0x00000200
	FPSCRVXCVI  uint32 = 0x00000100
	FPSCRVE     uint32 = 0x00000080
	FPSCROE     uint32 = 0x00000040
	FPSCRUE     uint32 = 0x00000020
	FPSCRZE     uint32 = 0x00000010
	FPSCRXE     uint32 = 0x00000008
	FPSCRNI     uint32 = 0x00000004
	FPSCRRN     uint32 = 0x00000003

	// FPSCRVXAll holds every invalid-operation cause bit.
	FPSCRVXAll = FPSCRVXSNAN | FPSCRVXISI | FPSCRVXIDI | FPSCRVXZDZ | FPSCRVXIMZ | FPSCRVXVC |
		FPSCRVXSOFT | FPSCRVXSQRT | FPSCRVXCVI

	// FPRFQNaN is the FPRF class code for a quiet NaN.
	FPRFQNaN uint32 = 0x11
)

// CR field bits, in field-relative IBM order.
const (
	CRLT uint32 = 0x8
	CRGT uint32 = 0x4
	CREQ uint32 = 0x2
	CRSO uint32 = 0x1
)

// CRField returns condition field n (0-7); field 0 is the most significant nibble.
func CRField(cr uint32, n uint) uint32 {
	return (cr >> (28 - 4*n)) & 0xF
}

// SetCRField replaces condition field n with v.
func SetCRField(cr uint32, n uint, v uint32) uint32 {
	shift := 28 - 4*n
	return (cr &^ (0xF << shift)) | ((v & 0xF) << shift)
}

// CRBit returns condition bit n (0-31); bit n lives at 1<<(31-n).
func CRBit(cr uint32, n uint) uint32 {
	return (cr >> (31 - n)) & 1
}

// SetCRBit replaces condition bit n with the low bit of v.
func SetCRBit(cr uint32, n uint, v uint32) uint32 {
	mask := uint32(1) << (31 - n)
	if v&1 != 0 {
		return cr | mask
	}
	return cr &^ mask
}

// FPRF returns the 5-bit result class of an FPSCR word.
func FPRF(fpscr uint32) uint32 {
	return (fpscr & FPSCRFPRF) >> 12
}

// RegisterState is the architectural state one test reads and writes:
// r3-r6, f1-f4 and the special registers. Floating registers are held as
// raw IEEE-754 bit patterns so that NaN payloads are preserved exactly.
type RegisterState struct {
	XER   uint32         `json:"xer"`
	CR    uint32         `json:"cr"`
	FPSCR uint32         `json:"fpscr"`
	CTR   uint32         `json:"ctr"`
	GPR   [NumGPR]uint32 `json:"gpr"`
	FPR   [NumFPR]uint64 `json:"fpr"`
}

// Float returns floating slot i as a float64.
func (s *RegisterState) Float(i int) float64 {
	return math.Float64frombits(s.FPR[i])
}

// SetFloat stores f into floating slot i.
func (s *RegisterState) SetFloat(i int, f float64) {
	s.FPR[i] = math.Float64bits(f)
}

// HasNaN reports whether any floating slot holds a NaN bit pattern.
func (s *RegisterState) HasNaN() bool {
	for _, bits := range s.FPR {
		if IsNaNBits(bits) {
			return true
		}
	}
	return false
}

func (s RegisterState) String() string {
	return fmt.Sprintf("xer=%08x cr=%08x fpscr=%08x ctr=%08x r3..r6=%08x f1..f4=%016x",
		s.XER, s.CR, s.FPSCR, s.CTR, s.GPR, s.FPR)
}

// IsNaNBits reports whether bits encodes a double-precision NaN.
func IsNaNBits(bits uint64) bool {
	return bits&0x7FF0000000000000 == 0x7FF0000000000000 && bits&0x000FFFFFFFFFFFFF != 0
}

// IsSignalingNaNBits reports whether bits encodes a signaling NaN.
func IsSignalingNaNBits(bits uint64) bool {
	return IsNaNBits(bits) && bits&0x0008000000000000 == 0
}
