package compare

import (
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// Policy decides how FPSCR is compared when a case involves NaNs.
type Policy int

const (
	// FPSCRExcludeOnNaN skips the whole FPSCR field for NaN cases.
	FPSCRExcludeOnNaN Policy = iota
	// FPSCRMaskNaNBits compares FPSCR for NaN cases with the NaN-dependent
	// sub-bits masked off.
	FPSCRMaskNaNBits
	// FPSCRAlways compares FPSCR exactly.
	FPSCRAlways
)

var policyNames = map[Policy]string{
	FPSCRExcludeOnNaN: "exclude-on-nan",
	FPSCRMaskNaNBits:  "mask-nan-bits",
	FPSCRAlways:       "always",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, errors.Wrapf(hwerrors.ErrKInvalidConfig, "unknown fpscr policy %q", s)
}

// nanDependentBits are the FPSCR bits whose value on NaN inputs differs
// between implementations.
const nanDependentBits = types.FPSCRFX | types.FPSCRVX | types.FPSCRVXAll |
	types.FPSCRFR | types.FPSCRFI | types.FPSCRFPRF

// nanInvolved reports whether a case touches NaNs anywhere: a NaN bit
// pattern in a floating register of any state, an invalid-operation bit in
// either FPSCR, or a quiet NaN result class.
func nanInvolved(in, expected, actual *types.RegisterState) bool {
	if in.HasNaN() || expected.HasNaN() || actual.HasNaN() {
		return true
	}
	for _, fpscr := range []uint32{expected.FPSCR, actual.FPSCR} {
		if fpscr&(types.FPSCRVX|types.FPSCRVXAll) != 0 || types.FPRF(fpscr) == types.FPRFQNaN {
			return true
		}
	}
	return false
}
