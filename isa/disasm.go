package isa

import (
	"encoding/binary"
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/types"
	"golang.org/x/arch/ppc64/ppc64asm"
)

// Disassemble renders instr in GNU assembler syntax. Encodings the decoder
// does not recognise are shown as a .long directive.
func Disassemble(instr types.Instruction) string {
	var code [4]byte
	binary.BigEndian.PutUint32(code[:], uint32(instr))
	inst, err := ppc64asm.Decode(code[:], binary.BigEndian)
	if err != nil || inst.Op == 0 {
		return fmt.Sprintf(".long 0x%08x", uint32(instr))
	}
	return ppc64asm.GNUSyntax(inst, 0)
}
