// Package cpu defines the execution engines a test case can be run on.
package cpu

import "github.com/MoochMcGee/wiiu-emu/types"

// Executor runs one instruction against an input state and returns the
// resulting state.
type Executor interface {
	Name() string
	Execute(instr types.Instruction, in types.RegisterState) (types.RegisterState, error)
}
