//go:build !unicorn
// +build !unicorn

package ucengine

import (
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// Engine is unavailable without the unicorn build tag.
type Engine struct{}

func New() (*Engine, error) {
	return nil, errors.Wrap(hwerrors.ErrEEngineFault, "built without the unicorn tag")
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Execute(instr types.Instruction, in types.RegisterState) (types.RegisterState, error) {
	return in, errors.Wrap(hwerrors.ErrEEngineFault, "built without the unicorn tag")
}

func (e *Engine) Close() error { return nil }
