package config

import (
	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/cpu/ucengine"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/pkg/errors"
)

// OpenEngine creates the configured executor. The returned close function
// releases engine resources and is never nil.
func (c *Config) OpenEngine() (cpu.Executor, func() error, error) {
	switch c.Engine {
	case EngineInterp:
		ip, err := cpu.NewInterpreter()
		if err != nil {
			return nil, nil, err
		}
		return ip, func() error { return nil }, nil
	case EngineUnicorn:
		e, err := ucengine.New()
		if err != nil {
			return nil, nil, err
		}
		return e, e.Close, nil
	}
	return nil, nil, errors.Wrapf(hwerrors.ErrKInvalidConfig, "unknown engine %q", c.Engine)
}
