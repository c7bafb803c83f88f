//go:build unicorn
// +build unicorn

// Package ucengine runs single PowerPC instructions inside a Unicorn PPC32
// big-endian CPU.
package ucengine

import (
	"encoding/binary"
	"sync"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
)

type Engine struct {
	mu  sync.Mutex
	emu uc.Unicorn
}

func New() (*Engine, error) {
	emu, err := uc.NewUnicorn(uc.ARCH_PPC, uc.MODE_PPC32|uc.MODE_BIG_ENDIAN)
	if err != nil {
		return nil, errors.Wrapf(hwerrors.ErrEEngineFault, "create unicorn: %v", err)
	}
	if err := emu.MemMap(CodeBase, CodeSize); err != nil {
		emu.Close()
		return nil, errors.Wrapf(hwerrors.ErrEEngineFault, "map code page: %v", err)
	}
	if err := emu.MemProtect(CodeBase, CodeSize, uc.PROT_ALL); err != nil {
		emu.Close()
		return nil, errors.Wrapf(hwerrors.ErrEEngineFault, "protect code page: %v", err)
	}
	return &Engine{emu: emu}, nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Execute(instr types.Instruction, in types.RegisterState) (types.RegisterState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code := make([]byte, 8)
	binary.BigEndian.PutUint32(code[0:], uint32(instr))
	binary.BigEndian.PutUint32(code[4:], blr)
	if err := e.emu.MemWrite(CodeBase, code); err != nil {
		return in, errors.Wrapf(hwerrors.ErrEEngineFault, "write code: %v", err)
	}
	if err := e.load(in); err != nil {
		return in, err
	}

	if err := e.emu.Start(CodeBase, CodeBase+4); err != nil {
		if err == uc.UcError(uc.ERR_INSN_INVALID) {
			return in, errors.Wrapf(hwerrors.ErrEUnsupportedInstruction, "%s", instr)
		}
		log.Warn(log.CPU, "unicorn stopped", "instr", instr, "err", err)
		return in, errors.Wrapf(hwerrors.ErrEEngineFault, "%s: %v", instr, err)
	}
	return e.save()
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emu.Close()
}

type regWrite struct {
	reg int
	val uint64
}

func (e *Engine) load(in types.RegisterState) error {
	writes := []regWrite{
		{uc.PPC_REG_XER, uint64(in.XER)},
		{uc.PPC_REG_CR, uint64(in.CR)},
		{uc.PPC_REG_CTR, uint64(in.CTR)},
		{uc.PPC_REG_FPSCR, uint64(in.FPSCR)},
		{uc.PPC_REG_LR, CodeBase + 8},
	}
	for i, v := range in.GPR {
		writes = append(writes, regWrite{uc.PPC_REG_0 + types.GPRBase + i, uint64(v)})
	}
	for i, v := range in.FPR {
		writes = append(writes, regWrite{uc.PPC_REG_FPR0 + types.FPRBase + i, v})
	}
	for _, w := range writes {
		if err := e.emu.RegWrite(w.reg, w.val); err != nil {
			return errors.Wrapf(hwerrors.ErrEEngineFault, "write register %d: %v", w.reg, err)
		}
	}

	msr, err := e.emu.RegRead(uc.PPC_REG_MSR)
	if err != nil {
		return errors.Wrapf(hwerrors.ErrEEngineFault, "read msr: %v", err)
	}
	if err := e.emu.RegWrite(uc.PPC_REG_MSR, msr|msrFP); err != nil {
		return errors.Wrapf(hwerrors.ErrEEngineFault, "enable fpu: %v", err)
	}
	return nil
}

func (e *Engine) save() (types.RegisterState, error) {
	var (
		out     types.RegisterState
		readErr error
	)
	read := func(reg int) uint64 {
		if readErr != nil {
			return 0
		}
		v, err := e.emu.RegRead(reg)
		if err != nil {
			readErr = errors.Wrapf(hwerrors.ErrEEngineFault, "read register %d: %v", reg, err)
		}
		return v
	}
	out.XER = uint32(read(uc.PPC_REG_XER))
	out.CR = uint32(read(uc.PPC_REG_CR))
	out.CTR = uint32(read(uc.PPC_REG_CTR))
	out.FPSCR = uint32(read(uc.PPC_REG_FPSCR))
	for i := range out.GPR {
		out.GPR[i] = uint32(read(uc.PPC_REG_0 + types.GPRBase + i))
	}
	for i := range out.FPR {
		out.FPR[i] = read(uc.PPC_REG_FPR0 + types.FPRBase + i)
	}
	if readErr != nil {
		return types.RegisterState{}, readErr
	}
	return out, nil
}
