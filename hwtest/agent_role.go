package hwtest

import (
	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/log"
)

// responder is the agent side of a session: it answers the distributor's
// version and executes each case it is sent.
type responder struct {
	exec    cpu.Executor
	version uint32
}

// NewResponder returns the agent role executing cases with exec.
func NewResponder(exec cpu.Executor, version uint32) Role {
	return &responder{exec: exec, version: version}
}

func (r *responder) Name() string { return "agent" }

// Start sends nothing; the distributor speaks first.
func (r *responder) Start(s *Session) ([]Packet, error) { return nil, nil }

func (r *responder) Handle(s *Session, p Packet) ([]Packet, error) {
	switch p.Command {
	case CmdVersion:
		if s.state != StateAwaitingVersion {
			s.unexpected(p)
			return nil, nil
		}
		peer, err := DecodeVersion(p)
		if err != nil {
			return nil, err
		}
		log.Info(log.HwTest, "distributor version", "local", r.version, "distributor", peer, "engine", r.exec.Name())
		s.setState(StateStreaming)
		return []Packet{NewVersionPacket(r.version)}, nil

	case CmdExecuteGeneralTest:
		if s.state != StateStreaming {
			s.unexpected(p)
			return nil, nil
		}
		req, err := DecodeGeneralTest(p)
		if err != nil {
			return nil, err
		}
		out, err := r.exec.Execute(req.Instr, req.State)
		if err != nil {
			// The distributor expects a reply for every case; echo the input.
			s.Stats.ExecErrors++
			log.Debug(log.HwTest, "execute failed", "instr", req.Instr, "err", err)
			out = req.State
		}
		s.Stats.Replies++
		return []Packet{NewGeneralTestPacket(GeneralTest{Instr: req.Instr, State: out})}, nil

	default:
		s.unexpected(p)
		return nil, nil
	}
}

func (r *responder) Abort(s *Session, reason error) {
	if reason != nil {
		log.Warn(log.HwTest, "agent session aborted", "reason", reason)
	}
}
