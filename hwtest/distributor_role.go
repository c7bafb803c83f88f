package hwtest

import (
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// CorpusWriter persists a test file once every case in it has a result.
type CorpusWriter interface {
	WriteTestFile(file *types.TestFile) error
}

// streamer is the distributor side of a session. It walks the corpus one
// case at a time and fills in outputs from the agent's replies.
type streamer struct {
	corpus  *types.Corpus
	writer  CorpusWriter
	version uint32

	file  int
	index int
}

// NewStreamer returns the distributor role for one session over corpus.
func NewStreamer(corpus *types.Corpus, writer CorpusWriter, version uint32) Role {
	return &streamer{corpus: corpus, writer: writer, version: version}
}

func (st *streamer) Name() string { return "distributor" }

func (st *streamer) Start(s *Session) ([]Packet, error) {
	st.file, st.index = 0, 0
	return []Packet{NewVersionPacket(st.version)}, nil
}

func (st *streamer) Handle(s *Session, p Packet) ([]Packet, error) {
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
		if peer != st.version {
			log.Warn(log.HwTest, "agent version differs", "local", st.version, "agent", peer)
		} else {
			log.Info(log.HwTest, "agent version", "local", st.version, "agent", peer)
		}
		s.setState(StateStreaming)
		return st.next(s)

	case CmdExecuteGeneralTest:
		if s.state != StateStreaming {
			s.unexpected(p)
			return nil, nil
		}
		result, err := DecodeGeneralTest(p)
		if err != nil {
			return nil, err
		}
		tc := &st.corpus.Files[st.file].Tests[st.index]
		if result.Instr != tc.Instr {
			return nil, errors.Wrapf(hwerrors.ErrPReplyMismatch, "sent %s, received %s", tc.Instr, result.Instr)
		}
		log.Trace(log.HwTest, "received test result", "file", st.corpus.Files[st.file].Name, "index", st.index, "instr", tc.Instr)
		tc.Output = result.State
		s.Stats.Replies++
		st.index++
		return st.next(s)

	case CmdExecutePairedTest:
		// paired-single results are not collected
		return nil, nil

	default:
		s.unexpected(p)
		return nil, nil
	}
}

// next sends the current case, persisting and skipping past every file
// whose cases are all answered. Exhausting the corpus moves to Draining.
func (st *streamer) next(s *Session) ([]Packet, error) {
	for st.file < len(st.corpus.Files) {
		f := st.corpus.Files[st.file]
		if st.index < len(f.Tests) {
			tc := &f.Tests[st.index]
			s.Stats.CasesSent++
			log.Trace(log.HwTest, "send test", "file", f.Name, "index", st.index, "instr", tc.Instr)
			return []Packet{NewGeneralTestPacket(GeneralTest{Instr: tc.Instr, State: tc.Input})}, nil
		}
		if err := st.writer.WriteTestFile(f); err != nil {
			return nil, errors.Wrapf(err, "persist %s", f.Name)
		}
		s.Stats.FilesPersisted++
		log.Info(log.HwTest, "test file complete", "name", f.Name, "cases", len(f.Tests))
		st.file++
		st.index = 0
	}
	s.setState(StateDraining)
	return nil, nil
}

func (st *streamer) Abort(s *Session, reason error) {
	if st.file < len(st.corpus.Files) {
		log.Warn(log.HwTest, "session ended mid-corpus, partial file discarded",
			"file", st.corpus.Files[st.file].Name, "index", st.index, "reason", reason)
	}
}
