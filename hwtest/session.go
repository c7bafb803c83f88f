package hwtest

import (
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/pkg/errors"
)

// State is the lifecycle position of a session.
type State int

const (
	StateAwaitingVersion State = iota
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingVersion:
		return "AwaitingVersion"
	case StateStreaming:
		return "Streaming"
	case StateDraining:
		return "Draining"
	case StateClosed:
		return "Closed"
	}
	return "Unknown"
}

// Role supplies the command handling for one side of the protocol.
type Role interface {
	Name() string
	// Start returns the packets sent as soon as the connection is up.
	Start(s *Session) ([]Packet, error)
	// Handle processes one complete packet and returns the packets to send.
	Handle(s *Session, p Packet) ([]Packet, error)
	// Abort is called once when the session closes before finishing.
	Abort(s *Session, reason error)
}

// Session frames a byte stream into packets and drives a Role through the
// protocol states. A Session is owned by one goroutine.
type Session struct {
	role    Role
	state   State
	maxSize int

	header  *Header // header of the packet being assembled
	partial []byte  // bytes of the header or body received so far

	Stats SessionStats
}

// NewSession returns a session in AwaitingVersion. maxSize bounds the size a
// header may declare; values outside (HeaderSize, MaxPacketSize] select MaxPacketSize.
func NewSession(role Role, maxSize int) *Session {
	if maxSize <= HeaderSize || maxSize > MaxPacketSize {
		maxSize = MaxPacketSize
	}
	return &Session{role: role, maxSize: maxSize}
}

func (s *Session) State() State { return s.state }

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	log.Debug(log.HwTest, "session state", "role", s.role.Name(), "from", s.state, "to", st)
	s.state = st
}

// Done reports whether the transport should disconnect.
func (s *Session) Done() bool {
	return s.state == StateDraining || s.state == StateClosed
}

// Start is called once on connect.
func (s *Session) Start() ([]Packet, error) {
	if s.state == StateClosed {
		return nil, hwerrors.ErrPSessionClosed
	}
	out, err := s.role.Start(s)
	if err != nil {
		s.Close(err)
		return nil, err
	}
	return out, nil
}

// OnHeaderBytes accepts exactly HeaderSize bytes and returns how many body
// bytes complete the packet. A malformed header closes the session.
func (s *Session) OnHeaderBytes(b []byte) (int, error) {
	if s.state == StateClosed {
		return 0, hwerrors.ErrPSessionClosed
	}
	if s.header != nil {
		err := errors.Wrap(hwerrors.ErrPMalformedPacket, "header received while a body is outstanding")
		s.Close(err)
		return 0, err
	}
	h, err := ParseHeader(b, s.maxSize)
	if err != nil {
		s.Close(err)
		return 0, err
	}
	s.header = &h
	return int(h.Size) - HeaderSize, nil
}

// OnBodyBytes accepts the body announced by the last header, dispatches the
// packet and returns the packets to send in response.
func (s *Session) OnBodyBytes(b []byte) ([]Packet, error) {
	if s.state == StateClosed {
		return nil, hwerrors.ErrPSessionClosed
	}
	if s.header == nil {
		err := errors.Wrap(hwerrors.ErrPMalformedPacket, "body received without a header")
		s.Close(err)
		return nil, err
	}
	if len(b) != int(s.header.Size)-HeaderSize {
		err := errors.Wrapf(hwerrors.ErrPMalformedPacket, "%v body is %d bytes, header declared %d",
			s.header.Command, len(b), int(s.header.Size)-HeaderSize)
		s.Close(err)
		return nil, err
	}
	p := Packet{Header: *s.header, Payload: append([]byte(nil), b...)}
	s.header = nil
	s.Stats.PacketsReceived++

	out, err := s.role.Handle(s, p)
	if err != nil {
		s.Close(err)
		return nil, err
	}
	return out, nil
}

// Feed accepts an arbitrary chunk of the inbound stream and returns the
// packets produced by every packet it completes.
func (s *Session) Feed(chunk []byte) ([]Packet, error) {
	var out []Packet
	for len(chunk) > 0 {
		if s.state == StateClosed {
			return out, hwerrors.ErrPSessionClosed
		}
		need := HeaderSize
		if s.header != nil {
			need = int(s.header.Size) - HeaderSize
		}
		take := need - len(s.partial)
		if take > len(chunk) {
			take = len(chunk)
		}
		s.partial = append(s.partial, chunk[:take]...)
		chunk = chunk[take:]
		if len(s.partial) < need {
			break
		}

		if s.header == nil {
			n, err := s.OnHeaderBytes(s.partial)
			s.partial = s.partial[:0]
			if err != nil {
				return out, err
			}
			if n > 0 {
				continue
			}
		}
		pkts, err := s.OnBodyBytes(s.partial)
		s.partial = s.partial[:0]
		if err != nil {
			return out, err
		}
		out = append(out, pkts...)
	}
	return out, nil
}

// Close moves the session to Closed. A nil reason after Draining is a clean
// finish; anything else aborts the in-flight work.
func (s *Session) Close(reason error) {
	if s.state == StateClosed {
		return
	}
	if s.state != StateDraining || reason != nil {
		s.role.Abort(s, reason)
	}
	s.header = nil
	s.partial = nil
	s.setState(StateClosed)
}

// unexpected records a packet that has no meaning in the current state.
func (s *Session) unexpected(p Packet) {
	s.Stats.Ignored++
	log.Debug(log.HwTest, "ignoring packet", "role", s.role.Name(), "command", p.Command, "state", s.state)
}
