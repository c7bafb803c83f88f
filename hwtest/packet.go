package hwtest

import (
	"encoding/binary"
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/codec"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// Command identifies the payload that follows a packet header.
type Command uint16

const (
	CmdVersion            Command = 1
	CmdExecuteGeneralTest Command = 10
	CmdExecutePairedTest  Command = 20
)

func (c Command) String() string {
	switch c {
	case CmdVersion:
		return "Version"
	case CmdExecuteGeneralTest:
		return "ExecuteGeneralTest"
	case CmdExecutePairedTest:
		return "ExecutePairedTest"
	}
	return fmt.Sprintf("Command(%d)", uint16(c))
}

const (
	// ProtocolVersion is the version both ends announce.
	ProtocolVersion uint32 = 1

	// HeaderSize is the size of the {size, command} header.
	HeaderSize = 4
	// VersionPacketSize is the total size of a Version packet.
	VersionPacketSize = HeaderSize + 4
	// GeneralTestPacketSize is the total size of an ExecuteGeneralTest packet.
	GeneralTestPacketSize = HeaderSize + 4 + codec.StateSize
	// MaxPacketSize is the largest size a u16 header can declare.
	MaxPacketSize = 0xFFFF
)

// Header precedes every packet on the wire. Size counts the header itself.
// Both fields are big-endian.
type Header struct {
	Size    uint16
	Command Command
}

// Packet is one complete protocol message.
type Packet struct {
	Header
	Payload []byte
}

// Bytes returns the wire form of p.
func (p Packet) Bytes() []byte {
	b := make([]byte, HeaderSize+len(p.Payload))
	binary.BigEndian.PutUint16(b[0:], uint16(len(b)))
	binary.BigEndian.PutUint16(b[2:], uint16(p.Command))
	copy(b[HeaderSize:], p.Payload)
	return b
}

// ParseHeader decodes and validates a header against maxSize and the fixed
// payload size of known commands.
func ParseHeader(b []byte, maxSize int) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, errors.Wrapf(hwerrors.ErrPMalformedPacket, "header is %d bytes", len(b))
	}
	h := Header{
		Size:    binary.BigEndian.Uint16(b[0:]),
		Command: Command(binary.BigEndian.Uint16(b[2:])),
	}
	if h.Size < HeaderSize {
		return h, errors.Wrapf(hwerrors.ErrPMalformedPacket, "%v declares size %d", h.Command, h.Size)
	}
	if int(h.Size) > maxSize {
		return h, errors.Wrapf(hwerrors.ErrPPacketTooLarge, "%v declares size %d, limit %d", h.Command, h.Size, maxSize)
	}
	if want, known := fixedSize(h.Command); known && int(h.Size) != want {
		return h, errors.Wrapf(hwerrors.ErrPMalformedPacket, "%v declares size %d, want %d", h.Command, h.Size, want)
	}
	return h, nil
}

// fixedSize returns the total size of commands with a fixed payload.
// ExecutePairedTest is reserved and its payload is not validated.
func fixedSize(c Command) (int, bool) {
	switch c {
	case CmdVersion:
		return VersionPacketSize, true
	case CmdExecuteGeneralTest:
		return GeneralTestPacketSize, true
	}
	return 0, false
}

// NewVersionPacket builds a Version packet announcing version.
func NewVersionPacket(version uint32) Packet {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, version)
	return Packet{Header{Size: VersionPacketSize, Command: CmdVersion}, payload}
}

// DecodeVersion returns the version carried by a Version packet.
func DecodeVersion(p Packet) (uint32, error) {
	if len(p.Payload) != 4 {
		return 0, errors.Wrapf(hwerrors.ErrPMalformedPacket, "version payload is %d bytes", len(p.Payload))
	}
	return binary.BigEndian.Uint32(p.Payload), nil
}

// GeneralTest is the payload of an ExecuteGeneralTest request or reply.
type GeneralTest struct {
	Instr types.Instruction
	State types.RegisterState
}

// NewGeneralTestPacket builds an ExecuteGeneralTest packet. Every field,
// including the floating registers, is sent big-endian.
func NewGeneralTestPacket(g GeneralTest) Packet {
	payload := make([]byte, GeneralTestPacketSize-HeaderSize)
	binary.BigEndian.PutUint32(payload, uint32(g.Instr))
	codec.PutState(payload[4:], &g.State, binary.BigEndian)
	return Packet{Header{Size: GeneralTestPacketSize, Command: CmdExecuteGeneralTest}, payload}
}

// DecodeGeneralTest parses an ExecuteGeneralTest payload.
func DecodeGeneralTest(p Packet) (GeneralTest, error) {
	var g GeneralTest
	if len(p.Payload) != GeneralTestPacketSize-HeaderSize {
		return g, errors.Wrapf(hwerrors.ErrPMalformedPacket, "general test payload is %d bytes", len(p.Payload))
	}
	g.Instr = types.Instruction(binary.BigEndian.Uint32(p.Payload))
	codec.GetState(p.Payload[4:], &g.State, binary.BigEndian)
	return g, nil
}
