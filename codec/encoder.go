package codec

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/MoochMcGee/wiiu-emu/types"
)

// Encoder writes test files in the corpus layout to an io.Writer.
type Encoder struct {
	w   *bufio.Writer
	buf [StateSize]byte
}

// NewEncoder creates a new encoder with the given writer.
func NewEncoder(writer io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(writer)}
}

// Encode writes the case count followed by every case, then flushes.
func (e *Encoder) Encode(file *types.TestFile) error {
	binary.LittleEndian.PutUint64(e.buf[:CountSize], uint64(len(file.Tests)))
	if _, err := e.w.Write(e.buf[:CountSize]); err != nil {
		return err
	}
	for i := range file.Tests {
		if err := e.encodeCase(&file.Tests[i]); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

func (e *Encoder) encodeCase(tc *types.TestCase) error {
	binary.LittleEndian.PutUint32(e.buf[:4], uint32(tc.Instr))
	if _, err := e.w.Write(e.buf[:4]); err != nil {
		return err
	}
	if err := e.encodeState(&tc.Input); err != nil {
		return err
	}
	return e.encodeState(&tc.Output)
}

func (e *Encoder) encodeState(s *types.RegisterState) error {
	PutState(e.buf[:], s, binary.LittleEndian)
	_, err := e.w.Write(e.buf[:])
	return err
}

// PutState serialises s into b in field order xer, cr, fpscr, ctr, r3-r6,
// f1-f4 using order. b must hold at least StateSize bytes.
func PutState(b []byte, s *types.RegisterState, order binary.ByteOrder) {
	order.PutUint32(b[0:], s.XER)
	order.PutUint32(b[4:], s.CR)
	order.PutUint32(b[8:], s.FPSCR)
	order.PutUint32(b[12:], s.CTR)
	off := 16
	for _, v := range s.GPR {
		order.PutUint32(b[off:], v)
		off += 4
	}
	for _, v := range s.FPR {
		order.PutUint64(b[off:], v)
		off += 8
	}
}
