package codec

import (
	"encoding/binary"
	"io"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// Decoder reads one test file in the corpus layout.
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the whole body and validates it against its case count.
func (d *Decoder) Decode(file *types.TestFile) error {
	body, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	tests, err := decodeBody(body)
	if err != nil {
		return err
	}
	file.Tests = tests
	return nil
}

func decodeBody(body []byte) ([]types.TestCase, error) {
	if len(body) < CountSize {
		return nil, errors.Wrapf(hwerrors.ErrCTruncatedCorpus, "body is %d bytes", len(body))
	}
	count := binary.LittleEndian.Uint64(body[:CountSize])
	rest := uint64(len(body) - CountSize)
	if count > rest/CaseSize || count*CaseSize != rest {
		return nil, errors.Wrapf(hwerrors.ErrCCorruptCorpus, "%d cases declared, %d bytes of case data", count, rest)
	}

	tests := make([]types.TestCase, count)
	off := CountSize
	for i := range tests {
		tc := &tests[i]
		tc.Instr = types.Instruction(binary.LittleEndian.Uint32(body[off:]))
		off += 4
		GetState(body[off:], &tc.Input, binary.LittleEndian)
		off += StateSize
		GetState(body[off:], &tc.Output, binary.LittleEndian)
		off += StateSize
	}
	return tests, nil
}

// GetState is the inverse of PutState.
func GetState(b []byte, s *types.RegisterState, order binary.ByteOrder) {
	s.XER = order.Uint32(b[0:])
	s.CR = order.Uint32(b[4:])
	s.FPSCR = order.Uint32(b[8:])
	s.CTR = order.Uint32(b[12:])
	off := 16
	for i := range s.GPR {
		s.GPR[i] = order.Uint32(b[off:])
		off += 4
	}
	for i := range s.FPR {
		s.FPR[i] = order.Uint64(b[off:])
		off += 8
	}
}
