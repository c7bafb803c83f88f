package codec

import (
	"bytes"
	"testing"

	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/testgen"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFile() *types.TestFile {
	tc := types.TestCase{
		Instr: 0x38640539,
		Input: types.RegisterState{
			XER: types.XERSO | types.XERCA, CR: 0x12345678, FPSCR: types.FPSCRVXSNAN, CTR: 7,
			GPR: [4]uint32{1, 2, 3, 0xFFFFFFFF},
			FPR: [4]uint64{0x7FF4000000000000, 0x7FF8000000000001, 0x8000000000000000, 1},
		},
		Output: types.RegisterState{
			GPR: [4]uint32{1, 1337, 3, 4},
			FPR: [4]uint64{0xFFF4000000000000},
		},
	}
	return &types.TestFile{Name: "addi", Tests: []types.TestCase{tc, {Instr: 0x7C000000}}}
}

func TestLayout(t *testing.T) {
	assert.Equal(t, 64, StateSize)
	assert.Equal(t, 132, CaseSize)

	body, err := Encode(sampleFile())
	require.NoError(t, err)
	require.Len(t, body, CountSize+2*CaseSize)

	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, body[:8])
	assert.Equal(t, []byte{0x39, 0x05, 0x64, 0x38}, body[8:12])
	// input xer
	assert.Equal(t, []byte{0, 0, 0, 0xA0}, body[12:16])
	// input f1, the signaling NaN
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF4, 0x7F}, body[12+32:12+40])
}

func TestRoundTripPreservesBits(t *testing.T) {
	want := sampleFile()
	body, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, want.Tests, got.Tests)
	assert.True(t, types.IsSignalingNaNBits(got.Tests[0].Input.FPR[0]))
}

func TestRoundTripGeneratedFiles(t *testing.T) {
	table, err := isa.Default()
	require.NoError(t, err)

	for _, mnemonic := range []string{"fmadd", "adde", "crxor", "rlwimi"} {
		t.Run(mnemonic, func(t *testing.T) {
			shape, err := table.ShapeOf(mnemonic)
			require.NoError(t, err)
			file, err := testgen.Generate(shape)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, NewEncoder(&buf).Encode(file))

			var got types.TestFile
			require.NoError(t, NewDecoder(&buf).Decode(&got))
			assert.Equal(t, file.Tests, got.Tests)
		})
	}
}

func TestEmptyFile(t *testing.T) {
	body, err := Encode(&types.TestFile{Name: "empty"})
	require.NoError(t, err)
	assert.Len(t, body, CountSize)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Empty(t, got.Tests)
}

func TestDecodeRejectsBadBodies(t *testing.T) {
	body, err := Encode(sampleFile())
	require.NoError(t, err)

	tests := []struct {
		name string
		body []byte
		want error
	}{
		{"no header", body[:5], hwerrors.ErrCTruncatedCorpus},
		{"short case data", body[:len(body)-1], hwerrors.ErrCCorruptCorpus},
		{"trailing bytes", append(append([]byte{}, body...), 0), hwerrors.ErrCCorruptCorpus},
		{"huge count", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, hwerrors.ErrCCorruptCorpus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.body)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
