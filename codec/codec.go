// Package codec implements the on-disk corpus layout: a little-endian u64
// case count followed by fixed-size cases. Each case is the instruction word,
// then the input state, then the output state. The layout matches corpora
// produced by the existing hardware tooling on little-endian hosts.
package codec

import (
	"bytes"
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/types"
)

const (
	// CountSize is the size of the leading case count.
	CountSize = 8
	// StateSize is the encoded size of one RegisterState.
	StateSize = 4*4 + 4*types.NumGPR + 8*types.NumFPR
	// CaseSize is the encoded size of one TestCase.
	CaseSize = 4 + 2*StateSize
)

// Encode serializes file into its corpus body.
func Encode(file *types.TestFile) ([]byte, error) {
	buffer := bytes.NewBuffer(make([]byte, 0, CountSize+CaseSize*len(file.Tests)))
	if err := NewEncoder(buffer).Encode(file); err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	return buffer.Bytes(), nil
}

// Decode parses a corpus body. The returned file has no name; callers set it
// from wherever the body was stored.
func Decode(body []byte) (*types.TestFile, error) {
	tests, err := decodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("decoding failed: %w", err)
	}
	return &types.TestFile{Tests: tests}, nil
}
