package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/MoochMcGee/wiiu-emu/compare"
	"github.com/MoochMcGee/wiiu-emu/testgen"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *compare.Report {
	return &compare.Report{
		Engine: "interp",
		Cases:  10,
		Mismatches: []compare.Mismatch{
			{File: "add", Index: 2, Field: "r5", Expected: 1, Actual: 2, Instr: 0x7CA32214, Disassembly: "add r5,r3,r4"},
			{File: "add", Index: 2, Field: "xer", Expected: 0, Actual: 0x20000000, Instr: 0x7CA32214, Disassembly: "add r5,r3,r4"},
			{File: "fmr", Index: 0, Field: "f2", Expected: 1, Actual: 0, Instr: 0xFC402090, Disassembly: "fmr f2,f4"},
		},
	}
}

func TestSummaryTree(t *testing.T) {
	s := &testgen.Summary{Groups: []testgen.GroupSummary{
		{Name: "integer-arithmetic", Files: []testgen.FileSummary{{Name: "add", Cases: 500}, {Name: "addi", Cases: 25}}},
		{Name: "float-move", Files: []testgen.FileSummary{{Name: "fmr", Cases: 22}}},
	}}
	out := SummaryTree(s).String()
	assert.Contains(t, out, "corpus (547 cases)")
	assert.Contains(t, out, "[525]  integer-arithmetic")
	assert.Contains(t, out, "[25]  addi")
	assert.Contains(t, out, "fmr")
}

func TestCorpusTree(t *testing.T) {
	c := &types.Corpus{Files: []*types.TestFile{
		{Name: "addi", Tests: make([]types.TestCase, 3)},
		{Name: "fmr", Tests: make([]types.TestCase, 2)},
	}}
	out := CorpusTree("input", c).String()
	assert.Contains(t, out, "input (2 files, 5 cases)")
	assert.Contains(t, out, "[3]  addi")
}

func TestMismatchTree(t *testing.T) {
	out := MismatchTree(sampleReport()).String()
	assert.Contains(t, out, "3 mismatches")
	assert.Contains(t, out, "add r5,r3,r4")
	assert.Contains(t, out, "xer expected 0x0 actual 0x20000000")
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("add r5,r3,r4")))
}

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"b": 1, "a": 1, "c": 4})
	assert.Equal(t, []count{{"c", 4}, {"a", 1}, {"b", 1}}, got)
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, sampleReport()))
	html := buf.String()
	assert.Contains(t, html, "Mismatches per instruction")
	assert.Contains(t, html, "Mismatches per field")

	path := filepath.Join(t.TempDir(), "chart.html")
	require.NoError(t, WriteChartFile(path, sampleReport()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
