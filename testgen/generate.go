package testgen

import (
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// Sink receives one generated file per instruction.
type Sink interface {
	WriteTestFile(file *types.TestFile) error
}

// Summary counts what GenerateAll produced, per group.
type Summary struct {
	Groups []GroupSummary
}

type GroupSummary struct {
	Name  string
	Files []FileSummary
}

type FileSummary struct {
	Name  string
	Cases int
}

// TotalCases returns the number of cases across every group.
func (s *Summary) TotalCases() int {
	n := 0
	for _, g := range s.Groups {
		for _, f := range g.Files {
			n += f.Cases
		}
	}
	return n
}

// GenerateAll walks the groups of table in order and hands each generated
// file to sink. The first error stops generation.
func GenerateAll(table *isa.Table, sink Sink) (*Summary, error) {
	summary := &Summary{}
	for _, g := range table.Groups {
		gs := GroupSummary{Name: g.Name}
		for _, shape := range g.Instructions {
			file, err := Generate(shape)
			if err != nil {
				return summary, err
			}
			if err := sink.WriteTestFile(file); err != nil {
				return summary, errors.Wrapf(err, "write %s", file.Name)
			}
			gs.Files = append(gs.Files, FileSummary{Name: file.Name, Cases: len(file.Tests)})
		}
		log.Info(log.TestGen, "group generated", "group", g.Name, "instructions", len(gs.Files))
		summary.Groups = append(summary.Groups, gs)
	}
	return summary, nil
}
