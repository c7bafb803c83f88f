// Package report renders corpus summaries and comparison results for humans.
package report

import (
	"fmt"

	"github.com/MoochMcGee/wiiu-emu/compare"
	"github.com/MoochMcGee/wiiu-emu/testgen"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/xlab/treeprint"
)

// SummaryTree lays out a generation run as group -> instruction -> cases.
func SummaryTree(s *testgen.Summary) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("corpus (%d cases)", s.TotalCases()))
	for _, g := range s.Groups {
		n := 0
		for _, f := range g.Files {
			n += f.Cases
		}
		branch := tree.AddMetaBranch(n, g.Name)
		for _, f := range g.Files {
			branch.AddMetaNode(f.Cases, f.Name)
		}
	}
	return tree
}

// CorpusTree lists the files of a loaded corpus with their case counts.
func CorpusTree(name string, c *types.Corpus) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s (%d files, %d cases)", name, len(c.Files), c.NumCases()))
	for _, f := range c.Files {
		tree.AddMetaNode(len(f.Tests), f.Name)
	}
	return tree
}

// MismatchTree groups the findings of a run by file and case.
func MismatchTree(r *compare.Report) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s: %d cases, %d skipped, %d faults, %d mismatches",
		r.Engine, r.Cases, r.Skipped, r.Faults, len(r.Mismatches)))

	var (
		file     treeprint.Tree
		lastFile string
		tc       treeprint.Tree
		lastCase = -1
	)
	for _, m := range r.Mismatches {
		if file == nil || m.File != lastFile {
			file = tree.AddBranch(m.File)
			lastFile, lastCase = m.File, -1
		}
		if m.Index != lastCase {
			tc = file.AddMetaBranch(m.Index, fmt.Sprintf("%s %s", m.Instr, m.Disassembly))
			lastCase = m.Index
		}
		tc.AddNode(fmt.Sprintf("%s expected 0x%x actual 0x%x", m.Field, m.Expected, m.Actual))
	}
	return tree
}
