package compare

import (
	"errors"

	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"golang.org/x/exp/slices"
)

// Report summarises one comparison run.
type Report struct {
	Engine     string
	Files      int
	Cases      int
	Skipped    int
	Faults     int
	Mismatches []Mismatch
}

// ByFile counts mismatching fields per test file.
func (r *Report) ByFile() map[string]int {
	counts := make(map[string]int)
	for _, m := range r.Mismatches {
		counts[m.File]++
	}
	return counts
}

// FailingFiles returns the names of files with at least one mismatch, sorted.
func (r *Report) FailingFiles() []string {
	var names []string
	for name := range r.ByFile() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes every case of corpus on exec and compares the result with
// the recorded output. Unsupported instructions are counted as skipped and
// engine faults are counted and logged; neither aborts the run.
func Run(corpus *types.Corpus, exec cpu.Executor) *Report {
	return New(FPSCRExcludeOnNaN).Run(corpus, exec)
}

func (c *Comparator) Run(corpus *types.Corpus, exec cpu.Executor) *Report {
	r := &Report{Engine: exec.Name(), Files: len(corpus.Files)}
	for _, file := range corpus.Files {
		before := len(r.Mismatches)
		for i := range file.Tests {
			tc := &file.Tests[i]
			r.Cases++
			actual, err := exec.Execute(tc.Instr, tc.Input)
			switch {
			case errors.Is(err, hwerrors.ErrEUnsupportedInstruction):
				r.Skipped++
				continue
			case err != nil:
				r.Faults++
				log.Warn(log.Compare, "execute failed", "file", file.Name, "index", i, "err", err)
				continue
			}
			for _, m := range c.Compare(tc, actual) {
				m.File = file.Name
				m.Index = i
				r.Mismatches = append(r.Mismatches, m)
			}
		}
		if n := len(r.Mismatches) - before; n > 0 {
			log.Debug(log.Compare, "file mismatched", "file", file.Name, "fields", n)
		}
	}
	log.Info(log.Compare, "run complete", "engine", r.Engine, "files", r.Files, "cases", r.Cases,
		"skipped", r.Skipped, "faults", r.Faults, "mismatches", len(r.Mismatches))
	return r
}
