// hwtest-compare runs a hardware-recorded corpus through a local engine and
// reports every register field that differs. Mismatches never change the
// exit status.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/MoochMcGee/wiiu-emu/compare"
	"github.com/MoochMcGee/wiiu-emu/config"
	"github.com/MoochMcGee/wiiu-emu/cpu"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/report"
	"github.com/MoochMcGee/wiiu-emu/storage"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath   string
	resultsDir   string
	engine       string
	policy       string
	findingsDB   string
	chartPath    string
	showDiff     bool
	noStore      bool
	logLevel     string
	debugModules string
}

func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("results") {
		cfg.OutputDir = f.resultsDir
	}
	if changed("engine") {
		cfg.Engine = f.engine
	}
	if changed("fpscr-policy") {
		cfg.FPSCRPolicy = f.policy
	}
	if changed("findings-db") {
		cfg.FindingsDB = f.findingsDB
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.InitLogger(cfg.LogLevel)
	log.EnableModules(f.debugModules)
	return cfg, nil
}

func main() {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "hwtest-compare",
		Short: "Compare recorded hardware results against a local engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runCompare(cfg, f)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file")
	pf.StringVar(&f.findingsDB, "findings-db", "", "LevelDB directory for findings")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level")
	pf.StringVar(&f.debugModules, "debug", "", "Comma-separated modules to debug")

	rootCmd.Flags().StringVar(&f.resultsDir, "results", "", "Directory of hardware-executed test files")
	rootCmd.Flags().StringVar(&f.engine, "engine", config.EngineInterp, "Execution engine (interp, unicorn)")
	rootCmd.Flags().StringVar(&f.policy, "fpscr-policy", compare.FPSCRExcludeOnNaN.String(), "FPSCR comparison policy (exclude-on-nan, mask-nan-bits, always)")
	rootCmd.Flags().StringVar(&f.chartPath, "chart", "", "Write an HTML mismatch chart to this file")
	rootCmd.Flags().BoolVar(&f.showDiff, "diff", false, "Log an expected/actual diff for each mismatching case")
	rootCmd.Flags().BoolVar(&f.noStore, "no-store", false, "Do not record findings")

	findingsCmd := &cobra.Command{
		Use:   "findings [file]",
		Short: "List findings recorded by the last run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return listFindings(cfg.FindingsDB, file)
		},
	}
	rootCmd.AddCommand(findingsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCompare(cfg *config.Config, f *flags) error {
	corpus, err := storage.NewCorpusDir(cfg.OutputDir).LoadAll()
	if err != nil {
		return err
	}
	exec, closeEngine, err := cfg.OpenEngine()
	if err != nil {
		return err
	}
	defer closeEngine()
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	started := time.Now()
	r := compare.New(policy).Run(corpus, exec)

	if !f.noStore {
		if err := storeFindings(cfg.FindingsDB, started, r); err != nil {
			return err
		}
	}
	fmt.Println(report.MismatchTree(r).String())

	if f.showDiff {
		logDiffs(corpus, exec, r)
	}
	if f.chartPath != "" {
		if err := report.WriteChartFile(f.chartPath, r); err != nil {
			return err
		}
		log.Info(log.Compare, "chart written", "path", f.chartPath)
	}
	return nil
}

func storeFindings(path string, started time.Time, r *compare.Report) error {
	store, err := storage.OpenFindingStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(); err != nil {
		return err
	}
	for _, m := range r.Mismatches {
		if err := store.Put(m.Finding()); err != nil {
			return err
		}
	}
	err = store.PutSummary(storage.RunSummary{
		Started:    started,
		Engine:     r.Engine,
		Files:      r.Files,
		Cases:      r.Cases,
		Skipped:    r.Skipped,
		Mismatches: len(r.Mismatches),
	})
	if err != nil {
		return err
	}
	log.Info(log.Findings, "findings recorded", "db", path, "count", len(r.Mismatches))
	return nil
}

// logDiffs re-executes each mismatching case once and logs the state diff.
func logDiffs(corpus *types.Corpus, exec cpu.Executor, r *compare.Report) {
	files := make(map[string]*types.TestFile, len(corpus.Files))
	for _, file := range corpus.Files {
		files[file.Name] = file
	}
	colour := log.IsTerminal(os.Stderr)
	seen := make(map[string]bool)
	for _, m := range r.Mismatches {
		key := fmt.Sprintf("%s/%d", m.File, m.Index)
		if seen[key] {
			continue
		}
		seen[key] = true

		file := files[m.File]
		if file == nil || m.Index >= len(file.Tests) {
			continue
		}
		tc := &file.Tests[m.Index]
		actual, err := exec.Execute(tc.Instr, tc.Input)
		if err != nil {
			continue
		}
		diff, err := compare.Diff(tc.Output, actual, colour)
		if err != nil {
			log.Warn(log.Compare, "diff failed", "case", key, "err", err)
			continue
		}
		log.Info(log.Compare, "case differs", "case", key, "instr", m.Disassembly)
		fmt.Fprintln(os.Stderr, diff)
	}
}

func listFindings(path, file string) error {
	store, err := storage.OpenFindingStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, ok, err := store.Summary()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no comparison run recorded")
		return nil
	}
	fmt.Printf("run %s engine=%s files=%d cases=%d skipped=%d mismatches=%d\n",
		sum.Started.Format(time.RFC3339), sum.Engine, sum.Files, sum.Cases, sum.Skipped, sum.Mismatches)

	findings, err := store.List(file)
	if err != nil {
		return err
	}
	for _, fd := range findings {
		fmt.Printf("%s[%d] 0x%08x %-24s %-6s expected 0x%x actual 0x%x\n",
			fd.File, fd.Index, fd.Instr, fd.Disassembly, fd.Field, fd.Expected, fd.Actual)
	}
	return nil
}
