// hwtest-gen enumerates every instruction in the table and writes one corpus
// file per mnemonic.
package main

import (
	"fmt"
	"os"

	"github.com/MoochMcGee/wiiu-emu/config"
	"github.com/MoochMcGee/wiiu-emu/isa"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/report"
	"github.com/MoochMcGee/wiiu-emu/storage"
	"github.com/MoochMcGee/wiiu-emu/testgen"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath   string
		outputDir    string
		logLevel     string
		debugModules string
		quiet        bool
	)

	rootCmd := &cobra.Command{
		Use:   "hwtest-gen",
		Short: "Generate the CPU instruction test corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.InputDir = outputDir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			log.InitLogger(cfg.LogLevel)
			log.EnableModules(debugModules)

			table, err := isa.Default()
			if err != nil {
				return err
			}
			dir := storage.NewCorpusDir(cfg.InputDir)
			if err := dir.Ensure(); err != nil {
				return err
			}
			summary, err := testgen.GenerateAll(table, dir)
			if err != nil {
				return err
			}
			log.Info(log.TestGen, "corpus written", "dir", dir.Path(), "cases", summary.TotalCases())
			if !quiet {
				fmt.Println(report.SummaryTree(summary).String())
			}
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&outputDir, "output", "", "Directory for generated test files")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	rootCmd.Flags().StringVar(&debugModules, "debug", "", "Comma-separated modules to debug")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the corpus tree")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
