// hwtest-agent connects to a distributor and answers every test with a local
// execution engine, standing in for the agent that runs on hardware.
package main

import (
	"os"

	"github.com/MoochMcGee/wiiu-emu/config"
	"github.com/MoochMcGee/wiiu-emu/hwtest"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath   string
		addr         string
		engine       string
		logLevel     string
		debugModules string
	)

	rootCmd := &cobra.Command{
		Use:   "hwtest-agent",
		Short: "Execute distributed tests with a local engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("addr") {
				cfg.DistributorAddr = addr
			}
			if changed("engine") {
				cfg.Engine = engine
			}
			if changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.InitLogger(cfg.LogLevel)
			log.EnableModules(debugModules)

			exec, closeEngine, err := cfg.OpenEngine()
			if err != nil {
				return err
			}
			defer closeEngine()

			agent := hwtest.NewAgent(exec, cfg.SessionOptions())
			if err := agent.Connect(cfg.DistributorAddr); err != nil {
				return err
			}
			defer agent.Close()
			stats, err := agent.Run()
			if err != nil {
				return err
			}
			log.Info(log.HwTest, "agent done", "replies", stats.Replies, "exec_errors", stats.ExecErrors)
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Distributor address")
	rootCmd.Flags().StringVar(&engine, "engine", config.EngineInterp, "Execution engine (interp, unicorn)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	rootCmd.Flags().StringVar(&debugModules, "debug", "", "Comma-separated modules to debug")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
