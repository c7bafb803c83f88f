// hwtest-distributor serves the generated corpus to a test agent running on
// reference hardware and records the results it sends back.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MoochMcGee/wiiu-emu/config"
	"github.com/MoochMcGee/wiiu-emu/hwtest"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/storage"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath   string
		inputDir     string
		outputDir    string
		listenAddr   string
		replyTimeout time.Duration
		logLevel     string
		debugModules string
	)

	rootCmd := &cobra.Command{
		Use:   "hwtest-distributor",
		Short: "Stream the test corpus to a hardware test agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("input") {
				cfg.InputDir = inputDir
			}
			if changed("output") {
				cfg.OutputDir = outputDir
			}
			if changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if changed("reply-timeout") {
				cfg.ReplyTimeout = replyTimeout
			}
			if changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.InitLogger(cfg.LogLevel)
			log.EnableModules(debugModules)
			log.Debug(log.HwTest, "configuration", "config", cfg.String())

			corpus, err := storage.NewCorpusDir(cfg.InputDir).LoadAll()
			if err != nil {
				return err
			}
			out := storage.NewCorpusDir(cfg.OutputDir)
			if err := out.Ensure(); err != nil {
				return err
			}

			dist := hwtest.NewDistributor(corpus, out, cfg.SessionOptions())
			stopCh := make(chan os.Signal, 1)
			signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-stopCh
				log.Info(log.HwTest, "terminating distributor")
				dist.Stop()
			}()
			return dist.ListenAndServe(cfg.ListenAddr)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&inputDir, "input", "", "Directory of generated test files")
	rootCmd.Flags().StringVar(&outputDir, "output", "", "Directory for hardware-executed test files")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "TCP address to listen on")
	rootCmd.Flags().DurationVar(&replyTimeout, "reply-timeout", 30*time.Second, "Close sessions whose agent stays silent this long (0 waits forever)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	rootCmd.Flags().StringVar(&debugModules, "debug", "", "Comma-separated modules to debug")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
