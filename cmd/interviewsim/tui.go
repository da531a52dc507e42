package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/interviewsim/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run interviews interactively (TUI)",
	Long:  "Shows the input form, a per-stage progress view, then a scrollable report.",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	usage, err := setupUsageLog(ctx, cfg)
	if err != nil {
		logger.Error("failed to open usage log", "error", err)
		os.Exit(1)
	}
	defer usage.Close()

	// Log output corrupts the TUI display, so everything below runs silent.
	silentLogger := discardLogger()
	deps := tui.Deps{
		NewProvider:   providerFactory(cfg, providerHTTPClient()),
		Recorder:      usage,
		Notifier:      setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, silentLogger),
		Models:        cfg.Provider.Models,
		Timeout:       cfg.Provider.Timeout,
		User:          cfg.Usage.User,
		DefaultAPIKey: cfg.Provider.APIKey,
		Logger:        silentLogger,
	}
	if err := tui.Run(ctx, deps); err != nil {
		logger.Error("tui error", "error", err)
		os.Exit(1)
	}
	return nil
}
