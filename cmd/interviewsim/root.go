package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/config"
	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/notifier"
	"github.com/amishk599/interviewsim/internal/store"
	"github.com/amishk599/interviewsim/internal/web"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "interviewsim",
	Short: "Customer interview simulator",
	Long: "interviewsim generates customer interview questions, simulates an interview " +
		"and analyzes it with a hosted LLM.",
	// With no subcommand, serve the web form.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: INTERVIEWSIM_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > INTERVIEWSIM_CONFIG env var > "./config.yaml".
// Only the implicit ./config.yaml may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv("INTERVIEWSIM_CONFIG"); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault("config.yaml")
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.RunNotifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupUsageLog(ctx context.Context, cfg *config.Config) (store.UsageLog, error) {
	return store.Open(ctx, cfg.Usage.Backend, cfg.Usage.Path, cfg.Usage.DatabaseURL)
}

// providerFactory binds the configured provider type and generation
// settings; the credential is supplied per call.
func providerFactory(cfg *config.Config, httpClient *http.Client) web.ProviderFactory {
	opts := ai.Options{
		Type:    cfg.Provider.Type,
		BaseURL: cfg.Provider.BaseURL,
		Params: ai.Params{
			Temperature: cfg.Provider.Temperature,
			MaxTokens:   cfg.Provider.MaxTokens,
		},
	}
	return func(ctx context.Context, apiKey string) (ai.Provider, error) {
		return ai.NewProvider(ctx, opts, apiKey, httpClient)
	}
}

// providerHTTPClient has no client-side timeout; each invocation carries
// its own deadline.
func providerHTTPClient() *http.Client {
	return &http.Client{}
}
