package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/pipeline"
	"github.com/amishk599/interviewsim/internal/store"
)

var (
	runPainPoint string
	runProfile   string
	runLearnings string
	runAPIKey    string
	runModels    []string
	runDryRun    bool
)

var (
	stageHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginTop(1)

	stageMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one interview from the command line",
	Long: "Generates questions, simulates an interview and analyzes it, printing each " +
		"stage as it completes. With --learnings, the analysis is merged into them.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPainPoint, "pain-point", "", "pain point to explore (required)")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "customer profile (required)")
	runCmd.Flags().StringVar(&runLearnings, "learnings", "", "prior learnings to merge with the analysis")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "API key (default: provider.api_key from config)")
	runCmd.Flags().StringSliceVar(&runModels, "model", nil, "model preference list (overrides provider.models)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "use the offline echo provider and record no usage")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefs := cfg.Provider.Models
	if len(runModels) > 0 {
		prefs = runModels
	}

	var (
		provider ai.Provider
		usage    store.UsageLog
	)
	if runDryRun {
		logger.Info("dry-run mode enabled, using echo provider and no usage log")
		provider = ai.NewEchoProvider()
		usage = store.NewNopStore()
		prefs = []string{ai.EchoModel}
	} else {
		key := runAPIKey
		if key == "" {
			key = cfg.Provider.APIKey
		}
		provider, err = providerFactory(cfg, providerHTTPClient())(ctx, key)
		if err != nil {
			fmt.Fprintln(os.Stderr, failureStyle.Render(model.UserMessage(err)))
			os.Exit(1)
		}
		usage, err = setupUsageLog(ctx, cfg)
		if err != nil {
			logger.Error("failed to open usage log", "error", err)
			os.Exit(1)
		}
	}
	defer provider.Close()
	defer usage.Close()

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	p := pipeline.New(provider, usage, n, cfg.Provider.Timeout, cfg.Usage.User, logger)
	p.OnStage = printStage

	ic := model.InterviewContext{
		PainPoint:       runPainPoint,
		CustomerProfile: runProfile,
		PriorLearnings:  runLearnings,
	}
	run, err := p.Execute(ctx, ic, prefs)
	if err != nil {
		if run != nil {
			fmt.Println(stageHeadingStyle.Render(run.FailedStage.Title()))
		}
		fmt.Fprintln(os.Stderr, failureStyle.Render(model.UserMessage(err)))
		os.Exit(1)
	}
	return nil
}

func printStage(res model.StageResult) {
	fmt.Println(stageHeadingStyle.Render(res.Stage.Title()) + " " +
		stageMetaStyle.Render(fmt.Sprintf("(%s, %s)", res.Model, res.Duration.Round(100*time.Millisecond))))
	fmt.Println(res.Text)
}
