// Package tui is the interactive terminal front end: a form, a per-stage
// progress loader and a scrollable report.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/pipeline"
)

// Deps wires the TUI to providers and the usage log.
type Deps struct {
	NewProvider   func(ctx context.Context, apiKey string) (ai.Provider, error)
	Recorder      model.UsageRecorder
	Notifier      model.RunNotifier
	Models        []string
	Timeout       time.Duration
	User          string
	DefaultAPIKey string
	Logger        *slog.Logger
}

// Run loops form → progress → report until the user quits.
func Run(ctx context.Context, d Deps) error {
	var prefill FormInput
	for {
		in, ok, err := RunForm(prefill, d.DefaultAPIKey != "")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		prefill = in

		run, runErr := execute(ctx, d, in)
		if errors.Is(runErr, errCancelled) {
			return nil
		}

		quit, err := RunReport(run, runErr)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func execute(ctx context.Context, d Deps, in FormInput) (*model.PipelineRun, error) {
	key := in.APIKey
	if key == "" {
		key = d.DefaultAPIKey
	}
	provider, err := d.NewProvider(ctx, key)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	return RunProgress(ctx, model.StagesFor(in.Context), func(ctx context.Context, onStage func(model.StageResult)) (*model.PipelineRun, error) {
		p := pipeline.New(provider, d.Recorder, d.Notifier, d.Timeout, d.User, d.Logger)
		p.OnStage = onStage
		return p.Execute(ctx, in.Context, d.Models)
	})
}
