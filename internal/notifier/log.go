package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/interviewsim/internal/model"
)

// Ensure LogNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*LogNotifier)(nil)

// LogNotifier writes a summary of each finished run to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each run via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyRun logs the run's status, model and per-stage output sizes.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) NotifyRun(_ context.Context, run *model.PipelineRun) error {
	args := []any{
		"run_id", run.ID.String(),
		"status", string(run.Status),
		"model", run.Model,
		"stages", len(run.Results),
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
	}
	if run.Status == model.RunAborted {
		args = append(args, "failed_stage", run.FailedStage.String(), "error", run.Err)
	}
	n.logger.Info("interview run finished", args...)

	for _, res := range run.Results {
		n.logger.Debug("stage output", "run_id", run.ID.String(), "stage", res.Stage.String(), "chars", len(res.Text))
	}
	return nil
}
