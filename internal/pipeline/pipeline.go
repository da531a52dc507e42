// Package pipeline runs the interview stages in order against one model.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/prompt"
)

var errEmptyResponse = errors.New("empty response")

// DefaultTimeout bounds a single model invocation when none is configured.
const DefaultTimeout = 90 * time.Second

// Backend is the model API a pipeline talks to.
type Backend interface {
	model.Invoker
	model.ModelValidator
}

// Pipeline owns one interview run end to end:
// validate → record usage → select model → stages → notify.
type Pipeline struct {
	backend  Backend
	recorder model.UsageRecorder
	notifier model.RunNotifier
	timeout  time.Duration
	user     string
	logger   *slog.Logger

	// OnStage, when set, is called after each stage completes.
	OnStage func(model.StageResult)
}

// New creates a pipeline wired with all its dependencies. A non-positive
// timeout falls back to DefaultTimeout.
func New(
	backend Backend,
	recorder model.UsageRecorder,
	notifier model.RunNotifier,
	timeout time.Duration,
	user string,
	logger *slog.Logger,
) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		backend:  backend,
		recorder: recorder,
		notifier: notifier,
		timeout:  timeout,
		user:     user,
		logger:   logger,
	}
}

// Execute validates ic, logs usage, picks the first available model from
// prefs and runs every stage. The returned run is nil when no stage was
// attempted (bad input, auth failure, no model).
func (p *Pipeline) Execute(ctx context.Context, ic model.InterviewContext, prefs []string) (*model.PipelineRun, error) {
	if err := ic.Validate(); err != nil {
		return nil, err
	}

	rec := model.UsageRecord{
		Timestamp:       time.Now(),
		User:            p.user,
		Action:          model.ActionInterviewStarted,
		PainPoint:       ic.PainPoint,
		CustomerProfile: ic.CustomerProfile,
	}
	if err := p.recorder.Record(ctx, rec); err != nil {
		p.logger.Error("recording usage failed", "error", err)
	}

	modelID, err := ai.SelectModel(ctx, p.backend, prefs, p.logger)
	if err != nil {
		return nil, err
	}

	run, err := p.Run(ctx, ic, modelID)
	if run != nil {
		if nerr := p.notifier.NotifyRun(ctx, run); nerr != nil {
			p.logger.Error("notifying run failed", "run_id", run.ID.String(), "error", nerr)
		}
	}
	return run, err
}

// Run executes the stages for ic against modelID. Each stage's output feeds
// the next stage's prompt. On the first failure the run is aborted, the
// results so far are kept and a *model.StageError is returned alongside it.
func (p *Pipeline) Run(ctx context.Context, ic model.InterviewContext, modelID string) (*model.PipelineRun, error) {
	if err := ic.Validate(); err != nil {
		return nil, err
	}

	run := &model.PipelineRun{
		ID:        uuid.New(),
		Context:   ic,
		Model:     modelID,
		StartedAt: time.Now(),
	}
	p.logger.Info("interview run started", "run_id", run.ID.String(), "model", modelID)

	previous := ""
	for _, stage := range model.StagesFor(ic) {
		res, err := p.runStage(ctx, stage, ic, previous, modelID)
		if err != nil {
			stageErr := &model.StageError{Stage: stage, Err: err}
			run.Status = model.RunAborted
			run.FailedStage = stage
			run.Err = stageErr
			run.FinishedAt = time.Now()
			p.logger.Warn("interview run aborted",
				"run_id", run.ID.String(),
				"stage", stage.String(),
				"completed", len(run.Results),
				"error", err,
			)
			return run, stageErr
		}

		run.Results = append(run.Results, res)
		previous = res.Text
		if p.OnStage != nil {
			p.OnStage(res)
		}
	}

	run.Status = model.RunCompleted
	run.FinishedAt = time.Now()
	p.logger.Info("interview run completed",
		"run_id", run.ID.String(),
		"model", modelID,
		"stages", len(run.Results),
		"duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
	)
	return run, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage model.Stage, ic model.InterviewContext, previous, modelID string) (model.StageResult, error) {
	instr, err := prompt.Build(stage, ic, previous)
	if err != nil {
		return model.StageResult{}, fmt.Errorf("build prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.backend.Invoke(ctx, instr, modelID)
	elapsed := time.Since(start)
	if err != nil {
		return model.StageResult{}, asTransport(err)
	}
	if strings.TrimSpace(text) == "" {
		return model.StageResult{}, &model.TransportError{Err: errEmptyResponse}
	}

	p.logger.Debug("stage completed",
		"stage", stage.String(),
		"model", modelID,
		"duration", elapsed.Round(time.Millisecond).String(),
		"chars", len(text),
	)
	return model.StageResult{
		Stage:    stage,
		Text:     text,
		Model:    modelID,
		Duration: elapsed,
	}, nil
}

// asTransport leaves typed provider errors alone and classifies bare
// context errors as transport failures.
func asTransport(err error) error {
	var (
		authErr      *model.AuthError
		unavailErr   *model.ModelUnavailableError
		transportErr *model.TransportError
	)
	if errors.As(err, &authErr) || errors.As(err, &unavailErr) || errors.As(err, &transportErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &model.TransportError{Timeout: true, Err: err}
	}
	return &model.TransportError{Err: err}
}
