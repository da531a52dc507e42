package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/interviewsim/internal/model"
)

// Ensure SlackNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*SlackNotifier)(nil)

// Slack rejects section text longer than this.
const slackTextLimit = 3000

// defaultMaxRetryWait caps how long a rate-limited send waits before its
// single retry. Runs notify inline, so a long Retry-After would stall them.
const defaultMaxRetryWait = 5 * time.Second

// SlackNotifier posts a run summary to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL   string
	httpClient   *http.Client
	logger       *slog.Logger
	maxRetryWait time.Duration
}

// NewSlackNotifier returns a notifier that posts each finished run to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL:   webhookURL,
		httpClient:   httpClient,
		logger:       logger,
		maxRetryWait: defaultMaxRetryWait,
	}
}

// NotifyRun sends one Block Kit message describing run. A 429 response is
// retried once after the Retry-After delay, capped at maxRetryWait.
func (s *SlackNotifier) NotifyRun(ctx context.Context, run *model.PipelineRun) error {
	body, err := json.Marshal(buildPayload(run))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.post(ctx, body)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := model.ParseRetryAfter(resp.Header.Get("Retry-After"))
		if wait <= 0 {
			wait = time.Second
		}
		if wait > s.maxRetryWait {
			wait = s.maxRetryWait
		}
		s.logger.Warn("slack rate limited, retrying", "wait", wait.String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("slack retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		resp2, err := s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "run_id", run.ID.String(), "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "run_id", run.ID.String())
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample completed run to verify the integration works.
func SendTestMessage(ctx context.Context, n model.RunNotifier) error {
	now := time.Now()
	run := &model.PipelineRun{
		ID: uuid.New(),
		Context: model.InterviewContext{
			PainPoint:       "Test notification: integration verified",
			CustomerProfile: "Everyone",
		},
		Model:  "test-model",
		Status: model.RunCompleted,
		Results: []model.StageResult{
			{Stage: model.Analysis, Text: "- This is a test message from interviewsim."},
		},
		StartedAt:  now,
		FinishedAt: now,
	}
	return n.NotifyRun(ctx, run)
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func buildPayload(run *model.PipelineRun) slackPayload {
	header := "🎤 Interview run completed"
	if run.Status == model.RunAborted {
		header = "⚠️ Interview run aborted"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: header},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: clip("*Pain point:*\n"+run.Context.PainPoint, 2000)},
				{Type: "mrkdwn", Text: clip("*Customer profile:*\n"+run.Context.CustomerProfile, 2000)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Model:*\n" + run.Model},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Stages:*\n%d", len(run.Results))},
			},
		},
	}

	if run.Status == model.RunAborted {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: clip("*Failed at "+run.FailedStage.Title()+":* "+model.UserMessage(run.Err), slackTextLimit)},
		})
	}

	// The merged learnings supersede the single-interview analysis.
	summary, ok := run.Result(model.LearningsMerge)
	if !ok {
		summary, ok = run.Result(model.Analysis)
	}
	if ok {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: clip("*"+summary.Stage.Title()+":*\n"+summary.Text, slackTextLimit)},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
