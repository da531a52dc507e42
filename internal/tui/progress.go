package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/interviewsim/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// errCancelled is returned when the user interrupts a run.
var errCancelled = errors.New("cancelled")

// RunFunc executes one run, calling onStage after every finished stage.
type RunFunc func(ctx context.Context, onStage func(model.StageResult)) (*model.PipelineRun, error)

type stageDoneMsg struct {
	result model.StageResult
}

type runDoneMsg struct {
	run *model.PipelineRun
	err error
}

type spinnerTickMsg struct{}

type progressModel struct {
	stages    []model.Stage
	completed []model.StageResult
	frame     int
	run       *model.PipelineRun
	err       error
	done      bool
}

func (m progressModel) Init() tea.Cmd {
	return m.tick()
}

func (m progressModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageDoneMsg:
		m.completed = append(m.completed, msg.result)
		return m, nil
	case runDoneMsg:
		m.run = msg.run
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	for i, stage := range m.stages {
		switch {
		case i < len(m.completed):
			res := m.completed[i]
			b.WriteString(doneStyle.Render("✓ "+stage.Title()) +
				pendingStyle.Render(fmt.Sprintf(" (%s)", res.Duration.Round(100*time.Millisecond))))
		case i == len(m.completed):
			b.WriteString(spinnerStyle.Render(spinnerFrames[m.frame]) + " " + stage.Title() + "...")
		default:
			b.WriteString(pendingStyle.Render("· " + stage.Title()))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RunProgress shows per-stage progress while runFn executes. It renders
// inline (no alt screen). ctrl+c cancels the run's context.
func RunProgress(ctx context.Context, stages []model.Stage, runFn RunFunc) (*model.PipelineRun, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(progressModel{stages: stages})
	go func() {
		run, err := runFn(ctx, func(res model.StageResult) {
			p.Send(stageDoneMsg{result: res})
		})
		p.Send(runDoneMsg{run: run, err: err})
	}()

	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(progressModel)
	return final.run, final.err
}
