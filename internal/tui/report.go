package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/interviewsim/internal/model"
)

type reportModel struct {
	run      *model.PipelineRun
	err      error
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	wantQuit bool
}

func (m reportModel) Init() tea.Cmd {
	return nil
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Title (1) + border top/bottom (2) + status bar (1).
		h := max(m.height-4, 5)
		if !m.ready {
			m.viewport = viewport.New(m.width-4, h)
			m.ready = true
		} else {
			m.viewport.Width = m.width - 4
			m.viewport.Height = h
		}
		m.viewport.SetContent(renderReport(m.run, m.err, m.viewport.Width))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "n":
			m.wantQuit = false
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reportModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := sectionTitleStyle.Render("Interview Report")
	if m.run != nil && m.run.Model != "" {
		title += pendingStyle.Render("  model: " + m.run.Model)
	}
	content := activeBorderStyle.Width(m.width - 2).Render(m.viewport.View())
	status := fmt.Sprintf(" ↑/↓ scroll  %3.f%%  esc new interview  q quit", m.viewport.ScrollPercent()*100)
	return title + "\n" + content + "\n" + statusBarStyle.Width(m.width).Render(status)
}

// renderReport lays out every stage result in order, then the failure, if any.
func renderReport(run *model.PipelineRun, err error, width int) string {
	wrapWidth := max(width-2, 20)
	body := bodyStyle.Width(wrapWidth)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-lipgloss.Width(label), 3))
		return dividerStyle.Render(label + fill)
	}

	var b strings.Builder
	if run != nil {
		for _, res := range run.Results {
			b.WriteString(divider("── "+res.Stage.Title()+" ") + "\n\n")
			b.WriteString(body.Render(res.Text) + "\n\n")
		}
	}

	if err != nil {
		label := "Error"
		if run != nil && run.Status == model.RunAborted {
			label = run.FailedStage.Title()
		}
		b.WriteString(divider("── "+label+" ") + "\n\n")
		b.WriteString(errorStyle.Width(wrapWidth).Render("⚠ "+model.UserMessage(err)) + "\n")
	}
	return b.String()
}

// RunReport shows the finished run in a scrollable full-screen view.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to start another interview.
func RunReport(run *model.PipelineRun, err error) (bool, error) {
	p := tea.NewProgram(reportModel{run: run, err: err}, tea.WithAltScreen())
	result, perr := p.Run()
	if perr != nil {
		return false, perr
	}
	final := result.(reportModel)
	return final.wantQuit, nil
}
