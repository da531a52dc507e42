package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/interviewsim/internal/model"
)

// Form field order; tab moves through them in this order.
const (
	fieldAPIKey = iota
	fieldPainPoint
	fieldProfile
	fieldLearnings
	fieldCount
)

var fieldLabels = [fieldCount]string{"API key", "Pain point", "Customer profile", "Prior learnings (optional)"}

// FormInput is what the user submitted.
type FormInput struct {
	Context model.InterviewContext
	APIKey  string
}

type formModel struct {
	apiKey    textinput.Model
	areas     [fieldCount - 1]textarea.Model
	focus     int
	width     int
	err       string
	submitted bool
	input     FormInput
}

func newFormModel(prefill FormInput, hasDefaultKey bool) formModel {
	key := textinput.New()
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.Placeholder = "paste your API key"
	if hasDefaultKey {
		key.Placeholder = "leave empty to use the configured key"
	}
	key.SetValue(prefill.APIKey)

	m := formModel{apiKey: key, width: 80}
	values := [fieldCount - 1]string{prefill.Context.PainPoint, prefill.Context.CustomerProfile, prefill.Context.PriorLearnings}
	placeholders := [fieldCount - 1]string{
		"e.g. finding the right software for a small business",
		"e.g. small business owners aged 25-45",
		"learnings from earlier interviews",
	}
	for i := range m.areas {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.Placeholder = placeholders[i]
		ta.SetHeight(3)
		ta.CharLimit = 0
		ta.SetValue(values[i])
		m.areas[i] = ta
	}
	m.setFocus(fieldPainPoint)
	if prefill.APIKey == "" && !hasDefaultKey {
		m.setFocus(fieldAPIKey)
	}
	return m
}

func (m formModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *formModel) setFocus(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount
	m.apiKey.Blur()
	for j := range m.areas {
		m.areas[j].Blur()
	}
	if m.focus == fieldAPIKey {
		return m.apiKey.Focus()
	}
	return m.areas[m.focus-1].Focus()
}

func (m *formModel) resize(width int) {
	m.width = width
	w := max(width-6, 20)
	m.apiKey.Width = w
	for i := range m.areas {
		m.areas[i].SetWidth(w)
	}
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab":
			return m, m.setFocus(m.focus - 1)
		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldAPIKey {
		m.apiKey, cmd = m.apiKey.Update(msg)
	} else {
		m.areas[m.focus-1], cmd = m.areas[m.focus-1].Update(msg)
	}
	return m, cmd
}

func (m formModel) submit() (tea.Model, tea.Cmd) {
	ic := model.InterviewContext{
		PainPoint:       m.areas[0].Value(),
		CustomerProfile: m.areas[1].Value(),
		PriorLearnings:  m.areas[2].Value(),
	}
	if err := ic.Validate(); err != nil {
		m.err = model.UserMessage(err)
		return m, nil
	}
	m.err = ""
	m.submitted = true
	m.input = FormInput{Context: ic, APIKey: strings.TrimSpace(m.apiKey.Value())}
	return m, tea.Quit
}

func (m formModel) View() string {
	if m.submitted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Customer Interview Simulator"))
	b.WriteByte('\n')

	for i := 0; i < fieldCount; i++ {
		label := inactiveLabelStyle
		if i == m.focus {
			label = labelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteByte('\n')
		if i == fieldAPIKey {
			b.WriteString(fieldStyle.Render(m.apiKey.View()))
		} else {
			b.WriteString(fieldStyle.Render(m.areas[i-1].View()))
		}
		b.WriteByte('\n')
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.err))
		b.WriteByte('\n')
	}
	b.WriteString(hintStyle.Render("tab/shift+tab move  ctrl+s start interview  esc quit"))
	return b.String()
}

// RunForm shows the input form. prefill seeds the fields (used when coming
// back from a report). Returns ok=false if the user quit.
func RunForm(prefill FormInput, hasDefaultKey bool) (FormInput, bool, error) {
	p := tea.NewProgram(newFormModel(prefill, hasDefaultKey))
	result, err := p.Run()
	if err != nil {
		return FormInput{}, false, err
	}
	final := result.(formModel)
	return final.input, final.submitted, nil
}
