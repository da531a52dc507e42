package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/pipeline"
)

// ---- view models ----

// FormData fills the input form. The API key is never echoed back.
type FormData struct {
	PainPoint       string
	CustomerProfile string
	PriorLearnings  string
	ShowModels      bool
	Error           string
}

// Section is one stage's output on the result page.
type Section struct {
	Title string
	Text  string
}

// ResultData is the result page: the form on top, stage output below.
type ResultData struct {
	Form            FormData
	Model           string
	Sections        []Section
	Failed          bool
	FailedStage     string
	Message         string
	AvailableModels []string
	ModelsError     string
}

// ---- Form ----

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, FormData{})
}

func (s *Server) renderForm(w http.ResponseWriter, status int, data FormData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.formTmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("rendering form failed", "error", err)
	}
}

func (s *Server) renderResult(w http.ResponseWriter, status int, data ResultData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.resultTmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("rendering result failed", "error", err)
	}
}

// ---- Interview ----

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, FormData{Error: "Could not read the submitted form."})
		return
	}

	form := FormData{
		PainPoint:       r.PostFormValue("pain_point"),
		CustomerProfile: r.PostFormValue("customer_profile"),
		PriorLearnings:  r.PostFormValue("prior_learnings"),
		ShowModels:      r.PostFormValue("show_models") != "",
	}
	ic := model.InterviewContext{
		PainPoint:       form.PainPoint,
		CustomerProfile: form.CustomerProfile,
		PriorLearnings:  form.PriorLearnings,
	}
	if err := ic.Validate(); err != nil {
		form.Error = model.UserMessage(err)
		s.renderForm(w, http.StatusBadRequest, form)
		return
	}

	ctx := r.Context()
	provider, err := s.newProvider(ctx, strings.TrimSpace(r.PostFormValue("api_key")))
	if err != nil {
		s.logger.Warn("building provider failed", "error", err)
		form.Error = model.UserMessage(err)
		s.renderForm(w, statusFor(err), form)
		return
	}
	defer provider.Close()

	result := ResultData{Form: form}
	if form.ShowModels {
		models, err := provider.ListModels(ctx)
		if err != nil {
			s.logger.Warn("listing models failed", "error", err)
			result.ModelsError = model.UserMessage(err)
		}
		result.AvailableModels = models
	}

	p := pipeline.New(provider, s.recorder, s.notifier, s.cfg.Timeout, s.cfg.User, s.logger)
	run, err := p.Execute(ctx, ic, s.cfg.Models)
	if run == nil {
		// Nothing ran: show the form again with the reason, keeping the
		// model listing so the user can see why selection failed.
		form.Error = model.UserMessage(err)
		if form.ShowModels {
			result.Form = form
			s.renderResult(w, statusFor(err), result)
			return
		}
		s.renderForm(w, statusFor(err), form)
		return
	}

	result.Model = run.Model
	for _, res := range run.Results {
		result.Sections = append(result.Sections, Section{Title: res.Stage.Title(), Text: res.Text})
	}
	if err != nil {
		result.Failed = true
		result.FailedStage = run.FailedStage.Title()
		result.Message = model.UserMessage(err)
	}
	s.renderResult(w, statusFor(err), result)
}

// statusFor maps a pipeline error to the response status code. Any failure
// inside a stage is a 502, whatever its cause.
func statusFor(err error) int {
	var (
		inputErr *model.InputError
		authErr  *model.AuthError
		stageErr *model.StageError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &stageErr):
		return http.StatusBadGateway
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNoAvailableModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ---- Health ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
