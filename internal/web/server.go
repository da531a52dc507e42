// Package web serves the browser form and result page for interview runs.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/model"
)

//go:embed templates
var templateFS embed.FS

// ProviderFactory builds a provider bound to the credential typed into the
// form. It is called once per request.
type ProviderFactory func(ctx context.Context, apiKey string) (ai.Provider, error)

// Config holds what every request needs besides the credential.
type Config struct {
	Models  []string
	Timeout time.Duration
	User    string
}

// Server renders the interview form and runs the pipeline on submit.
type Server struct {
	newProvider ProviderFactory
	recorder    model.UsageRecorder
	notifier    model.RunNotifier
	cfg         Config
	logger      *slog.Logger

	formTmpl   *template.Template
	resultTmpl *template.Template
}

// NewServer creates a Server with parsed templates.
func NewServer(
	newProvider ProviderFactory,
	recorder model.UsageRecorder,
	notifier model.RunNotifier,
	cfg Config,
	logger *slog.Logger,
) *Server {
	return &Server{
		newProvider: newProvider,
		recorder:    recorder,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		formTmpl:    mustParseTmpl("base.html", "form.html", "index.html"),
		resultTmpl:  mustParseTmpl("base.html", "form.html", "result.html"),
	}
}

func mustParseTmpl(names ...string) *template.Template {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = "templates/" + n
	}
	return template.Must(template.New("").ParseFS(templateFS, patterns...))
}

// Handler returns the routed handler for the web UI.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /interview", s.handleInterview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}
