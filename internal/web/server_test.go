package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/interviewsim/internal/ai"
	"github.com/amishk599/interviewsim/internal/model"
	"github.com/amishk599/interviewsim/internal/notifier"
	"github.com/amishk599/interviewsim/internal/store"
)

// scriptedProvider fails Invoke on call failAt (1-based) and rejects the
// models in unavailable.
type scriptedProvider struct {
	mu          sync.Mutex
	calls       int
	failAt      int
	unavailable map[string]bool
	closed      bool
}

func (p *scriptedProvider) Invoke(_ context.Context, instr model.Instructions, modelID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == p.failAt {
		return "", &model.TransportError{Err: errors.New("upstream reset")}
	}
	return "stage output from " + modelID, nil
}

func (p *scriptedProvider) ValidateModel(_ context.Context, id string) error {
	if p.unavailable[id] {
		return &model.ModelUnavailableError{Model: id, Err: errors.New("model_not_found")}
	}
	return nil
}

func (p *scriptedProvider) ListModels(context.Context) ([]string, error) {
	return []string{"model-a", "model-b"}, nil
}

func (p *scriptedProvider) Close() error {
	p.closed = true
	return nil
}

type countingRecorder struct {
	mu      sync.Mutex
	records []model.UsageRecord
}

func (r *countingRecorder) Record(_ context.Context, rec model.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(factory ProviderFactory, recorder model.UsageRecorder) http.Handler {
	logger := discardLogger()
	cfg := Config{Models: []string{"model-a", "model-b"}, Timeout: time.Second, User: "public_user"}
	return NewServer(factory, recorder, notifier.NewLogNotifier(logger), cfg, logger).Handler()
}

func providerFactory(p ai.Provider) ProviderFactory {
	return func(context.Context, string) (ai.Provider, error) { return p, nil }
}

func validForm() url.Values {
	return url.Values{
		"api_key":          {"sk-test"},
		"pain_point":       {"finding the right software"},
		"customer_profile": {"small business owners"},
	}
}

func postInterview(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/interview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestHandleForm(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{}), store.NewNopStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="api_key"`)
	assert.Contains(t, body, `type="password"`)
	assert.Contains(t, body, `name="pain_point"`)
	assert.Contains(t, body, `name="customer_profile"`)
	assert.Contains(t, body, `name="prior_learnings"`)
	assert.Contains(t, body, `name="show_models"`)
}

func TestHandleForm_UnknownPath(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{}), store.NewNopStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{}), store.NewNopStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHandleInterview_Success(t *testing.T) {
	p := &scriptedProvider{}
	recorder := &countingRecorder{}
	h := newTestServer(providerFactory(p), recorder)

	rec := postInterview(t, h, validForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Generated Interview Questions")
	assert.Contains(t, body, "Simulated Interview")
	assert.Contains(t, body, "Interview Analysis")
	assert.NotContains(t, body, "Integrated Learnings")
	assert.Contains(t, body, "stage output from model-a")
	assert.NotContains(t, body, "sk-test", "the API key must not be echoed back")
	assert.Equal(t, 3, p.calls)
	assert.True(t, p.closed)
	assert.Len(t, recorder.records, 1)
}

func TestHandleInterview_WithLearningsRunsMerge(t *testing.T) {
	p := &scriptedProvider{}
	h := newTestServer(providerFactory(p), store.NewNopStore())

	form := validForm()
	form.Set("prior_learnings", "vendors are hard to compare")
	rec := postInterview(t, h, form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Integrated Learnings")
	assert.Equal(t, 4, p.calls)
}

func TestHandleInterview_EscapesModelOutput(t *testing.T) {
	h := newTestServer(func(context.Context, string) (ai.Provider, error) {
		return ai.NewEchoProvider(), nil
	}, store.NewNopStore())

	form := validForm()
	form.Set("pain_point", "<script>alert(1)</script>")
	rec := postInterview(t, h, form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestHandleInterview_ShowModels(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{}), store.NewNopStore())

	form := validForm()
	form.Set("show_models", "1")
	rec := postInterview(t, h, form)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Available Models")
	assert.Contains(t, body, "<li>model-b</li>")
}

func TestHandleInterview_ShowModelsKeptWhenNoModelAvailable(t *testing.T) {
	p := &scriptedProvider{unavailable: map[string]bool{"model-a": true, "model-b": true}}
	h := newTestServer(providerFactory(p), store.NewNopStore())

	form := validForm()
	form.Set("show_models", "1")
	rec := postInterview(t, h, form)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No available models found.")
	assert.Contains(t, body, "Available Models")
	assert.Contains(t, body, "<li>model-a</li>")
	assert.Contains(t, body, "<li>model-b</li>")
	assert.Contains(t, body, ">finding the right software</textarea>", "form values must survive")
	assert.Zero(t, p.calls, "no stage may run")
}

func TestHandleInterview_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		factory  ProviderFactory
		form     func() url.Values
		want     int
		contains string
	}{
		{
			name:    "missing pain point",
			factory: providerFactory(&scriptedProvider{}),
			form: func() url.Values {
				f := validForm()
				f.Del("pain_point")
				return f
			},
			want:     http.StatusBadRequest,
			contains: "Please fill in the pain point to continue.",
		},
		{
			name:    "blank profile",
			factory: providerFactory(&scriptedProvider{}),
			form: func() url.Values {
				f := validForm()
				f.Set("customer_profile", "   ")
				return f
			},
			want:     http.StatusBadRequest,
			contains: "customer profile",
		},
		{
			name: "missing API key",
			factory: func(ctx context.Context, key string) (ai.Provider, error) {
				return ai.NewProvider(ctx, ai.Options{Type: ai.TypeOpenAI}, key, http.DefaultClient)
			},
			form: func() url.Values {
				f := validForm()
				f.Del("api_key")
				return f
			},
			want:     http.StatusUnauthorized,
			contains: "Please check your API key.",
		},
		{
			name:     "no available model",
			factory:  providerFactory(&scriptedProvider{unavailable: map[string]bool{"model-a": true, "model-b": true}}),
			form:     validForm,
			want:     http.StatusServiceUnavailable,
			contains: "No available models found.",
		},
		{
			name:     "stage failure",
			factory:  providerFactory(&scriptedProvider{failAt: 2}),
			form:     validForm,
			want:     http.StatusBadGateway,
			contains: "upstream reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(tt.factory, store.NewNopStore())
			rec := postInterview(t, h, tt.form())

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestHandleInterview_StageFailureKeepsPartialResults(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{failAt: 3}), store.NewNopStore())

	rec := postInterview(t, h, validForm())

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Generated Interview Questions")
	assert.Contains(t, body, "Simulated Interview")
	assert.Contains(t, body, "Interview Analysis failed: transport error: upstream reset")
}

func TestHandleInterview_InputErrorSkipsProvider(t *testing.T) {
	called := false
	h := newTestServer(func(context.Context, string) (ai.Provider, error) {
		called = true
		return &scriptedProvider{}, nil
	}, store.NewNopStore())

	rec := postInterview(t, h, url.Values{"api_key": {"k"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in the pain point and customer profile to continue.")
	assert.False(t, called)
}

func TestHandleInterview_KeepsFormValuesOnError(t *testing.T) {
	h := newTestServer(providerFactory(&scriptedProvider{}), store.NewNopStore())

	form := validForm()
	form.Del("customer_profile")
	rec := postInterview(t, h, form)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "finding the right software")
}
