package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amishk599/interviewsim/internal/model"
)

func TestClassifyGemini(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantAuth    bool
		wantUnavail bool
		wantTimeout bool
	}{
		{
			name:     "rest unauthorized",
			err:      &googleapi.Error{Code: http.StatusUnauthorized, Message: "request is missing credentials"},
			wantAuth: true,
		},
		{
			name:        "rest forbidden",
			err:         &googleapi.Error{Code: http.StatusForbidden, Message: "permission denied on model"},
			wantUnavail: true,
		},
		{
			name:        "rest not found",
			err:         &googleapi.Error{Code: http.StatusNotFound, Message: "models/gemini-0 is not found"},
			wantUnavail: true,
		},
		{
			name:     "rest bad api key",
			err:      &googleapi.Error{Code: http.StatusBadRequest, Message: "API key not valid. Please pass a valid API key."},
			wantAuth: true,
		},
		{
			name: "rest bad request",
			err:  &googleapi.Error{Code: http.StatusBadRequest, Message: "invalid temperature"},
		},
		{
			name: "rest server error",
			err:  &googleapi.Error{Code: http.StatusInternalServerError, Message: "internal"},
		},
		{
			name:        "rest gateway timeout",
			err:         &googleapi.Error{Code: http.StatusGatewayTimeout, Message: "deadline"},
			wantTimeout: true,
		},
		{
			name:        "grpc not found",
			err:         status.Error(codes.NotFound, "model not found"),
			wantUnavail: true,
		},
		{
			name:     "grpc unauthenticated",
			err:      status.Error(codes.Unauthenticated, "bad credentials"),
			wantAuth: true,
		},
		{
			name:        "grpc deadline",
			err:         status.Error(codes.DeadlineExceeded, "too slow"),
			wantTimeout: true,
		},
		{
			name: "unknown error",
			err:  errors.New("connection reset by peer"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGemini(context.Background(), "gemini-test", tt.err)

			var (
				authErr      *model.AuthError
				unavail      *model.ModelUnavailableError
				transportErr *model.TransportError
			)
			switch {
			case tt.wantAuth:
				if !errors.As(err, &authErr) {
					t.Fatalf("err = %v, want *model.AuthError", err)
				}
			case tt.wantUnavail:
				if !errors.As(err, &unavail) {
					t.Fatalf("err = %v, want *model.ModelUnavailableError", err)
				}
				if unavail.Model != "gemini-test" {
					t.Errorf("Model = %q, want gemini-test", unavail.Model)
				}
			default:
				if !errors.As(err, &transportErr) {
					t.Fatalf("err = %v, want *model.TransportError", err)
				}
				if transportErr.Timeout != tt.wantTimeout {
					t.Errorf("Timeout = %v, want %v", transportErr.Timeout, tt.wantTimeout)
				}
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("classified error does not wrap the original: %v", err)
			}
		})
	}
}

func TestClassifyGemini_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	err := classifyGemini(ctx, "gemini-test", errors.New("stream closed"))
	var transportErr *model.TransportError
	if !errors.As(err, &transportErr) || !transportErr.Timeout {
		t.Errorf("err = %v, want timeout *model.TransportError", err)
	}
}

func TestHTTPToGRPC(t *testing.T) {
	tests := []struct {
		status int
		want   codes.Code
	}{
		{http.StatusUnauthorized, codes.Unauthenticated},
		{http.StatusForbidden, codes.PermissionDenied},
		{http.StatusNotFound, codes.NotFound},
		{http.StatusBadRequest, codes.InvalidArgument},
		{http.StatusGatewayTimeout, codes.DeadlineExceeded},
		{http.StatusRequestTimeout, codes.DeadlineExceeded},
		{http.StatusTooManyRequests, codes.Unavailable},
		{http.StatusInternalServerError, codes.Unavailable},
	}
	for _, tt := range tests {
		if got := httpToGRPC(tt.status); got != tt.want {
			t.Errorf("httpToGRPC(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil response", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{
			name:    "nil content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			wantErr: true,
		},
		{
			name: "no text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png", Data: []byte{0x89}}}},
			}}},
			wantErr: true,
		},
		{
			name: "multiple text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("Q1. Why? "), genai.Text("Q2. How?")}},
			}}},
			want: "Q1. Why? Q2. How?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText(tt.resp)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("extractText = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractText: %v", err)
			}
			if got != tt.want {
				t.Errorf("extractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGeminiProvider_MissingKey(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), "", Params{})
	var authErr *model.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *model.AuthError", err)
	}
	if p != nil {
		t.Error("provider should be nil when the key is missing")
	}
}
