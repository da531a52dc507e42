package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/interviewsim/internal/model"
)

// Provider is a hosted text-generation backend. One Provider holds exactly
// one credential; build a new one per run.
type Provider interface {
	model.Invoker
	model.ModelValidator
	// ListModels returns the model identifiers visible to the credential.
	ListModels(ctx context.Context) ([]string, error)
	Close() error
}

// Provider types accepted by NewProvider.
const (
	TypeOpenAI = "openai"
	TypeGemini = "gemini"
	TypeEcho   = "echo"
)

// Params are the generation settings shared by every invocation.
type Params struct {
	Temperature float64
	MaxTokens   int // 0 = provider default
}

// Options selects and configures a provider.
type Options struct {
	Type    string // "openai" (any OpenAI-compatible endpoint), "gemini" or "echo"
	BaseURL string // OpenAI-compatible endpoints only
	Params  Params
}

// NewProvider builds the provider named by opts.Type bound to apiKey.
// An empty apiKey is an *model.AuthError for every remote provider.
func NewProvider(ctx context.Context, opts Options, apiKey string, httpClient *http.Client) (Provider, error) {
	switch opts.Type {
	case TypeEcho:
		return NewEchoProvider(), nil
	case TypeGemini:
		return NewGeminiProvider(ctx, apiKey, opts.Params)
	case TypeOpenAI, "":
		if apiKey == "" {
			return nil, &model.AuthError{}
		}
		return NewOpenAIProvider(opts.BaseURL, apiKey, opts.Params, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", opts.Type)
	}
}
