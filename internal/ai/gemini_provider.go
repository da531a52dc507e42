package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amishk599/interviewsim/internal/model"
)

// GeminiProvider calls Google's Generative Language API through the genai SDK.
type GeminiProvider struct {
	client *genai.Client
	params Params
}

// NewGeminiProvider creates a Gemini client bound to apiKey.
func NewGeminiProvider(ctx context.Context, apiKey string, params Params) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &model.AuthError{}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, params: params}, nil
}

// Invoke sets instr.System as the model's system instruction and sends
// instr.User as the single user turn.
func (g *GeminiProvider) Invoke(ctx context.Context, instr model.Instructions, modelID string) (string, error) {
	m := g.client.GenerativeModel(modelID)
	m.SetTemperature(float32(g.params.Temperature))
	if g.params.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(g.params.MaxTokens))
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instr.System)}}

	resp, err := m.GenerateContent(ctx, genai.Text(instr.User))
	if err != nil {
		return "", classifyGemini(ctx, modelID, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", &model.TransportError{Err: err}
	}
	return text, nil
}

// ValidateModel fetches the model's metadata.
func (g *GeminiProvider) ValidateModel(ctx context.Context, modelID string) error {
	if _, err := g.client.GenerativeModel(modelID).Info(ctx); err != nil {
		return classifyGemini(ctx, modelID, err)
	}
	return nil
}

// ListModels returns the sorted model identifiers without the "models/" prefix.
func (g *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	it := g.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyGemini(ctx, "", err)
		}
		ids = append(ids, strings.TrimPrefix(info.Name, "models/"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases the underlying client.
func (g *GeminiProvider) Close() error {
	return g.client.Close()
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var sb strings.Builder
	found := false
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
			found = true
		}
	}
	if !found {
		return "", errors.New("no text parts in response")
	}
	return sb.String(), nil
}

// classifyGemini maps SDK errors onto the model error taxonomy. REST errors
// surface as *googleapi.Error, gRPC errors carry a status code.
func classifyGemini(ctx context.Context, modelID string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return classifyGeminiCode(modelID, httpToGRPC(gErr.Code), gErr.Message, err)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return classifyGeminiCode(modelID, st.Code(), st.Message(), err)
	}
	return classifyTransport(ctx, err)
}

func classifyGeminiCode(modelID string, code codes.Code, msg string, err error) error {
	switch {
	case code == codes.Unauthenticated,
		code == codes.InvalidArgument && strings.Contains(strings.ToLower(msg), "api key"):
		return &model.AuthError{Err: err}
	case code == codes.NotFound, code == codes.PermissionDenied:
		return &model.ModelUnavailableError{Model: modelID, Err: err}
	case code == codes.DeadlineExceeded:
		return &model.TransportError{Timeout: true, Err: err}
	default:
		return &model.TransportError{Err: err}
	}
}

func httpToGRPC(statusCode int) codes.Code {
	switch statusCode {
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Unavailable
	}
}
