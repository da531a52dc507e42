package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/amishk599/interviewsim/internal/model"
)

// DefaultOpenAIBaseURL points at Groq's OpenAI-compatible API.
const DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	params     Params
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider targeting baseURL with apiKey as the
// bearer credential.
func NewOpenAIProvider(baseURL, apiKey string, params Params, httpClient *http.Client) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		params:     params,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the /chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the response. Usage and other
// metadata are ignored.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Invoke sends one system and one user message to modelID and returns the
// first choice's content unmodified.
func (p *OpenAIProvider) Invoke(ctx context.Context, instr model.Instructions, modelID string) (string, error) {
	reqBody := chatRequest{
		Model: modelID,
		Messages: []chatMessage{
			{Role: "system", Content: instr.System},
			{Role: "user", Content: instr.User},
		},
		Temperature: p.params.Temperature,
		MaxTokens:   p.params.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	respBytes, err := p.do(ctx, http.MethodPost, "/chat/completions", body, modelID)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", &model.TransportError{Err: fmt.Errorf("parse llm response: %w", err)}
	}

	if chatResp.Error != nil {
		return "", &model.TransportError{Err: fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)}
	}

	if len(chatResp.Choices) == 0 {
		return "", &model.TransportError{Err: errors.New("llm returned no choices")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ValidateModel asks the API whether modelID exists for this credential.
func (p *OpenAIProvider) ValidateModel(ctx context.Context, modelID string) error {
	_, err := p.do(ctx, http.MethodGet, "/models/"+escapeModelPath(modelID), nil, modelID)
	return err
}

// escapeModelPath escapes each segment of modelID so ids like
// "openai/gpt-oss-20b" keep their slashes but cannot inject a query.
func escapeModelPath(modelID string) string {
	parts := strings.Split(modelID, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// ListModels returns the sorted model identifiers the credential can see.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	respBytes, err := p.do(ctx, http.MethodGet, "/models", nil, "")
	if err != nil {
		return nil, err
	}

	var list modelList
	if err := json.Unmarshal(respBytes, &list); err != nil {
		return nil, &model.TransportError{Err: fmt.Errorf("parse model list: %w", err)}
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (p *OpenAIProvider) Close() error { return nil }

// do performs one request and maps every failure onto the model error
// taxonomy. modelID is only used to label ModelUnavailableError.
func (p *OpenAIProvider) do(ctx context.Context, method, path string, body []byte, modelID string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &model.AuthError{}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create llm request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, fmt.Errorf("read llm response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp, respBytes, modelID)
	}
	return respBytes, nil
}

// classifyStatus maps a non-200 response to AuthError, ModelUnavailableError
// or TransportError. The provider's message is kept verbatim.
func classifyStatus(resp *http.Response, respBytes []byte, modelID string) error {
	msg := string(respBytes)
	code := ""
	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err == nil && parsed.Error != nil {
		msg = parsed.Error.Message
		code = parsed.Error.Code
	}

	httpErr := &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        errors.New(msg),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || code == "invalid_api_key":
		return &model.AuthError{Err: httpErr}
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusForbidden,
		code == "model_not_found",
		code == "model_decommissioned":
		return &model.ModelUnavailableError{Model: modelID, Err: httpErr}
	default:
		return &model.TransportError{StatusCode: resp.StatusCode, Err: httpErr}
	}
}

func classifyTransport(ctx context.Context, err error) error {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	return &model.TransportError{Timeout: timeout, Err: err}
}
