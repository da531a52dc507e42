package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoAvailableModel is returned when every preferred model identifier was
// rejected during selection.
var ErrNoAvailableModel = errors.New("no available model")

// HTTPError wraps an HTTP status code so providers can classify failures.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ParseRetryAfter reads a Retry-After header given in seconds. It returns
// zero for an absent, malformed or non-positive value.
func ParseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// InputError reports required fields that were missing. The pipeline is
// never invoked when input validation fails.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("missing required input: %s", strings.Join(e.Fields, ", "))
}

// AuthError means the credential is absent or rejected by the provider.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "authentication failed: no API key provided"
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ModelUnavailableError means the model identifier cannot be served for this
// account (missing permission, retired model, unknown name).
type ModelUnavailableError struct {
	Model string
	Err   error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable: %v", e.Model, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// TransportError covers network failures, timeouts and provider-side errors.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Timeout    bool
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("transport error (timeout): %v", e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StageError marks the stage at which a run aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// UserMessage renders err as a single line suitable for end users, with a
// hint where the user can fix the problem.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	prefix := ""
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		prefix = stageErr.Stage.Title() + " failed: "
	}

	var (
		inputErr *InputError
		authErr  *AuthError
	)
	switch {
	case errors.As(err, &inputErr):
		return "Please fill in the " + strings.Join(inputErr.Fields, " and ") + " to continue."
	case errors.As(err, &authErr):
		return prefix + authErr.Error() + ". Please check your API key."
	case errors.Is(err, ErrNoAvailableModel):
		return "No available models found. Please check your API key and model access permissions."
	}
	if stageErr != nil {
		err = stageErr.Err
	}
	return prefix + rootMessage(err)
}

// rootMessage strips wrapping layers so the provider's own text is shown.
func rootMessage(err error) string {
	var (
		transportErr *TransportError
		unavailErr   *ModelUnavailableError
	)
	switch {
	case errors.As(err, &transportErr):
		var httpErr *HTTPError
		if errors.As(transportErr, &httpErr) && httpErr.RetryAfter > 0 {
			return fmt.Sprintf("%s (retry after %ds)", transportErr.Error(), int(httpErr.RetryAfter/time.Second))
		}
		return transportErr.Error()
	case errors.As(err, &unavailErr):
		return unavailErr.Error()
	}
	return err.Error()
}
