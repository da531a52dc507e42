package ai

import (
	"context"
	"fmt"

	"github.com/amishk599/interviewsim/internal/model"
)

// EchoModel is the only model identifier EchoProvider lists.
const EchoModel = "echo"

// EchoProvider is an offline provider used for dry runs. It makes no network
// calls and answers every instruction with a deterministic stand-in text.
type EchoProvider struct{}

// NewEchoProvider returns an EchoProvider.
func NewEchoProvider() *EchoProvider {
	return &EchoProvider{}
}

// Invoke returns a response that quotes the user instruction.
func (e *EchoProvider) Invoke(_ context.Context, instr model.Instructions, modelID string) (string, error) {
	return fmt.Sprintf("[%s response]\n%s", modelID, instr.User), nil
}

// ValidateModel accepts every identifier.
func (e *EchoProvider) ValidateModel(_ context.Context, _ string) error { return nil }

// ListModels returns EchoModel.
func (e *EchoProvider) ListModels(_ context.Context) ([]string, error) {
	return []string{EchoModel}, nil
}

func (e *EchoProvider) Close() error { return nil }
