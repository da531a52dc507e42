package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/interviewsim/internal/model"
)

// SelectModel walks prefs in order and returns the first identifier that v
// accepts. An AuthError ends the walk at once since no other candidate can
// succeed with the same credential. When every candidate fails, the result
// wraps model.ErrNoAvailableModel together with each candidate's error.
func SelectModel(ctx context.Context, v model.ModelValidator, prefs []string, logger *slog.Logger) (string, error) {
	if len(prefs) == 0 {
		return "", fmt.Errorf("%w: no model identifiers configured", model.ErrNoAvailableModel)
	}

	errs := []error{model.ErrNoAvailableModel}
	for _, id := range prefs {
		err := v.ValidateModel(ctx, id)
		if err == nil {
			logger.Info("model selected", "model", id)
			return id, nil
		}

		var authErr *model.AuthError
		if errors.As(err, &authErr) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("select model: %w", ctx.Err())
		}

		logger.Debug("model not available", "model", id, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", id, err))
	}

	return "", errors.Join(errs...)
}
