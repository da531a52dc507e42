// Package store persists the append-only usage log.
package store

import (
	"context"
	"fmt"

	"github.com/amishk599/interviewsim/internal/model"
)

// UsageLog is a usage recorder that can also list what it recorded.
type UsageLog interface {
	model.UsageRecorder
	Recent(ctx context.Context, limit int) ([]model.UsageRecord, error)
	Close() error
}

// Open returns the usage log for backend ("sqlite", "postgres" or "none").
func Open(ctx context.Context, backend, path, databaseURL string) (UsageLog, error) {
	switch backend {
	case "sqlite":
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(ctx, databaseURL)
	case "none":
		return NewNopStore(), nil
	default:
		return nil, fmt.Errorf("unknown usage backend %q", backend)
	}
}
