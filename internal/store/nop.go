package store

import (
	"context"

	"github.com/amishk599/interviewsim/internal/model"
)

// NopStore is used when usage logging is disabled or in dry-run mode.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Record(_ context.Context, _ model.UsageRecord) error { return nil }
func (s *NopStore) Recent(_ context.Context, _ int) ([]model.UsageRecord, error) {
	return nil, nil
}
func (s *NopStore) Close() error { return nil }
