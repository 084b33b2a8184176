package recorder

import (
	"context"

	"CandleSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *model.RunRecord) error { return nil }
func (n *NoopRecorder) LatestRun(_ context.Context, _ string) (*model.RunRecord, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) Close() error { return nil }
