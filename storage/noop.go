package storage

import (
	"context"
	"time"
)

// NoopStorage forgets everything.
type NoopStorage struct {
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Record(ctx context.Context, r *Run) error {
	return nil
}

func (s *NoopStorage) Runs(ctx context.Context, automaton string, limit int) ([]*Run, error) {
	return nil, nil
}

func (s *NoopStorage) Prune(ctx context.Context, before time.Time) (int, error) {
	return 0, nil
}
