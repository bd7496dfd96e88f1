package storage

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemStorage keeps runs in memory.
type MemStorage struct {
	sync.Mutex

	seq  int
	runs map[string][]*Run
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		runs: make(map[string][]*Run),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Record(ctx context.Context, r *Run) error {
	s.Lock()
	defer s.Unlock()

	s.seq++
	r.Id = strconv.Itoa(s.seq)
	c := *r
	s.runs[r.Automaton] = append(s.runs[r.Automaton], &c)
	return nil
}

func (s *MemStorage) Runs(ctx context.Context, automaton string, limit int) ([]*Run, error) {
	s.Lock()
	defer s.Unlock()

	runs := s.runs[automaton]
	if 0 < limit && limit < len(runs) {
		runs = runs[len(runs)-limit:]
	}
	acc := make([]*Run, len(runs))
	for i, r := range runs {
		c := *r
		acc[i] = &c
	}
	return acc, nil
}

func (s *MemStorage) Prune(ctx context.Context, before time.Time) (int, error) {
	s.Lock()
	defer s.Unlock()

	n := 0
	for name, runs := range s.runs {
		keep := runs[:0]
		for _, r := range runs {
			if r.At.Before(before) {
				n++
				continue
			}
			keep = append(keep, r)
		}
		if len(keep) == 0 {
			delete(s.runs, name)
		} else {
			s.runs[name] = keep
		}
	}
	return n, nil
}
