package main

import (
	"context"
	"log"
	"time"

	"github.com/Comcast/automata/storage"

	"github.com/gorhill/cronexpr"
)

// Pruner removes old runs from Storage on a cron schedule.
type Pruner struct {
	// Keep is how long runs are kept.
	Keep time.Duration

	schedule *cronexpr.Expression
	store    storage.Storage
}

// NewPruner parses the cron expression (for example "0 * * * *" for
// every hour).
func NewPruner(cron string, keep time.Duration, store storage.Storage) (*Pruner, error) {
	x, err := cronexpr.Parse(cron)
	if err != nil {
		return nil, err
	}
	return &Pruner{
		Keep:     keep,
		schedule: x,
		store:    store,
	}, nil
}

// Next returns the next time that a prune will happen after the
// given time.  Zero time if never.
func (p *Pruner) Next(after time.Time) time.Time {
	return p.schedule.Next(after)
}

// Prune removes runs older than Keep (relative to now).
func (p *Pruner) Prune(ctx context.Context, now time.Time) (int, error) {
	n, err := p.store.Prune(ctx, now.Add(-p.Keep))
	if err != nil {
		return 0, err
	}
	log.Printf("Pruner removed %d runs", n)
	return n, nil
}

// Loop prunes on schedule until the context is done.
func (p *Pruner) Loop(ctx context.Context) error {
	for {
		now := time.Now()
		next := p.Next(now)
		if next.IsZero() {
			log.Printf("Pruner has no more scheduled times")
			return nil
		}
		t := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
			if _, err := p.Prune(ctx, time.Now()); err != nil {
				log.Printf("Pruner error %v", err)
			}
		}
	}
}
