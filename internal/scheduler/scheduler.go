// Package scheduler owns the scrape loop: tick, fetch the feed, filter, and
// hand fresh listings to the ingestor.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/constadinisio/huntly/internal/model"
)

// Ingestor is the piece of the core the scheduler feeds listings into.
type Ingestor interface {
	HandleNewJob(raw model.RawJob) bool
}

// Scheduler runs one immediate scrape cycle and then ticks on the configured
// interval until its context is cancelled.
type Scheduler struct {
	fetcher  model.FeedFetcher
	filter   model.RawJobFilter
	ingestor Ingestor
	notifier model.Notifier
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler wires the scrape loop with all its dependencies.
func NewScheduler(
	fetcher model.FeedFetcher,
	filter model.RawJobFilter,
	ingestor Ingestor,
	notifier model.Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		filter:   filter,
		ingestor: ingestor,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the scrape loop. It returns nil when ctx is cancelled
// (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	// One immediate cycle before the first tick.
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

// cycle runs one fetch→filter→ingest pass. A failed fetch is logged and the
// loop waits for the next tick; one bad cycle never kills the daemon.
func (s *Scheduler) cycle(ctx context.Context) {
	listings, err := s.fetcher.FetchJobs(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scrape cycle failed", "error", err)
		return
	}

	matched := 0
	created := 0
	for _, raw := range listings {
		if ctx.Err() != nil {
			return
		}
		if !s.filter.Match(raw) {
			continue
		}
		matched++
		if s.ingestor.HandleNewJob(raw) {
			created++
		}
	}

	s.logger.Info("scrape cycle done",
		"fetched", len(listings),
		"matched", matched,
		"new", created,
	)

	if created > 0 && s.notifier != nil {
		body := fmt.Sprintf("Se encontraron %d trabajos nuevos en el último ciclo.", created)
		if err := s.notifier.Notify("Huntly: trabajos nuevos", body); err != nil {
			s.logger.Warn("summary notice failed", "error", err)
		}
	}
}
