// Package ingest is the entry point into the core: it records newly scraped
// listings and feeds the dispatch queue.
package ingest

import (
	"errors"
	"log/slog"

	"github.com/constadinisio/huntly/internal/htmltext"
	"github.com/constadinisio/huntly/internal/jobid"
	"github.com/constadinisio/huntly/internal/model"
)

// Enqueuer is the non-blocking handoff into the dispatch queue.
type Enqueuer interface {
	Enqueue(job model.Job)
}

// Ingestor validates, deduplicates and persists scraped listings. It never
// fails the caller: store errors are logged and the listing is treated as
// attempted-but-unpersisted.
type Ingestor struct {
	store         model.JobStore
	queue         Enqueuer
	promptEnabled bool // interactive channel on/off, from config
	logger        *slog.Logger
}

// NewIngestor creates an ingestor. When promptEnabled is false listings are
// still recorded but no interactive prompt is ever enqueued.
func NewIngestor(store model.JobStore, queue Enqueuer, promptEnabled bool, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		store:         store,
		queue:         queue,
		promptEnabled: promptEnabled,
		logger:        logger,
	}
}

// HandleNewJob processes one scraped listing and reports whether it was new.
// Safe to call at high frequency from the scrape goroutine; the enqueue
// handoff never blocks on the dispatch consumer.
func (i *Ingestor) HandleNewJob(raw model.RawJob) bool {
	canonical, id, err := jobid.FromURL(raw.URL)
	if err != nil {
		if errors.Is(err, model.ErrInvalidURL) {
			i.logger.Debug("skipping listing with invalid url", "url", raw.URL, "title", raw.Title)
		} else {
			i.logger.Warn("skipping listing", "url", raw.URL, "error", err)
		}
		return false
	}

	job := model.Job{
		ID:          id,
		URL:         canonical,
		Title:       htmltext.Strip(raw.Title),
		Description: htmltext.Strip(raw.Description),
		Budget:      htmltext.Strip(raw.Budget),
		PostedAt:    htmltext.Strip(raw.PostedAt),
		Status:      model.StatusPendingInterest,
	}

	created, err := i.store.Upsert(job)
	if err != nil {
		// Degraded at-most-once mode: keep scraping, do not notify a job
		// that was never recorded.
		i.logger.Error("failed to persist listing", "job_id", id, "error", err)
		return false
	}
	if !created {
		i.logger.Debug("listing already tracked", "job_id", id)
		return false
	}

	i.logger.Info("new job tracked", "job_id", id, "title", job.Title)
	if i.promptEnabled {
		i.queue.Enqueue(job)
	}
	return true
}
