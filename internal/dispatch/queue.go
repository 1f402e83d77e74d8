// Package dispatch serializes outbound interactive prompts: many producers,
// one consumer, FIFO, non-blocking enqueue.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/constadinisio/huntly/internal/model"
)

// Backoff is the retry policy for a single delivery.
type Backoff struct {
	MaxAttempts int           // total attempts per entry
	BaseDelay   time.Duration // wait after attempt n is n * BaseDelay
}

// DefaultBackoff retries a delivery three times, waiting 1s then 2s.
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 3, BaseDelay: time.Second}
}

// Delay returns how long to wait after the given failed attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * b.BaseDelay
}

// Queue owns the outbound prompt pipeline. Enqueue never blocks and is safe
// from any goroutine; a single Run loop delivers entries strictly in arrival
// order, so at most one request is ever in flight against the channel.
type Queue struct {
	messenger model.Messenger
	backoff   Backoff
	logger    *slog.Logger

	mu      sync.Mutex
	entries []model.Job
	wake    chan struct{}
}

// NewQueue creates a dispatch queue delivering through messenger.
func NewQueue(messenger model.Messenger, backoff Backoff, logger *slog.Logger) *Queue {
	if backoff.MaxAttempts < 1 {
		backoff = DefaultBackoff()
	}
	return &Queue{
		messenger: messenger,
		backoff:   backoff,
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}
}

// Enqueue appends a job snapshot for delivery. It never blocks and never
// fails; the queue is bounded only by memory.
func (q *Queue) Enqueue(job model.Job) {
	q.mu.Lock()
	q.entries = append(q.entries, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of entries waiting for delivery.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Run is the single consumer loop. It delivers one entry at a time until ctx
// is cancelled, then returns nil. Entries still queued at shutdown are
// dropped; the jobs themselves remain in the store.
func (q *Queue) Run(ctx context.Context) error {
	for {
		job, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				q.logger.Info("shutting down dispatch queue", "pending", q.Len())
				return nil
			case <-q.wake:
			}
			continue
		}

		if ctx.Err() != nil {
			q.logger.Info("shutting down dispatch queue", "pending", q.Len()+1)
			return nil
		}
		q.deliver(ctx, job)
	}
}

func (q *Queue) pop() (model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return model.Job{}, false
	}
	job := q.entries[0]
	q.entries = q.entries[1:]
	return job, true
}

// deliver attempts one entry up to MaxAttempts times. Channel errors never
// leave this method: exhaustion is logged and the entry is dropped.
func (q *Queue) deliver(ctx context.Context, job model.Job) {
	for attempt := 1; attempt <= q.backoff.MaxAttempts; attempt++ {
		err := q.messenger.SendJobPrompt(ctx, job)
		if err == nil {
			q.logger.Debug("prompt delivered", "job_id", job.ID, "attempt", attempt)
			return
		}

		if attempt == q.backoff.MaxAttempts {
			q.logger.Error("prompt delivery exhausted, dropping entry",
				"job_id", job.ID,
				"attempts", attempt,
				"error", err,
			)
			return
		}

		delay := q.backoff.Delay(attempt)
		q.logger.Warn("prompt delivery failed, retrying",
			"job_id", job.ID,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			q.logger.Warn("prompt delivery abandoned at shutdown", "job_id", job.ID)
			return
		case <-time.After(delay):
		}
	}
}
