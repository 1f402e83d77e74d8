package model

import (
	"context"
	"time"
)

// Status is the review lifecycle state of a tracked job.
// Transitions happen only through the review package.
type Status string

const (
	StatusPendingInterest Status = "pending_interest" // discovered, awaiting operator interest
	StatusGenerating      Status = "generating"       // proposal draft in flight
	StatusPendingSend     Status = "pending_send"     // proposal ready, awaiting approval
	StatusSent            Status = "sent"             // submitted to the marketplace
	StatusIgnored         Status = "ignored"          // dismissed by the operator
	StatusError           Status = "error"            // submission failed, needs a fresh approve
)

// Terminal reports whether no further operator action can advance the status.
// StatusError is deliberately not terminal: the operator may approve again.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusIgnored
}

// Job is a single marketplace posting tracked through review.
type Job struct {
	ID          string // sha1 of the canonical URL, truncated to 12 hex chars
	URL         string // canonical URL (query string stripped)
	Title       string
	Description string
	Budget      string // source-supplied free text
	PostedAt    string // source-supplied free text, e.g. "Hace 3 horas"
	Proposal    string // empty until drafted
	Status      Status
	CreatedAt   time.Time // set once, at first insertion
}

// RawJob is one scraped listing before validation and ingestion.
// Text fields may still contain HTML fragments from the source.
type RawJob struct {
	Title       string
	Description string
	Budget      string
	PostedAt    string
	URL         string
}

// FeedFetcher pulls the current marketplace listings.
type FeedFetcher interface {
	FetchJobs(ctx context.Context) ([]RawJob, error)
}

// JobStore is the durable record of every tracked job.
type JobStore interface {
	// Upsert inserts the job if its ID is unknown and reports whether a new
	// row was created. An existing row is left untouched, including status
	// and proposal.
	Upsert(job Job) (created bool, err error)
	Get(id string) (Job, error)
	SetStatus(id string, status Status) error
	SetProposal(id, proposal string, status Status) error
}

// RawJobFilter decides whether a scraped listing is worth ingesting.
type RawJobFilter interface {
	Match(raw RawJob) bool
}

// ProposalGenerator drafts proposal text for a job.
type ProposalGenerator interface {
	Generate(ctx context.Context, job Job) (string, error)
}

// ProposalSubmitter delivers a drafted proposal to the marketplace.
// Any error is fatal for the attempt; callers must not retry automatically,
// because the submission may have partially succeeded.
type ProposalSubmitter interface {
	Submit(ctx context.Context, jobURL, proposal string) error
}

// Messenger delivers the interactive review prompt for a newly tracked job.
// Used by the dispatch queue; failures there are retried per its policy.
type Messenger interface {
	SendJobPrompt(ctx context.Context, job Job) error
}

// Notifier sends best-effort plain notices (scrape-cycle summaries).
// A failed notice is logged by the implementation, never retried.
type Notifier interface {
	Notify(subject, body string) error
}
