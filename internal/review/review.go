// Package review owns the per-job lifecycle. All status transitions flow
// through Handler; no other component mutates job status.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/constadinisio/huntly/internal/model"
)

// Action is an operator signal from the interactive surface.
type Action string

const (
	ActionInterest Action = "interest" // draft (or re-show) the proposal
	ActionApprove  Action = "approve"  // submit the proposal to the marketplace
	ActionIgnore   Action = "ignore"   // dismiss the job
)

// ResultKind tells the interactive surface what the transition did.
type ResultKind string

const (
	ResultIgnored        ResultKind = "ignored"
	ResultProposalReady  ResultKind = "proposal_ready"  // drafted now or re-rendered
	ResultSubmitted      ResultKind = "submitted"
	ResultSubmitFailed   ResultKind = "submit_failed"   // status=error, fresh approve required
	ResultGenerateFailed ResultKind = "generate_failed" // reverted to pending_interest
)

// Result is the outcome of a completed transition. Collaborator failures that
// mutate state (submit, generate) arrive here, not as errors; Err carries the
// underlying cause for display.
type Result struct {
	Kind ResultKind
	Job  model.Job // snapshot after the transition
	Err  error     // cause for the failure kinds, nil otherwise
}

// Handler executes operator actions against the job store and the external
// collaborators. Transitions on the same job are serialized by a per-job
// mutex; validation failures return an error without touching state.
type Handler struct {
	store     model.JobStore
	generator model.ProposalGenerator
	submitter model.ProposalSubmitter
	logger    *slog.Logger

	// OnGenerating, when set, is called right before a draft is requested,
	// so the surface can show progress during the (slow) generation call.
	OnGenerating func(job model.Job)

	// OnSubmitting, when set, is called after the approve validation passes
	// and right before the submission call. A rejected approve never fires it.
	OnSubmitting func(job model.Job)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHandler creates a review handler wired with its collaborators.
func NewHandler(store model.JobStore, generator model.ProposalGenerator, submitter model.ProposalSubmitter, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		generator: generator,
		submitter: submitter,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// jobLock returns the mutex for a job id, creating it on first use. Entries
// are never removed; the feed cardinality keeps the map small.
func (h *Handler) jobLock(jobID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[jobID] = l
	}
	return l
}

// Handle runs one operator action to completion. Unknown job ids and
// approve-without-proposal are rejected with model sentinel errors and no
// state change.
func (h *Handler) Handle(ctx context.Context, action Action, jobID string) (Result, error) {
	l := h.jobLock(jobID)
	l.Lock()
	defer l.Unlock()

	job, err := h.store.Get(jobID)
	if err != nil {
		return Result{}, err
	}

	switch action {
	case ActionIgnore:
		return h.ignore(job)
	case ActionInterest:
		return h.interest(ctx, job)
	case ActionApprove:
		return h.approve(ctx, job)
	default:
		return Result{}, fmt.Errorf("unknown action %q for job %s", action, jobID)
	}
}

func (h *Handler) ignore(job model.Job) (Result, error) {
	if err := h.store.SetStatus(job.ID, model.StatusIgnored); err != nil {
		return Result{}, fmt.Errorf("ignoring job %s: %w", job.ID, err)
	}
	job.Status = model.StatusIgnored
	h.logger.Info("job ignored", "job_id", job.ID)
	return Result{Kind: ResultIgnored, Job: job}, nil
}

// interest drafts a proposal once. A job that already carries a proposal is
// re-rendered as-is: regeneration is suppressed so draft calls are not burned
// and a previously drafted proposal can be re-opened idempotently.
func (h *Handler) interest(ctx context.Context, job model.Job) (Result, error) {
	if strings.TrimSpace(job.Proposal) != "" {
		h.logger.Debug("proposal already drafted, re-rendering", "job_id", job.ID)
		return Result{Kind: ResultProposalReady, Job: job}, nil
	}

	if err := h.store.SetStatus(job.ID, model.StatusGenerating); err != nil {
		return Result{}, fmt.Errorf("marking job %s generating: %w", job.ID, err)
	}
	if h.OnGenerating != nil {
		h.OnGenerating(job)
	}

	proposal, genErr := h.generator.Generate(ctx, job)
	proposal = strings.TrimSpace(proposal)
	if genErr == nil && proposal == "" {
		genErr = fmt.Errorf("generator returned empty proposal")
	}
	if genErr != nil {
		// Never strand the job in generating; revert so interest can retry.
		if err := h.store.SetStatus(job.ID, model.StatusPendingInterest); err != nil {
			h.logger.Error("failed to revert status after draft failure", "job_id", job.ID, "error", err)
		}
		h.logger.Error("proposal draft failed", "job_id", job.ID, "error", genErr)
		job.Status = model.StatusPendingInterest
		return Result{Kind: ResultGenerateFailed, Job: job, Err: genErr}, nil
	}

	if err := h.store.SetProposal(job.ID, proposal, model.StatusPendingSend); err != nil {
		return Result{}, fmt.Errorf("storing proposal for job %s: %w", job.ID, err)
	}
	job.Proposal = proposal
	job.Status = model.StatusPendingSend
	h.logger.Info("proposal drafted", "job_id", job.ID, "chars", len(proposal))
	return Result{Kind: ResultProposalReady, Job: job}, nil
}

// approve submits the drafted proposal. A failure sets status=error and is
// never retried automatically: the submission may have partially succeeded,
// so only a fresh operator approve may try again.
func (h *Handler) approve(ctx context.Context, job model.Job) (Result, error) {
	if strings.TrimSpace(job.Proposal) == "" {
		return Result{}, fmt.Errorf("job %s: %w", job.ID, model.ErrNoProposal)
	}
	if h.OnSubmitting != nil {
		h.OnSubmitting(job)
	}

	if subErr := h.submitter.Submit(ctx, job.URL, job.Proposal); subErr != nil {
		if err := h.store.SetStatus(job.ID, model.StatusError); err != nil {
			h.logger.Error("failed to record submit failure", "job_id", job.ID, "error", err)
		}
		h.logger.Error("proposal submission failed", "job_id", job.ID, "error", subErr)
		job.Status = model.StatusError
		return Result{Kind: ResultSubmitFailed, Job: job, Err: subErr}, nil
	}

	if err := h.store.SetStatus(job.ID, model.StatusSent); err != nil {
		return Result{}, fmt.Errorf("marking job %s sent: %w", job.ID, err)
	}
	job.Status = model.StatusSent
	h.logger.Info("proposal submitted", "job_id", job.ID)
	return Result{Kind: ResultSubmitted, Job: job}, nil
}
