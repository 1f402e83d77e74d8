package review

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/store"
)

type fakeGenerator struct {
	calls    int
	proposal string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, job model.Job) (string, error) {
	g.calls++
	return g.proposal, g.err
}

type fakeSubmitter struct {
	calls int
	err   error
}

func (s *fakeSubmitter) Submit(ctx context.Context, jobURL, proposal string) error {
	s.calls++
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newFixture(t *testing.T) (*store.SQLiteStore, *fakeGenerator, *fakeSubmitter, *Handler) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	gen := &fakeGenerator{proposal: "Hola, puedo ayudarte con este proyecto."}
	sub := &fakeSubmitter{}
	h := NewHandler(s, gen, sub, testLogger())
	return s, gen, sub, h
}

func seed(t *testing.T, s *store.SQLiteStore, job model.Job) {
	t.Helper()
	if job.Status == "" {
		job.Status = model.StatusPendingInterest
	}
	if _, err := s.Upsert(job); err != nil {
		t.Fatalf("seeding job: %v", err)
	}
}

func TestUnknownJobRejected(t *testing.T) {
	_, gen, sub, h := newFixture(t)

	_, err := h.Handle(context.Background(), ActionInterest, "nope")
	if !errors.Is(err, model.ErrJobNotFound) {
		t.Fatalf("Handle = %v, want ErrJobNotFound", err)
	}
	if gen.calls != 0 || sub.calls != 0 {
		t.Error("collaborators invoked for unknown job")
	}
}

func TestIgnoreFromAnyState(t *testing.T) {
	s, _, _, h := newFixture(t)
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T"})

	res, err := h.Handle(context.Background(), ActionIgnore, "j1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Kind != ResultIgnored {
		t.Errorf("kind = %q, want %q", res.Kind, ResultIgnored)
	}

	job, _ := s.Get("j1")
	if job.Status != model.StatusIgnored {
		t.Errorf("status = %q, want ignored", job.Status)
	}
}

func TestInterestDraftsProposalOnce(t *testing.T) {
	s, gen, _, h := newFixture(t)
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T"})

	res, err := h.Handle(context.Background(), ActionInterest, "j1")
	if err != nil {
		t.Fatalf("first interest: %v", err)
	}
	if res.Kind != ResultProposalReady {
		t.Fatalf("kind = %q, want proposal_ready", res.Kind)
	}
	if res.Job.Status != model.StatusPendingSend || res.Job.Proposal == "" {
		t.Errorf("job after interest = %+v, want pending_send with proposal", res.Job)
	}

	// A second interest re-renders without another draft call.
	res, err = h.Handle(context.Background(), ActionInterest, "j1")
	if err != nil {
		t.Fatalf("second interest: %v", err)
	}
	if res.Kind != ResultProposalReady {
		t.Errorf("kind = %q, want proposal_ready", res.Kind)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestGenerateFailureRevertsStatus(t *testing.T) {
	s, gen, _, h := newFixture(t)
	gen.err = errors.New("llm down")
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T"})

	var sawGenerating bool
	h.OnGenerating = func(job model.Job) { sawGenerating = true }

	res, err := h.Handle(context.Background(), ActionInterest, "j1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Kind != ResultGenerateFailed {
		t.Fatalf("kind = %q, want generate_failed", res.Kind)
	}
	if res.Err == nil {
		t.Error("expected Err to carry the draft failure")
	}
	if !sawGenerating {
		t.Error("OnGenerating hook not invoked")
	}

	// Never stranded in generating; interest can retry.
	job, _ := s.Get("j1")
	if job.Status != model.StatusPendingInterest {
		t.Errorf("status = %q, want pending_interest", job.Status)
	}
	if job.Proposal != "" {
		t.Errorf("proposal = %q, want empty", job.Proposal)
	}
}

func TestApproveWithoutProposalRejected(t *testing.T) {
	s, _, sub, h := newFixture(t)
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T", Status: model.StatusPendingSend})

	_, err := h.Handle(context.Background(), ActionApprove, "j1")
	if !errors.Is(err, model.ErrNoProposal) {
		t.Fatalf("Handle = %v, want ErrNoProposal", err)
	}
	if sub.calls != 0 {
		t.Error("submitter invoked despite empty proposal")
	}

	job, _ := s.Get("j1")
	if job.Status != model.StatusPendingSend {
		t.Errorf("status mutated to %q on rejected approve", job.Status)
	}
}

func TestApproveSubmitsAndMarksSent(t *testing.T) {
	s, _, sub, h := newFixture(t)
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T"})
	if err := s.SetProposal("j1", "draft text", model.StatusPendingSend); err != nil {
		t.Fatalf("SetProposal: %v", err)
	}

	res, err := h.Handle(context.Background(), ActionApprove, "j1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Kind != ResultSubmitted {
		t.Fatalf("kind = %q, want submitted", res.Kind)
	}
	if sub.calls != 1 {
		t.Errorf("submitter called %d times, want 1", sub.calls)
	}

	job, _ := s.Get("j1")
	if job.Status != model.StatusSent {
		t.Errorf("status = %q, want sent", job.Status)
	}
}

func TestSubmittingHookFiresOnlyAfterValidation(t *testing.T) {
	s, _, sub, h := newFixture(t)
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T", Status: model.StatusPendingSend})

	var announced int
	h.OnSubmitting = func(job model.Job) {
		announced++
		if sub.calls != 0 {
			t.Error("OnSubmitting fired after the submission call")
		}
	}

	// Approve without a proposal: rejected before any announcement.
	if _, err := h.Handle(context.Background(), ActionApprove, "j1"); !errors.Is(err, model.ErrNoProposal) {
		t.Fatalf("Handle = %v, want ErrNoProposal", err)
	}
	if announced != 0 {
		t.Errorf("OnSubmitting fired %d times on a rejected approve, want 0", announced)
	}

	if err := s.SetProposal("j1", "draft text", model.StatusPendingSend); err != nil {
		t.Fatalf("SetProposal: %v", err)
	}
	if _, err := h.Handle(context.Background(), ActionApprove, "j1"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if announced != 1 {
		t.Errorf("OnSubmitting fired %d times on a valid approve, want 1", announced)
	}
}

func TestApproveFailureSetsErrorWithoutAutoRetry(t *testing.T) {
	s, _, sub, h := newFixture(t)
	sub.err = errors.New("submit click ambiguous")
	seed(t, s, model.Job{ID: "j1", URL: "https://x.test/job/1", Title: "T"})
	if err := s.SetProposal("j1", "draft text", model.StatusPendingSend); err != nil {
		t.Fatalf("SetProposal: %v", err)
	}

	res, err := h.Handle(context.Background(), ActionApprove, "j1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Kind != ResultSubmitFailed {
		t.Fatalf("kind = %q, want submit_failed", res.Kind)
	}
	if sub.calls != 1 {
		t.Errorf("submitter called %d times, want exactly 1 (no automatic retry)", sub.calls)
	}

	job, _ := s.Get("j1")
	if job.Status != model.StatusError {
		t.Errorf("status = %q, want error", job.Status)
	}

	// A fresh operator approve retries the submission.
	sub.err = nil
	res, err = h.Handle(context.Background(), ActionApprove, "j1")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if res.Kind != ResultSubmitted || sub.calls != 2 {
		t.Errorf("second approve: kind=%q calls=%d, want submitted/2", res.Kind, sub.calls)
	}
}
