package ingest

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/store"
)

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []model.Job
}

func (q *fakeQueue) Enqueue(job model.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, job)
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

type failingStore struct{}

func (failingStore) Upsert(job model.Job) (bool, error) {
	return false, errors.New("disk full")
}

func (failingStore) Get(id string) (model.Job, error) {
	return model.Job{}, model.ErrJobNotFound
}

func (failingStore) SetStatus(id string, s model.Status) error      { return nil }
func (failingStore) SetProposal(id, p string, s model.Status) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestOnceNotifiesOnce(t *testing.T) {
	s := newSQLiteStore(t)
	q := &fakeQueue{}
	ing := NewIngestor(s, q, true, testLogger())

	raw := model.RawJob{URL: "https://x.test/job/42?ref=abc", Title: "T"}

	if !ing.HandleNewJob(raw) {
		t.Error("first ingestion should report new")
	}
	if ing.HandleNewJob(raw) {
		t.Error("second ingestion should report already tracked")
	}

	if q.count() != 1 {
		t.Errorf("enqueued %d prompts, want exactly 1", q.count())
	}

	jobs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("tracked %d jobs, want 1", len(jobs))
	}
	if jobs[0].URL != "https://x.test/job/42" {
		t.Errorf("stored URL = %q, want query stripped", jobs[0].URL)
	}
}

func TestReingestPreservesOperatorState(t *testing.T) {
	s := newSQLiteStore(t)
	q := &fakeQueue{}
	ing := NewIngestor(s, q, true, testLogger())

	raw := model.RawJob{URL: "https://x.test/job/7", Title: "T"}
	ing.HandleNewJob(raw)

	jobs, _ := s.List()
	id := jobs[0].ID
	if err := s.SetProposal(id, "draft", model.StatusPendingSend); err != nil {
		t.Fatalf("SetProposal: %v", err)
	}

	ing.HandleNewJob(raw)

	job, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != model.StatusPendingSend || job.Proposal != "draft" {
		t.Errorf("re-ingest reset state: %+v", job)
	}
	if q.count() != 1 {
		t.Errorf("enqueued %d prompts, want 1", q.count())
	}
}

func TestInvalidURLNotIngested(t *testing.T) {
	s := newSQLiteStore(t)
	q := &fakeQueue{}
	ing := NewIngestor(s, q, true, testLogger())

	for _, u := range []string{"", "N/A", "ftp://x.test/job/1"} {
		if ing.HandleNewJob(model.RawJob{URL: u, Title: "T"}) {
			t.Errorf("HandleNewJob(%q) reported new", u)
		}
	}

	jobs, _ := s.List()
	if len(jobs) != 0 || q.count() != 0 {
		t.Errorf("invalid URLs leaked: %d rows, %d prompts", len(jobs), q.count())
	}
}

func TestDisabledChannelStillRecords(t *testing.T) {
	s := newSQLiteStore(t)
	q := &fakeQueue{}
	ing := NewIngestor(s, q, false, testLogger())

	if !ing.HandleNewJob(model.RawJob{URL: "https://x.test/job/9", Title: "T"}) {
		t.Error("expected listing to be recorded")
	}

	jobs, _ := s.List()
	if len(jobs) != 1 {
		t.Errorf("tracked %d jobs, want 1", len(jobs))
	}
	if q.count() != 0 {
		t.Errorf("enqueued %d prompts with channel disabled, want 0", q.count())
	}
}

func TestNopStoreValidatesWithoutPersisting(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(store.NewNopStore(), q, false, testLogger())

	if !ing.HandleNewJob(model.RawJob{URL: "https://x.test/job/42?ref=abc", Title: "T"}) {
		t.Error("valid listing should report ingestible")
	}
	if ing.HandleNewJob(model.RawJob{URL: "N/A", Title: "T"}) {
		t.Error("invalid URL should be rejected before the store")
	}
	if q.count() != 0 {
		t.Errorf("enqueued %d prompts in dry-run wiring, want 0", q.count())
	}

	nop := store.NewNopStore()
	if _, err := nop.Get("deadbeef0000"); !errors.Is(err, model.ErrJobNotFound) {
		t.Errorf("Get after ingest = %v, want ErrJobNotFound (nothing persisted)", err)
	}
}

func TestStoreFailureDoesNotNotify(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(failingStore{}, q, true, testLogger())

	if ing.HandleNewJob(model.RawJob{URL: "https://x.test/job/1", Title: "T"}) {
		t.Error("expected store failure to report not ingested")
	}
	if q.count() != 0 {
		t.Error("prompt enqueued for an unpersisted job")
	}
}

func TestHTMLStrippedFromFields(t *testing.T) {
	s := newSQLiteStore(t)
	ing := NewIngestor(s, &fakeQueue{}, false, testLogger())

	ing.HandleNewJob(model.RawJob{
		URL:         "https://x.test/job/5",
		Title:       `<span title="Landing"><a href="/job/x">Landing page</a></span>`,
		Description: "necesito<br/>una landing",
	})

	jobs, _ := s.List()
	if len(jobs) != 1 {
		t.Fatalf("tracked %d jobs, want 1", len(jobs))
	}
	if jobs[0].Title != "Landing page" {
		t.Errorf("title = %q, want stripped", jobs[0].Title)
	}
	if jobs[0].Description != "necesito una landing" {
		t.Errorf("description = %q, want stripped", jobs[0].Description)
	}
}
