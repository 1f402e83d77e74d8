package store

import (
	"fmt"

	"github.com/constadinisio/huntly/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Every job reports as newly
// created and nothing is persisted.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Upsert(job model.Job) (bool, error) { return true, nil }

func (s *NopStore) Get(id string) (model.Job, error) {
	return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrJobNotFound)
}

func (s *NopStore) SetStatus(id string, status model.Status) error { return nil }

func (s *NopStore) SetProposal(id, proposal string, status model.Status) error { return nil }
