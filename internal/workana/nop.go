package workana

import (
	"context"
	"errors"
)

// ErrDisabled is returned by NopSubmitter so an approve action surfaces a
// clear failure instead of silently marking the job sent.
var ErrDisabled = errors.New("proposal submission is disabled (workana.state_file not set)")

// NopSubmitter stands in when no login session is configured.
type NopSubmitter struct{}

// NewNopSubmitter returns the disabled submitter.
func NewNopSubmitter() *NopSubmitter {
	return &NopSubmitter{}
}

// Submit always fails with ErrDisabled.
func (*NopSubmitter) Submit(_ context.Context, _, _ string) error {
	return ErrDisabled
}
