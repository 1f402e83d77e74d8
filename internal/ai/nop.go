package ai

import (
	"context"
	"errors"

	"github.com/constadinisio/huntly/internal/model"
)

// ErrDisabled is returned by NopGenerator so an interest action surfaces a
// clear failure instead of an empty draft.
var ErrDisabled = errors.New("proposal generation is disabled (ai.enabled: false)")

// NopGenerator is used when ai.enabled is false. It makes no LLM calls.
type NopGenerator struct{}

// NewNopGenerator returns a NopGenerator.
func NewNopGenerator() *NopGenerator {
	return &NopGenerator{}
}

// Generate always fails with ErrDisabled.
func (n *NopGenerator) Generate(_ context.Context, _ model.Job) (string, error) {
	return "", ErrDisabled
}
