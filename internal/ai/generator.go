package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure LLMProposalGenerator implements model.ProposalGenerator.
var _ model.ProposalGenerator = (*LLMProposalGenerator)(nil)

// LLMProposalGenerator drafts marketplace proposals with an LLM.
type LLMProposalGenerator struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMProposalGenerator creates a generator rendering ProposalTemplate
// against the given provider.
func NewLLMProposalGenerator(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMProposalGenerator {
	return &LLMProposalGenerator{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Generate renders the prompt for job and returns the drafted proposal text.
func (g *LLMProposalGenerator) Generate(ctx context.Context, job model.Job) (string, error) {
	var promptBuf bytes.Buffer
	err := g.tmpl.Execute(&promptBuf, struct {
		Title       string
		Description string
		Budget      string
	}{
		Title:       job.Title,
		Description: job.Description,
		Budget:      job.Budget,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	raw, err := g.provider.Complete(ctx, proposalSystemPrompt, promptBuf.String())
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	proposal := cleanProposal(raw)
	g.logger.Debug("proposal drafted", "job_id", job.ID, "chars", len(proposal))
	return proposal, nil
}

// cleanProposal strips the placeholder artifacts the model still sneaks in
// despite the prompt rules.
func cleanProposal(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	s = strings.ReplaceAll(s, "Tu nombre", "Constantino Di Nisio")
	s = strings.ReplaceAll(s, "tu nombre", "Constantino Di Nisio")
	return strings.TrimSpace(s)
}
