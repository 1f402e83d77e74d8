package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/proposal.md
var proposalPromptRaw string

// ProposalTemplate is the parsed prompt template for proposal drafts.
// Parsed once at package init; reused on every Generate call.
var ProposalTemplate = template.Must(template.New("proposal").Parse(proposalPromptRaw))

// proposalSystemPrompt is the persona sent as the system message.
const proposalSystemPrompt = "Sos Constantino Di Nisio, un desarrollador real con experiencia en desarrollo web, " +
	"frontend y backend a medida. Escribís propuestas humanas, claras y directas, sin sonar a texto generado."
