package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/constadinisio/huntly/internal/htmltext"
	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/review"
)

// Telegram message limits; staying under them avoids sendMessage rejections.
const (
	maxDescriptionChars = 1200
	maxProposalChars    = 3000
)

// Callback data prefixes, one per operator action.
const (
	callbackInterest = "INT"
	callbackApprove  = "OK"
	callbackIgnore   = "NO"
)

// encodeCallback packs an action and job id into callback_data.
func encodeCallback(action review.Action, jobID string) string {
	switch action {
	case review.ActionInterest:
		return callbackInterest + "|" + jobID
	case review.ActionApprove:
		return callbackApprove + "|" + jobID
	default:
		return callbackIgnore + "|" + jobID
	}
}

// decodeCallback parses callback_data back into an action and job id.
func decodeCallback(data string) (review.Action, string, error) {
	prefix, jobID, ok := strings.Cut(data, "|")
	if !ok || jobID == "" {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}
	switch prefix {
	case callbackInterest:
		return review.ActionInterest, jobID, nil
	case callbackApprove:
		return review.ActionApprove, jobID, nil
	case callbackIgnore:
		return review.ActionIgnore, jobID, nil
	default:
		return "", "", fmt.Errorf("unknown callback prefix %q", prefix)
	}
}

// interestKeyboard offers the initial review choice for a new job.
func interestKeyboard(jobID string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{
		{Text: "⭐ Me interesa", CallbackData: encodeCallback(review.ActionInterest, jobID)},
		{Text: "❌ Ignorar", CallbackData: encodeCallback(review.ActionIgnore, jobID)},
	}}}
}

// sendKeyboard offers approval once a proposal is drafted.
func sendKeyboard(jobID string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{
		{Text: "✅ Enviar propuesta", CallbackData: encodeCallback(review.ActionApprove, jobID)},
		{Text: "❌ Ignorar", CallbackData: encodeCallback(review.ActionIgnore, jobID)},
	}}}
}

// renderJobPrompt builds the new-job message, without a proposal.
func renderJobPrompt(job model.Job) string {
	var b strings.Builder
	b.WriteString("🆕 <b>¡Nuevo Trabajo Encontrado! 🚀</b>\n\n")
	fmt.Fprintf(&b, "💼 <b>Título:</b> %s\n", html.EscapeString(job.Title))
	fmt.Fprintf(&b, "💰 <b>Presupuesto:</b> %s\n", html.EscapeString(job.Budget))
	fmt.Fprintf(&b, "📅 <b>Fecha:</b> %s\n", html.EscapeString(job.PostedAt))
	fmt.Fprintf(&b, "🔗 <b>Link:</b> <a href=\"%s\">%s</a>\n\n",
		html.EscapeString(job.URL), html.EscapeString(job.URL))
	b.WriteString("📝 <b>Descripción:</b>\n")
	b.WriteString(html.EscapeString(htmltext.Truncate(job.Description, maxDescriptionChars)))
	return b.String()
}

// renderJobWithProposal builds the full review message including the draft.
func renderJobWithProposal(job model.Job) string {
	var b strings.Builder
	b.WriteString(renderJobPrompt(job))
	b.WriteString("\n\n✍️ <b>Propuesta:</b>\n<pre><code>")
	b.WriteString(html.EscapeString(htmltext.Truncate(job.Proposal, maxProposalChars)))
	b.WriteString("</code></pre>")
	return b.String()
}
