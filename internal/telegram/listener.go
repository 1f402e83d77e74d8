package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/review"
)

// Listener long-polls the Bot API for operator button presses and drives the
// review handler. One press is handled at a time, in update order.
type Listener struct {
	client      *Client
	handler     *review.Handler
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewListener wires the listener and installs the generating-progress hook on
// the handler, so the operator sees feedback during slow draft calls.
func NewListener(client *Client, handler *review.Handler, pollTimeout time.Duration, logger *slog.Logger) *Listener {
	l := &Listener{
		client:      client,
		handler:     handler,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
	handler.OnGenerating = func(job model.Job) {
		l.progressNote(job, "🧠 Generando propuesta...")
	}
	// Fires only after the approve validation passed, so a proposal-less
	// approve never announces a submission that will not happen.
	handler.OnSubmitting = func(job model.Job) {
		l.progressNote(job, "🚀 Enviando la propuesta en Workana...")
	}
	return l
}

// Run polls for updates until ctx is cancelled, then returns nil.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("telegram listener started", "poll_timeout", l.pollTimeout.String())

	offset := 0
	for {
		if ctx.Err() != nil {
			l.logger.Info("shutting down telegram listener")
			return nil
		}

		updates, err := l.client.GetUpdates(ctx, offset, int(l.pollTimeout.Seconds()))
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("shutting down telegram listener")
				return nil
			}
			l.logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.CallbackQuery == nil {
				continue
			}
			l.handleCallback(ctx, u.CallbackQuery)
		}
	}
}

// handleCallback runs one button press end to end. Collaborator calls may
// block for seconds; that is fine, the operator waits for each action's
// single response.
func (l *Listener) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if err := l.client.AnswerCallback(ctx, cb.ID); err != nil {
		l.logger.Warn("answerCallback failed", "error", err)
	}

	action, jobID, err := decodeCallback(cb.Data)
	if err != nil {
		l.logger.Warn("ignoring malformed callback", "data", cb.Data, "error", err)
		return
	}

	messageID := 0
	if cb.Message != nil {
		messageID = cb.Message.MessageID
	}

	res, err := l.handler.Handle(ctx, action, jobID)
	if err != nil {
		l.renderError(ctx, err, jobID, messageID)
		return
	}
	l.renderResult(ctx, res, messageID)
}

func (l *Listener) renderError(ctx context.Context, err error, jobID string, messageID int) {
	switch {
	case errors.Is(err, model.ErrJobNotFound):
		l.reply(ctx, "❌ No encontré el trabajo en la base.")
	case errors.Is(err, model.ErrNoProposal):
		l.reply(ctx, "⚠️ No hay propuesta generada. Tocá primero ⭐ Me interesa.")
		if messageID != 0 {
			if e := l.client.EditReplyMarkup(ctx, messageID, interestKeyboard(jobID)); e != nil {
				l.logger.Warn("failed to restore keyboard", "job_id", jobID, "error", e)
			}
		}
	default:
		l.logger.Error("action failed", "job_id", jobID, "error", err)
		l.reply(ctx, "❌ Algo salió mal procesando la acción.")
	}
}

func (l *Listener) renderResult(ctx context.Context, res review.Result, messageID int) {
	jobID := res.Job.ID
	switch res.Kind {
	case review.ResultIgnored:
		if messageID != 0 {
			if err := l.client.EditReplyMarkup(ctx, messageID, nil); err != nil {
				l.logger.Warn("failed to clear keyboard", "job_id", jobID, "error", err)
			}
		}
		l.reply(ctx, "🗑️ Proyecto ignorado.")

	case review.ResultProposalReady:
		text := renderJobWithProposal(res.Job)
		kb := sendKeyboard(jobID)
		if messageID != 0 {
			err := l.client.EditMessageText(ctx, messageID, text, kb)
			if err == nil {
				return
			}
			l.logger.Warn("editMessageText failed, sending fresh message", "job_id", jobID, "error", err)
		}
		if _, err := l.client.SendMessage(ctx, text, kb); err != nil {
			l.logger.Error("failed to present proposal", "job_id", jobID, "error", err)
		}

	case review.ResultGenerateFailed:
		l.reply(ctx, "❌ No pude generar la propuesta. Probá de nuevo con ⭐ Me interesa.")

	case review.ResultSubmitted:
		if messageID != 0 {
			if err := l.client.EditReplyMarkup(ctx, messageID, nil); err != nil {
				l.logger.Warn("failed to clear keyboard", "job_id", jobID, "error", err)
			}
		}
		l.reply(ctx, "✅ Propuesta enviada correctamente en Workana.")

	case review.ResultSubmitFailed:
		l.reply(ctx, "❌ Error al enviar la propuesta. Tocá ✅ de nuevo para reintentar.")
	}
}

func (l *Listener) reply(ctx context.Context, text string) {
	if _, err := l.client.SendMessage(ctx, text, nil); err != nil {
		l.logger.Warn("failed to send reply", "error", err)
	}
}

// progressNote sends a best-effort status line while a slow collaborator call
// is in flight. Runs outside the callback context on purpose: the note must
// go out even if the operator's update context is near its deadline.
func (l *Listener) progressNote(job model.Job, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := l.client.SendMessage(ctx, text, nil); err != nil {
		l.logger.Warn("failed to send progress note", "job_id", job.ID, "error", err)
	}
}
