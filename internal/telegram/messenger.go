package telegram

import (
	"context"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure Messenger implements model.Messenger.
var _ model.Messenger = (*Messenger)(nil)

// Messenger delivers new-job prompts for the dispatch queue. Each delivery is
// a single attempt; the queue owns the retry policy.
type Messenger struct {
	client *Client
}

// NewMessenger wraps the client for use by the dispatch queue.
func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

// SendJobPrompt sends the interactive new-job message with the interest keyboard.
func (m *Messenger) SendJobPrompt(ctx context.Context, job model.Job) error {
	_, err := m.client.SendMessage(ctx, renderJobPrompt(job), interestKeyboard(job.ID))
	return err
}
