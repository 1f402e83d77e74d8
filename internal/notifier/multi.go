package notifier

import "github.com/constadinisio/huntly/internal/model"

// Ensure MultiNotifier implements model.Notifier.
var _ model.Notifier = (*MultiNotifier)(nil)

// MultiNotifier fans a notice out to every enabled channel. Each channel is
// attempted regardless of the others' outcome.
type MultiNotifier struct {
	notifiers []model.Notifier
}

// NewMultiNotifier combines the given notifiers.
func NewMultiNotifier(notifiers ...model.Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify dispatches to all channels and returns the first error, if any.
func (m *MultiNotifier) Notify(subject, body string) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.Notify(subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
