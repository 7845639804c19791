package ports

import (
	"context"

	"exchange-rate-monitor/internal/domain/model"
)

// Mailer delivers to the single configured recipient.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// MailReceiver returns the unseen messages in the monitored mailbox.
// Fetching must not mark anything seen: a message only leaves the unseen
// set via MarkSeen, called after its effects are durably committed, so a
// failed run leaves the message visible to the next one. The document's
// processed-message log guards against the window between commit and
// MarkSeen.
type MailReceiver interface {
	FetchUnseen(ctx context.Context) ([]model.InboundMessage, error)
	MarkSeen(ctx context.Context, ids []string) error
}
