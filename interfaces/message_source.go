package interfaces

import (
	"context"

	"github.com/inboxpilot/docsort/internal/models"
)

// SourcedMessage pairs a fetched message with the source-side identifier
// needed to acknowledge it later.
type SourcedMessage struct {
	ID      string
	Message *models.EmailMessage
}

// MessageSource yields unprocessed messages and accepts acknowledgements.
// The pipeline treats the mail transport as an external collaborator and
// only ever sees this contract.
type MessageSource interface {
	Connect(ctx context.Context) error
	// FetchUnprocessed returns unread messages. When subjectKeywords is
	// non-empty, messages whose subject matches none of the keywords
	// (case-insensitive substring) are excluded.
	FetchUnprocessed(ctx context.Context, subjectKeywords []string) ([]SourcedMessage, error)
	// Acknowledge marks a message as processed at the source.
	Acknowledge(ctx context.Context, id string) error
	Close() error
}
