package interfaces

import (
	"context"
	"time"

	"github.com/inboxpilot/docsort/internal/enum"
	"github.com/inboxpilot/docsort/internal/models"
)

// AttachmentExtractor walks a message's parts and yields candidates that
// passed the extension, size and dedup gates.
type AttachmentExtractor interface {
	Extract(ctx context.Context, msg *models.EmailMessage) ([]models.AttachmentCandidate, error)
}

// Classifier maps a subject line to a document type.
type Classifier interface {
	Classify(subject string) enum.DocumentType
}

// FilenameSynthesizer derives the normalized target filename for a candidate.
type FilenameSynthesizer interface {
	Synthesize(originalFilename string, docType enum.DocumentType, senderRaw, dateRaw string) string
}

// Organizer writes and moves files inside the destination tree with
// collision-safe naming.
type Organizer interface {
	// Resolve returns the destination folder for a document type, falling
	// back to the Others folder for unmapped types.
	Resolve(docType enum.DocumentType) string
	// Save writes raw attachment bytes into folder under filename,
	// resolving name collisions, and returns the written path.
	Save(ctx context.Context, content []byte, filename string, folder string) (string, error)
	// Place renames a saved file to its synthesized name inside the folder
	// for docType and returns the final path. On failure the source file is
	// left untouched.
	Place(ctx context.Context, srcPath string, docType enum.DocumentType, newName string) (string, error)
}

// SweepSummary is the outcome of one pipeline pass over the mailbox.
type SweepSummary struct {
	RunID              string    `json:"runId"`
	StartedAt          time.Time `json:"startedAt"`
	FinishedAt         time.Time `json:"finishedAt"`
	MessagesFetched    int       `json:"messagesFetched"`
	MessagesAcked      int       `json:"messagesAcked"`
	MessagesSkipped    int       `json:"messagesSkipped"`
	AttachmentsFiled   int       `json:"attachmentsFiled"`
	AttachmentsFailed  int       `json:"attachmentsFailed"`
	LedgerSizeAtFinish int       `json:"ledgerSizeAtFinish"`
}

// PipelineService sequences extraction, classification, naming and placement
// for every unprocessed message.
type PipelineService interface {
	Sweep(ctx context.Context) (*SweepSummary, error)
	LastSummary() *SweepSummary
}
