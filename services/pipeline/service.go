package pipeline

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/enum"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/models"
	"github.com/inboxpilot/docsort/internal/tracing"
	"github.com/inboxpilot/docsort/internal/utils"
)

// ErrSweepInProgress is returned when a sweep is triggered while another is
// still running.
var ErrSweepInProgress = errors.New("a sweep is already in progress")

type pipelineService struct {
	source     interfaces.MessageSource
	extractor  interfaces.AttachmentExtractor
	classifier interfaces.Classifier
	namer      interfaces.FilenameSynthesizer
	organizer  interfaces.Organizer
	ledger     interfaces.HashLedger
	records    interfaces.FileRecordRepository
	keywords   []string
	log        logger.Logger

	sweepMu sync.Mutex

	summaryMu   sync.RWMutex
	lastSummary *interfaces.SweepSummary
}

func NewPipelineService(
	source interfaces.MessageSource,
	attachmentExtractor interfaces.AttachmentExtractor,
	subjectClassifier interfaces.Classifier,
	filenameSynthesizer interfaces.FilenameSynthesizer,
	fileOrganizer interfaces.Organizer,
	hashLedger interfaces.HashLedger,
	records interfaces.FileRecordRepository,
	subjectKeywords []string,
	log logger.Logger,
) interfaces.PipelineService {
	return &pipelineService{
		source:     source,
		extractor:  attachmentExtractor,
		classifier: subjectClassifier,
		namer:      filenameSynthesizer,
		organizer:  fileOrganizer,
		ledger:     hashLedger,
		records:    records,
		keywords:   subjectKeywords,
		log:        log,
	}
}

// Sweep processes every unprocessed message once: extract candidates, then
// per candidate save, classify, synthesize a name and place the file.
// Per-attachment and per-message failures are absorbed into counters; only
// transport failures abort the run.
func (s *pipelineService) Sweep(ctx context.Context) (*interfaces.SweepSummary, error) {
	if !s.sweepMu.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	runID := uuid.NewString()

	span, ctx := tracing.StartTracerSpan(ctx, "PipelineService.Sweep")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagRunID(span, runID)

	summary := &interfaces.SweepSummary{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	s.log.Infof("Starting sweep %s", runID)

	if err := s.source.Connect(ctx); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to connect to message source")
	}
	defer func() {
		if err := s.source.Close(); err != nil {
			s.log.Warnf("Error while closing message source: %v", err)
		}
	}()

	messages, err := s.source.FetchUnprocessed(ctx, s.keywords)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to fetch unprocessed messages")
	}

	for _, item := range messages {
		summary.MessagesFetched++
		if acked := s.processMessage(ctx, item, summary); acked {
			summary.MessagesAcked++
		} else {
			summary.MessagesSkipped++
		}
	}

	summary.FinishedAt = time.Now().UTC()
	summary.LedgerSizeAtFinish = s.ledger.Len()

	span.LogFields(
		tracingLog.Int("messages_fetched", summary.MessagesFetched),
		tracingLog.Int("attachments_filed", summary.AttachmentsFiled),
		tracingLog.Int("attachments_failed", summary.AttachmentsFailed),
	)

	s.log.Infof("Sweep %s complete: %d messages fetched, %d acked, %d skipped, %d attachments filed, %d failed",
		runID, summary.MessagesFetched, summary.MessagesAcked, summary.MessagesSkipped,
		summary.AttachmentsFiled, summary.AttachmentsFailed)

	s.summaryMu.Lock()
	s.lastSummary = summary
	s.summaryMu.Unlock()

	return summary, nil
}

func (s *pipelineService) LastSummary() *interfaces.SweepSummary {
	s.summaryMu.RLock()
	defer s.summaryMu.RUnlock()
	return s.lastSummary
}

// processMessage runs one message through the pipeline and reports whether
// it was acknowledged. A message-level fault leaves the message unacked so
// a future run picks it up again; sibling messages are unaffected.
func (s *pipelineService) processMessage(ctx context.Context, item interfaces.SourcedMessage, summary *interfaces.SweepSummary) (acked bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Panic while processing message %s: %v\n%s", item.ID, r, debug.Stack())
			acked = false
		}
	}()

	msg := item.Message
	s.log.Infof("Processing message from: %s, subject: %q", msg.Sender, msg.Subject)

	candidates, err := s.extractor.Extract(ctx, msg)
	if err != nil {
		s.log.Errorf("Error extracting attachments from message %s: %v", item.ID, err)
		return false
	}

	if len(candidates) == 0 {
		s.log.Info("No valid attachments found in this message")
		return s.acknowledge(ctx, item.ID)
	}

	s.log.Infof("Found %d attachment(s)", len(candidates))

	// Strip reply/forward prefixes so "Re: Invoice 42" files with the
	// original, both for classification and for the bookkeeping row
	subject := utils.NormalizeSubject(msg.Subject)
	docType := s.classifier.Classify(subject)
	targetFolder := s.organizer.Resolve(docType)

	for _, candidate := range candidates {
		s.processAttachment(ctx, candidate, msg, subject, docType, targetFolder, summary)
	}

	return s.acknowledge(ctx, item.ID)
}

// processAttachment saves, names and places one candidate. A failure counts
// the attachment as lost and moves on; siblings still get filed.
func (s *pipelineService) processAttachment(
	ctx context.Context,
	candidate models.AttachmentCandidate,
	msg *models.EmailMessage,
	subject string,
	docType enum.DocumentType,
	targetFolder string,
	summary *interfaces.SweepSummary,
) {
	savedPath, err := s.organizer.Save(ctx, candidate.Content, candidate.Filename, targetFolder)
	if err != nil {
		s.log.Errorf("Failed to save attachment %s: %v", candidate.Filename, err)
		summary.AttachmentsFailed++
		return
	}

	newName := s.namer.Synthesize(candidate.Filename, docType, msg.Sender, msg.Date)

	finalPath, err := s.organizer.Place(ctx, savedPath, docType, newName)
	if err != nil {
		s.log.Errorf("Failed to organize attachment %s: %v", candidate.Filename, err)
		summary.AttachmentsFailed++
		return
	}

	summary.AttachmentsFiled++
	s.log.Infof("Successfully processed: %s", finalPath)

	record := &models.FileRecord{
		Path:         finalPath,
		OriginalName: candidate.Filename,
		DocumentType: docType.String(),
		Sender:       msg.Sender,
		Subject:      subject,
		Size:         len(candidate.Content),
		ContentHash:  candidate.ContentHash,
	}
	if err := s.records.Create(ctx, record); err != nil {
		// bookkeeping only, the file is already in place
		s.log.Warnf("Failed to record filed document %s: %v", finalPath, err)
	}
}

func (s *pipelineService) acknowledge(ctx context.Context, id string) bool {
	if err := s.source.Acknowledge(ctx, id); err != nil {
		s.log.Warnf("Failed to acknowledge message %s: %v", id, err)
		return false
	}
	return true
}
