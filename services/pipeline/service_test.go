package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/enum"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/models"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

// fakeSource replays a fixed batch of messages and records acknowledgements.
type fakeSource struct {
	messages   []interfaces.SourcedMessage
	fetchErr   error
	connectErr error
	ackErr     map[string]error
	acked      []string
	closed     bool
}

func (f *fakeSource) Connect(ctx context.Context) error { return f.connectErr }

func (f *fakeSource) FetchUnprocessed(ctx context.Context, subjectKeywords []string) ([]interfaces.SourcedMessage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.messages, nil
}

func (f *fakeSource) Acknowledge(ctx context.Context, id string) error {
	if err, ok := f.ackErr[id]; ok {
		return err
	}
	f.acked = append(f.acked, id)
	return nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeExtractor yields one candidate per message part, or an error.
type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, msg *models.EmailMessage) ([]models.AttachmentCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.AttachmentCandidate
	for i, part := range msg.Parts {
		out = append(out, models.AttachmentCandidate{
			Filename:    part.Filename,
			Content:     part.Content,
			ContentHash: fmt.Sprintf("hash-%d", i),
		})
	}
	return out, nil
}

type fakeClassifier struct {
	subjects []string
}

func (f *fakeClassifier) Classify(subject string) enum.DocumentType {
	f.subjects = append(f.subjects, subject)
	return enum.DocumentInvoices
}

type fakeNamer struct{}

func (f *fakeNamer) Synthesize(originalFilename string, docType enum.DocumentType, senderRaw, dateRaw string) string {
	return "renamed_" + originalFilename
}

// fakeOrganizer fails Save for filenames listed in failSave.
type fakeOrganizer struct {
	failSave map[string]bool
	placed   []string
}

func (f *fakeOrganizer) Resolve(docType enum.DocumentType) string { return "/dest/" + docType.String() }

func (f *fakeOrganizer) Save(ctx context.Context, content []byte, filename string, folder string) (string, error) {
	if f.failSave[filename] {
		return "", errors.New("disk full")
	}
	return folder + "/" + filename, nil
}

func (f *fakeOrganizer) Place(ctx context.Context, srcPath string, docType enum.DocumentType, newName string) (string, error) {
	final := "/dest/" + docType.String() + "/" + newName
	f.placed = append(f.placed, final)
	return final, nil
}

type fakeLedger struct {
	size int
}

func (f *fakeLedger) Contains(hash string) bool { return false }
func (f *fakeLedger) Record(hash string) error  { return nil }
func (f *fakeLedger) Len() int                  { return f.size }

type fakeRecords struct {
	created   []*models.FileRecord
	createErr error
}

func (f *fakeRecords) Create(ctx context.Context, record *models.FileRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	return nil
}

func (f *fakeRecords) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	return nil, nil
}

func (f *fakeRecords) List(ctx context.Context, limit int) ([]*models.FileRecord, error) {
	return nil, nil
}

func (f *fakeRecords) CountByType(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func message(id, subject string, filenames ...string) interfaces.SourcedMessage {
	msg := &models.EmailMessage{
		Subject: subject,
		Sender:  "jane@example.com",
		Date:    "Tue, 03 Feb 2026 08:30:00 +0000",
	}
	for _, name := range filenames {
		msg.Parts = append(msg.Parts, models.MessagePart{
			Filename:       name,
			HasDisposition: true,
			Content:        []byte(name),
		})
	}
	return interfaces.SourcedMessage{ID: id, Message: msg}
}

func newTestPipeline(source *fakeSource, extractor *fakeExtractor, organizer *fakeOrganizer, records *fakeRecords) interfaces.PipelineService {
	return NewPipelineService(
		source,
		extractor,
		&fakeClassifier{},
		&fakeNamer{},
		organizer,
		&fakeLedger{size: 7},
		records,
		nil,
		getLogger(),
	)
}

func TestPipelineService_SweepFilesAttachments(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice", "a.pdf", "b.pdf"),
	}}
	organizer := &fakeOrganizer{}
	records := &fakeRecords{}

	p := newTestPipeline(source, &fakeExtractor{}, organizer, records)

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.MessagesFetched)
	assert.Equal(t, 1, summary.MessagesAcked)
	assert.Equal(t, 0, summary.MessagesSkipped)
	assert.Equal(t, 2, summary.AttachmentsFiled)
	assert.Equal(t, 0, summary.AttachmentsFailed)
	assert.Equal(t, 7, summary.LedgerSizeAtFinish)
	assert.Equal(t, []string{"1"}, source.acked)
	assert.True(t, source.closed)
	assert.Len(t, records.created, 2)
}

func TestPipelineService_AttachmentFailureIsIsolated(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice", "bad.pdf", "good.pdf"),
	}}
	organizer := &fakeOrganizer{failSave: map[string]bool{"bad.pdf": true}}
	records := &fakeRecords{}

	p := newTestPipeline(source, &fakeExtractor{}, organizer, records)

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	// The sibling still files and the message is still acknowledged
	assert.Equal(t, 1, summary.AttachmentsFiled)
	assert.Equal(t, 1, summary.AttachmentsFailed)
	assert.Equal(t, 1, summary.MessagesAcked)
	assert.Equal(t, []string{"1"}, source.acked)
	require.Len(t, records.created, 1)
	assert.Equal(t, "good.pdf", records.created[0].OriginalName)
}

func TestPipelineService_NoAttachmentsStillAcked(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice"),
	}}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, &fakeRecords{})

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.MessagesAcked)
	assert.Equal(t, 0, summary.AttachmentsFiled)
	assert.Equal(t, []string{"1"}, source.acked)
}

func TestPipelineService_ExtractErrorLeavesMessageUnacked(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice", "a.pdf"),
		message("2", "Invoice", "b.pdf"),
	}}
	brokenExtractor := &fakeExtractor{err: errors.New("parse failure")}

	p := newTestPipeline(source, brokenExtractor, &fakeOrganizer{}, &fakeRecords{})

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.MessagesFetched)
	assert.Equal(t, 0, summary.MessagesAcked)
	assert.Equal(t, 2, summary.MessagesSkipped)
	assert.Empty(t, source.acked)
}

func TestPipelineService_AckFailureCountsAsSkipped(t *testing.T) {
	source := &fakeSource{
		messages: []interfaces.SourcedMessage{
			message("1", "Invoice", "a.pdf"),
		},
		ackErr: map[string]error{"1": errors.New("connection reset")},
	}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, &fakeRecords{})

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	// The attachment filed but the unacked message counts as skipped
	assert.Equal(t, 1, summary.AttachmentsFiled)
	assert.Equal(t, 0, summary.MessagesAcked)
	assert.Equal(t, 1, summary.MessagesSkipped)
}

func TestPipelineService_ConnectErrorAbortsRun(t *testing.T) {
	source := &fakeSource{connectErr: errors.New("dial timeout")}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, &fakeRecords{})

	summary, err := p.Sweep(context.Background())
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestPipelineService_FetchErrorAbortsRun(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("mailbox unavailable")}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, &fakeRecords{})

	summary, err := p.Sweep(context.Background())
	assert.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, source.closed)
}

func TestPipelineService_RecordFailureDoesNotFailAttachment(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice", "a.pdf"),
	}}
	records := &fakeRecords{createErr: errors.New("database locked")}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, records)

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AttachmentsFiled)
	assert.Equal(t, 0, summary.AttachmentsFailed)
	assert.Equal(t, 1, summary.MessagesAcked)
}

func TestPipelineService_ReplyPrefixesStrippedBeforeClassification(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Re: Fwd: Invoice 42", "a.pdf"),
	}}
	classifier := &fakeClassifier{}
	records := &fakeRecords{}

	p := NewPipelineService(
		source,
		&fakeExtractor{},
		classifier,
		&fakeNamer{},
		&fakeOrganizer{},
		&fakeLedger{},
		records,
		nil,
		getLogger(),
	)

	_, err := p.Sweep(context.Background())
	require.NoError(t, err)

	// A forwarded invoice classifies and records like the original
	require.Len(t, classifier.subjects, 1)
	assert.Equal(t, "Invoice 42", classifier.subjects[0])
	require.Len(t, records.created, 1)
	assert.Equal(t, "Invoice 42", records.created[0].Subject)
}

func TestPipelineService_LastSummary(t *testing.T) {
	source := &fakeSource{messages: []interfaces.SourcedMessage{
		message("1", "Invoice", "a.pdf"),
	}}

	p := newTestPipeline(source, &fakeExtractor{}, &fakeOrganizer{}, &fakeRecords{})

	assert.Nil(t, p.LastSummary())

	summary, err := p.Sweep(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p.LastSummary())
	assert.Equal(t, summary.RunID, p.LastSummary().RunID)
}
