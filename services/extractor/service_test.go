package extractor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

type memoryLedger struct {
	hashes map[string]struct{}
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{hashes: make(map[string]struct{})}
}

func (l *memoryLedger) Contains(hash string) bool {
	_, ok := l.hashes[hash]
	return ok
}

func (l *memoryLedger) Record(hash string) error {
	l.hashes[hash] = struct{}{}
	return nil
}

func (l *memoryLedger) Len() int {
	return len(l.hashes)
}

func testPolicy() Policy {
	return NewPolicy([]string{".pdf", ".docx", ".PNG"}, 1)
}

func attachmentPart(filename string, content []byte) models.MessagePart {
	return models.MessagePart{
		Filename:       filename,
		HasDisposition: true,
		Content:        content,
	}
}

func TestExtractorService_NilMessage(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	_, err := s.Extract(context.Background(), nil)

	assert.Error(t, err)
}

func TestExtractorService_ExtractsAllowedAttachment(t *testing.T) {
	ledger := newMemoryLedger()
	s := NewExtractorService(testPolicy(), ledger, getLogger())

	msg := &models.EmailMessage{
		Subject: "Invoice",
		Parts:   []models.MessagePart{attachmentPart("invoice.pdf", []byte("pdf bytes"))},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "invoice.pdf", candidates[0].Filename)
	assert.Equal(t, []byte("pdf bytes"), candidates[0].Content)

	digest := sha256.Sum256([]byte("pdf bytes"))
	expectedHash := hex.EncodeToString(digest[:])
	assert.Equal(t, expectedHash, candidates[0].ContentHash)
	assert.True(t, ledger.Contains(expectedHash))
}

func TestExtractorService_ExtensionGate(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			attachmentPart("malware.exe", []byte("nope")),
			attachmentPart("notes.pdf", []byte("fine")),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "notes.pdf", candidates[0].Filename)
}

func TestExtractorService_ExtensionGateIsCaseInsensitive(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			attachmentPart("SCAN.PDF", []byte("upper")),
			attachmentPart("photo.png", []byte("policy listed .PNG")),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestExtractorService_SizeGate(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	atLimit := bytes.Repeat([]byte("a"), 1024*1024)
	overLimit := bytes.Repeat([]byte("b"), 1024*1024+1)

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			attachmentPart("at_limit.pdf", atLimit),
			attachmentPart("over_limit.pdf", overLimit),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "at_limit.pdf", candidates[0].Filename)
}

func TestExtractorService_SkipsUnusableParts(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			{IsMultipartContainer: true, Filename: "container.pdf", HasDisposition: true, Content: []byte("x")},
			{Filename: "inline_body.pdf", HasDisposition: false, Content: []byte("x")},
			{Filename: "", HasDisposition: true, Content: []byte("x")},
			attachmentPart("empty.pdf", nil),
			attachmentPart("real.pdf", []byte("x")),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "real.pdf", candidates[0].Filename)
}

func TestExtractorService_DeduplicatesAcrossRuns(t *testing.T) {
	ledger := newMemoryLedger()
	s := NewExtractorService(testPolicy(), ledger, getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{attachmentPart("invoice.pdf", []byte("same bytes"))},
	}

	first, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, ledger.Len())

	// Same content again, even under another name, is skipped
	msg.Parts[0].Filename = "renamed.pdf"
	second, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, ledger.Len())
}

// brokenLedger rejects every write and remembers nothing.
type brokenLedger struct{}

func (l *brokenLedger) Contains(hash string) bool { return false }
func (l *brokenLedger) Record(hash string) error  { return errors.New("disk full") }
func (l *brokenLedger) Len() int                  { return 0 }

func TestExtractorService_InMessageDedupSurvivesLedgerFailure(t *testing.T) {
	s := NewExtractorService(testPolicy(), &brokenLedger{}, getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			attachmentPart("copy1.pdf", []byte("same bytes")),
			attachmentPart("copy2.pdf", []byte("same bytes")),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "copy1.pdf", candidates[0].Filename)
}

func TestExtractorService_DeduplicatesWithinMessage(t *testing.T) {
	s := NewExtractorService(testPolicy(), newMemoryLedger(), getLogger())

	msg := &models.EmailMessage{
		Parts: []models.MessagePart{
			attachmentPart("copy1.pdf", []byte("same bytes")),
			attachmentPart("copy2.pdf", []byte("same bytes")),
		},
	}

	candidates, err := s.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "copy1.pdf", candidates[0].Filename)
}
