package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/models"
	"github.com/inboxpilot/docsort/internal/tracing"
)

// Policy is the attachment acceptance policy: permitted extensions
// (lower-cased, with leading dot) and the size ceiling in bytes.
type Policy struct {
	AllowedExtensions map[string]struct{}
	MaxSizeBytes      int64
}

func NewPolicy(extensions []string, maxSizeMB int) Policy {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}
	return Policy{
		AllowedExtensions: allowed,
		MaxSizeBytes:      int64(maxSizeMB) * 1024 * 1024,
	}
}

type extractorService struct {
	policy Policy
	ledger interfaces.HashLedger
	log    logger.Logger
}

func NewExtractorService(policy Policy, hashLedger interfaces.HashLedger, log logger.Logger) interfaces.AttachmentExtractor {
	return &extractorService{
		policy: policy,
		ledger: hashLedger,
		log:    log,
	}
}

// Extract walks the message parts and yields candidates that pass the
// extension, size and dedup gates. The content hash is recorded in the
// ledger at emission time, not after successful filing: a candidate that
// later fails to file stays "seen" so the run keeps making forward
// progress. A bad part never aborts extraction of its siblings.
func (s *extractorService) Extract(ctx context.Context, msg *models.EmailMessage) ([]models.AttachmentCandidate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ExtractorService.Extract")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if msg == nil {
		err := errors.New("message is nil")
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogFields(tracingLog.Int("parts", len(msg.Parts)))

	// In-message dedup is tracked separately so it holds even when a ledger
	// write fails
	seen := make(map[string]struct{})

	var candidates []models.AttachmentCandidate
	for _, part := range msg.Parts {
		if part.IsMultipartContainer {
			continue
		}
		if !part.HasDisposition {
			continue
		}
		if part.Filename == "" {
			continue
		}

		ext := strings.ToLower(filepath.Ext(part.Filename))
		if _, ok := s.policy.AllowedExtensions[ext]; !ok {
			s.log.Warnf("Skipping file with disallowed extension: %s", part.Filename)
			continue
		}

		if len(part.Content) == 0 {
			continue
		}

		if int64(len(part.Content)) > s.policy.MaxSizeBytes {
			s.log.Warnf("Skipping oversized file: %s (%.2f MB exceeds %.2f MB limit)",
				part.Filename,
				float64(len(part.Content))/(1024*1024),
				float64(s.policy.MaxSizeBytes)/(1024*1024))
			continue
		}

		digest := sha256.Sum256(part.Content)
		contentHash := hex.EncodeToString(digest[:])

		if _, dup := seen[contentHash]; dup || s.ledger.Contains(contentHash) {
			s.log.Infof("Skipping duplicate file: %s", part.Filename)
			continue
		}
		seen[contentHash] = struct{}{}

		candidates = append(candidates, models.AttachmentCandidate{
			Filename:    part.Filename,
			Content:     part.Content,
			ContentHash: contentHash,
		})
		s.log.Infof("Extracted attachment: %s (%.2f KB)", part.Filename, float64(len(part.Content))/1024)

		if err := s.ledger.Record(contentHash); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("Failed to record processed hash: %v", err)
		}
	}

	span.LogFields(tracingLog.Int("candidates", len(candidates)))
	return candidates, nil
}
