package namer

import (
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/enum"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/utils"
)

const (
	dateLayout = "20060102"

	// the sender segment of a synthesized name is bounded tighter than the
	// label extraction itself
	senderSegmentMaxLen = 20
)

type namerService struct {
	log logger.Logger
	now func() time.Time
}

func NewNamerService(log logger.Logger) interfaces.FilenameSynthesizer {
	return &namerService{
		log: log,
		now: time.Now,
	}
}

// Synthesize derives the target filename
// "{docType}_{YYYYMMDD}_{sender}{ext}" from message metadata. The output
// contains no path separators; uniqueness is the organizer's concern.
func (s *namerService) Synthesize(originalFilename string, docType enum.DocumentType, senderRaw, dateRaw string) string {
	extension := filepath.Ext(originalFilename)

	dateLabel := s.dateLabel(dateRaw)

	senderLabel := utils.ExtractSenderName(senderRaw)
	senderLabel = utils.SanitizeFilename(senderLabel, senderSegmentMaxLen)

	newFilename := fmt.Sprintf("%s_%s_%s%s", docType, dateLabel, senderLabel, extension)

	s.log.Debugf("Generated filename: %s -> %s", originalFilename, newFilename)
	return newFilename
}

// dateLabel parses the raw Date header as RFC 5322. An unparseable header
// falls back to the current date rather than failing the attachment.
func (s *namerService) dateLabel(dateRaw string) string {
	parsed, err := mail.ParseDate(dateRaw)
	if err != nil {
		s.log.Warnf("Could not parse email date %q, using current date", dateRaw)
		return s.now().Format(dateLayout)
	}
	return parsed.Format(dateLayout)
}
