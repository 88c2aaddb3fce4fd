package classifier

import (
	"strings"

	"github.com/inboxpilot/docsort/config"
	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/enum"
)

type classifierService struct {
	rules []config.ClassificationRule
}

// NewClassifierService builds a classifier over an ordered rule table.
// Matching is case-insensitive substring containment; the first matching
// rule wins, so table order is the tie-break.
func NewClassifierService(rules []config.ClassificationRule) interfaces.Classifier {
	return &classifierService{rules: rules}
}

func (s *classifierService) Classify(subject string) enum.DocumentType {
	subjectLower := strings.ToLower(subject)

	for _, rule := range s.rules {
		if strings.Contains(subjectLower, strings.ToLower(rule.Keyword)) {
			return enum.DocumentType(rule.Type)
		}
	}

	return enum.DocumentOthers
}
