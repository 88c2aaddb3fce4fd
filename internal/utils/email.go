package utils

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
)

var looseAddressPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+`)

// ExtractSenderName derives a filename-safe label from a From header.
// "Jane Doe <jane@co.com>" yields "Jane_Doe", a bare "noreply@co.com"
// yields "noreply", anything unusable yields "Unknown".
func ExtractSenderName(from string) string {
	from = strings.TrimSpace(from)

	if addr, err := mail.ParseAddress(from); err == nil {
		name := strings.Trim(strings.TrimSpace(addr.Name), `"'`)
		if name != "" {
			return SanitizeFilename(name, 30)
		}
		syntax := mailvalidate.ValidateEmailSyntax(addr.Address)
		if syntax.IsValid && syntax.User != "" {
			return SanitizeFilename(syntax.User, 30)
		}
		if user, _, found := strings.Cut(addr.Address, "@"); found && user != "" {
			return SanitizeFilename(user, 30)
		}
	}

	// Headers the strict parser rejects still often carry a display name
	if idx := strings.IndexByte(from, '<'); idx > 0 {
		name := strings.Trim(strings.TrimSpace(from[:idx]), `"'`)
		if name != "" {
			return SanitizeFilename(name, 30)
		}
	}
	if match := looseAddressPattern.FindString(from); match != "" {
		user, _, _ := strings.Cut(match, "@")
		if user != "" {
			return SanitizeFilename(user, 30)
		}
	}

	return "Unknown"
}
