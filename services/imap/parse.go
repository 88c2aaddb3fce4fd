package imap

import (
	"io"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/internal/models"
)

// parseMessage reads a raw RFC 822 message into the transport-independent
// EmailMessage. enmime handles the MIME tree walk; only parts it surfaces
// as attachments or inlines become message parts here.
func parseMessage(r io.Reader) (*models.EmailMessage, error) {
	envelope, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}

	subject := envelope.GetHeader("Subject")
	if subject == "" {
		subject = "No Subject"
	}

	msg := &models.EmailMessage{
		Subject: subject,
		Sender:  envelope.GetHeader("From"),
		Date:    envelope.GetHeader("Date"),
	}

	for _, attachment := range envelope.Attachments {
		msg.Parts = append(msg.Parts, models.MessagePart{
			Filename:       attachment.FileName,
			HasDisposition: true,
			Content:        attachment.Content,
		})
	}

	for _, inline := range envelope.Inlines {
		msg.Parts = append(msg.Parts, models.MessagePart{
			Filename:       inline.FileName,
			HasDisposition: true,
			Content:        inline.Content,
		})
	}

	return msg, nil
}
