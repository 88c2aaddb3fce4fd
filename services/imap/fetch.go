package imap

import (
	"context"
	"strconv"
	"strings"

	go_imap "github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/tracing"
)

// FetchUnprocessed returns every unseen message in the configured folder,
// optionally filtered by subject keywords. Bodies are fetched with PEEK so
// a fetch alone never flips the \Seen flag; only Acknowledge does.
func (s *IMAPSource) FetchUnprocessed(ctx context.Context, subjectKeywords []string) ([]interfaces.SourcedMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.FetchUnprocessed")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("folder", s.cfg.Folder)

	if s.client == nil {
		return nil, errors.New("not connected")
	}

	if _, err := s.client.Select(s.cfg.Folder, false); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to select folder %s", s.cfg.Folder)
	}

	criteria := go_imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{go_imap.SeenFlag}

	uids, err := s.client.UidSearch(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search for unseen messages")
	}

	span.LogFields(tracingLog.Int("unseen", len(uids)))
	s.log.Infof("Found %d unread messages", len(uids))

	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &go_imap.BodySectionName{Peek: true}
	items := []go_imap.FetchItem{section.FetchItem(), go_imap.FetchUid}

	messages := make(chan *go_imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.client.UidFetch(seqSet, items, messages)
	}()

	var result []interfaces.SourcedMessage
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			s.log.Warnf("Message %d has no body section, skipping", msg.Uid)
			continue
		}

		parsed, err := parseMessage(body)
		if err != nil {
			// One malformed message never aborts the batch
			s.log.Errorf("Error parsing message %d: %v", msg.Uid, err)
			continue
		}

		if !subjectMatches(parsed.Subject, subjectKeywords) {
			s.log.Debugf("Message %d filtered out: %q", msg.Uid, parsed.Subject)
			continue
		}

		id := strconv.FormatUint(uint64(msg.Uid), 10)
		s.log.Infof("Fetched message %s: %q", id, parsed.Subject)
		result = append(result, interfaces.SourcedMessage{ID: id, Message: parsed})
	}

	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to fetch messages")
	}

	s.log.Infof("Retrieved %d matching messages", len(result))
	return result, nil
}

// subjectMatches applies the case-insensitive keyword prefilter. An empty
// keyword list matches everything.
func subjectMatches(subject string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	subjectLower := strings.ToLower(subject)
	for _, keyword := range keywords {
		if strings.Contains(subjectLower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
