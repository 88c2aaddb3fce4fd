package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/config"
	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/tracing"
)

type IMAPSource struct {
	cfg    *config.IMAPConfig
	log    logger.Logger
	client *client.Client
}

// NewIMAPSource builds a MessageSource over a single IMAP mailbox.
// Unprocessed means \Unseen; acknowledging sets \Seen.
func NewIMAPSource(cfg *config.IMAPConfig, log logger.Logger) interfaces.MessageSource {
	return &IMAPSource{
		cfg: cfg,
		log: log,
	}
}

func (s *IMAPSource) Connect(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", s.cfg.Host)
	span.SetTag("port", s.cfg.Port)
	span.SetTag("tls", s.cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if s.cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to connect to %s", serverAddr)
	}

	// Set client timeout for login
	c.Timeout = 30 * time.Second

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to login as %s", s.cfg.Username)
	}

	// Reset client timeout to default for normal operations
	c.Timeout = 0

	s.client = c
	s.log.Infof("Connected to %s as %s", serverAddr, s.cfg.Username)
	return nil
}

// Acknowledge marks the message as \Seen so future runs skip it.
func (s *IMAPSource) Acknowledge(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.Acknowledge")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message_id", id)

	if s.client == nil {
		return errors.New("not connected")
	}

	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid message id %q", id)
	}

	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	item := go_imap.FormatFlagsOp(go_imap.AddFlags, true)
	flags := []interface{}{go_imap.SeenFlag}

	if err := s.client.UidStore(seqSet, item, flags, nil); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to mark message %s as seen", id)
	}
	return nil
}

func (s *IMAPSource) Close() error {
	if s.client == nil {
		return nil
	}

	// Bound the logout so shutdown never hangs on a dead connection
	s.client.Timeout = 5 * time.Second
	err := s.client.Logout()
	s.client = nil
	if err != nil {
		return errors.Wrap(err, "error during logout")
	}
	s.log.Info("Disconnected from mail server")
	return nil
}
