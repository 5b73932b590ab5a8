package mail

import (
	"context"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/logging"
)

// NullTransport stands in when no SMTP credentials are configured. It logs
// the content that would have been sent, to aid operational debugging, and
// reports the send as failed without touching the network.
type NullTransport struct {
	logger logging.Logger
}

func NewNullTransport(logger logging.Logger) *NullTransport {
	return &NullTransport{logger: logger}
}

func (t *NullTransport) Send(ctx context.Context, msg *Message) error {
	t.logger.Warn(ctx, "mail transport not configured, message not sent",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
		"attachments", len(msg.Attachments),
	)
	return common.ErrMailUnconfigured
}
