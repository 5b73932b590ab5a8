package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/models"
)

// Dispatcher sends transactional email through a Transport chosen at
// construction time. Send reports success as a boolean and never lets a
// transport failure escape: all errors are caught, logged, and converted
// to false.
type Dispatcher struct {
	transport Transport
	logger    logging.Logger
}

// NewDispatcher selects the transport from the given SMTP settings:
// a configured host yields an SMTPTransport, an empty one the NullTransport.
func NewDispatcher(s models.SMTPSettings, insecureTLS bool, logger logging.Logger) *Dispatcher {
	if s.Host == "" {
		return &Dispatcher{transport: NewNullTransport(logger), logger: logger}
	}
	t := NewSMTPTransport(SMTPOptions{
		Host:        s.Host,
		Port:        s.Port,
		Username:    s.Username,
		Password:    s.Password,
		From:        s.From,
		InsecureTLS: insecureTLS,
	})
	return &Dispatcher{transport: t, logger: logger}
}

// NewDispatcherWithTransport wires an explicit transport (used in tests and
// for per-user overrides resolved elsewhere).
func NewDispatcherWithTransport(t Transport, logger logging.Logger) *Dispatcher {
	return &Dispatcher{transport: t, logger: logger}
}

// Send delivers msg and returns true only if the transport accepted it.
func (d *Dispatcher) Send(ctx context.Context, msg *Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(ctx, "mail transport panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := d.transport.Send(ctx, msg); err != nil {
		d.logger.Error(ctx, "mail send failed", "to", msg.To, "subject", msg.Subject, "error", err.Error())
		return false
	}

	d.logger.Info(ctx, "mail sent", "to", msg.To, "subject", msg.Subject)
	return true
}

// SendPasswordReset composes and sends the password-reset message.
func (d *Dispatcher) SendPasswordReset(ctx context.Context, to string, resetLink string) bool {
	return d.Send(ctx, PasswordResetMessage(to, resetLink))
}

// SendReport composes and sends a report-delivery message with the rendered
// report attached.
func (d *Dispatcher) SendReport(ctx context.Context, to string, title string, report []byte) bool {
	return d.Send(ctx, ReportMessage(to, title, report))
}
