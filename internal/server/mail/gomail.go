package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPTransport delivers messages over SMTP using gomail.
type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
}

// SMTPOptions configures an SMTPTransport.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// InsecureTLS relaxes certificate verification. Only enabled outside
	// production (self-signed relays in development setups).
	InsecureTLS bool
}

// NewSMTPTransport builds a transport from the given options.
func NewSMTPTransport(opts SMTPOptions) *SMTPTransport {
	d := gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password)
	if opts.InsecureTLS {
		d.TLSConfig = &tls.Config{
			ServerName:         opts.Host,
			InsecureSkipVerify: true,
		}
	}
	return &SMTPTransport{dialer: d, from: opts.From}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, a := range msg.Attachments {
		data := a.Data
		m.Attach(a.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}))
	}

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
