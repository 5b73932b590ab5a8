// Package mail implements the outbound notification dispatcher: transactional
// email with a non-fatal fallback when no SMTP transport is configured.
package mail

import "context"

// Attachment is a file carried by an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a fully composed outbound email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Transport delivers a composed message. Implementations report delivery
// failure through the error return; they must not panic.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}
