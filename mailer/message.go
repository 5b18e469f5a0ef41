// Package mailer renders and dispatches the relay's two outbound email
// shapes: email-confirmation and bill-notification messages.
package mailer

import "context"

// Message is a single outbound email. body is always rendered HTML.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender dispatches a rendered Message through a concrete email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
