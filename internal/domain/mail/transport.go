package mail

import "context"

// Message is a single plain-text email.
type Message struct {
	To      []string
	CC      []string
	BCC     []string
	ReplyTo string
	Subject string
	Body    string
}

// Transport opens authenticated mail sessions.
// This decouples the notification logic from the SMTP library in use.
type Transport interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one authenticated connection. Callers must Close it once all
// messages of a batch were attempted, whatever their outcome.
type Session interface {
	Send(msg *Message) error
	Close() error
}
