package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"net/textproto"

	"ride_notifier/internal/domain/mail"

	"github.com/jordan-wright/email"
)

// ErrAuthUnsupported is returned when credentials are configured but the server
// does not offer AUTH.
var ErrAuthUnsupported = errors.New("SMTP server does not support authentication")

// Config describes the outgoing mail account.
type Config struct {
	Addr       string // host:port
	Username   string // Also used as envelope sender
	Password   string
	SenderName string // Display name in the From header
	StartTLS   bool   // Upgrade a plain connection instead of dialing TLS directly
}

// SMTPTransport implements mail.Transport and mail.Classifier over SMTP.
type SMTPTransport struct {
	cfg Config
}

func NewSMTPTransport(cfg Config) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Open connects and authenticates. The returned session must be closed.
func (t *SMTPTransport) Open(ctx context.Context) (mail.Session, error) {
	host, _, err := net.SplitHostPort(t.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP address %q: %w", t.cfg.Addr, err)
	}
	tlsConfig := &tls.Config{ServerName: host}

	var conn net.Conn
	if t.cfg.StartTLS {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", t.cfg.Addr)
	} else {
		d := tls.Dialer{Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", t.cfg.Addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", t.cfg.Addr, err)
	}

	sess, err := t.startSession(conn, host, tlsConfig)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// startSession runs the SMTP handshake over an established connection and
// takes ownership of conn.
func (t *SMTPTransport) startSession(conn net.Conn, host string, tlsConfig *tls.Config) (*session, error) {
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}
	if t.cfg.StartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to STARTTLS: %w", err)
		}
	}
	if t.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			client.Close()
			return nil, fmt.Errorf("%w: %s", ErrAuthUnsupported, host)
		}
		if err := client.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, host)); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to authenticate as %s: %w", t.cfg.Username, err)
		}
	}

	from := netmail.Address{Name: t.cfg.SenderName, Address: t.cfg.Username}
	return &session{client: client, envelopeFrom: t.cfg.Username, fromHeader: from.String()}, nil
}

// Classify treats SMTP 5xx replies as permanent, everything else as transient.
func (t *SMTPTransport) Classify(err error) mail.FailureKind {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && protoErr.Code >= 500 {
		return mail.FailurePermanent
	}
	return mail.FailureTransient
}

type session struct {
	client       *smtp.Client
	envelopeFrom string
	fromHeader   string
}

func (s *session) Send(msg *mail.Message) error {
	raw, err := buildMessage(s.fromHeader, msg).Bytes()
	if err != nil {
		return fmt.Errorf("failed to render message: %w", err)
	}
	if err := s.transmit(msg, raw); err != nil {
		// Leave the connection usable for the next recipient.
		_ = s.client.Reset()
		return err
	}
	return nil
}

func (s *session) transmit(msg *mail.Message, raw []byte) error {
	if err := s.client.Mail(s.envelopeFrom); err != nil {
		return err
	}
	for _, group := range [][]string{msg.To, msg.CC, msg.BCC} {
		for _, rcpt := range group {
			if err := s.client.Rcpt(rcpt); err != nil {
				return err
			}
		}
	}
	w, err := s.client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Close logs out, dropping the connection if the server does not answer QUIT.
func (s *session) Close() error {
	if err := s.client.Quit(); err != nil {
		s.client.Close()
		return err
	}
	return nil
}

func buildMessage(from string, msg *mail.Message) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = msg.To
	e.Cc = msg.CC
	e.Bcc = msg.BCC
	if msg.ReplyTo != "" {
		e.ReplyTo = []string{msg.ReplyTo}
	}
	e.Subject = msg.Subject
	if e.Subject == "" {
		e.Subject = "No subject"
	}
	body := msg.Body
	if body == "" {
		body = "No content"
	}
	e.Text = []byte(body)
	return e
}
