package mailer

import (
	"errors"
	"fmt"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride_notifier/internal/domain/mail"
)

func TestClassify(t *testing.T) {
	transport := NewSMTPTransport(Config{})
	tests := []struct {
		name string
		err  error
		want mail.FailureKind
	}{
		{"mailbox unavailable", &textproto.Error{Code: 550, Msg: "no such user"}, mail.FailurePermanent},
		{"wrapped rejection", fmt.Errorf("rcpt: %w", &textproto.Error{Code: 553, Msg: "bad address"}), mail.FailurePermanent},
		{"greylisted", &textproto.Error{Code: 451, Msg: "try again later"}, mail.FailureTransient},
		{"connection reset", errors.New("connection reset by peer"), mail.FailureTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transport.Classify(tt.err))
		})
	}
}

func TestBuildMessage(t *testing.T) {
	msg := &mail.Message{
		To:      []string{"alice@example.com"},
		BCC:     []string{"archive@example.com"},
		ReplyTo: "rides@example.com",
		Subject: "2024-05-01: Morning loop",
		Body:    "Hi",
	}

	raw, err := buildMessage(`"Head wind" <sender@example.com>`, msg).Bytes()

	require.NoError(t, err)
	s := string(raw)
	assert.Contains(t, s, "Subject: 2024-05-01: Morning loop\r\n")
	assert.Regexp(t, `(?m)^To: <?alice@example\.com>?\r$`, s)
	assert.Contains(t, s, "Reply-To: rides@example.com\r\n")
	assert.Contains(t, s, "Head wind")
	assert.NotContains(t, s, "archive@example.com", "Bcc must not leak into headers")
}

func TestBuildMessage_Defaults(t *testing.T) {
	e := buildMessage("sender@example.com", &mail.Message{To: []string{"alice@example.com"}})

	assert.Equal(t, "No subject", e.Subject)
	assert.Equal(t, "No content", string(e.Text))
	assert.Empty(t, e.ReplyTo)
}
