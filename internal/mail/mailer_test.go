package mail

import (
	"net/smtp"
	"testing"
	"time"

	"moodblog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer_DisabledWithoutSMTPConfig(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.False(t, m.Enabled())

	// A disabled mailer must not attempt delivery.
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called when disabled")
		return nil
	}
	m.SendPasswordResetEmail("mira@example.com", "123456", 10)
}

func TestMailer_SendPasswordResetEmail(t *testing.T) {
	m := NewMailer(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUser:     "mailer",
		SMTPPassword: "secret",
		SMTPFrom:     "no-reply@example.com",
	})
	require.True(t, m.Enabled())

	type sent struct {
		addr string
		from string
		to   []string
		msg  []byte
	}
	got := make(chan sent, 1)
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		got <- sent{addr: addr, from: from, to: to, msg: msg}
		return nil
	}

	m.SendPasswordResetEmail("mira@example.com", "424242", 10)

	select {
	case s := <-got:
		assert.Equal(t, "smtp.example.com:587", s.addr)
		assert.Equal(t, "no-reply@example.com", s.from)
		assert.Equal(t, []string{"mira@example.com"}, s.to)
		assert.Contains(t, string(s.msg), "424242")
		assert.Contains(t, string(s.msg), "expires in 10 minutes")
	case <-time.After(2 * time.Second):
		t.Fatal("email was never handed to the SMTP client")
	}
}
