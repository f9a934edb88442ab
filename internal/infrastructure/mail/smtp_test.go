package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "u", Password: "p", From: "shop@example.com"}, zerolog.Nop())
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), ports.Email{To: "fan@example.com", Subject: "Invoice ₹", Body: "line one\nline two"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"fan@example.com"}, gotTo)
	msg := string(gotMsg)
	assert.Contains(t, msg, "To: fan@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.Contains(t, msg, "\r\n\r\nline one\r\nline two")
}

func TestSMTPMailerErrors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: "25", From: "shop@example.com"}, zerolog.Nop())
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 try later") }

	err := m.Send(context.Background(), ports.Email{To: "fan@example.com"})
	assert.ErrorContains(t, err, "421 try later")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, ports.Email{To: "fan@example.com"}), context.Canceled)
}
