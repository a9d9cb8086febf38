package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestMailerConfigValidate(t *testing.T) {
	valid := mailerConfig{Host: "smtp.local", Port: 1025, From: "noreply@tunehub.test"}
	assert.NoError(t, valid.validate())

	missingHost := valid
	missingHost.Host = ""
	assert.EqualError(t, missingHost.validate(), "missing SMTP_HOST environment variable")

	missingPort := valid
	missingPort.Port = 0
	assert.EqualError(t, missingPort.validate(), "missing SMTP_PORT environment variable")

	missingFrom := valid
	missingFrom.From = ""
	assert.EqualError(t, missingFrom.validate(), "missing SMTP_FROM environment variable")
}

func TestNewMailerConfig_FromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.local")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "noreply@tunehub.test")

	logger := zerolog.Nop()
	cfg := newMailerConfig(&logger)

	assert.Equal(t, "smtp.local", cfg.Host)
	assert.Equal(t, 2525, cfg.Port)
	assert.Equal(t, "noreply@tunehub.test", cfg.From)
}

func TestPasswordResetEmail(t *testing.T) {
	resetURL := "https://tunehub.test/?reset_token=abc123"
	email := passwordResetEmail("player@example.com", resetURL, time.Hour)

	assert.Equal(t, []string{"player@example.com"}, email.To)
	assert.Equal(t, passwordResetSubject, email.Subject)
	assert.Contains(t, email.HTMLBody, `href="`+resetURL+`"`)
	assert.Contains(t, email.Body, resetURL)
	assert.Contains(t, email.Body, "1h0m0s")
}

func TestSetEmailMessage(t *testing.T) {
	logger := zerolog.Nop()
	m := newMailer(&mailerConfig{Host: "smtp.local", Port: 1025, From: "noreply@tunehub.test"}, &logger)

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, passwordResetEmail("player@example.com", "https://tunehub.test/?reset_token=x", time.Hour))

	assert.Equal(t, []string{"noreply@tunehub.test"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"player@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{passwordResetSubject}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "text/html"))
	assert.True(t, strings.Contains(buf.String(), "text/plain"))
}

func TestSend_NoRecipients(t *testing.T) {
	logger := zerolog.Nop()
	m := newMailer(&mailerConfig{Host: "smtp.local", Port: 1025, From: "noreply@tunehub.test"}, &logger)

	assert.EqualError(t, m.Send(Email{Subject: "hi"}), "no recipients specified")
}

func TestSendPasswordReset_CanceledContext(t *testing.T) {
	logger := zerolog.Nop()
	m := newMailer(&mailerConfig{Host: "smtp.local", Port: 1025, From: "noreply@tunehub.test"}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SendPasswordReset(ctx, "a@b.c", "https://x", time.Hour), context.Canceled)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	m := NewLogMailer(&logger)
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@b.c", "https://tunehub.test/?reset_token=x", time.Hour))

	assert.Contains(t, buf.String(), `"reset_url":"https://tunehub.test/?reset_token=x"`)
	assert.Contains(t, buf.String(), `"to":"a@b.c"`)
}
