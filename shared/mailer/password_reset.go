package mailer

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
)

const passwordResetSubject = "Password Reset Request"

func passwordResetEmail(to, resetURL string, expiresIn time.Duration) Email {
	link := html.EscapeString(resetURL)

	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your TuneHub account.</p>
		<p>If you made this request, follow the link below to choose a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>The link expires in %s.</p>
		<p>If you did not ask for a password reset you can ignore this email.</p>

		<p>See you at the session,</p>
		<p>TuneHub</p>
	`, link, link, expiresIn)

	body := fmt.Sprintf(
		"We received a request to reset the password for your TuneHub account.\n\n"+
			"Reset it here: %s\n\nThe link expires in %s.\n",
		resetURL, expiresIn,
	)

	return Email{
		To:       []string{to},
		Subject:  passwordResetSubject,
		Body:     body,
		HTMLBody: htmlBody,
	}
}

// LogMailer writes reset links to the log instead of sending them.
// Used when no SMTP relay is configured.
type LogMailer struct {
	logger *zerolog.Logger
}

func NewLogMailer(logger *zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string, expiresIn time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.logger.Warn().
		Str("to", to).
		Str("reset_url", resetURL).
		Dur("expires_in", expiresIn).
		Msg("mailer driver is log, password reset email not delivered")

	return nil
}
