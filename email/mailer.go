// Package email is the delivery boundary. Rendering and sending mail is
// external to this service; the auth flows only hand over a recipient and a
// one-time token.
package email

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers account emails. Implementations must not block the calling
// transition on slow delivery.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetToken string) error
	SendEmailConfirmation(ctx context.Context, to, confirmToken string) error
}

// LogMailer stands in for a real delivery backend: it records that a send
// would have happened without exposing the token value.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendPasswordReset(_ context.Context, to, _ string) error {
	m.logger.Info().Str("to", to).Msg("password reset email queued")
	return nil
}

func (m *LogMailer) SendEmailConfirmation(_ context.Context, to, _ string) error {
	m.logger.Info().Str("to", to).Msg("email confirmation queued")
	return nil
}
