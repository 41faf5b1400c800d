package mail

import (
	"context"
	"log/slog"

	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
)

// LogMailer writes password reset links to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

var _ portssvc.Mailer = (*LogMailer)(nil)

func (m *LogMailer) SendPasswordReset(ctx context.Context, email string, resetURL string) error {
	m.logger.InfoContext(ctx, "Password reset requested", slog.String("email", email), slog.String("reset_url", resetURL))
	return nil
}
