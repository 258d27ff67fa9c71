package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/interfaces"
)

// LogSender is a development stand-in for a real mailer: it logs that a
// verification email would have been delivered. The production deployment
// swaps in the SMTP collaborator behind the same interface.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a logging notification sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendVerificationEmail logs the delivery instead of sending it.
func (s *LogSender) SendVerificationEmail(_ context.Context, email, username, token string) error {
	s.logger.Info("verification email dispatched",
		zap.String("email", email),
		zap.String("username", username),
		zap.Int("token_length", len(token)),
	)
	return nil
}

var _ interfaces.NotificationService = (*LogSender)(nil)
