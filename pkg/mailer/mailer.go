// Package mailer is the outbound mail boundary. Delivery infrastructure is
// deployment-specific; the default implementation records what would have
// been sent so the verification flow is observable in development.
package mailer

import "go.uber.org/zap"

// Mailer sends transactional mail.
type Mailer interface {
	SendVerificationEmail(to, companyName, token string) error
}

// LogMailer writes outbound mail to the log instead of delivering it.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationEmail(to, companyName, token string) error {
	m.log.Info("verification email",
		zap.String("to", to),
		zap.String("company", companyName),
		zap.String("token", token))
	return nil
}
