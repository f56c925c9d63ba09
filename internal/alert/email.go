package alert

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// EmailConfig holds SMTP settings for the email channel
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailChannel delivers alert notifications over SMTP, one message per
// recipient
type EmailChannel struct {
	logger *zap.Logger
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailChannel creates an SMTP-backed notification channel
func NewEmailChannel(config EmailConfig, logger *zap.Logger) *EmailChannel {
	return &EmailChannel{
		logger: logger.Named("email"),
		config: config,
		send:   smtp.SendMail,
	}
}

// Name implements Channel
func (c *EmailChannel) Name() string {
	return "email"
}

// Notify implements Channel
func (c *EmailChannel) Notify(ctx context.Context, recipient model.Staff, msg Message) error {
	auth := smtp.PlainAuth("",
		c.config.Username,
		c.config.Password,
		c.config.Host)

	body := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n",
		c.config.From,
		recipient.Email,
		msg.Subject,
		msg.Body)

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	if err := c.send(addr, auth, c.config.From, []string{recipient.Email}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", recipient.Email, err)
	}

	c.logger.Debug("Sent alert email",
		zap.String("to", recipient.Email),
		zap.String("subject", msg.Subject))

	return nil
}
