package alerts

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	Recipients   []string `json:"recipients"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.Recipients) > 0
}

// EmailSender mails alerts to a fixed list of recipients.
type EmailSender struct {
	config SmtpConfig
}

func NewEmailSender(config SmtpConfig) EmailSender {
	if config.Port == 0 {
		config.Port = 587
	}
	return EmailSender{config: config}
}

func formatAlert(alert Alert) (subject string, body string) {
	subject = fmt.Sprintf("[WildGuard %s] %s", alert.Level, alert.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "A %s threat listing was detected (score %d/100).\n\n", alert.Level, alert.Score)
	fmt.Fprintf(&b, "Title: %s\n", alert.Title)
	if alert.Platform != "" {
		fmt.Fprintf(&b, "Platform: %s\n", alert.Platform)
	}
	if alert.URL != "" {
		fmt.Fprintf(&b, "Link: %s\n", alert.URL)
	}
	if len(alert.Species) > 0 {
		fmt.Fprintf(&b, "Species: %s\n", strings.Join(alert.Species, ", "))
	}
	if alert.EvidenceID != "" {
		fmt.Fprintf(&b, "Evidence package: %s\n", alert.EvidenceID)
	}
	if alert.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", alert.Message)
	}
	fmt.Fprintf(&b, "\nDetected at %s.\n", alert.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return subject, b.String()
}

func (s EmailSender) Send(ctx context.Context, alert Alert) error {
	ctx, span := tracer.Start(ctx, "EmailSender.Send")
	defer span.End()

	if !s.config.Enabled() {
		return errors.New("smtp is not configured")
	}

	subject, body := formatAlert(alert)
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("WildGuard <%s>", s.config.EmailAddress)
	mail.To = s.config.Recipients
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.config.Server, s.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", s.config.EmailAddress, s.config.Password, s.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
