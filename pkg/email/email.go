package email

import (
	"context"
	"fmt"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Mailer sends plain-text mail through an external relay.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ResendMailer delivers mail through the Resend API. In development
// mode it logs the message instead of sending it.
type ResendMailer struct {
	client *resend.Client
	from   string
	isDev  bool
}

func NewResendMailer(apiKey, from string, isDev bool) *ResendMailer {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &ResendMailer{
		client: client,
		from:   from,
		isDev:  isDev,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.isDev {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"body":    body,
		}).Info("Email sent (dev mode)")
		return nil
	}

	if m.client == nil {
		return fmt.Errorf("%w: mailer not configured (missing RESEND_API_KEY)", apperrors.ErrMailUnavailable)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		logrus.WithError(err).WithField("to", to).Error("Failed to send email")
		return fmt.Errorf("%w: %v", apperrors.ErrMailUnavailable, err)
	}

	logrus.WithField("to", to).Info("Email sent")
	return nil
}
