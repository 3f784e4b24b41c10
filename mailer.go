package auth

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/resend/resend-go/v2"
)

var _ NotificationSink = (*ResendMailer)(nil)

// ResendMailer delivers notification emails through the Resend API.
type ResendMailer struct {
	client      *resend.Client
	from        string
	baseURL     string
	confirmPath string
	resetPath   string
}

// NewResendMailer builds a mailer. baseURL is the public origin used to
// construct confirmation and reset links, e.g. "https://app.example.com".
func NewResendMailer(apiKey, from, baseURL string) *ResendMailer {
	return &ResendMailer{
		client:      resend.NewClient(apiKey),
		from:        from,
		baseURL:     strings.TrimRight(baseURL, "/"),
		confirmPath: "/auth/confirm-email",
		resetPath:   "/auth/reset-password",
	}
}

// Send implements NotificationSink.
func (m *ResendMailer) Send(ctx context.Context, kind NotificationKind, to Recipient, params NotificationParams) error {
	subject, text, err := m.compose(kind, to, params)
	if err != nil {
		return err
	}

	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to.Email},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "email delivery failed").
			WithMetadata(map[string]any{"kind": string(kind)})
	}
	return nil
}

func (m *ResendMailer) compose(kind NotificationKind, to Recipient, params NotificationParams) (string, string, error) {
	name := firstName(to.Name)

	switch kind {
	case NotificationVerification:
		link := params.URL
		if link == "" {
			link = fmt.Sprintf("%s%s?token=%s", m.baseURL, m.confirmPath, params.Code)
		}
		return "Confirm your email address",
			fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening the link below. It expires in 15 minutes.\n\n%s\n", name, link),
			nil
	case NotificationReset:
		link := params.URL
		if link == "" {
			link = fmt.Sprintf("%s%s?token=%s", m.baseURL, m.resetPath, params.Code)
		}
		return "Reset your password",
			fmt.Sprintf("Hi %s,\n\nReset your password by opening the link below. It expires in one hour.\n\n%s\n\nIf you did not request this you can ignore this email.\n", name, link),
			nil
	case NotificationTwoFactor:
		return "Your sign in code",
			fmt.Sprintf("Hi %s,\n\nYour sign in code is:\n\n%s\n\nIt expires in 15 minutes.\n", name, params.Code),
			nil
	}

	return "", "", goerrors.New("unknown notification kind", goerrors.CategoryOperation).
		WithMetadata(map[string]any{"kind": string(kind)})
}

func firstName(name string) string {
	if name == "" {
		return "there"
	}
	return strings.Split(name, " ")[0]
}
