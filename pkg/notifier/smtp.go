package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPNotifier sends HTML mail through an SMTP relay.
type SMTPNotifier struct {
	client *mail.Client
	from   string
}

// NewSMTP builds a notifier for the given relay. Credentials are plain SMTP
// auth over mandatory TLS.
func NewSMTP(host string, port int, username, password, from string) (*SMTPNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPNotifier{client: client, from: from}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
