// Package notifier delivers transactional mail (OTP codes, reset links).
// The credential service only depends on the Send contract; transport lives
// entirely behind it.
package notifier

import (
	"context"
	"log"
)

// LogNotifier prints messages instead of sending them. Used in development
// when no SMTP relay is configured.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("mail (not sent) to=%s subject=%q body=%s", to, subject, body)
	return nil
}
