package notification

import (
	"context"
	"fmt"

	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	notifport "github.com/quicrefill/customer-service/internal/domain/port/notification"
	"github.com/wneessen/go-mail"
)

// Config holds SMTP transport settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer dispatches payment notifications over SMTP. Every send runs on its
// own goroutine and failures are logged, never returned: a lost email must
// not roll back or delay a payment state transition.
type Mailer struct {
	config Config
	logger coreport.Logger
}

// NewMailer creates an SMTP-backed notifier. With no host configured it
// degrades to a no-op that only logs the notices.
func NewMailer(config Config, logger coreport.Logger) *Mailer {
	if config.Host == "" {
		logger.Warn("SMTP host not configured, payment notifications will only be logged", nil)
	}
	return &Mailer{
		config: config,
		logger: logger,
	}
}

// PaymentCompleted sends a payment receipt
func (m *Mailer) PaymentCompleted(ctx context.Context, notice notifport.PaymentNotice) {
	subject := fmt.Sprintf("Payment confirmed: %s", notice.TransactionRef)
	body := fmt.Sprintf(
		"Your payment of %s via %s was successful.\nReference: %s\n",
		notice.Amount, notice.Method, notice.TransactionRef,
	)
	m.dispatch(notice.Email, subject, body, map[string]any{
		"event":           "payment_completed",
		"user_id":         notice.UserID,
		"transaction_ref": notice.TransactionRef,
	})
}

// PaymentFailed sends a payment failure notice
func (m *Mailer) PaymentFailed(ctx context.Context, notice notifport.PaymentNotice) {
	subject := fmt.Sprintf("Payment failed: %s", notice.TransactionRef)
	body := fmt.Sprintf(
		"Your payment of %s via %s could not be completed.\nReference: %s\nReason: %s\n",
		notice.Amount, notice.Method, notice.TransactionRef, notice.Reason,
	)
	m.dispatch(notice.Email, subject, body, map[string]any{
		"event":           "payment_failed",
		"user_id":         notice.UserID,
		"transaction_ref": notice.TransactionRef,
	})
}

// RefundProcessed sends a refund confirmation
func (m *Mailer) RefundProcessed(ctx context.Context, notice notifport.RefundNotice) {
	subject := fmt.Sprintf("Refund processed: %s", notice.TransactionRef)
	body := fmt.Sprintf(
		"A refund of %s has been processed against payment %s.\n",
		notice.Amount, notice.TransactionRef,
	)
	m.dispatch(notice.Email, subject, body, map[string]any{
		"event":           "refund_processed",
		"user_id":         notice.UserID,
		"transaction_ref": notice.TransactionRef,
	})
}

// dispatch sends the message asynchronously. The send is detached from the
// request context so an already-answered HTTP request cannot cancel it.
func (m *Mailer) dispatch(to, subject, body string, fields map[string]any) {
	m.logger.Info("Dispatching payment notification", fields)

	if m.config.Host == "" || to == "" {
		return
	}

	go func() {
		if err := m.send(to, subject, body); err != nil {
			fields["error"] = err.Error()
			m.logger.Error("Failed to send payment notification", fields)
		}
	}()
}

func (m *Mailer) send(to, subject, body string) error {
	client, err := mail.NewClient(
		m.config.Host,
		mail.WithPort(m.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.Username),
		mail.WithPassword(m.config.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return client.DialAndSend(msg)
}
