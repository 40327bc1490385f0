package notification

import "context"

// PaymentNotice carries the details for a payment state-transition message.
type PaymentNotice struct {
	UserID         uint64
	Email          string
	TransactionRef string
	Amount         string
	Method         string
	Reason         string // failure reason, when applicable
}

// RefundNotice carries the details for a refund confirmation message.
type RefundNotice struct {
	UserID         uint64
	Email          string
	TransactionRef string
	Amount         string
}

// Notifier dispatches fire-and-forget messages on payment state transitions.
// Implementations must never block the caller on transport I/O and must
// swallow (log) their own failures: a lost email never rolls back a payment.
type Notifier interface {
	PaymentCompleted(ctx context.Context, notice PaymentNotice)
	PaymentFailed(ctx context.Context, notice PaymentNotice)
	RefundProcessed(ctx context.Context, notice RefundNotice)
}
