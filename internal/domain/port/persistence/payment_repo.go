package persistence

import (
	"context"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
)

// ListFilter narrows and pages a transaction history query.
// Page and Limit are 1-indexed and positive; repositories apply them as given.
type ListFilter struct {
	UserID    uint64
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	Status    entity.PaymentStatus
	Method    entity.PaymentMethod
}

// PaymentRepository defines the durable store for payment intents.
// The store is the only authority for payment status.
type PaymentRepository interface {
	// Create saves a new payment. The transaction reference carries a unique
	// constraint, so a concurrent duplicate insert surfaces as
	// ErrDuplicatePayment rather than a second row.
	//
	// Possible errors:
	// - ErrDuplicatePayment: a payment with the same reference already exists
	// - ErrDatabaseConnection: the database is unreachable
	Create(ctx context.Context, payment *entity.Payment) error

	// GetByRef retrieves a payment by its transaction reference.
	//
	// Possible errors:
	// - ErrPaymentNotFound
	// - ErrDatabaseConnection
	GetByRef(ctx context.Context, transactionRef string) (*entity.Payment, error)

	// ExistsByRef checks if a payment with the given reference exists.
	// Used for the idempotency fast path.
	ExistsByRef(ctx context.Context, transactionRef string) (bool, error)

	// UpdateStatusIfPending performs the conditional terminal transition:
	// "set status = X where transaction_ref = ? and status = PENDING".
	// Returns true when this caller performed the transition and false when
	// the payment was already terminal (racing observer lost, which is fine).
	//
	// Possible errors:
	// - ErrPaymentNotFound: no payment with the given reference
	// - ErrDatabaseConnection
	UpdateStatusIfPending(
		ctx context.Context,
		transactionRef string,
		status entity.PaymentStatus,
		gatewayRef string,
		failureReason string,
		processedAt time.Time,
	) (bool, error)

	// SetGatewayRef records the vendor charge reference and OTP sub-state
	// obtained at initiation. Only meaningful while the payment is PENDING.
	SetGatewayRef(ctx context.Context, transactionRef, gatewayRef string, requiresOTP bool) error

	// List returns a page of payments matching the filter plus the total count.
	List(ctx context.Context, filter ListFilter) ([]*entity.Payment, int64, error)

	// CountByStatus returns how many of the user's payments carry the given
	// status; an empty status counts all of them. Used for success-rate
	// summaries.
	CountByStatus(ctx context.Context, userID uint64, status entity.PaymentStatus) (int64, error)
}
