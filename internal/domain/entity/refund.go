package entity

import (
	"time"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	tport "github.com/quicrefill/customer-service/internal/domain/port/core"
)

// Refund is a side-ledger event against a COMPLETED payment. Refunds never
// change the payment status; the ledger's running total is capped at the
// original payment amount.
type Refund struct {
	ID               uint64
	TransactionRef   string // payment this refund applies to
	UserID           uint64
	Amount           string
	AmountInKobo     int64
	PaymentReference string // optional vendor-side refund reference
	GatewayRef       string
	CreatedAt        time.Time
}

// NewRefund validates the amount and builds a ledger entry.
func NewRefund(
	transactionRef string,
	userID uint64,
	amount string,
	paymentReference string,
	timeProvider tport.TimeProvider,
) (*Refund, error) {
	if transactionRef == "" {
		return nil, errs.ErrInvalidTransactionRef
	}
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	kobo, err := ValidatePositiveAmount(amount)
	if err != nil {
		return nil, err
	}

	return &Refund{
		TransactionRef:   transactionRef,
		UserID:           userID,
		Amount:           EnsureTwoDecimalPlaces(amount),
		AmountInKobo:     kobo,
		PaymentReference: paymentReference,
		CreatedAt:        timeProvider.Now(),
	}, nil
}
