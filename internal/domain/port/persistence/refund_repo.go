package persistence

import (
	"context"

	"github.com/quicrefill/customer-service/internal/domain/entity"
)

// RefundRepository stores the refund ledger. Entries are append-only.
type RefundRepository interface {
	// Create appends a refund ledger entry.
	Create(ctx context.Context, refund *entity.Refund) error

	// TotalRefundedKobo returns the running refund total for a payment.
	// The orchestrator caps this total at the original payment amount.
	TotalRefundedKobo(ctx context.Context, transactionRef string) (int64, error)

	// ListByPayment returns all refund entries for a payment, oldest first.
	ListByPayment(ctx context.Context, transactionRef string) ([]*entity.Refund, error)
}
