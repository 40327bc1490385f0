package persistence

import (
	"context"
)

// UnitOfWork coordinates multi-repository mutations inside one database
// transaction, e.g. a wallet debit plus the payment row it pays for.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetPaymentRepository returns a payment repository bound to the current transaction
	GetPaymentRepository(ctx context.Context) PaymentRepository

	// GetWalletRepository returns a wallet repository bound to the current transaction
	GetWalletRepository(ctx context.Context) WalletRepository

	// GetRefundRepository returns a refund repository bound to the current transaction
	GetRefundRepository(ctx context.Context) RefundRepository
}
