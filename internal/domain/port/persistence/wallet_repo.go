package persistence

import (
	"context"

	"github.com/quicrefill/customer-service/internal/domain/entity"
)

// WalletRepository stores user wallet balances.
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet.
	//
	// Possible errors:
	// - ErrWalletNotFound
	// - ErrDatabaseConnection
	GetByUserID(ctx context.Context, userID uint64) (*entity.Wallet, error)

	// Create saves a new wallet.
	Create(ctx context.Context, wallet *entity.Wallet) error

	// Update persists a wallet's balance. Must run inside the unit of work
	// that holds the wallet lock.
	Update(ctx context.Context, wallet *entity.Wallet) error
}
