package persistence

import (
	"context"
	"time"
)

// WalletLockRepository provides advisory per-wallet locks so concurrent
// debits/credits against one wallet serialize without a global lock.
type WalletLockRepository interface {
	// AcquireLock locks the wallet for the given duration.
	//
	// Possible errors:
	// - ErrWalletLocked: another operation holds an unexpired lock
	// - ErrDatabaseConnection
	AcquireLock(ctx context.Context, userID uint64, duration time.Duration) error

	// ReleaseLock releases the wallet lock. Releasing an expired or absent
	// lock is not an error.
	ReleaseLock(ctx context.Context, userID uint64) error
}
