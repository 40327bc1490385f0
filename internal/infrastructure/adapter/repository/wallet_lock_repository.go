package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// WalletLockRepository implements advisory wallet locking using GORM
type WalletLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewWalletLockRepository creates a new WalletLockRepository instance
func NewWalletLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *WalletLockRepository {
	return &WalletLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock attempts to acquire an advisory lock on the wallet. The upsert
// runs as a single statement: the ON CONFLICT branch only takes over a lock
// whose expiry has passed, so a live lock leaves zero rows affected.
func (r *WalletLockRepository) AcquireLock(ctx context.Context, userID uint64, duration time.Duration) error {
	r.logger.Debug("Attempting to acquire wallet lock", map[string]any{
		"user_id":  userID,
		"duration": duration.String(),
	})

	now := r.timeProvider.Now()
	expiresAt := now.Add(duration)

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO wallet_locks (user_id, locked_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE wallet_locks.expires_at <= ?`,
		userID, now, expiresAt, now, now, // INSERT values
		now, // takeover condition for the ON CONFLICT clause
	)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Wallet is already locked", map[string]any{
				"user_id": userID,
			})
			return errs.ErrWalletLocked
		}

		if isContextError(result.Error) {
			r.logger.Warn("Context timeout acquiring wallet lock", map[string]any{
				"user_id": userID,
				"error":   result.Error.Error(),
			})
			return fmt.Errorf("lock acquisition timeout: %w", result.Error)
		}

		r.logger.Error("Database error acquiring wallet lock", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	// Zero rows affected means the conflict branch declined the takeover:
	// another operation holds an unexpired lock.
	if result.RowsAffected == 0 {
		r.logger.Warn("Wallet lock held by another operation", map[string]any{
			"user_id": userID,
		})
		return errs.ErrWalletLocked
	}

	r.logger.Info("Wallet lock acquired", map[string]any{
		"user_id":    userID,
		"locked_at":  now,
		"expires_at": expiresAt,
	})
	return nil
}

// ReleaseLock releases a previously acquired lock. Releasing an absent lock
// is not an error; an unreleased lock expires on its own.
func (r *WalletLockRepository) ReleaseLock(ctx context.Context, userID uint64) error {
	r.logger.Debug("Releasing wallet lock", map[string]any{
		"user_id": userID,
	})

	var lock model.WalletLock
	findResult := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&lock)

	if errors.Is(findResult.Error, gorm.ErrRecordNotFound) {
		r.logger.Debug("No wallet lock found to release, may have already expired", map[string]any{
			"user_id": userID,
		})
		return nil
	}

	if findResult.Error != nil && !isContextError(findResult.Error) {
		r.logger.Error("Error checking wallet lock status", map[string]any{
			"user_id": userID,
			"error":   findResult.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, findResult.Error.Error())
	}

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.WalletLock{})

	// A context timeout here is not critical, the lock expires automatically
	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context timeout releasing wallet lock, lock will expire automatically", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil
	}

	if result.Error != nil {
		r.logger.Error("Failed to release wallet lock", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected > 0 {
		r.logger.Debug("Wallet lock released", map[string]any{
			"user_id": userID,
		})
	}

	return nil
}

// CleanupExpiredLocks removes all expired locks from the database
func (r *WalletLockRepository) CleanupExpiredLocks(ctx context.Context) error {
	now := r.timeProvider.Now()

	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.WalletLock{})

	if result.Error != nil {
		r.logger.Error("Failed to clean up expired wallet locks", map[string]any{
			"error": result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("Expired wallet locks cleanup completed", map[string]any{
		"locks_removed": result.RowsAffected,
	})
	return nil
}
