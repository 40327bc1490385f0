package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
)

// Service mutates wallet balances under a per-wallet advisory lock inside a
// unit of work. WALLET payments debit here at initiation; wallet top-ups
// credit here exactly once, on the PENDING -> COMPLETED transition.
type Service struct {
	uow          persistence.UnitOfWork
	lockRepo     persistence.WalletLockRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	lockTimeout  time.Duration
}

// NewService creates a wallet service.
func NewService(
	uow persistence.UnitOfWork,
	lockRepo persistence.WalletLockRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	lockTimeout time.Duration,
) *Service {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Service{
		uow:          uow,
		lockRepo:     lockRepo,
		timeProvider: timeProvider,
		logger:       logger,
		lockTimeout:  lockTimeout,
	}
}

// Balance returns the user's wallet balance as a decimal string.
func (s *Service) Balance(ctx context.Context, userID uint64) (string, error) {
	wallet, err := s.uow.GetWalletRepository(ctx).GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return wallet.BalanceString(), nil
}

// Debit withdraws amountKobo from the user's wallet, failing with a detailed
// insufficient-balance error when the wallet cannot cover it.
func (s *Service) Debit(ctx context.Context, userID uint64, amountKobo int64, transactionRef string) error {
	return s.withLockedWallet(ctx, userID, transactionRef, func(wallet *entity.Wallet) error {
		if err := wallet.Debit(amountKobo, s.timeProvider); err != nil {
			return errs.NewInsufficientBalanceError(
				userID,
				entity.KoboToString(amountKobo),
				wallet.BalanceString(),
			)
		}
		return nil
	})
}

// Credit deposits amountKobo into the user's wallet, creating the wallet on
// first use so top-ups for new users succeed.
func (s *Service) Credit(ctx context.Context, userID uint64, amountKobo int64, transactionRef string) error {
	if err := s.ensureWallet(ctx, userID); err != nil {
		return err
	}
	return s.withLockedWallet(ctx, userID, transactionRef, func(wallet *entity.Wallet) error {
		wallet.Credit(amountKobo, s.timeProvider)
		return nil
	})
}

// WithUserLock runs fn while holding the user's advisory lock, without
// opening a database transaction. Callers use it to serialize read-then-write
// sequences that span other stores, such as the refund ledger cap check.
func (s *Service) WithUserLock(ctx context.Context, userID uint64, fn func() error) error {
	if userID == 0 {
		return errs.ErrInvalidUserID
	}

	if err := s.lockRepo.AcquireLock(ctx, userID, s.lockTimeout); err != nil {
		s.logger.Warn("Could not acquire wallet lock", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err
	}
	defer func() {
		if err := s.lockRepo.ReleaseLock(ctx, userID); err != nil {
			s.logger.Warn("Failed to release wallet lock", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}()

	return fn()
}

// ensureWallet creates an empty wallet if the user has none yet.
func (s *Service) ensureWallet(ctx context.Context, userID uint64) error {
	repo := s.uow.GetWalletRepository(ctx)
	_, err := repo.GetByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrWalletNotFound) {
		return err
	}

	wallet, err := entity.NewWallet(userID, "0.00", s.timeProvider)
	if err != nil {
		return err
	}
	return repo.Create(ctx, wallet)
}

// withLockedWallet acquires the wallet lock, runs the mutation inside a
// database transaction and releases the lock afterwards.
func (s *Service) withLockedWallet(
	ctx context.Context,
	userID uint64,
	transactionRef string,
	mutate func(wallet *entity.Wallet) error,
) error {
	if userID == 0 {
		return errs.ErrInvalidUserID
	}

	if err := s.lockRepo.AcquireLock(ctx, userID, s.lockTimeout); err != nil {
		s.logger.Warn("Could not acquire wallet lock", map[string]any{
			"user_id":         userID,
			"transaction_ref": transactionRef,
			"error":           err.Error(),
		})
		return err
	}
	defer func() {
		if err := s.lockRepo.ReleaseLock(ctx, userID); err != nil {
			s.logger.Warn("Failed to release wallet lock", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin wallet transaction: %w", err)
	}

	repo := s.uow.GetWalletRepository(txCtx)
	wallet, err := repo.GetByUserID(txCtx, userID)
	if err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := mutate(wallet); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := repo.Update(txCtx, wallet); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return fmt.Errorf("failed to commit wallet transaction: %w", err)
	}

	s.logger.Info("Wallet balance modified", map[string]any{
		"user_id":         userID,
		"transaction_ref": transactionRef,
		"new_balance":     wallet.BalanceString(),
	})
	return nil
}
