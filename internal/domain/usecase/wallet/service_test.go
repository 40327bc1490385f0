package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	mockCore "github.com/quicrefill/customer-service/mocks/port/core"
	mockPersistence "github.com/quicrefill/customer-service/mocks/port/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type walletContextKey string

type walletFixture struct {
	uow      *mockPersistence.MockUnitOfWork
	lockRepo *mockPersistence.MockWalletLockRepository
	repo     *mockPersistence.MockWalletRepository
	tp       *mockCore.MockTimeProvider
	txCtx    context.Context
	svc      *Service
}

func newWalletFixture() *walletFixture {
	f := &walletFixture{
		uow:      &mockPersistence.MockUnitOfWork{},
		lockRepo: &mockPersistence.MockWalletLockRepository{},
		repo:     &mockPersistence.MockWalletRepository{},
		tp:       &mockCore.MockTimeProvider{},
		txCtx:    context.WithValue(context.Background(), walletContextKey("tx"), "tx"),
	}
	f.tp.On("Now").Return(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	f.uow.On("GetWalletRepository", mock.Anything).Return(f.repo)
	f.svc = NewService(f.uow, f.lockRepo, f.tp, mockCore.NewMockLogger(), 5*time.Second)
	return f
}

func (f *walletFixture) expectLockedTransaction() {
	f.lockRepo.On("AcquireLock", mock.Anything, uint64(7), 5*time.Second).Return(nil)
	f.lockRepo.On("ReleaseLock", mock.Anything, uint64(7)).Return(nil)
	f.uow.On("Begin", mock.Anything).Return(f.txCtx, nil)
	f.uow.On("Commit", f.txCtx).Return(nil)
	f.uow.On("Rollback", f.txCtx).Return(nil)
}

func (f *walletFixture) wallet(balance string) *entity.Wallet {
	w, err := entity.NewWallet(7, balance, f.tp)
	if err != nil {
		panic(err)
	}
	return w
}

func TestDebitWithinBalance(t *testing.T) {
	f := newWalletFixture()
	f.expectLockedTransaction()

	f.repo.On("GetByUserID", f.txCtx, uint64(7)).Return(f.wallet("200.00"), nil)
	f.repo.On("Update", f.txCtx, mock.MatchedBy(func(w *entity.Wallet) bool {
		return w.Balance() == 15000
	})).Return(nil)

	err := f.svc.Debit(context.Background(), 7, 5000, "QR-1")

	require.NoError(t, err)
	f.uow.AssertCalled(t, "Commit", f.txCtx)
	f.uow.AssertNotCalled(t, "Rollback", f.txCtx)
}

func TestDebitInsufficientBalanceRollsBack(t *testing.T) {
	f := newWalletFixture()
	f.expectLockedTransaction()

	f.repo.On("GetByUserID", f.txCtx, uint64(7)).Return(f.wallet("10.00"), nil)

	err := f.svc.Debit(context.Background(), 7, 5000, "QR-2")

	assert.True(t, errs.IsInsufficientBalanceError(err))
	assert.Contains(t, err.Error(), "required 50.00, available 10.00")
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertCalled(t, "Rollback", f.txCtx)
	f.lockRepo.AssertCalled(t, "ReleaseLock", mock.Anything, uint64(7))
}

func TestCreditCreatesWalletOnFirstUse(t *testing.T) {
	f := newWalletFixture()
	f.expectLockedTransaction()

	// No wallet yet: ensureWallet creates an empty one, then the locked
	// mutation reads it back and credits it.
	f.repo.On("GetByUserID", mock.Anything, uint64(7)).Return(nil, errs.ErrWalletNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(w *entity.Wallet) bool {
		return w.UserID == 7 && w.Balance() == 0
	})).Return(nil)
	f.repo.On("GetByUserID", mock.Anything, uint64(7)).Return(f.wallet("0.00"), nil).Once()
	f.repo.On("Update", f.txCtx, mock.MatchedBy(func(w *entity.Wallet) bool {
		return w.Balance() == 10000
	})).Return(nil)

	err := f.svc.Credit(context.Background(), 7, 10000, "QR-3")

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestCreditExistingWallet(t *testing.T) {
	f := newWalletFixture()
	f.expectLockedTransaction()

	f.repo.On("GetByUserID", mock.Anything, uint64(7)).Return(f.wallet("25.00"), nil)
	f.repo.On("Update", f.txCtx, mock.MatchedBy(func(w *entity.Wallet) bool {
		return w.Balance() == 7500
	})).Return(nil)

	err := f.svc.Credit(context.Background(), 7, 5000, "QR-4")

	require.NoError(t, err)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDebitLockContention(t *testing.T) {
	f := newWalletFixture()

	f.lockRepo.On("AcquireLock", mock.Anything, uint64(7), 5*time.Second).
		Return(errs.ErrWalletLocked)

	err := f.svc.Debit(context.Background(), 7, 5000, "QR-5")

	assert.ErrorIs(t, err, errs.ErrWalletLocked)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestDebitZeroUserRejectedBeforeLocking(t *testing.T) {
	f := newWalletFixture()

	err := f.svc.Debit(context.Background(), 0, 5000, "QR-6")

	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestBalanceReadsWithoutLocking(t *testing.T) {
	f := newWalletFixture()

	f.repo.On("GetByUserID", mock.Anything, uint64(7)).Return(f.wallet("150.50"), nil)

	balance, err := f.svc.Balance(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "150.50", balance)
	f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithUserLockRunsUnderLock(t *testing.T) {
	f := newWalletFixture()
	f.lockRepo.On("AcquireLock", mock.Anything, uint64(7), 5*time.Second).Return(nil)
	f.lockRepo.On("ReleaseLock", mock.Anything, uint64(7)).Return(nil)

	ran := false
	err := f.svc.WithUserLock(context.Background(), 7, func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	f.lockRepo.AssertCalled(t, "ReleaseLock", mock.Anything, uint64(7))
	// No database transaction is opened for lock-only sections
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestWithUserLockContention(t *testing.T) {
	f := newWalletFixture()
	f.lockRepo.On("AcquireLock", mock.Anything, uint64(7), 5*time.Second).Return(errs.ErrWalletLocked)

	ran := false
	err := f.svc.WithUserLock(context.Background(), 7, func() error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, errs.ErrWalletLocked)
	assert.False(t, ran)
	f.lockRepo.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything)
}

func TestWithUserLockRejectsZeroUser(t *testing.T) {
	f := newWalletFixture()

	err := f.svc.WithUserLock(context.Background(), 0, func() error { return nil })

	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	f.lockRepo.AssertNotCalled(t, "AcquireLock", mock.Anything, mock.Anything, mock.Anything)
}
