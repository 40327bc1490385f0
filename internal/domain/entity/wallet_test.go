package entity

import (
	"testing"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	mockTime := fixedTimeProvider()

	t.Run("Valid wallet", func(t *testing.T) {
		w, err := NewWallet(42, "100.00", mockTime)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), w.Balance())
		assert.Equal(t, "100.00", w.BalanceString())
	})

	t.Run("Zero balance allowed", func(t *testing.T) {
		w, err := NewWallet(42, "0.00", mockTime)
		require.NoError(t, err)
		assert.Equal(t, int64(0), w.Balance())
	})

	t.Run("Zero user rejected", func(t *testing.T) {
		_, err := NewWallet(0, "100.00", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})

	t.Run("Invalid balance rejected", func(t *testing.T) {
		_, err := NewWallet(42, "abc", mockTime)
		assert.Error(t, err)
	})
}

func TestWalletDebitCredit(t *testing.T) {
	mockTime := fixedTimeProvider()

	t.Run("Debit within balance", func(t *testing.T) {
		w, _ := NewWallet(42, "100.00", mockTime)
		require.NoError(t, w.Debit(2500, mockTime))
		assert.Equal(t, int64(7500), w.Balance())
	})

	t.Run("Debit entire balance", func(t *testing.T) {
		w, _ := NewWallet(42, "100.00", mockTime)
		require.NoError(t, w.Debit(10000, mockTime))
		assert.Equal(t, int64(0), w.Balance())
	})

	t.Run("Overdraft rejected without mutation", func(t *testing.T) {
		w, _ := NewWallet(42, "100.00", mockTime)
		err := w.Debit(10001, mockTime)
		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
		assert.Equal(t, int64(10000), w.Balance())
	})

	t.Run("Credit", func(t *testing.T) {
		w, _ := NewWallet(42, "0.00", mockTime)
		w.Credit(1234, mockTime)
		assert.Equal(t, "12.34", w.BalanceString())
	})

	t.Run("CanDebit", func(t *testing.T) {
		w, _ := NewWallet(42, "10.00", mockTime)
		assert.True(t, w.CanDebit(1000))
		assert.False(t, w.CanDebit(1001))
	})
}
