package entity

import (
	"time"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
)

// Wallet holds a user's spendable balance. WALLET payments debit it and
// wallet top-ups credit it. Balance is kept in kobo to avoid floating point
// precision issues.
type Wallet struct {
	UserID    uint64
	balance   int64 // kobo, private
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWallet creates a wallet with the given initial balance.
func NewWallet(userID uint64, initialBalance string, timeProvider coreport.TimeProvider) (*Wallet, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	kobo, err := ValidateAndConvertAmount(initialBalance)
	if err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	return &Wallet{
		UserID:    userID,
		balance:   kobo,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Balance returns the current balance in kobo.
func (w *Wallet) Balance() int64 {
	return w.balance
}

// BalanceString returns the balance as a decimal string with 2 places.
func (w *Wallet) BalanceString() string {
	return EnsureTwoDecimalPlaces(KoboToString(w.balance))
}

// SetBalance replaces the balance directly. For repository hydration only.
func (w *Wallet) SetBalance(kobo int64, timeProvider coreport.TimeProvider) {
	w.balance = kobo
	w.UpdatedAt = timeProvider.Now()
}

// CanDebit checks whether the wallet covers the given kobo amount.
func (w *Wallet) CanDebit(kobo int64) bool {
	return w.balance >= kobo
}

// Credit adds the amount to the balance.
func (w *Wallet) Credit(kobo int64, timeProvider coreport.TimeProvider) {
	w.balance += kobo
	w.UpdatedAt = timeProvider.Now()
}

// Debit subtracts the amount, failing when the balance is insufficient.
func (w *Wallet) Debit(kobo int64, timeProvider coreport.TimeProvider) error {
	if w.balance < kobo {
		return errs.ErrInsufficientBalance
	}
	w.balance -= kobo
	w.UpdatedAt = timeProvider.Now()
	return nil
}
