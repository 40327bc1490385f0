package model

import (
	"time"
)

// Wallet represents the database model for user wallet balances
type Wallet struct {
	UserID        uint64    `gorm:"primaryKey"`
	BalanceInKobo int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Wallet
func (Wallet) TableName() string {
	return "wallets"
}
