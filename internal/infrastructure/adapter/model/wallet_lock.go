package model

import (
	"time"
)

// WalletLock represents an advisory lock row serializing wallet mutations
type WalletLock struct {
	UserID    uint64    `gorm:"primaryKey"`
	LockedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for WalletLock
func (WalletLock) TableName() string {
	return "wallet_locks"
}
