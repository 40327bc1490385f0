package model

import (
	"time"
)

// Refund represents the database model for refund ledger entries
type Refund struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	TransactionRef   string    `gorm:"not null;size:255;index"`
	UserID           uint64    `gorm:"not null;index"`
	Amount           string    `gorm:"not null;size:50"`
	AmountInKobo     int64     `gorm:"not null"`
	PaymentReference string    `gorm:"size:255"`
	GatewayRef       string    `gorm:"size:255"`
	CreatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for Refund
func (Refund) TableName() string {
	return "refunds"
}
