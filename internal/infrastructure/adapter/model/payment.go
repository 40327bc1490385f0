package model

import (
	"time"
)

// Payment represents the database model for payment intents.
// Card details deliberately have no columns here: they are request-scoped
// and never persisted.
type Payment struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	TransactionRef string `gorm:"uniqueIndex;not null;size:255"`
	UserID         uint64 `gorm:"not null;index"`
	Email          string `gorm:"size:255"`
	VendorID       string `gorm:"size:255"`
	Amount         string `gorm:"not null;size:50"`
	AmountInKobo   int64  `gorm:"not null"`
	Method         string `gorm:"not null;size:50"`
	Status         string `gorm:"not null;size:50;index"`

	ProductType string `gorm:"size:100"`
	ServiceType string `gorm:"size:100"`
	WalletTopUp bool   `gorm:"not null;default:false"`
	ItemID      string `gorm:"size:255"`
	VoucherCode string `gorm:"size:100"`

	MeterNumber              string `gorm:"size:50"`
	DestinationBankCode      string `gorm:"size:20"`
	DestinationAccountNumber string `gorm:"size:20"`

	GatewayRef    string `gorm:"size:255;index"`
	RequiresOTP   bool   `gorm:"not null;default:false"`
	FailureReason string `gorm:"type:text"`

	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
	ProcessedAt *time.Time
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
