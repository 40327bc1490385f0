package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	tport "github.com/quicrefill/customer-service/internal/domain/port/core"
)

// PaymentMethod identifies how a payment is collected
type PaymentMethod string

// Payment methods form a closed set defined in code. Validation never asks
// the database what the valid methods are.
const (
	MethodCard           PaymentMethod = "CARD"
	MethodTransfer       PaymentMethod = "TRANSFER"
	MethodVirtualAccount PaymentMethod = "VIRTUAL_ACCOUNT"
	MethodPayOnDelivery  PaymentMethod = "PAY_ON_DELIVERY"
	MethodWallet         PaymentMethod = "WALLET"
	MethodMonnify        PaymentMethod = "MONNIFY"
)

// PaymentStatus defines possible status values for a payment
type PaymentStatus string

// Status transitions are monotonic: PENDING -> {COMPLETED, FAILED, CANCELLED}.
// Terminal states never transition again.
const (
	StatusPending   PaymentStatus = "PENDING"
	StatusCompleted PaymentStatus = "COMPLETED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"
)

// ServiceTypeElectricity routes a payment to the bill-payment branch and
// requires meter, destination bank and destination account.
const ServiceTypeElectricity = "electricity"

// ValidPaymentMethods returns the closed set of accepted payment methods.
func ValidPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		MethodCard,
		MethodTransfer,
		MethodVirtualAccount,
		MethodPayOnDelivery,
		MethodWallet,
		MethodMonnify,
	}
}

// NormalizePaymentMethod matches a raw method string case-insensitively
// against the valid set. The returned error lists the acceptable values.
func NormalizePaymentMethod(raw string) (PaymentMethod, error) {
	candidate := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	for _, m := range ValidPaymentMethods() {
		if candidate == m {
			return m, nil
		}
	}
	names := make([]string, 0, len(ValidPaymentMethods()))
	for _, m := range ValidPaymentMethods() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("%w: %q is not one of %s",
		errs.ErrInvalidPaymentMethod, raw, strings.Join(names, ", "))
}

// IsTerminal reports whether the status can no longer change.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsValidStatus reports whether the raw status string is a known status.
func IsValidStatus(raw string) bool {
	switch PaymentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CardDetails carries card data for a CARD charge. Request-scoped only:
// passed through to the gateway and discarded, never persisted, never logged.
type CardDetails struct {
	Number      string
	CVV         string
	ExpiryMonth string
	ExpiryYear  string
	PIN         string
	BillingZip  string
}

// Complete reports whether all four mandatory card fields are present.
func (c *CardDetails) Complete() bool {
	if c == nil {
		return false
	}
	return c.Number != "" && c.CVV != "" && c.ExpiryMonth != "" && c.ExpiryYear != ""
}

// Empty reports whether no card data was supplied at all.
func (c *CardDetails) Empty() bool {
	if c == nil {
		return true
	}
	return c.Number == "" && c.CVV == "" && c.ExpiryMonth == "" && c.ExpiryYear == "" && c.PIN == ""
}

// Payment represents a payment intent and its reconciliation state.
// It is the durable financial record: created once, mutated only by
// verification/callback/webhook reconciliation, never hard-deleted.
type Payment struct {
	ID             uint64
	TransactionRef string // unique external reference (client-supplied or generated)
	UserID         uint64
	Email          string // payer contact for notices, captured at initiation
	VendorID       string
	Amount         string // decimal string with 2 places
	AmountInKobo   int64
	Method         PaymentMethod
	Status         PaymentStatus

	// Exactly one of ProductType/ServiceType may be set, and neither when
	// WalletTopUp is true.
	ProductType string
	ServiceType string
	WalletTopUp bool
	ItemID      string
	VoucherCode string

	// Electricity bill destination, required together iff ServiceType is electricity
	MeterNumber              string
	DestinationBankCode      string
	DestinationAccountNumber string

	GatewayRef    string // vendor charge reference (flwRef equivalent)
	RequiresOTP   bool   // gateway reported a pending OTP/3DS challenge
	FailureReason string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}

// PaymentParams is the input for constructing a new payment intent.
type PaymentParams struct {
	TransactionRef           string
	UserID                   uint64
	Email                    string
	VendorID                 string
	Amount                   string
	Method                   PaymentMethod
	ProductType              string
	ServiceType              string
	WalletTopUp              bool
	ItemID                   string
	VoucherCode              string
	MeterNumber              string
	DestinationBankCode      string
	DestinationAccountNumber string
	Card                     *CardDetails
}

// NewPayment creates a payment in PENDING after enforcing the structural
// invariants: positive amount, mutual exclusions, per-method field coupling
// and the electricity destination trio.
func NewPayment(p PaymentParams, timeProvider tport.TimeProvider) (*Payment, error) {
	if p.UserID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if p.TransactionRef == "" {
		return nil, errs.ErrInvalidTransactionRef
	}

	kobo, err := ValidatePositiveAmount(p.Amount)
	if err != nil {
		return nil, err
	}

	if err := ValidateExclusions(p.WalletTopUp, p.ProductType, p.ServiceType); err != nil {
		return nil, err
	}
	if err := ValidateMethodFields(p.Method, p.Card); err != nil {
		return nil, err
	}
	if err := ValidateElectricityFields(p.ServiceType, p.MeterNumber, p.DestinationBankCode, p.DestinationAccountNumber); err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	return &Payment{
		TransactionRef:           p.TransactionRef,
		UserID:                   p.UserID,
		Email:                    strings.TrimSpace(p.Email),
		VendorID:                 p.VendorID,
		Amount:                   EnsureTwoDecimalPlaces(p.Amount),
		AmountInKobo:             kobo,
		Method:                   p.Method,
		Status:                   StatusPending,
		ProductType:              p.ProductType,
		ServiceType:              p.ServiceType,
		WalletTopUp:              p.WalletTopUp,
		ItemID:                   p.ItemID,
		VoucherCode:              p.VoucherCode,
		MeterNumber:              p.MeterNumber,
		DestinationBankCode:      p.DestinationBankCode,
		DestinationAccountNumber: p.DestinationAccountNumber,
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// ValidateExclusions enforces the mutual-exclusion invariants:
// wallet top-ups carry no product/service type, and a payment targets
// either a product or a service, never both.
func ValidateExclusions(walletTopUp bool, productType, serviceType string) error {
	if walletTopUp && (productType != "" || serviceType != "") {
		return errs.ErrWalletTopUpConflict
	}
	if productType != "" && serviceType != "" {
		return errs.ErrProductServiceConflict
	}
	return nil
}

// ValidateMethodFields enforces per-method card coupling: CARD requires the
// four mandatory card fields; TRANSFER and VIRTUAL_ACCOUNT must not carry
// card details at all.
func ValidateMethodFields(method PaymentMethod, card *CardDetails) error {
	switch method {
	case MethodCard:
		if !card.Complete() {
			return errs.ErrCardDetailsRequired
		}
	case MethodTransfer, MethodVirtualAccount:
		if !card.Empty() {
			return errs.ErrCardDetailsNotAllowed
		}
	}
	return nil
}

// ValidateElectricityFields requires meter number, destination bank code and
// destination account number together iff the service type is electricity.
func ValidateElectricityFields(serviceType, meter, bankCode, accountNumber string) error {
	if !strings.EqualFold(serviceType, ServiceTypeElectricity) {
		return nil
	}
	if meter == "" || bankCode == "" || accountNumber == "" {
		return errs.ErrElectricityDetailsRequired
	}
	return nil
}

// IsTerminal reports whether the payment has reached a final status.
func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// IsElectricity reports whether the payment routes to the bill-payment branch.
func (p *Payment) IsElectricity() bool {
	return strings.EqualFold(p.ServiceType, ServiceTypeElectricity)
}

// MarkCompleted moves the payment to COMPLETED. Caller must hold the
// conditional-update guarantee; this only mutates the in-memory entity.
func (p *Payment) MarkCompleted(timeProvider tport.TimeProvider, gatewayRef string) {
	now := timeProvider.Now()
	p.ProcessedAt = &now
	p.UpdatedAt = now
	p.Status = StatusCompleted
	p.RequiresOTP = false
	if gatewayRef != "" {
		p.GatewayRef = gatewayRef
	}
}

// MarkFailed moves the payment to FAILED with a failure reason.
func (p *Payment) MarkFailed(timeProvider tport.TimeProvider, reason string) {
	now := timeProvider.Now()
	p.ProcessedAt = &now
	p.UpdatedAt = now
	p.Status = StatusFailed
	p.RequiresOTP = false
	p.FailureReason = reason
}

// MarkCancelled moves the payment to CANCELLED.
func (p *Payment) MarkCancelled(timeProvider tport.TimeProvider) {
	now := timeProvider.Now()
	p.ProcessedAt = &now
	p.UpdatedAt = now
	p.Status = StatusCancelled
}
