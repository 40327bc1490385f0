package gateway

import (
	"context"

	"github.com/quicrefill/customer-service/internal/domain/entity"
)

// Status is the gateway's view of a charge. The adapter maps the vendor's
// raw status strings and condition codes into this small set; the
// orchestrator never sees vendor-specific magic values.
type Status string

const (
	// StatusPending means the gateway has not finished processing the charge
	StatusPending Status = "pending"
	// StatusSucceeded means the charge settled successfully
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the gateway definitively rejected the charge
	StatusFailed Status = "failed"
)

// ChargeRequest initiates a charge with the vendor.
type ChargeRequest struct {
	TransactionRef string
	UserID         uint64
	Email          string
	Amount         string // decimal string, 2 places
	Currency       string
	Method         entity.PaymentMethod
	Card           *entity.CardDetails // CARD only; never persisted
	RedirectURL    string              // browser callback target
	Narration      string
}

// ChargeResult is the vendor's synchronous answer to a charge request.
type ChargeResult struct {
	GatewayRef  string
	Status      Status
	RequiresOTP bool   // charge is parked on an OTP/3DS challenge
	AuthURL     string // hosted page or 3DS redirect, when applicable
	AccountInfo string // virtual account / transfer instructions, when applicable
	Message     string
}

// BillRequest initiates an electricity bill payment.
type BillRequest struct {
	TransactionRef           string
	UserID                   uint64
	Amount                   string
	Currency                 string
	MeterNumber              string
	DestinationBankCode      string
	DestinationAccountNumber string
}

// VerifyResult is the vendor's authoritative status for a transaction.
type VerifyResult struct {
	TransactionRef string
	GatewayRef     string
	Status         Status
	Amount         string
	RawMethod      string
	RequiresOTP    bool
	Message        string
}

// MethodStatusInfo describes availability of a payment method at the vendor.
type MethodStatusInfo struct {
	Method    entity.PaymentMethod `json:"paymentMethod"`
	Available bool                 `json:"available"`
	Message   string               `json:"message,omitempty"`
}

// BVNRequest links a bank identity to a user via the vendor's KYC endpoint.
type BVNRequest struct {
	UserID         uint64
	BVN            string
	BankName       string
	AccountNumber  string
	TransactionRef string
}

// BVNResult is the vendor's identity-verification answer.
type BVNResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// Client is the payment vendor contract. Implementations must bound every
// call with a timeout and return ErrGatewayUnavailable for transient
// transport failures, keeping them distinct from definitive declines
// (ErrGatewayDeclined).
type Client interface {
	// Charge starts a generic charge (card, transfer, virtual account, ...)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// PayBill starts an electricity bill payment
	PayBill(ctx context.Context, req BillRequest) (*ChargeResult, error)

	// VerifyTransaction asks the vendor for the authoritative charge status
	VerifyTransaction(ctx context.Context, transactionRef string) (*VerifyResult, error)

	// ValidateCharge submits an OTP for a charge parked on an OTP challenge
	ValidateCharge(ctx context.Context, gatewayRef, otp string) (*VerifyResult, error)

	// AuthorizeCharge completes a 3DS challenge with fresh card authorization data
	AuthorizeCharge(ctx context.Context, transactionRef, gatewayRef string, card entity.CardDetails) (*ChargeResult, error)

	// Refund requests a (possibly partial) refund against a settled charge
	Refund(ctx context.Context, gatewayRef string, amount string) error

	// MethodStatus queries availability of a payment method
	MethodStatus(ctx context.Context, method entity.PaymentMethod) (*MethodStatusInfo, error)

	// ResolveBVN delegates identity-linking verification to the vendor
	ResolveBVN(ctx context.Context, req BVNRequest) (*BVNResult, error)
}
