package dto

import (
	"github.com/quicrefill/customer-service/internal/domain/entity"
)

// CardDetailsRequest carries card data for a CARD charge. Request-scoped
// only: handed to the gateway client and discarded, never persisted or
// logged.
type CardDetailsRequest struct {
	CardNumber  string `json:"cardNumber"`
	CVV         string `json:"cvv"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	PIN         string `json:"pin,omitempty"`
	BillingZip  string `json:"billingZip,omitempty"`
}

// ToEntity converts the DTO to the domain card details
func (c *CardDetailsRequest) ToEntity() *entity.CardDetails {
	if c == nil {
		return nil
	}
	return &entity.CardDetails{
		Number:      c.CardNumber,
		CVV:         c.CVV,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		PIN:         c.PIN,
		BillingZip:  c.BillingZip,
	}
}

// InitiatePaymentRequest represents the API request for initiating a payment
type InitiatePaymentRequest struct {
	Amount                   string              `json:"amount" binding:"required"`
	PaymentMethod            string              `json:"paymentMethod" binding:"required"`
	TransactionRef           string              `json:"transactionRef,omitempty"`
	VendorID                 string              `json:"vendorId,omitempty"`
	ProductType              string              `json:"productType,omitempty"`
	ServiceType              string              `json:"serviceType,omitempty"`
	IsWalletTopUp            bool                `json:"isWalletTopUp,omitempty"`
	ItemID                   string              `json:"itemId,omitempty"`
	VoucherCode              string              `json:"voucherCode,omitempty"`
	MeterNumber              string              `json:"meterNumber,omitempty"`
	DestinationBankCode      string              `json:"destinationBankCode,omitempty"`
	DestinationAccountNumber string              `json:"destinationAccountNumber,omitempty"`
	CardDetails              *CardDetailsRequest `json:"cardDetails,omitempty"`
}

// VerifyPaymentRequest represents the API request for verifying a payment
type VerifyPaymentRequest struct {
	TransactionRef string `json:"transactionRef" binding:"required"`
	OTP            string `json:"otp,omitempty"`
	FlwRef         string `json:"flwRef,omitempty"`
	TokenID        string `json:"tokenId,omitempty"`
}

// AuthorizePaymentRequest represents the API request for completing a 3DS challenge
type AuthorizePaymentRequest struct {
	TransactionRef    string             `json:"transactionRef" binding:"required"`
	FlwRef            string             `json:"flwRef,omitempty"`
	AuthorizationData CardDetailsRequest `json:"authorizationData" binding:"required"`
}

// RefundPaymentRequest represents the API request for refunding a payment
type RefundPaymentRequest struct {
	TransactionRef   string `json:"transactionRef" binding:"required"`
	Amount           string `json:"amount" binding:"required"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

// CancelPaymentRequest represents the API request for cancelling a payment
type CancelPaymentRequest struct {
	TransactionRef string `json:"transactionRef" binding:"required"`
}

// VerifyBVNRequest represents the API request for BVN identity verification
type VerifyBVNRequest struct {
	BVN            string `json:"bvn" binding:"required"`
	BankName       string `json:"bankName" binding:"required"`
	AccountNumber  string `json:"accountNumber" binding:"required"`
	TransactionRef string `json:"transactionRef,omitempty"`
}

// PaymentResponse represents a payment in API responses. Card details never
// appear here because they are never stored.
type PaymentResponse struct {
	TransactionRef string `json:"transactionRef"`
	UserID         uint64 `json:"userId"`
	VendorID       string `json:"vendorId,omitempty"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"paymentMethod"`
	Status         string `json:"status"`
	ProductType    string `json:"productType,omitempty"`
	ServiceType    string `json:"serviceType,omitempty"`
	IsWalletTopUp  bool   `json:"isWalletTopUp,omitempty"`
	GatewayRef     string `json:"gatewayRef,omitempty"`
	RequiresOTP    bool   `json:"requiresOtp,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
	CreatedAt      string `json:"createdAt"`
	ProcessedAt    string `json:"processedAt,omitempty"`
}

// PaymentFromEntity converts a payment entity to its API representation
func PaymentFromEntity(p *entity.Payment) PaymentResponse {
	resp := PaymentResponse{
		TransactionRef: p.TransactionRef,
		UserID:         p.UserID,
		VendorID:       p.VendorID,
		Amount:         p.Amount,
		PaymentMethod:  string(p.Method),
		Status:         string(p.Status),
		ProductType:    p.ProductType,
		ServiceType:    p.ServiceType,
		IsWalletTopUp:  p.WalletTopUp,
		GatewayRef:     p.GatewayRef,
		RequiresOTP:    p.RequiresOTP,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.ProcessedAt != nil {
		resp.ProcessedAt = p.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// InitiatePaymentResponse wraps the created payment
type InitiatePaymentResponse struct {
	Message string          `json:"message"`
	Payment PaymentResponse `json:"payment"`
}

// VerificationResponse wraps a reconciliation result
type VerificationResponse struct {
	Message string                     `json:"message"`
	Result  *entity.VerificationResult `json:"result"`
}

// RefundResponse wraps a recorded refund
type RefundResponse struct {
	Message        string `json:"message"`
	TransactionRef string `json:"transactionRef"`
	Amount         string `json:"amount"`
}

// WalletBalanceResponse represents the API response for a wallet balance
type WalletBalanceResponse struct {
	UserID  uint64 `json:"userId"`
	Balance string `json:"balance"`
}
