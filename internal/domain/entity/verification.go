package entity

// VerificationResult is the outcome of reconciling a payment against the
// gateway's authoritative status.
type VerificationResult struct {
	TransactionRef string        `json:"transactionRef"`
	GatewayRef     string        `json:"gatewayRef,omitempty"`
	Status         PaymentStatus `json:"status"`
	Amount         string        `json:"amount"`
	Method         PaymentMethod `json:"paymentMethod"`
	RequiresOTP    bool          `json:"requiresOtp,omitempty"`
	Message        string        `json:"message,omitempty"`
}

// ResultFromPayment builds a verification result from stored payment state.
func ResultFromPayment(p *Payment, message string) *VerificationResult {
	return &VerificationResult{
		TransactionRef: p.TransactionRef,
		GatewayRef:     p.GatewayRef,
		Status:         p.Status,
		Amount:         p.Amount,
		Method:         p.Method,
		RequiresOTP:    p.RequiresOTP,
		Message:        message,
	}
}
