package payment

import (
	"fmt"
	"regexp"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
)

var (
	bvnPattern     = regexp.MustCompile(`^\d{11}$`)
	accountPattern = regexp.MustCompile(`^\d{10}$`)
)

// Validator checks payment requests before any gateway traffic. Validation
// failures never reach the vendor.
type Validator struct{}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateInitiate enforces the initiation invariants and returns the
// normalized payment method:
// - method must be in the closed valid set (case-insensitive)
// - amount must be a valid, strictly positive decimal
// - wallet top-up excludes product/service type; product excludes service
// - CARD requires complete card details; TRANSFER/VIRTUAL_ACCOUNT forbid them
// - electricity requires meter, destination bank and destination account
func (v *Validator) ValidateInitiate(req InitiateRequest) (entity.PaymentMethod, error) {
	if req.UserID == 0 {
		return "", errs.ErrInvalidUserID
	}

	method, err := entity.NormalizePaymentMethod(req.Method)
	if err != nil {
		return "", err
	}

	if _, err := entity.ValidatePositiveAmount(req.Amount); err != nil {
		return "", err
	}

	if err := entity.ValidateExclusions(req.WalletTopUp, req.ProductType, req.ServiceType); err != nil {
		return "", err
	}

	if err := entity.ValidateMethodFields(method, req.Card); err != nil {
		return "", err
	}

	if err := entity.ValidateElectricityFields(
		req.ServiceType,
		req.MeterNumber,
		req.DestinationBankCode,
		req.DestinationAccountNumber,
	); err != nil {
		return "", err
	}

	return method, nil
}

// ValidateBVN checks the syntactic shape of a BVN verification request
// before any network call: 11-digit BVN, 10-digit account number.
func (v *Validator) ValidateBVN(bvn, accountNumber string) error {
	if !bvnPattern.MatchString(bvn) {
		return fmt.Errorf("%w: got %d characters", errs.ErrInvalidBVN, len(bvn))
	}
	if !accountPattern.MatchString(accountNumber) {
		return fmt.Errorf("%w: got %d characters", errs.ErrInvalidAccountNumber, len(accountNumber))
	}
	return nil
}
