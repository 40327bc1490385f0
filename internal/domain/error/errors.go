package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidAmount         = 4002
	CodeInvalidUserID         = 4003
	CodeDuplicatePayment      = 4004
	CodeConstraintViolation   = 4005
	CodeInvalidPaymentMethod  = 4007
	CodeCardDetailsRequired   = 4008
	CodeCardDetailsNotAllowed = 4009
	CodeFieldConflict         = 4010
	CodeElectricityDetails    = 4011
	CodeInvalidSignature      = 4012
	CodeStateConflict         = 4013
	CodeRefundExceedsAmount   = 4014
	CodeInsufficientBalance   = 4001
	CodeInvalidBVN            = 4015
	CodeInvalidAccountNumber  = 4016
	CodePaymentNotFound       = 4040
	CodeWalletNotFound        = 4041
	CodeUnauthorized          = 4017
	CodeWalletLocked          = 4230

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeGatewayUnavailable = 5020
	CodeGatewayDeclined    = 5021
)

// Base error types
var (
	// ErrInvalidAmount is returned when the amount format is invalid or non-positive
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNegativeAmount is returned when the amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrInvalidTransactionRef is returned when the transaction reference is empty
	ErrInvalidTransactionRef = errors.New("transaction reference cannot be empty")

	// ErrInvalidPaymentMethod is returned when the payment method is outside the valid set
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrCardDetailsRequired is returned when a CARD payment is missing mandatory card fields
	ErrCardDetailsRequired = errors.New("card payments require card number, cvv, expiry month and expiry year")

	// ErrCardDetailsNotAllowed is returned when a non-card method carries card details
	ErrCardDetailsNotAllowed = errors.New("card details are not allowed for this payment method")

	// ErrWalletTopUpConflict is returned when a wallet top-up also names a product or service
	ErrWalletTopUpConflict = errors.New("wallet top-up cannot be combined with a product or service type")

	// ErrProductServiceConflict is returned when both product and service type are set
	ErrProductServiceConflict = errors.New("product type and service type are mutually exclusive")

	// ErrElectricityDetailsRequired is returned when an electricity payment is missing
	// meter number, destination bank code or destination account number
	ErrElectricityDetailsRequired = errors.New("electricity payments require meter number, destination bank code and destination account number")

	// ErrPaymentNotFound is returned when the requested payment doesn't exist
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrWalletNotFound is returned when the user has no wallet
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrDuplicatePayment is returned when a payment with the same reference already exists
	ErrDuplicatePayment = errors.New("payment with this transaction reference already exists")

	// ErrPaymentFinalized is returned when an operation is illegal for a terminal status
	ErrPaymentFinalized = errors.New("payment already finalized")

	// ErrRefundNotAllowed is returned when refunding a payment that is not COMPLETED
	ErrRefundNotAllowed = errors.New("only completed payments can be refunded")

	// ErrRefundExceedsAmount is returned when cumulative refunds would exceed the original amount
	ErrRefundExceedsAmount = errors.New("refund exceeds remaining refundable amount")

	// ErrInsufficientBalance is returned when a wallet cannot cover a debit
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrWalletLocked is returned when a wallet is locked by another operation
	ErrWalletLocked = errors.New("wallet is locked by another operation")

	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrGatewayUnavailable is returned when the gateway is unreachable or timed out.
	// This is retryable and distinct from a definitive payment failure.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayDeclined is returned when the gateway definitively rejected the operation
	ErrGatewayDeclined = errors.New("payment gateway declined the request")

	// ErrUnauthorized is returned when no valid principal is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidBVN is returned when the BVN is not exactly 11 digits
	ErrInvalidBVN = errors.New("BVN must be exactly 11 digits")

	// ErrInvalidAccountNumber is returned when the account number is not exactly 10 digits
	ErrInvalidAccountNumber = errors.New("account number must be exactly 10 digits")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidPaymentMethod):
		return CodeInvalidPaymentMethod
	case errors.Is(err, ErrCardDetailsRequired):
		return CodeCardDetailsRequired
	case errors.Is(err, ErrCardDetailsNotAllowed):
		return CodeCardDetailsNotAllowed
	case errors.Is(err, ErrWalletTopUpConflict), errors.Is(err, ErrProductServiceConflict):
		return CodeFieldConflict
	case errors.Is(err, ErrElectricityDetailsRequired):
		return CodeElectricityDetails
	case errors.Is(err, ErrDuplicatePayment):
		return CodeDuplicatePayment
	case errors.Is(err, ErrPaymentFinalized), errors.Is(err, ErrRefundNotAllowed):
		return CodeStateConflict
	case errors.Is(err, ErrRefundExceedsAmount):
		return CodeRefundExceedsAmount
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrWalletLocked):
		return CodeWalletLocked
	case errors.Is(err, ErrInvalidSignature):
		return CodeInvalidSignature
	case errors.Is(err, ErrInvalidBVN):
		return CodeInvalidBVN
	case errors.Is(err, ErrInvalidAccountNumber):
		return CodeInvalidAccountNumber
	case errors.Is(err, ErrPaymentNotFound):
		return CodePaymentNotFound
	case errors.Is(err, ErrWalletNotFound):
		return CodeWalletNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	case errors.Is(err, ErrGatewayDeclined):
		return CodeGatewayDeclined
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	default:
		return CodeInternalServer
	}
}

// PaymentError represents an error tied to a specific payment
type PaymentError struct {
	TransactionRef string
	UserID         uint64
	Method         string
	Reason         string
	Err            error
}

// Error implements the error interface for PaymentError
func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment error for ref %s (user: %d, method: %s): %s - %v",
		e.TransactionRef, e.UserID, e.Method, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *PaymentError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "payment_error",
		"transaction_ref": e.TransactionRef,
		"user_id":         e.UserID,
		"payment_method":  e.Method,
		"reason":          e.Reason,
		"error":           e.Err.Error(),
		"error_code":      ErrorCode(e.Err),
	}
}

// NewPaymentError creates a detailed payment error
func NewPaymentError(transactionRef string, userID uint64, method, reason string, err error) error {
	return &PaymentError{
		TransactionRef: transactionRef,
		UserID:         userID,
		Method:         method,
		Reason:         reason,
		Err:            err,
	}
}

// StateConflictError reports an operation that is illegal for the payment's
// current status, carrying the current status for the client message.
type StateConflictError struct {
	TransactionRef string
	CurrentStatus  string
	Operation      string
}

// Error implements the error interface
func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s payment %s: already finalized with status %s",
		e.Operation, e.TransactionRef, e.CurrentStatus)
}

// Is checks if the target error is ErrPaymentFinalized
func (e *StateConflictError) Is(target error) bool {
	return target == ErrPaymentFinalized
}

// LogFields returns a map of fields for structured logging
func (e *StateConflictError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "state_conflict",
		"transaction_ref": e.TransactionRef,
		"current_status":  e.CurrentStatus,
		"operation":       e.Operation,
		"error_code":      CodeStateConflict,
	}
}

// NewStateConflictError creates a new state conflict error
func NewStateConflictError(transactionRef, currentStatus, operation string) error {
	return &StateConflictError{
		TransactionRef: transactionRef,
		CurrentStatus:  currentStatus,
		Operation:      operation,
	}
}

// InsufficientBalanceError provides detailed error information for wallet debits
type InsufficientBalanceError struct {
	UserID      uint64
	Amount      string
	CurrBalance string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance for user %d: required %s, available %s",
		e.UserID, e.Amount, e.CurrBalance)
}

// Is checks if the target error is ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_balance",
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"current_balance": e.CurrBalance,
		"error_code":      CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID uint64, amount, currentBalance string) error {
	return &InsufficientBalanceError{
		UserID:      userID,
		Amount:      amount,
		CurrBalance: currentBalance,
	}
}

// GatewayError wraps a vendor-side failure with enough context for logs.
// The raw vendor body is summarized, never echoed to clients.
type GatewayError struct {
	Operation      string
	TransactionRef string
	StatusCode     int
	Summary        string
	Err            error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed for ref %s (http %d): %s - %v",
		e.Operation, e.TransactionRef, e.StatusCode, e.Summary, e.Err)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *GatewayError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "gateway_error",
		"operation":       e.Operation,
		"transaction_ref": e.TransactionRef,
		"http_status":     e.StatusCode,
		"summary":         e.Summary,
		"error_code":      ErrorCode(e.Err),
	}
}

// NewGatewayError creates a detailed gateway error
func NewGatewayError(operation, transactionRef string, statusCode int, summary string, err error) error {
	return &GatewayError{
		Operation:      operation,
		TransactionRef: transactionRef,
		StatusCode:     statusCode,
		Summary:        summary,
		Err:            err,
	}
}

// IsDuplicatePaymentError checks if the error is a duplicate payment error
func IsDuplicatePaymentError(err error) bool {
	return errors.Is(err, ErrDuplicatePayment)
}

// IsStateConflictError checks if the error is a terminal-state conflict
func IsStateConflictError(err error) bool {
	return errors.Is(err, ErrPaymentFinalized) || errors.Is(err, ErrRefundNotAllowed)
}

// IsRetryableGatewayError checks whether the gateway failure may succeed on retry
func IsRetryableGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrWalletNotFound)
}

// IsWalletLockedError checks if the error is related to a locked wallet
func IsWalletLockedError(err error) bool {
	return errors.Is(err, ErrWalletLocked)
}

// IsValidationError groups the request-shape errors that map to HTTP 400
// before any gateway call is made.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidTransactionRef) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrCardDetailsRequired) ||
		errors.Is(err, ErrCardDetailsNotAllowed) ||
		errors.Is(err, ErrWalletTopUpConflict) ||
		errors.Is(err, ErrProductServiceConflict) ||
		errors.Is(err, ErrElectricityDetailsRequired) ||
		errors.Is(err, ErrInvalidBVN) ||
		errors.Is(err, ErrInvalidAccountNumber) ||
		errors.Is(err, ErrInvalidRequest)
}
