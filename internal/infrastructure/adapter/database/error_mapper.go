package database

import (
	"errors"
	"fmt"
	"strings"

	domainErr "github.com/quicrefill/customer-service/internal/domain/error"
	"gorm.io/gorm"
)

// EntityType represents the type of entity for errors mapping
type EntityType string

const (
	// EntityTypePayment represents the payment entity
	EntityTypePayment EntityType = "payment"
	// EntityTypeRefund represents the refund entity
	EntityTypeRefund EntityType = "refund"
	// EntityTypeWallet represents the wallet entity
	EntityTypeWallet EntityType = "wallet"
	// EntityTypeWalletLock represents the wallet lock entity
	EntityTypeWalletLock EntityType = "wallet_lock"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for common GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr.ErrNotFound
	}

	// Check for PostgreSQL specific errors
	errMsg := strings.ToLower(err.Error())

	switch {
	// Transaction and locking errors
	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serialization") ||
		strings.Contains(errMsg, "lock timeout"):
		return domainErr.ErrWalletLocked

	// Duplicate key errors
	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint"):
		if strings.Contains(errMsg, "payment") || strings.Contains(errMsg, "transaction_ref") {
			return domainErr.ErrDuplicatePayment
		}
		return domainErr.ErrConstraintViolation

	// Constraint violations
	case strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "foreign key constraint"):
		return domainErr.ErrConstraintViolation

	// Connection issues
	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset"):
		return domainErr.ErrDatabaseConnection

	// Timeout errors
	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", domainErr.ErrDatabaseConnection, operation)

	// Default error
	default:
		return domainErr.ErrInternalServer
	}
}

// MapEntityNotFoundError maps database errors to specific entity not found errors
func (m *ErrorMapper) MapEntityNotFoundError(err error, entityType EntityType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		switch entityType {
		case EntityTypePayment:
			return domainErr.ErrPaymentNotFound
		case EntityTypeWallet:
			return domainErr.ErrWalletNotFound
		default:
			return domainErr.ErrNotFound
		}
	}

	return m.MapError(err, string(entityType))
}

// MapPaymentNotFoundError maps database errors to payment not found errors
func (m *ErrorMapper) MapPaymentNotFoundError(err error) error {
	return m.MapEntityNotFoundError(err, EntityTypePayment)
}

// MapWalletNotFoundError maps database errors to wallet not found errors
func (m *ErrorMapper) MapWalletNotFoundError(err error) error {
	return m.MapEntityNotFoundError(err, EntityTypeWallet)
}
