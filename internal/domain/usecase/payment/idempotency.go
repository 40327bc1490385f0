package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
)

// IdempotencyHandler prevents double charges on retried initiations: a
// client-supplied transaction reference that already exists returns the
// stored payment instead of creating (and charging) a second one.
type IdempotencyHandler struct {
	payments persistence.PaymentRepository
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(payments persistence.PaymentRepository) *IdempotencyHandler {
	return &IdempotencyHandler{payments: payments}
}

// CheckIdempotency looks up an existing payment by reference.
// Returns the payment, a boolean indicating whether it was found, and any error.
func (h *IdempotencyHandler) CheckIdempotency(
	ctx context.Context,
	transactionRef string,
) (*entity.Payment, bool, error) {
	exists, err := h.payments.ExistsByRef(ctx, transactionRef)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check if payment exists: %w", err)
	}

	if !exists {
		return nil, false, nil
	}

	p, err := h.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		if errors.Is(err, errs.ErrPaymentNotFound) {
			// Existed at the check but gone by the read; treat as absent.
			// The unique constraint still backstops the insert.
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("failed to retrieve existing payment: %w", err)
	}

	return p, true, nil
}
