package payment

import (
	"context"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/notification"
)

// Refund records a refund against a COMPLETED payment. Refunds are side
// ledger events: the payment status never changes. The ledger's running
// total is capped at the original amount, so partial refunds are allowed
// until the payment is fully refunded.
//
// The cap check and the ledger write run under the payer's advisory lock:
// without it, two concurrent refunds could both read the same ledger total
// and jointly exceed the original amount.
func (s *Service) Refund(
	ctx context.Context,
	transactionRef string,
	userID uint64,
	amount string,
	paymentReference string,
) (*entity.Refund, error) {
	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		// Don't leak other users' payments
		return nil, errs.ErrPaymentNotFound
	}

	if p.Status != entity.StatusCompleted {
		return nil, fmt.Errorf("%w: current status is %s", errs.ErrRefundNotAllowed, p.Status)
	}

	refund, err := entity.NewRefund(transactionRef, userID, amount, paymentReference, s.timeProvider)
	if err != nil {
		return nil, err
	}

	err = s.wallets.WithUserLock(ctx, userID, func() error {
		refunded, err := s.refunds.TotalRefundedKobo(ctx, transactionRef)
		if err != nil {
			return err
		}
		remaining := p.AmountInKobo - refunded
		if refund.AmountInKobo > remaining {
			return fmt.Errorf("%w: requested %s, remaining %s",
				errs.ErrRefundExceedsAmount, refund.Amount, entity.KoboToString(remaining))
		}

		if err := s.gateway.Refund(ctx, p.GatewayRef, refund.Amount); err != nil {
			return err
		}

		if err := s.refunds.Create(ctx, refund); err != nil {
			// The vendor accepted the refund but the ledger write failed; this
			// needs operator reconciliation, so log with full context.
			s.logger.Error("Refund accepted by gateway but ledger write failed", map[string]any{
				"transaction_ref": transactionRef,
				"user_id":         userID,
				"amount":          refund.Amount,
				"error":           err.Error(),
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Refund processed", map[string]any{
		"transaction_ref": transactionRef,
		"user_id":         userID,
		"amount":          refund.Amount,
	})

	if s.notifier != nil {
		s.notifier.RefundProcessed(ctx, notification.RefundNotice{
			UserID:         userID,
			Email:          p.Email,
			TransactionRef: transactionRef,
			Amount:         refund.Amount,
		})
	}

	return refund, nil
}
