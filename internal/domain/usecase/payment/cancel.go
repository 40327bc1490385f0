package payment

import (
	"context"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
)

// Cancel transitions a PENDING payment to CANCELLED. Cancelling an already
// finalized payment is rejected with the current status in the message,
// never silently accepted.
func (s *Service) Cancel(ctx context.Context, transactionRef string, userID uint64) (*entity.Payment, error) {
	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, errs.ErrPaymentNotFound
	}

	if p.IsTerminal() {
		return nil, errs.NewStateConflictError(transactionRef, string(p.Status), "cancel")
	}

	performed, err := s.payments.UpdateStatusIfPending(
		ctx, transactionRef, entity.StatusCancelled, p.GatewayRef, "cancelled by user", s.timeProvider.Now(),
	)
	if err != nil {
		return nil, err
	}
	if !performed {
		// Finalized between our read and the conditional write
		stored, err := s.payments.GetByRef(ctx, transactionRef)
		if err != nil {
			return nil, err
		}
		return nil, errs.NewStateConflictError(transactionRef, string(stored.Status), "cancel")
	}

	p.MarkCancelled(s.timeProvider)
	s.logger.Info("Payment cancelled", map[string]any{
		"transaction_ref": transactionRef,
		"user_id":         userID,
	})
	return p, nil
}
