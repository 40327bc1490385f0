package payment

import (
	"context"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
)

// SettleCashOnDelivery finalizes a PAY_ON_DELIVERY payment from the delivery
// confirmation callback. The method guard is strict: settling a payment whose
// stored method is anything else is rejected rather than silently reconciled,
// to prevent cross-method status confusion.
func (s *Service) SettleCashOnDelivery(
	ctx context.Context,
	transactionRef string,
	succeeded bool,
) (*entity.VerificationResult, error) {
	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	if p.Method != entity.MethodPayOnDelivery {
		return nil, fmt.Errorf("%w: payment %s uses method %s, not %s",
			errs.ErrInvalidRequest, transactionRef, p.Method, entity.MethodPayOnDelivery)
	}

	if p.IsTerminal() {
		return entity.ResultFromPayment(p, "payment already finalized"), nil
	}

	if succeeded {
		performed, err := s.payments.UpdateStatusIfPending(
			ctx, transactionRef, entity.StatusCompleted, p.GatewayRef, "", s.timeProvider.Now(),
		)
		if err != nil {
			return nil, err
		}
		if performed {
			p.MarkCompleted(s.timeProvider, "")
			s.notifyCompleted(ctx, p)
		} else {
			stored, err := s.payments.GetByRef(ctx, transactionRef)
			if err != nil {
				return nil, err
			}
			p = stored
		}
		return entity.ResultFromPayment(p, "delivery collection confirmed"), nil
	}

	reason := "delivery collection failed"
	performed, err := s.payments.UpdateStatusIfPending(
		ctx, transactionRef, entity.StatusFailed, p.GatewayRef, reason, s.timeProvider.Now(),
	)
	if err != nil {
		return nil, err
	}
	if performed {
		p.MarkFailed(s.timeProvider, reason)
		s.notifyFailed(ctx, p, reason)
	} else {
		stored, err := s.payments.GetByRef(ctx, transactionRef)
		if err != nil {
			return nil, err
		}
		p = stored
	}
	return entity.ResultFromPayment(p, reason), nil
}
