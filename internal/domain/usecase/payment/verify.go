package payment

import (
	"context"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/gateway"
)

// Verify reconciles a payment against the gateway's authoritative status.
//
// Terminal states are immutable: a payment already COMPLETED/FAILED/CANCELLED
// returns its stored result without another gateway round-trip, so repeated
// verification (webhook redelivery, racing callback) cannot flap the status.
//
// A transiently unreachable gateway surfaces ErrGatewayUnavailable, which is
// retryable and distinct from a definitive payment failure; callers decide
// whether to retry.
func (s *Service) Verify(ctx context.Context, transactionRef string) (*entity.VerificationResult, error) {
	if transactionRef == "" {
		return nil, errs.ErrInvalidTransactionRef
	}

	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	if p.IsTerminal() {
		return entity.ResultFromPayment(p, "payment already finalized"), nil
	}

	vr, err := s.gateway.VerifyTransaction(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, p, vr)
}

// ValidateCardPayment submits an OTP for a card charge parked on an OTP/3DS
// challenge. When the payment is not in the pending-OTP sub-state this
// degrades to a plain verification rather than erroring.
func (s *Service) ValidateCardPayment(
	ctx context.Context,
	transactionRef, gatewayRef, tokenID, otp string,
) (*entity.VerificationResult, error) {
	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	if p.IsTerminal() {
		return entity.ResultFromPayment(p, "payment already finalized"), nil
	}

	if !p.RequiresOTP || otp == "" {
		return s.Verify(ctx, transactionRef)
	}

	if gatewayRef == "" {
		gatewayRef = p.GatewayRef
	}
	if gatewayRef == "" {
		return nil, fmt.Errorf("%w: no gateway reference recorded for %s",
			errs.ErrInvalidRequest, transactionRef)
	}

	vr, err := s.gateway.ValidateCharge(ctx, gatewayRef, otp)
	if err != nil {
		return nil, err
	}
	_ = tokenID // carried for vendors that tokenize the OTP session

	return s.reconcile(ctx, p, vr)
}

// Authorize3DSCard completes a 3DS challenge with fresh card authorization
// data. A missing gateway reference is looked up from the stored payment
// rather than failing.
func (s *Service) Authorize3DSCard(
	ctx context.Context,
	transactionRef, gatewayRef string,
	card entity.CardDetails,
) (*entity.VerificationResult, error) {
	if !card.Complete() {
		return nil, errs.ErrCardDetailsRequired
	}

	p, err := s.payments.GetByRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	if p.IsTerminal() {
		return entity.ResultFromPayment(p, "payment already finalized"), nil
	}

	if gatewayRef == "" {
		gatewayRef = p.GatewayRef
	}

	result, err := s.gateway.AuthorizeCharge(ctx, transactionRef, gatewayRef, card)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, p, &gateway.VerifyResult{
		TransactionRef: transactionRef,
		GatewayRef:     result.GatewayRef,
		Status:         result.Status,
		Amount:         p.Amount,
		RequiresOTP:    result.RequiresOTP,
		Message:        result.Message,
	})
}

// reconcile folds the gateway's authoritative answer into local state via
// the conditional terminal transition. Exactly one observer performs the
// transition; everyone else sees the already-terminal row.
func (s *Service) reconcile(
	ctx context.Context,
	p *entity.Payment,
	vr *gateway.VerifyResult,
) (*entity.VerificationResult, error) {
	switch vr.Status {
	case gateway.StatusSucceeded:
		performed, err := s.payments.UpdateStatusIfPending(
			ctx, p.TransactionRef, entity.StatusCompleted, vr.GatewayRef, "", s.timeProvider.Now(),
		)
		if err != nil {
			return nil, err
		}
		if performed {
			p.MarkCompleted(s.timeProvider, vr.GatewayRef)
			s.creditTopUp(ctx, p)
			s.notifyCompleted(ctx, p)
		} else {
			// Another observer finalized first; report the stored state.
			stored, err := s.payments.GetByRef(ctx, p.TransactionRef)
			if err != nil {
				return nil, err
			}
			p = stored
		}

	case gateway.StatusFailed:
		performed, err := s.payments.UpdateStatusIfPending(
			ctx, p.TransactionRef, entity.StatusFailed, vr.GatewayRef, vr.Message, s.timeProvider.Now(),
		)
		if err != nil {
			return nil, err
		}
		if performed {
			p.MarkFailed(s.timeProvider, vr.Message)
			s.notifyFailed(ctx, p, vr.Message)
		} else {
			stored, err := s.payments.GetByRef(ctx, p.TransactionRef)
			if err != nil {
				return nil, err
			}
			p = stored
		}

	case gateway.StatusPending:
		// The gateway itself still reports pending; keep ours PENDING and
		// refresh the challenge sub-state for the OTP flow.
		if vr.GatewayRef != "" && (vr.GatewayRef != p.GatewayRef || vr.RequiresOTP != p.RequiresOTP) {
			if err := s.payments.SetGatewayRef(ctx, p.TransactionRef, vr.GatewayRef, vr.RequiresOTP); err != nil {
				return nil, err
			}
			p.GatewayRef = vr.GatewayRef
			p.RequiresOTP = vr.RequiresOTP
		}
	}

	return entity.ResultFromPayment(p, vr.Message), nil
}
