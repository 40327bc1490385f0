package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/gateway"
	"github.com/quicrefill/customer-service/internal/domain/port/notification"
)

// InitiateRequest is the input for creating a payment intent.
type InitiateRequest struct {
	UserID                   uint64
	Email                    string
	VendorID                 string
	Amount                   string
	Method                   string // raw, normalized case-insensitively
	ProductType              string
	ServiceType              string
	WalletTopUp              bool
	ItemID                   string
	VoucherCode              string
	MeterNumber              string
	DestinationBankCode      string
	DestinationAccountNumber string
	TransactionRef           string // optional client idempotency reference
	Card                     *entity.CardDetails
}

// Initiate validates the request, creates the payment in PENDING and asks
// the gateway for a charge reference. Electricity service payments route to
// the bill branch; WALLET payments settle against the wallet balance without
// touching the gateway.
//
// Idempotency: a client-supplied reference that already exists returns the
// stored payment. No second charge is attempted.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (*entity.Payment, error) {
	method, err := s.validator.ValidateInitiate(req)
	if err != nil {
		return nil, err
	}

	clientRef := req.TransactionRef != ""
	ref := req.TransactionRef
	if !clientRef {
		ref = "QR-" + uuid.NewString()
	}

	if clientRef {
		existing, found, err := s.idempotency.CheckIdempotency(ctx, ref)
		if err != nil {
			return nil, err
		}
		if found {
			s.logger.Info("Idempotent initiation replay", map[string]any{
				"transaction_ref": ref,
				"user_id":         req.UserID,
				"status":          existing.Status,
			})
			return existing, nil
		}
	}

	p, err := entity.NewPayment(entity.PaymentParams{
		TransactionRef:           ref,
		UserID:                   req.UserID,
		Email:                    req.Email,
		VendorID:                 req.VendorID,
		Amount:                   req.Amount,
		Method:                   method,
		ProductType:              req.ProductType,
		ServiceType:              req.ServiceType,
		WalletTopUp:              req.WalletTopUp,
		ItemID:                   req.ItemID,
		VoucherCode:              req.VoucherCode,
		MeterNumber:              req.MeterNumber,
		DestinationBankCode:      req.DestinationBankCode,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Card:                     req.Card,
	}, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.payments.Create(ctx, p); err != nil {
		if clientRef && errors.Is(err, errs.ErrDuplicatePayment) {
			// Lost a race against a concurrent retry; return the winner's row.
			return s.payments.GetByRef(ctx, ref)
		}
		return nil, err
	}

	switch {
	case method == entity.MethodWallet:
		return s.settleFromWallet(ctx, p)
	case p.IsElectricity():
		return s.chargeBill(ctx, p)
	default:
		return s.charge(ctx, p, req)
	}
}

// settleFromWallet debits the wallet and finalizes the payment synchronously.
// No gateway round-trip is involved for wallet-funded payments.
func (s *Service) settleFromWallet(ctx context.Context, p *entity.Payment) (*entity.Payment, error) {
	if err := s.wallets.Debit(ctx, p.UserID, p.AmountInKobo, p.TransactionRef); err != nil {
		s.failPayment(ctx, p, "wallet debit failed: "+err.Error())
		return nil, err
	}

	performed, err := s.payments.UpdateStatusIfPending(
		ctx, p.TransactionRef, entity.StatusCompleted, "", "", s.timeProvider.Now(),
	)
	if err != nil {
		return nil, err
	}
	if performed {
		p.MarkCompleted(s.timeProvider, "")
		s.notifyCompleted(ctx, p)
	}
	return p, nil
}

// chargeBill routes an electricity payment through the gateway's bill branch.
func (s *Service) chargeBill(ctx context.Context, p *entity.Payment) (*entity.Payment, error) {
	result, err := s.gateway.PayBill(ctx, gateway.BillRequest{
		TransactionRef:           p.TransactionRef,
		UserID:                   p.UserID,
		Amount:                   p.Amount,
		Currency:                 s.currency,
		MeterNumber:              p.MeterNumber,
		DestinationBankCode:      p.DestinationBankCode,
		DestinationAccountNumber: p.DestinationAccountNumber,
	})
	return s.applyChargeResult(ctx, p, result, err)
}

// charge routes a generic payment through the gateway's charge branch.
func (s *Service) charge(ctx context.Context, p *entity.Payment, req InitiateRequest) (*entity.Payment, error) {
	result, err := s.gateway.Charge(ctx, gateway.ChargeRequest{
		TransactionRef: p.TransactionRef,
		UserID:         p.UserID,
		Email:          p.Email,
		Amount:         p.Amount,
		Currency:       s.currency,
		Method:         p.Method,
		Card:           req.Card,
		RedirectURL:    s.redirectURL,
		Narration:      narration(p),
	})
	return s.applyChargeResult(ctx, p, result, err)
}

// applyChargeResult folds the gateway's synchronous answer into local state.
// Transport failures leave the payment PENDING and propagate as retryable;
// definitive declines move it to FAILED.
func (s *Service) applyChargeResult(
	ctx context.Context,
	p *entity.Payment,
	result *gateway.ChargeResult,
	err error,
) (*entity.Payment, error) {
	if err != nil {
		if errs.IsRetryableGatewayError(err) {
			s.logger.Warn("Gateway unreachable at initiation, payment stays pending", map[string]any{
				"transaction_ref": p.TransactionRef,
				"error":           err.Error(),
			})
			return nil, err
		}
		s.failPayment(ctx, p, "gateway rejected charge: "+err.Error())
		return nil, err
	}

	if result.GatewayRef != "" || result.RequiresOTP {
		if err := s.payments.SetGatewayRef(ctx, p.TransactionRef, result.GatewayRef, result.RequiresOTP); err != nil {
			return nil, err
		}
		p.GatewayRef = result.GatewayRef
		p.RequiresOTP = result.RequiresOTP
	}

	switch result.Status {
	case gateway.StatusSucceeded:
		performed, err := s.payments.UpdateStatusIfPending(
			ctx, p.TransactionRef, entity.StatusCompleted, result.GatewayRef, "", s.timeProvider.Now(),
		)
		if err != nil {
			return nil, err
		}
		if performed {
			p.MarkCompleted(s.timeProvider, result.GatewayRef)
			s.creditTopUp(ctx, p)
			s.notifyCompleted(ctx, p)
		}
	case gateway.StatusFailed:
		s.failPayment(ctx, p, result.Message)
		return nil, fmt.Errorf("%w: %s", errs.ErrGatewayDeclined, result.Message)
	}

	return p, nil
}

// failPayment performs the PENDING -> FAILED transition and dispatches the
// failure notice. Losing the conditional update means another observer
// already finalized the payment, which is not an error.
func (s *Service) failPayment(ctx context.Context, p *entity.Payment, reason string) {
	performed, err := s.payments.UpdateStatusIfPending(
		ctx, p.TransactionRef, entity.StatusFailed, p.GatewayRef, reason, s.timeProvider.Now(),
	)
	if err != nil {
		s.logger.Error("Could not record payment failure", map[string]any{
			"transaction_ref": p.TransactionRef,
			"error":           err.Error(),
		})
		return
	}
	if performed {
		p.MarkFailed(s.timeProvider, reason)
		s.notifyFailed(ctx, p, reason)
	}
}

// creditTopUp credits the wallet for a completed top-up. Guarded by the
// conditional update: only the observer that performed the terminal
// transition calls this, so the credit happens exactly once.
func (s *Service) creditTopUp(ctx context.Context, p *entity.Payment) {
	if !p.WalletTopUp {
		return
	}
	if err := s.wallets.Credit(ctx, p.UserID, p.AmountInKobo, p.TransactionRef); err != nil {
		s.logger.Error("Wallet top-up credit failed", map[string]any{
			"transaction_ref": p.TransactionRef,
			"user_id":         p.UserID,
			"error":           err.Error(),
		})
	}
}

func (s *Service) notifyCompleted(ctx context.Context, p *entity.Payment) {
	if s.notifier == nil {
		return
	}
	s.notifier.PaymentCompleted(ctx, notification.PaymentNotice{
		UserID:         p.UserID,
		Email:          p.Email,
		TransactionRef: p.TransactionRef,
		Amount:         p.Amount,
		Method:         string(p.Method),
	})
}

func (s *Service) notifyFailed(ctx context.Context, p *entity.Payment, reason string) {
	if s.notifier == nil {
		return
	}
	s.notifier.PaymentFailed(ctx, notification.PaymentNotice{
		UserID:         p.UserID,
		Email:          p.Email,
		TransactionRef: p.TransactionRef,
		Amount:         p.Amount,
		Method:         string(p.Method),
		Reason:         reason,
	})
}

func narration(p *entity.Payment) string {
	switch {
	case p.WalletTopUp:
		return "Quicrefill wallet top-up"
	case p.ProductType != "":
		return "Quicrefill " + p.ProductType + " purchase"
	case p.ServiceType != "":
		return "Quicrefill " + p.ServiceType + " service"
	default:
		return "Quicrefill payment"
	}
}
