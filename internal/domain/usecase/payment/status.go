package payment

import (
	"context"
	"encoding/json"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	"github.com/quicrefill/customer-service/internal/domain/port/gateway"
)

// MethodStatus queries availability of a payment method at the gateway.
// Answers are cached briefly; the cache is a read-through convenience, not
// a source of payment state.
func (s *Service) MethodStatus(ctx context.Context, rawMethod string) (*gateway.MethodStatusInfo, error) {
	method, err := entity.NormalizePaymentMethod(rawMethod)
	if err != nil {
		return nil, err
	}

	cacheKey := "payment:method_status:" + string(method)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var info gateway.MethodStatusInfo
			if json.Unmarshal([]byte(cached), &info) == nil {
				return &info, nil
			}
		}
	}

	info, err := s.gateway.MethodStatus(ctx, method)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(info); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(encoded), s.methodStatusTTL)
		}
	}

	return info, nil
}

// VerifyBVN delegates identity-linking verification to the gateway after
// syntactic validation (11-digit BVN, 10-digit account number). Invalid
// input never reaches the network.
func (s *Service) VerifyBVN(ctx context.Context, req gateway.BVNRequest) (*gateway.BVNResult, error) {
	if err := s.validator.ValidateBVN(req.BVN, req.AccountNumber); err != nil {
		return nil, err
	}
	return s.gateway.ResolveBVN(ctx, req)
}

// Get returns the stored payment for a transaction reference.
func (s *Service) Get(ctx context.Context, transactionRef string) (*entity.Payment, error) {
	return s.payments.GetByRef(ctx, transactionRef)
}
