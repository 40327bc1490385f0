package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	cacheport "github.com/quicrefill/customer-service/internal/domain/port/cache"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
)

// Verifier reconciles a transaction against the gateway's authoritative
// status. Satisfied by the payment orchestrator.
type Verifier interface {
	Verify(ctx context.Context, transactionRef string) (*entity.VerificationResult, error)
}

// seenTTL bounds how long a delivery id is remembered for redelivery logging.
// Purely an observability hint; correctness comes from the conditional
// status update, not from this cache.
const seenTTL = 24 * time.Hour

// Processor reconciles verified webhook events into local payment state.
// Signature verification happens before this is invoked; the processor
// trusts its input bytes.
type Processor struct {
	verifier Verifier
	seen     cacheport.Store
	logger   coreport.Logger
}

// NewProcessor creates a webhook event processor.
func NewProcessor(verifier Verifier, seen cacheport.Store, logger coreport.Logger) *Processor {
	return &Processor{
		verifier: verifier,
		seen:     seen,
		logger:   logger,
	}
}

// Event is the subset of a vendor webhook payload the processor acts on.
type Event struct {
	Type           string
	TransactionRef string
	GatewayID      string
}

// ParseEvent extracts the event type and transaction reference from the raw
// payload. Vendors vary field placement, so both top-level and data-nested
// locations are tried.
func ParseEvent(rawBody []byte) (Event, error) {
	if !gjson.ValidBytes(rawBody) {
		return Event{}, fmt.Errorf("%w: webhook payload is not valid JSON", errs.ErrInvalidRequest)
	}

	body := gjson.ParseBytes(rawBody)

	ref := body.Get("data.tx_ref").String()
	if ref == "" {
		ref = body.Get("txRef").String()
	}
	if ref == "" {
		ref = body.Get("tx_ref").String()
	}
	if ref == "" {
		return Event{}, fmt.Errorf("%w: webhook payload carries no transaction reference", errs.ErrInvalidRequest)
	}

	return Event{
		Type:           body.Get("event").String(),
		TransactionRef: ref,
		GatewayID:      body.Get("data.id").String(),
	}, nil
}

// Process reconciles one verified webhook event. Redeliveries are harmless:
// verification of an already-terminal payment is a no-op by construction.
func (p *Processor) Process(ctx context.Context, rawBody []byte) (*entity.VerificationResult, error) {
	event, err := ParseEvent(rawBody)
	if err != nil {
		return nil, err
	}

	p.markDelivery(ctx, event)

	result, err := p.verifier.Verify(ctx, event.TransactionRef)
	if err != nil {
		p.logger.Error("Webhook reconciliation failed", map[string]any{
			"event":           event.Type,
			"transaction_ref": event.TransactionRef,
			"error":           err.Error(),
		})
		return nil, err
	}

	p.logger.Info("Webhook event reconciled", map[string]any{
		"event":           event.Type,
		"transaction_ref": event.TransactionRef,
		"status":          result.Status,
	})
	return result, nil
}

// markDelivery records the delivery for redelivery visibility in logs.
// Cache failures are ignored; the cache is never authoritative.
func (p *Processor) markDelivery(ctx context.Context, event Event) {
	if p.seen == nil {
		return
	}

	key := "webhook:seen:" + event.TransactionRef + ":" + event.GatewayID
	if _, ok, err := p.seen.Get(ctx, key); err == nil && ok {
		p.logger.Warn("Webhook redelivery detected", map[string]any{
			"event":           event.Type,
			"transaction_ref": event.TransactionRef,
		})
		return
	}
	_ = p.seen.Set(ctx, key, "1", seenTTL)
}
