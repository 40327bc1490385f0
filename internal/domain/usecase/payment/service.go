package payment

import (
	"time"

	cacheport "github.com/quicrefill/customer-service/internal/domain/port/cache"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/domain/port/gateway"
	"github.com/quicrefill/customer-service/internal/domain/port/notification"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
	"github.com/quicrefill/customer-service/internal/domain/usecase/wallet"
)

// Service is the payment orchestrator: it owns the transaction state machine
// and is the only writer of payment status. All writes go through the
// conditional "status = X where status = PENDING" primitive, so racing
// observers (webhook vs browser callback) converge on a single terminal
// transition.
type Service struct {
	payments     persistence.PaymentRepository
	refunds      persistence.RefundRepository
	wallets      *wallet.Service
	gateway      gateway.Client
	notifier     notification.Notifier
	cache        cacheport.Store
	validator    *Validator
	idempotency  *IdempotencyHandler
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	currency        string
	redirectURL     string
	methodStatusTTL time.Duration
}

// Options carries the environment-derived settings for the orchestrator.
type Options struct {
	Currency        string        // ISO currency passed to the gateway, e.g. "NGN"
	RedirectURL     string        // browser callback URL handed to the gateway
	MethodStatusTTL time.Duration // cache TTL for method availability lookups
}

// NewService wires the payment orchestrator.
func NewService(
	payments persistence.PaymentRepository,
	refunds persistence.RefundRepository,
	wallets *wallet.Service,
	gatewayClient gateway.Client,
	notifier notification.Notifier,
	cache cacheport.Store,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	opts Options,
) *Service {
	if opts.Currency == "" {
		opts.Currency = "NGN"
	}
	if opts.MethodStatusTTL <= 0 {
		opts.MethodStatusTTL = 5 * time.Minute
	}
	return &Service{
		payments:        payments,
		refunds:         refunds,
		wallets:         wallets,
		gateway:         gatewayClient,
		notifier:        notifier,
		cache:           cache,
		validator:       NewValidator(),
		idempotency:     NewIdempotencyHandler(payments),
		timeProvider:    timeProvider,
		logger:          logger,
		currency:        opts.Currency,
		redirectURL:     opts.RedirectURL,
		methodStatusTTL: opts.MethodStatusTTL,
	}
}
