package payment

import (
	"context"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	"github.com/quicrefill/customer-service/internal/domain/port/notification"
	walletUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/wallet"
	mcache "github.com/quicrefill/customer-service/mocks/port/cache"
	mcore "github.com/quicrefill/customer-service/mocks/port/core"
	mgw "github.com/quicrefill/customer-service/mocks/port/gateway"
	mnotif "github.com/quicrefill/customer-service/mocks/port/notification"
	mpers "github.com/quicrefill/customer-service/mocks/port/persistence"
	"github.com/stretchr/testify/mock"
)

type testContextKey string

// contextWithMarker mimics the transactional context the unit of work hands out.
func contextWithMarker() context.Context {
	return context.WithValue(context.Background(), testContextKey("tx"), "mockTransaction")
}

// Shared fixtures for the orchestrator tests. Wallet interactions go through
// a real wallet service over mocked persistence, matching production wiring.
type fixture struct {
	payments   *mpers.MockPaymentRepository
	refunds    *mpers.MockRefundRepository
	gateway    *mgw.MockClient
	notifier   *mnotif.MockNotifier
	cache      *mcache.MockStore
	uow        *mpers.MockUnitOfWork
	lockRepo   *mpers.MockWalletLockRepository
	walletRepo *mpers.MockWalletRepository
	tp         *mcore.MockTimeProvider
	logger     *mcore.MockLogger
	now        time.Time
	svc        *Service
}

type fixtureOptions struct {
	withNotifier bool
	withCache    bool
}

func newFixture(opts fixtureOptions) *fixture {
	f := &fixture{
		payments:   new(mpers.MockPaymentRepository),
		refunds:    new(mpers.MockRefundRepository),
		gateway:    new(mgw.MockClient),
		notifier:   new(mnotif.MockNotifier),
		cache:      new(mcache.MockStore),
		uow:        new(mpers.MockUnitOfWork),
		lockRepo:   new(mpers.MockWalletLockRepository),
		walletRepo: new(mpers.MockWalletRepository),
		tp:         new(mcore.MockTimeProvider),
		logger:     mcore.NewMockLogger(),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tp.On("Now").Return(f.now)

	wallets := walletUseCase.NewService(f.uow, f.lockRepo, f.tp, f.logger, 5*time.Second)

	var notifier notification.Notifier
	if opts.withNotifier {
		notifier = f.notifier
	}

	svcOpts := Options{
		Currency:        "NGN",
		RedirectURL:     "https://api.quicrefill.test/api/payments/callback",
		MethodStatusTTL: 5 * time.Minute,
	}
	if opts.withCache {
		f.svc = NewService(f.payments, f.refunds, wallets, f.gateway, notifier, f.cache, f.tp, f.logger, svcOpts)
	} else {
		f.svc = NewService(f.payments, f.refunds, wallets, f.gateway, notifier, nil, f.tp, f.logger, svcOpts)
	}
	return f
}

// expectWalletMutation wires the lock/transaction sequence around a single
// wallet read-modify-write with the given starting balance.
func (f *fixture) expectWalletMutation(userID uint64, balanceKobo int64) {
	wallet, err := entity.NewWallet(userID, entity.KoboToString(balanceKobo), f.tp)
	if err != nil {
		panic(err)
	}

	f.lockRepo.On("AcquireLock", mock.Anything, userID, mock.AnythingOfType("time.Duration")).Return(nil)
	f.lockRepo.On("ReleaseLock", mock.Anything, userID).Return(nil)
	f.uow.On("Begin", mock.Anything).Return(contextWithMarker(), nil)
	f.uow.On("Commit", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.uow.On("GetWalletRepository", mock.Anything).Return(f.walletRepo)
	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	f.walletRepo.On("Update", mock.Anything, wallet).Return(nil)
}

func (f *fixture) pendingPayment(ref string, method entity.PaymentMethod) *entity.Payment {
	params := entity.PaymentParams{
		TransactionRef: ref,
		UserID:         42,
		Email:          "amaka@quicrefill.test",
		Amount:         "100.00",
		Method:         method,
	}
	// CARD payments fail entity validation without the mandatory card fields.
	if method == entity.MethodCard {
		params.Card = &entity.CardDetails{
			Number:      "5531886652142950",
			CVV:         "564",
			ExpiryMonth: "09",
			ExpiryYear:  "32",
		}
	}
	p, err := entity.NewPayment(params, f.tp)
	if err != nil {
		panic(err)
	}
	return p
}
