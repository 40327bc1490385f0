package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	gwport "github.com/quicrefill/customer-service/internal/domain/port/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func transferRequest() InitiateRequest {
	return InitiateRequest{
		UserID: 42,
		Email:  "customer@example.com",
		Amount: "100.00",
		Method: "transfer",
	}
}

func TestInitiateGeneratesReference(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("SetGatewayRef", mock.Anything, mock.AnythingOfType("string"), "FLW-1", false).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req gwport.ChargeRequest) bool {
		return req.Method == entity.MethodTransfer &&
			req.Amount == "100.00" &&
			req.Currency == "NGN" &&
			req.Email == "customer@example.com"
	})).Return(&gwport.ChargeResult{
		GatewayRef:  "FLW-1",
		Status:      gwport.StatusPending,
		AccountInfo: "0690000040 Wema Bank",
	}, nil)

	p, err := f.svc.Initiate(ctx, transferRequest())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.TransactionRef, "QR-"))
	assert.Equal(t, entity.StatusPending, p.Status)
	assert.Equal(t, "FLW-1", p.GatewayRef)
	// No client reference, so the idempotency fast path is skipped
	f.payments.AssertNotCalled(t, "ExistsByRef", mock.Anything, mock.Anything)
}

func TestInitiateIdempotentReplay(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()
	stored := f.pendingPayment("client-ref-1", entity.MethodTransfer)

	f.payments.On("ExistsByRef", mock.Anything, "client-ref-1").Return(true, nil)
	f.payments.On("GetByRef", mock.Anything, "client-ref-1").Return(stored, nil)

	p, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID:         42,
		Amount:         "100.00",
		Method:         "TRANSFER",
		TransactionRef: "client-ref-1",
	})

	require.NoError(t, err)
	assert.Same(t, stored, p)
	// Replay must not create a second intent or touch the gateway
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestInitiateDuplicateRaceReturnsWinner(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()
	winner := f.pendingPayment("client-ref-2", entity.MethodTransfer)

	f.payments.On("ExistsByRef", mock.Anything, "client-ref-2").Return(false, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(errs.ErrDuplicatePayment)
	f.payments.On("GetByRef", mock.Anything, "client-ref-2").Return(winner, nil)

	p, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID:         42,
		Amount:         "100.00",
		Method:         "transfer",
		TransactionRef: "client-ref-2",
	})

	require.NoError(t, err)
	assert.Same(t, winner, p)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestInitiateSynchronousSuccess(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("SetGatewayRef", mock.Anything, mock.AnythingOfType("string"), "FLW-2", false).Return(nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, mock.AnythingOfType("string"), entity.StatusCompleted, "FLW-2", "", f.now,
	).Return(true, nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(&gwport.ChargeResult{
		GatewayRef: "FLW-2",
		Status:     gwport.StatusSucceeded,
	}, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

	p, err := f.svc.Initiate(ctx, transferRequest())

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, p.Status)
	assert.NotNil(t, p.ProcessedAt)
	f.notifier.AssertCalled(t, "PaymentCompleted", mock.Anything, mock.Anything)
}

func TestInitiateGatewayDeclined(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()
	declineErr := errs.NewGatewayError("charge", "", 400, "card declined", errs.ErrGatewayDeclined)

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, mock.AnythingOfType("string"), entity.StatusFailed, "", mock.AnythingOfType("string"), f.now,
	).Return(true, nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(nil, declineErr)
	f.notifier.On("PaymentFailed", mock.Anything, mock.Anything).Return()

	_, err := f.svc.Initiate(ctx, transferRequest())

	assert.ErrorIs(t, err, errs.ErrGatewayDeclined)
	f.notifier.AssertCalled(t, "PaymentFailed", mock.Anything, mock.Anything)
}

func TestInitiateGatewayUnavailableKeepsPending(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()
	transportErr := errs.NewGatewayError("charge", "", 503, "timeout", errs.ErrGatewayUnavailable)

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(nil, transportErr)

	_, err := f.svc.Initiate(ctx, transferRequest())

	assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	// Transport failures must not finalize the payment
	f.payments.AssertNotCalled(t, "UpdateStatusIfPending",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateWalletSettlement(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	f.expectWalletMutation(42, 20000) // 200.00 covers the 100.00 charge
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, mock.AnythingOfType("string"), entity.StatusCompleted, "", "", f.now,
	).Return(true, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

	p, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID: 42,
		Amount: "100.00",
		Method: "wallet",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, p.Status)
	// Wallet payments never reach the gateway
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestInitiateWalletInsufficientBalance(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	f.expectWalletMutation(42, 5000) // 50.00 cannot cover 100.00
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, mock.AnythingOfType("string"), entity.StatusFailed, "", mock.AnythingOfType("string"), f.now,
	).Return(true, nil)
	f.notifier.On("PaymentFailed", mock.Anything, mock.Anything).Return()

	_, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID: 42,
		Amount: "100.00",
		Method: "WALLET",
	})

	assert.True(t, errs.IsInsufficientBalanceError(err))
}

func TestInitiateElectricityRoutesToBillBranch(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.payments.On("SetGatewayRef", mock.Anything, mock.AnythingOfType("string"), "FLW-3", false).Return(nil)
	f.gateway.On("PayBill", mock.Anything, mock.MatchedBy(func(req gwport.BillRequest) bool {
		return req.MeterNumber == "12345" && req.DestinationBankCode == "044"
	})).Return(&gwport.ChargeResult{GatewayRef: "FLW-3", Status: gwport.StatusPending}, nil)

	p, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID:                   42,
		Amount:                   "100.00",
		Method:                   "transfer",
		ServiceType:              "electricity",
		MeterNumber:              "12345",
		DestinationBankCode:      "044",
		DestinationAccountNumber: "0690000040",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, p.Status)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestInitiateValidationFailsBeforeAnyIO(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	testCases := []struct {
		name string
		req  InitiateRequest
		want error
	}{
		{
			name: "Unknown method",
			req:  InitiateRequest{UserID: 42, Amount: "10.00", Method: "BITCOIN"},
			want: errs.ErrInvalidPaymentMethod,
		},
		{
			name: "Zero user",
			req:  InitiateRequest{Amount: "10.00", Method: "transfer"},
			want: errs.ErrInvalidUserID,
		},
		{
			name: "Card without details",
			req:  InitiateRequest{UserID: 42, Amount: "10.00", Method: "card"},
			want: errs.ErrCardDetailsRequired,
		},
		{
			name: "Negative amount",
			req:  InitiateRequest{UserID: 42, Amount: "-5.00", Method: "transfer"},
			want: errs.ErrNegativeAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Initiate(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}
