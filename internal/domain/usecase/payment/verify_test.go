package payment

import (
	"context"
	"testing"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	gwport "github.com/quicrefill/customer-service/internal/domain/port/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmptyReference(t *testing.T) {
	f := newFixture(fixtureOptions{})
	_, err := f.svc.Verify(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrInvalidTransactionRef)
}

func TestVerifyTerminalPaymentIsImmutable(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	p := f.pendingPayment("QR-1", entity.MethodCard)
	p.MarkCompleted(f.tp, "FLW-1")
	f.payments.On("GetByRef", mock.Anything, "QR-1").Return(p, nil)

	result, err := f.svc.Verify(ctx, "QR-1")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, result.Status)
	assert.Equal(t, "payment already finalized", result.Message)
	// Finalized payments never trigger another gateway round-trip
	f.gateway.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "UpdateStatusIfPending",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifySucceededTransition(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	p := f.pendingPayment("QR-2", entity.MethodCard)
	f.payments.On("GetByRef", mock.Anything, "QR-2").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-2").Return(&gwport.VerifyResult{
		TransactionRef: "QR-2",
		GatewayRef:     "FLW-2",
		Status:         gwport.StatusSucceeded,
		Amount:         "100.00",
	}, nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-2", entity.StatusCompleted, "FLW-2", "", f.now,
	).Return(true, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

	result, err := f.svc.Verify(ctx, "QR-2")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, result.Status)
	assert.Equal(t, "FLW-2", result.GatewayRef)
	f.notifier.AssertCalled(t, "PaymentCompleted", mock.Anything, mock.Anything)
}

func TestVerifyLostRaceReportsStoredState(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	pending := f.pendingPayment("QR-3", entity.MethodCard)
	finalized := f.pendingPayment("QR-3", entity.MethodCard)
	finalized.MarkFailed(f.tp, "declined at settlement")

	f.payments.On("GetByRef", mock.Anything, "QR-3").Return(pending, nil).Once()
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-3").Return(&gwport.VerifyResult{
		TransactionRef: "QR-3",
		GatewayRef:     "FLW-3",
		Status:         gwport.StatusSucceeded,
	}, nil)
	// Another observer finalized between our read and the conditional write
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-3", entity.StatusCompleted, "FLW-3", "", f.now,
	).Return(false, nil)
	f.payments.On("GetByRef", mock.Anything, "QR-3").Return(finalized, nil).Once()

	result, err := f.svc.Verify(ctx, "QR-3")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, result.Status)
	// The loser must not dispatch a completion notice
	f.notifier.AssertNotCalled(t, "PaymentCompleted", mock.Anything, mock.Anything)
}

func TestVerifyFailedTransition(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	p := f.pendingPayment("QR-4", entity.MethodCard)
	f.payments.On("GetByRef", mock.Anything, "QR-4").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-4").Return(&gwport.VerifyResult{
		TransactionRef: "QR-4",
		GatewayRef:     "FLW-4",
		Status:         gwport.StatusFailed,
		Message:        "insufficient funds",
	}, nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-4", entity.StatusFailed, "FLW-4", "insufficient funds", f.now,
	).Return(true, nil)
	f.notifier.On("PaymentFailed", mock.Anything, mock.Anything).Return()

	result, err := f.svc.Verify(ctx, "QR-4")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, result.Status)
	assert.Equal(t, "insufficient funds", result.Message)
}

func TestVerifyGatewayStillPendingRefreshesChallenge(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	p := f.pendingPayment("QR-5", entity.MethodCard)
	f.payments.On("GetByRef", mock.Anything, "QR-5").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-5").Return(&gwport.VerifyResult{
		TransactionRef: "QR-5",
		GatewayRef:     "FLW-5",
		Status:         gwport.StatusPending,
		RequiresOTP:    true,
	}, nil)
	f.payments.On("SetGatewayRef", mock.Anything, "QR-5", "FLW-5", true).Return(nil)

	result, err := f.svc.Verify(ctx, "QR-5")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, result.Status)
	assert.True(t, result.RequiresOTP)
	f.payments.AssertNotCalled(t, "UpdateStatusIfPending",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyGatewayUnavailable(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	p := f.pendingPayment("QR-6", entity.MethodCard)
	f.payments.On("GetByRef", mock.Anything, "QR-6").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-6").
		Return(nil, errs.NewGatewayError("verify", "QR-6", 503, "timeout", errs.ErrGatewayUnavailable))

	_, err := f.svc.Verify(ctx, "QR-6")

	assert.True(t, errs.IsRetryableGatewayError(err))
	f.payments.AssertNotCalled(t, "UpdateStatusIfPending",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateCardPaymentSubmitsOTP(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	p := f.pendingPayment("QR-7", entity.MethodCard)
	p.GatewayRef = "FLW-7"
	p.RequiresOTP = true

	f.payments.On("GetByRef", mock.Anything, "QR-7").Return(p, nil)
	// Gateway reference falls back to the stored one
	f.gateway.On("ValidateCharge", mock.Anything, "FLW-7", "123456").Return(&gwport.VerifyResult{
		TransactionRef: "QR-7",
		GatewayRef:     "FLW-7",
		Status:         gwport.StatusSucceeded,
	}, nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-7", entity.StatusCompleted, "FLW-7", "", f.now,
	).Return(true, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

	result, err := f.svc.ValidateCardPayment(ctx, "QR-7", "", "", "123456")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, result.Status)
}

func TestValidateCardPaymentWithoutOTPDegradesToVerify(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	p := f.pendingPayment("QR-8", entity.MethodCard)
	f.payments.On("GetByRef", mock.Anything, "QR-8").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-8").Return(&gwport.VerifyResult{
		TransactionRef: "QR-8",
		Status:         gwport.StatusPending,
	}, nil)

	result, err := f.svc.ValidateCardPayment(ctx, "QR-8", "", "", "")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, result.Status)
	f.gateway.AssertNotCalled(t, "ValidateCharge", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateCardPaymentNoGatewayReference(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	p := f.pendingPayment("QR-9", entity.MethodCard)
	p.RequiresOTP = true
	f.payments.On("GetByRef", mock.Anything, "QR-9").Return(p, nil)

	_, err := f.svc.ValidateCardPayment(ctx, "QR-9", "", "", "123456")

	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestAuthorize3DSCard(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()
	card := entity.CardDetails{
		Number:      "5531886652142950",
		CVV:         "564",
		ExpiryMonth: "09",
		ExpiryYear:  "32",
		PIN:         "3310",
	}

	t.Run("Incomplete card rejected", func(t *testing.T) {
		_, err := f.svc.Authorize3DSCard(ctx, "QR-10", "", entity.CardDetails{Number: "5531"})
		assert.ErrorIs(t, err, errs.ErrCardDetailsRequired)
	})

	t.Run("Completes challenge and reconciles", func(t *testing.T) {
		p := f.pendingPayment("QR-10", entity.MethodCard)
		p.GatewayRef = "FLW-10"
		f.payments.On("GetByRef", mock.Anything, "QR-10").Return(p, nil)
		f.gateway.On("AuthorizeCharge", mock.Anything, "QR-10", "FLW-10", card).Return(&gwport.ChargeResult{
			GatewayRef: "FLW-10",
			Status:     gwport.StatusSucceeded,
		}, nil)
		f.payments.On("UpdateStatusIfPending",
			mock.Anything, "QR-10", entity.StatusCompleted, "FLW-10", "", f.now,
		).Return(true, nil)
		f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

		result, err := f.svc.Authorize3DSCard(ctx, "QR-10", "", card)

		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, result.Status)
	})
}

func TestVerifyCreditsWalletTopUpExactlyOnce(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	p := f.pendingPayment("QR-11", entity.MethodCard)
	p.WalletTopUp = true

	f.expectWalletMutation(42, 0)
	f.payments.On("GetByRef", mock.Anything, "QR-11").Return(p, nil)
	f.gateway.On("VerifyTransaction", mock.Anything, "QR-11").Return(&gwport.VerifyResult{
		TransactionRef: "QR-11",
		GatewayRef:     "FLW-11",
		Status:         gwport.StatusSucceeded,
	}, nil)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-11", entity.StatusCompleted, "FLW-11", "", f.now,
	).Return(true, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.Anything).Return()

	result, err := f.svc.Verify(ctx, "QR-11")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, result.Status)
	// The winner of the conditional transition performs the credit
	f.walletRepo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}
