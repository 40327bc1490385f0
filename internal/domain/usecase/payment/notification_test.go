package payment

import (
	"context"
	"testing"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// The mailer drops notices without a recipient address, so every notice must
// carry the email captured at initiation.

func TestCompletedNoticeCarriesPayerEmail(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.expectWalletMutation(42, 20000)
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, mock.AnythingOfType("string"), entity.StatusCompleted, "", "", f.now).
		Return(true, nil)
	f.notifier.On("PaymentCompleted", mock.Anything, mock.MatchedBy(func(n notification.PaymentNotice) bool {
		return n.Email == "amaka@quicrefill.test" && n.UserID == 42
	})).Return()

	p, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID:      42,
		Email:       "amaka@quicrefill.test",
		Amount:      "100.00",
		Method:      "wallet",
		ProductType: "gas",
	})

	require.NoError(t, err)
	assert.Equal(t, "amaka@quicrefill.test", p.Email)
	f.notifier.AssertExpectations(t)
}

func TestFailedNoticeCarriesPayerEmail(t *testing.T) {
	f := newFixture(fixtureOptions{withNotifier: true})
	ctx := context.Background()

	f.payments.On("ExistsByRef", mock.Anything, "QR-90").Return(false, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(nil)
	f.gateway.On("Charge", mock.Anything, mock.Anything).
		Return(nil, errs.NewGatewayError("charge", "QR-90", 400, "card declined", errs.ErrGatewayDeclined))
	f.payments.On("UpdateStatusIfPending",
		mock.Anything, "QR-90", entity.StatusFailed, "", mock.AnythingOfType("string"), f.now).
		Return(true, nil)
	f.notifier.On("PaymentFailed", mock.Anything, mock.MatchedBy(func(n notification.PaymentNotice) bool {
		return n.Email == "amaka@quicrefill.test"
	})).Return()

	_, err := f.svc.Initiate(ctx, InitiateRequest{
		UserID:         42,
		Email:          "amaka@quicrefill.test",
		Amount:         "100.00",
		Method:         "transfer",
		ProductType:    "gas",
		TransactionRef: "QR-90",
	})

	assert.ErrorIs(t, err, errs.ErrGatewayDeclined)
	f.notifier.AssertExpectations(t)
}
