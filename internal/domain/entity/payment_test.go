package entity

import (
	"testing"
	"time"

	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coremocks "github.com/quicrefill/customer-service/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTimeProvider() *coremocks.MockTimeProvider {
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return mockTime
}

func validCard() *CardDetails {
	return &CardDetails{
		Number:      "5531886652142950",
		CVV:         "564",
		ExpiryMonth: "09",
		ExpiryYear:  "32",
	}
}

func TestNormalizePaymentMethod(t *testing.T) {
	t.Run("Case insensitive match", func(t *testing.T) {
		for _, raw := range []string{"card", "CARD", "Card", " card "} {
			method, err := NormalizePaymentMethod(raw)
			require.NoError(t, err)
			assert.Equal(t, MethodCard, method)
		}
	})

	t.Run("All valid methods accepted", func(t *testing.T) {
		for _, m := range ValidPaymentMethods() {
			method, err := NormalizePaymentMethod(string(m))
			require.NoError(t, err)
			assert.Equal(t, m, method)
		}
	})

	t.Run("Unknown method rejected", func(t *testing.T) {
		_, err := NormalizePaymentMethod("BITCOIN")
		assert.ErrorIs(t, err, errs.ErrInvalidPaymentMethod)
	})

	t.Run("Empty method rejected", func(t *testing.T) {
		_, err := NormalizePaymentMethod("")
		assert.ErrorIs(t, err, errs.ErrInvalidPaymentMethod)
	})
}

func TestNewPayment(t *testing.T) {
	mockTime := fixedTimeProvider()

	t.Run("Valid card payment", func(t *testing.T) {
		p, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "150.5",
			Method:         MethodCard,
			ProductType:    "gas",
			Card:           validCard(),
		}, mockTime)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, p.Status)
		assert.Equal(t, "150.50", p.Amount)
		assert.Equal(t, int64(15050), p.AmountInKobo)
		assert.False(t, p.IsTerminal())
		assert.Nil(t, p.ProcessedAt)
	})

	t.Run("Zero user rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			Amount:         "10.00",
			Method:         MethodTransfer,
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})

	t.Run("Empty reference rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			UserID: 42,
			Amount: "10.00",
			Method: MethodTransfer,
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidTransactionRef)
	})

	t.Run("Zero amount rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "0.00",
			Method:         MethodTransfer,
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("Card method without card details rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodCard,
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrCardDetailsRequired)
	})

	t.Run("Transfer with card details rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodTransfer,
			Card:           validCard(),
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrCardDetailsNotAllowed)
	})

	t.Run("Wallet top-up with product type rejected", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodTransfer,
			WalletTopUp:    true,
			ProductType:    "gas",
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrWalletTopUpConflict)
	})

	t.Run("Product and service types mutually exclusive", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodTransfer,
			ProductType:    "gas",
			ServiceType:    "electricity",
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrProductServiceConflict)
	})

	t.Run("Electricity requires destination trio", func(t *testing.T) {
		_, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodTransfer,
			ServiceType:    "electricity",
			MeterNumber:    "12345",
		}, mockTime)
		assert.ErrorIs(t, err, errs.ErrElectricityDetailsRequired)
	})

	t.Run("Electricity with full destination accepted", func(t *testing.T) {
		p, err := NewPayment(PaymentParams{
			TransactionRef:           "QR-abc",
			UserID:                   42,
			Amount:                   "10.00",
			Method:                   MethodTransfer,
			ServiceType:              "Electricity", // case-insensitive
			MeterNumber:              "12345",
			DestinationBankCode:      "044",
			DestinationAccountNumber: "0690000040",
		}, mockTime)
		require.NoError(t, err)
		assert.True(t, p.IsElectricity())
	})
}

func TestPaymentStatusTransitions(t *testing.T) {
	mockTime := fixedTimeProvider()

	newPending := func() *Payment {
		p, err := NewPayment(PaymentParams{
			TransactionRef: "QR-abc",
			UserID:         42,
			Amount:         "10.00",
			Method:         MethodTransfer,
		}, mockTime)
		require.NoError(t, err)
		return p
	}

	t.Run("MarkCompleted", func(t *testing.T) {
		p := newPending()
		p.RequiresOTP = true
		p.MarkCompleted(mockTime, "FLW-123")

		assert.Equal(t, StatusCompleted, p.Status)
		assert.Equal(t, "FLW-123", p.GatewayRef)
		assert.False(t, p.RequiresOTP)
		assert.True(t, p.IsTerminal())
		require.NotNil(t, p.ProcessedAt)
	})

	t.Run("MarkCompleted keeps existing gateway ref when empty", func(t *testing.T) {
		p := newPending()
		p.GatewayRef = "FLW-existing"
		p.MarkCompleted(mockTime, "")
		assert.Equal(t, "FLW-existing", p.GatewayRef)
	})

	t.Run("MarkFailed", func(t *testing.T) {
		p := newPending()
		p.MarkFailed(mockTime, "card declined")

		assert.Equal(t, StatusFailed, p.Status)
		assert.Equal(t, "card declined", p.FailureReason)
		assert.True(t, p.IsTerminal())
	})

	t.Run("MarkCancelled", func(t *testing.T) {
		p := newPending()
		p.MarkCancelled(mockTime)
		assert.Equal(t, StatusCancelled, p.Status)
		assert.True(t, p.IsTerminal())
	})

	t.Run("Terminality per status", func(t *testing.T) {
		assert.False(t, StatusPending.IsTerminal())
		assert.True(t, StatusCompleted.IsTerminal())
		assert.True(t, StatusFailed.IsTerminal())
		assert.True(t, StatusCancelled.IsTerminal())
	})
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus("pending"))
	assert.True(t, IsValidStatus("COMPLETED"))
	assert.True(t, IsValidStatus(" failed "))
	assert.False(t, IsValidStatus("UNKNOWN"))
	assert.False(t, IsValidStatus(""))
}

func TestCardDetails(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		assert.True(t, validCard().Complete())

		partial := validCard()
		partial.CVV = ""
		assert.False(t, partial.Complete())

		var nilCard *CardDetails
		assert.False(t, nilCard.Complete())
	})

	t.Run("Empty", func(t *testing.T) {
		var nilCard *CardDetails
		assert.True(t, nilCard.Empty())
		assert.True(t, (&CardDetails{}).Empty())
		assert.False(t, validCard().Empty())
		assert.False(t, (&CardDetails{PIN: "1234"}).Empty())
	})
}

func TestResultFromPayment(t *testing.T) {
	mockTime := fixedTimeProvider()
	p, err := NewPayment(PaymentParams{
		TransactionRef: "QR-abc",
		UserID:         42,
		Amount:         "10.00",
		Method:         MethodTransfer,
	}, mockTime)
	require.NoError(t, err)
	p.GatewayRef = "FLW-9"

	result := ResultFromPayment(p, "still pending")
	assert.Equal(t, "QR-abc", result.TransactionRef)
	assert.Equal(t, "FLW-9", result.GatewayRef)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "10.00", result.Amount)
	assert.Equal(t, "still pending", result.Message)
}
