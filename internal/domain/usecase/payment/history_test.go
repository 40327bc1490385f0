package payment

import (
	"context"
	"testing"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistoryDefaults(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	f.payments.On("List", mock.Anything, mock.MatchedBy(func(filter persistence.ListFilter) bool {
		return filter.UserID == 42 && filter.Page == 1 && filter.Limit == 10
	})).Return([]*entity.Payment{}, int64(0), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), entity.StatusCompleted).Return(int64(0), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), entity.PaymentStatus("")).Return(int64(0), nil)

	page, err := f.svc.History(ctx, 42, HistoryQuery{})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, float64(0), page.SuccessRate)
}

func TestHistoryPaginationMath(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	payments := []*entity.Payment{
		f.pendingPayment("QR-50", entity.MethodTransfer),
		f.pendingPayment("QR-51", entity.MethodTransfer),
	}
	f.payments.On("List", mock.Anything, mock.MatchedBy(func(filter persistence.ListFilter) bool {
		return filter.Page == 2 && filter.Limit == 5
	})).Return(payments, int64(12), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), entity.StatusCompleted).Return(int64(9), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), entity.PaymentStatus("")).Return(int64(12), nil)

	page, err := f.svc.History(ctx, 42, HistoryQuery{Page: 2, Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, int64(3), page.TotalPages) // ceil(12/5)
	assert.Equal(t, float64(75), page.SuccessRate)
	assert.Len(t, page.Payments, 2)
}

func TestHistoryLimitCapped(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	f.payments.On("List", mock.Anything, mock.MatchedBy(func(filter persistence.ListFilter) bool {
		return filter.Limit == MaxLimit
	})).Return([]*entity.Payment{}, int64(0), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), mock.Anything).Return(int64(0), nil)

	page, err := f.svc.History(ctx, 42, HistoryQuery{Limit: 5000})

	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Limit)
}

func TestHistoryFilters(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)

	f.payments.On("List", mock.Anything, mock.MatchedBy(func(filter persistence.ListFilter) bool {
		return filter.Status == entity.StatusCompleted &&
			filter.Method == entity.MethodCard &&
			filter.StartDate.Equal(start) &&
			filter.EndDate.Equal(end)
	})).Return([]*entity.Payment{}, int64(0), nil)
	f.payments.On("CountByStatus", mock.Anything, uint64(42), mock.Anything).Return(int64(0), nil)

	_, err := f.svc.History(ctx, 42, HistoryQuery{
		Status:    "completed",
		Method:    "card",
		StartDate: &start,
		EndDate:   &end,
	})

	require.NoError(t, err)
}

func TestHistoryInvalidInputs(t *testing.T) {
	f := newFixture(fixtureOptions{})
	ctx := context.Background()

	t.Run("Zero user", func(t *testing.T) {
		_, err := f.svc.History(ctx, 0, HistoryQuery{})
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})

	t.Run("Negative page", func(t *testing.T) {
		_, err := f.svc.History(ctx, 42, HistoryQuery{Page: -1})
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("Unknown status", func(t *testing.T) {
		_, err := f.svc.History(ctx, 42, HistoryQuery{Status: "LIMBO"})
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("Unknown method", func(t *testing.T) {
		_, err := f.svc.History(ctx, 42, HistoryQuery{Method: "BITCOIN"})
		assert.ErrorIs(t, err, errs.ErrInvalidPaymentMethod)
	})

	f.payments.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
