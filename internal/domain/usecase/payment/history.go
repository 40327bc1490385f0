package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
)

// Pagination defaults for transaction history
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// HistoryQuery narrows a transaction history read. Zero values take the
// documented defaults (page 1, limit 10).
type HistoryQuery struct {
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Method    string
}

// HistoryPage is one page of a user's payment history plus summary stats.
type HistoryPage struct {
	Payments    []*entity.Payment `json:"payments"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	Total       int64             `json:"total"`
	TotalPages  int64             `json:"totalPages"`
	SuccessRate float64           `json:"successRate"`
}

// History returns a 1-indexed page of the user's payments, newest first.
func (s *Service) History(ctx context.Context, userID uint64, q HistoryQuery) (*HistoryPage, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Page < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("%w: page and limit must be positive", errs.ErrInvalidRequest)
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	filter := persistence.ListFilter{
		UserID:    userID,
		Page:      q.Page,
		Limit:     q.Limit,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}

	if q.Status != "" {
		if !entity.IsValidStatus(q.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidRequest, q.Status)
		}
		filter.Status = entity.PaymentStatus(strings.ToUpper(q.Status))
	}
	if q.Method != "" {
		method, err := entity.NormalizePaymentMethod(q.Method)
		if err != nil {
			return nil, err
		}
		filter.Method = method
	}

	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	completed, err := s.payments.CountByStatus(ctx, userID, entity.StatusCompleted)
	if err != nil {
		return nil, err
	}
	allCount, err := s.payments.CountByStatus(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		totalPages++
	}

	return &HistoryPage{
		Payments:    payments,
		Page:        q.Page,
		Limit:       q.Limit,
		Total:       total,
		TotalPages:  totalPages,
		SuccessRate: entity.SuccessRate(completed, allCount),
	}, nil
}
