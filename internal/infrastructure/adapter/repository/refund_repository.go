package repository

import (
	"context"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// RefundRepository implements the append-only refund ledger using GORM
type RefundRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewRefundRepository creates a new RefundRepository instance
func NewRefundRepository(db *gorm.DB, logger coreport.Logger) *RefundRepository {
	return &RefundRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a refund ledger entry
func (r *RefundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	r.logger.Debug("Appending refund ledger entry", map[string]any{
		"transaction_ref": refund.TransactionRef,
		"user_id":         refund.UserID,
		"amount":          refund.Amount,
	})

	refundModel := model.Refund{
		TransactionRef:   refund.TransactionRef,
		UserID:           refund.UserID,
		Amount:           refund.Amount,
		AmountInKobo:     refund.AmountInKobo,
		PaymentReference: refund.PaymentReference,
		GatewayRef:       refund.GatewayRef,
		CreatedAt:        refund.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&refundModel)
	if result.Error != nil {
		r.logger.Error("Failed to append refund entry", map[string]any{
			"transaction_ref": refund.TransactionRef,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	refund.ID = refundModel.ID

	r.logger.Info("Refund entry recorded", map[string]any{
		"transaction_ref": refund.TransactionRef,
		"amount":          refund.Amount,
	})
	return nil
}

// TotalRefundedKobo returns the running refund total for a payment
func (r *RefundRepository) TotalRefundedKobo(ctx context.Context, transactionRef string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Refund{}).
		Where("transaction_ref = ?", transactionRef).
		Select("COALESCE(SUM(amount_in_kobo), 0)").
		Scan(&total).Error

	if err != nil {
		r.logger.Error("Failed to sum refunds", map[string]any{
			"transaction_ref": transactionRef,
			"error":           err.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	return total, nil
}

// ListByPayment returns all refund entries for a payment, oldest first
func (r *RefundRepository) ListByPayment(ctx context.Context, transactionRef string) ([]*entity.Refund, error) {
	var models []model.Refund
	err := r.db.WithContext(ctx).
		Where("transaction_ref = ?", transactionRef).
		Order("created_at ASC").
		Find(&models).Error

	if err != nil {
		r.logger.Error("Failed to list refunds", map[string]any{
			"transaction_ref": transactionRef,
			"error":           err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	refunds := make([]*entity.Refund, 0, len(models))
	for i := range models {
		m := &models[i]
		refunds = append(refunds, &entity.Refund{
			ID:               m.ID,
			TransactionRef:   m.TransactionRef,
			UserID:           m.UserID,
			Amount:           m.Amount,
			AmountInKobo:     m.AmountInKobo,
			PaymentReference: m.PaymentReference,
			GatewayRef:       m.GatewayRef,
			CreatedAt:        m.CreatedAt,
		})
	}

	return refunds, nil
}
