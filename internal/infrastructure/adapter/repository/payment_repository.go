package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/domain/port/persistence"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// PaymentRepository implements persistence.PaymentRepository using GORM
type PaymentRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a payment entity to a database model
func (r *PaymentRepository) entityToModel(payment *entity.Payment) model.Payment {
	return model.Payment{
		TransactionRef:           payment.TransactionRef,
		UserID:                   payment.UserID,
		Email:                    payment.Email,
		VendorID:                 payment.VendorID,
		Amount:                   payment.Amount,
		AmountInKobo:             payment.AmountInKobo,
		Method:                   string(payment.Method),
		Status:                   string(payment.Status),
		ProductType:              payment.ProductType,
		ServiceType:              payment.ServiceType,
		WalletTopUp:              payment.WalletTopUp,
		ItemID:                   payment.ItemID,
		VoucherCode:              payment.VoucherCode,
		MeterNumber:              payment.MeterNumber,
		DestinationBankCode:      payment.DestinationBankCode,
		DestinationAccountNumber: payment.DestinationAccountNumber,
		GatewayRef:               payment.GatewayRef,
		RequiresOTP:              payment.RequiresOTP,
		FailureReason:            payment.FailureReason,
		CreatedAt:                payment.CreatedAt,
		UpdatedAt:                payment.UpdatedAt,
		ProcessedAt:              payment.ProcessedAt,
	}
}

// modelToEntity converts a payment model to an entity
func (r *PaymentRepository) modelToEntity(m *model.Payment) *entity.Payment {
	return &entity.Payment{
		ID:                       m.ID,
		TransactionRef:           m.TransactionRef,
		UserID:                   m.UserID,
		Email:                    m.Email,
		VendorID:                 m.VendorID,
		Amount:                   m.Amount,
		AmountInKobo:             m.AmountInKobo,
		Method:                   entity.PaymentMethod(m.Method),
		Status:                   entity.PaymentStatus(m.Status),
		ProductType:              m.ProductType,
		ServiceType:              m.ServiceType,
		WalletTopUp:              m.WalletTopUp,
		ItemID:                   m.ItemID,
		VoucherCode:              m.VoucherCode,
		MeterNumber:              m.MeterNumber,
		DestinationBankCode:      m.DestinationBankCode,
		DestinationAccountNumber: m.DestinationAccountNumber,
		GatewayRef:               m.GatewayRef,
		RequiresOTP:              m.RequiresOTP,
		FailureReason:            m.FailureReason,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
		ProcessedAt:              m.ProcessedAt,
	}
}

// Create saves a new payment. The unique index on transaction_ref turns a
// concurrent duplicate insert into ErrDuplicatePayment.
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	r.logger.Debug("Creating payment", map[string]any{
		"transaction_ref": payment.TransactionRef,
		"user_id":         payment.UserID,
		"method":          payment.Method,
	})

	paymentModel := r.entityToModel(payment)

	result := r.db.WithContext(ctx).Create(&paymentModel)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate payment detected", map[string]any{
				"transaction_ref": payment.TransactionRef,
				"user_id":         payment.UserID,
			})
			return errs.ErrDuplicatePayment
		}

		r.logger.Error("Failed to create payment", map[string]any{
			"transaction_ref": payment.TransactionRef,
			"user_id":         payment.UserID,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	payment.ID = paymentModel.ID

	r.logger.Info("Payment created successfully", map[string]any{
		"transaction_ref": payment.TransactionRef,
		"user_id":         payment.UserID,
	})
	return nil
}

// GetByRef retrieves a payment by its transaction reference
func (r *PaymentRepository) GetByRef(ctx context.Context, transactionRef string) (*entity.Payment, error) {
	r.logger.Debug("Getting payment by reference", map[string]any{
		"transaction_ref": transactionRef,
	})

	var paymentModel model.Payment
	result := r.db.WithContext(ctx).
		Where("transaction_ref = ?", transactionRef).
		First(&paymentModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Payment not found", map[string]any{
				"transaction_ref": transactionRef,
			})
			return nil, errs.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get payment", map[string]any{
			"transaction_ref": transactionRef,
			"error":           result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&paymentModel), nil
}

// ExistsByRef checks if a payment with the given reference exists
func (r *PaymentRepository) ExistsByRef(ctx context.Context, transactionRef string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_ref = ?", transactionRef).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check payment existence", map[string]any{
			"transaction_ref": transactionRef,
			"error":           result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return count > 0, nil
}

// UpdateStatusIfPending performs the conditional terminal transition. The
// WHERE clause carries the PENDING guard, so racing observers cannot both
// win: the database serializes them and RowsAffected tells who did.
func (r *PaymentRepository) UpdateStatusIfPending(
	ctx context.Context,
	transactionRef string,
	status entity.PaymentStatus,
	gatewayRef string,
	failureReason string,
	processedAt time.Time,
) (bool, error) {
	r.logger.Debug("Attempting conditional status update", map[string]any{
		"transaction_ref": transactionRef,
		"target_status":   status,
	})

	updates := map[string]interface{}{
		"status":       string(status),
		"processed_at": processedAt,
		"updated_at":   r.timeProvider.Now(),
		"requires_otp": false,
	}
	if gatewayRef != "" {
		updates["gateway_ref"] = gatewayRef
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}

	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_ref = ? AND status = ?", transactionRef, string(entity.StatusPending)).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update payment status", map[string]any{
			"transaction_ref": transactionRef,
			"target_status":   status,
			"error":           result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Payment status updated", map[string]any{
			"transaction_ref": transactionRef,
			"status":          status,
		})
		return true, nil
	}

	// No row matched: either the payment is already terminal or it does not
	// exist. Distinguish the two for the caller.
	exists, err := r.ExistsByRef(ctx, transactionRef)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, errs.ErrPaymentNotFound
	}

	r.logger.Debug("Payment already terminal, transition not performed", map[string]any{
		"transaction_ref": transactionRef,
		"target_status":   status,
	})
	return false, nil
}

// SetGatewayRef records the vendor charge reference and OTP sub-state while
// the payment is still PENDING. A terminal payment is left untouched.
func (r *PaymentRepository) SetGatewayRef(ctx context.Context, transactionRef, gatewayRef string, requiresOTP bool) error {
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("transaction_ref = ? AND status = ?", transactionRef, string(entity.StatusPending)).
		Updates(map[string]interface{}{
			"gateway_ref":  gatewayRef,
			"requires_otp": requiresOTP,
			"updated_at":   r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to set gateway reference", map[string]any{
			"transaction_ref": transactionRef,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		exists, err := r.ExistsByRef(ctx, transactionRef)
		if err != nil {
			return err
		}
		if !exists {
			return errs.ErrPaymentNotFound
		}
	}

	return nil
}

// List returns a page of payments matching the filter plus the total count
func (r *PaymentRepository) List(ctx context.Context, filter persistence.ListFilter) ([]*entity.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Method != "" {
		query = query.Where("method = ?", string(filter.Method))
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Error("Failed to count payments", map[string]any{
			"user_id": filter.UserID,
			"error":   err.Error(),
		})
		return nil, 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	var models []model.Payment
	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&models).Error

	if err != nil {
		r.logger.Error("Failed to list payments", map[string]any{
			"user_id": filter.UserID,
			"error":   err.Error(),
		})
		return nil, 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	payments := make([]*entity.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, r.modelToEntity(&models[i]))
	}

	return payments, total, nil
}

// CountByStatus returns how many of the user's payments carry the given
// status; an empty status counts all of them
func (r *PaymentRepository) CountByStatus(ctx context.Context, userID uint64, status entity.PaymentStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("user_id = ?", userID)

	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		r.logger.Error("Failed to count payments by status", map[string]any{
			"user_id": userID,
			"status":  status,
			"error":   err.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	return count, nil
}
