package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// WalletRepository implements persistence.WalletRepository using GORM
type WalletRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewWalletRepository creates a new WalletRepository instance
func NewWalletRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *WalletRepository {
	return &WalletRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// modelToEntity hydrates a wallet entity from its database row
func (r *WalletRepository) modelToEntity(m *model.Wallet) *entity.Wallet {
	wallet := &entity.Wallet{UserID: m.UserID}
	wallet.SetBalance(m.BalanceInKobo, r.timeProvider)
	wallet.CreatedAt = m.CreatedAt
	wallet.UpdatedAt = m.UpdatedAt
	return wallet
}

// GetByUserID retrieves a user's wallet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Wallet, error) {
	var walletModel model.Wallet
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&walletModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Debug("Wallet not found", map[string]any{"user_id": userID})
			return nil, errs.ErrWalletNotFound
		}
		r.logger.Error("Failed to get wallet", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&walletModel), nil
}

// Create saves a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	walletModel := model.Wallet{
		UserID:        wallet.UserID,
		BalanceInKobo: wallet.Balance(),
		CreatedAt:     wallet.CreatedAt,
		UpdatedAt:     wallet.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&walletModel)
	if result.Error != nil {
		r.logger.Error("Failed to create wallet", map[string]any{
			"user_id": wallet.UserID,
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("Wallet created", map[string]any{"user_id": wallet.UserID})
	return nil
}

// Update persists a wallet's balance. Must run inside the unit of work that
// holds the wallet lock.
func (r *WalletRepository) Update(ctx context.Context, wallet *entity.Wallet) error {
	result := r.db.WithContext(ctx).Model(&model.Wallet{}).
		Where("user_id = ?", wallet.UserID).
		Updates(map[string]interface{}{
			"balance_in_kobo": wallet.Balance(),
			"updated_at":      wallet.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update wallet", map[string]any{
			"user_id": wallet.UserID,
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Wallet not found during update", map[string]any{
			"user_id": wallet.UserID,
		})
		return errs.ErrWalletNotFound
	}

	return nil
}
