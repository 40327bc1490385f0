package migration

import (
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"gorm.io/gorm"
)

// IndexManager creates PostgreSQL indexes that GORM struct tags cannot express
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateAll creates all custom indexes
func (im *IndexManager) CreateAll() error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			// History queries filter by user and sort by creation time
			name: "idx_payments_user_created",
			sql:  "CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments (user_id, created_at DESC)",
		},
		{
			// Partial index keeps reconciliation scans over open payments cheap
			name: "idx_payments_pending",
			sql:  "CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments (transaction_ref) WHERE status = 'PENDING'",
		},
		{
			// Success rate counts filter by user and status
			name: "idx_payments_user_status",
			sql:  "CREATE INDEX IF NOT EXISTS idx_payments_user_status ON payments (user_id, status)",
		},
		{
			// Cumulative refund totals sum over a single payment reference
			name: "idx_refunds_transaction_ref",
			sql:  "CREATE INDEX IF NOT EXISTS idx_refunds_transaction_ref ON refunds (transaction_ref)",
		},
		{
			// Expired lock cleanup scans by expiry
			name: "idx_wallet_locks_expires",
			sql:  "CREATE INDEX IF NOT EXISTS idx_wallet_locks_expires ON wallet_locks (expires_at)",
		},
	}

	for _, idx := range indexes {
		if err := im.db.Exec(idx.sql).Error; err != nil {
			im.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
		im.logger.Debug("Index ensured", map[string]any{"index": idx.name})
	}

	return nil
}
