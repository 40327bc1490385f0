package model

import (
	"time"
)

// MigrationVersion tracks which schema migrations have been applied
type MigrationVersion struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Version   string    `gorm:"uniqueIndex;not null;size:100"`
	Details   string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for MigrationVersion
func (MigrationVersion) TableName() string {
	return "migration_versions"
}
