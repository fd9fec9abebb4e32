package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEntry is one key-addressed ledger record.
// Values are canonical JSON documents.
type LedgerEntry struct {
	Key       string         `gorm:"primaryKey;type:text"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
