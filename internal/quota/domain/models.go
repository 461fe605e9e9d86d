// Package domain contains the quota ledger and the billing period resolver.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LedgerEntry binds a buyer to a tariff from a billing anchor onward.
// Entries are immutable after creation except for the Active flag: a
// re-subscription deactivates the previous entry and inserts a new one,
// so at most one entry per buyer is ever active.
type LedgerEntry struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	BuyerID       snowflake.ID `gorm:"not null;index"`
	TariffID      snowflake.ID `gorm:"not null;index"`
	BillingAnchor time.Time    `gorm:"not null"`
	Active        bool         `gorm:"not null;default:true"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "quota_ledger_entries" }
