// Package domain contains the subscription tariff catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tariff is read-only reference data for the quota engine: it caps the
// number of orders a buyer may place per billing period.
type Tariff struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	Name                string       `gorm:"type:text;not null;uniqueIndex"`
	MaxOrdersPerMonth   int          `gorm:"not null"`
	PriceCents          int64        `gorm:"not null"`
	BillingPeriodMonths int          `gorm:"not null;default:1"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tariff) TableName() string { return "tariffs" }
