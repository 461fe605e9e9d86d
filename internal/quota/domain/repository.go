package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *LedgerEntry) error
	// DeactivateActive clears the buyer's active entry, preserving it as
	// history. Returns the number of rows touched.
	DeactivateActive(ctx context.Context, db *gorm.DB, buyerID snowflake.ID) (int64, error)
	FindActiveByBuyer(ctx context.Context, db *gorm.DB, buyerID snowflake.ID) (*LedgerEntry, error)
	// FindActiveByBuyerForUpdate locks the entry row; the quota guard
	// serializes concurrent order submissions per buyer on this lock.
	FindActiveByBuyerForUpdate(ctx context.Context, db *gorm.DB, buyerID snowflake.ID) (*LedgerEntry, error)
}

// OrderCounter is the slice of the order store the quota guard consumes.
type OrderCounter interface {
	// CountInWindow counts the buyer's quota-consuming orders created in
	// [start, end). Cancelled orders do not consume quota.
	CountInWindow(ctx context.Context, db *gorm.DB, buyerID snowflake.ID, start, end time.Time) (int64, error)
}
