package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *AttributeSnapshot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AttributeSnapshot, error)
	// ListByUser returns a user's snapshots ordered by created_at descending.
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]AttributeSnapshot, error)
	// StampApproved overwrites approved_at; the only mutation the log permits.
	StampApproved(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
