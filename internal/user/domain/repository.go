package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository methods take the gorm handle explicitly so services can run
// them against a transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	// FindByIDForUpdate locks the user row for the duration of the
	// surrounding transaction. Approvals serialize on this lock.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	SetApprovedSnapshotID(ctx context.Context, db *gorm.DB, userID, snapshotID snowflake.ID) error
}
