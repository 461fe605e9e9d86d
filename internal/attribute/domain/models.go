// Package domain contains the append-only attribute snapshot log and the
// version classifier.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SnapshotStatus is the derived approval state of a snapshot. It is
// computed at read time from the user's approval pointer and is never
// persisted.
type SnapshotStatus string

const (
	// StatusCurrent marks the snapshot the approval pointer references.
	StatusCurrent SnapshotStatus = "CURRENT"
	// StatusPending marks a snapshot awaiting review: either nothing has
	// ever been approved for the user, or the snapshot postdates the
	// approved one.
	StatusPending SnapshotStatus = "PENDING"
	// StatusOutdated marks a snapshot superseded without ever being approved.
	StatusOutdated SnapshotStatus = "OUTDATED"
	// StatusPreviouslyApproved marks a snapshot that once held the pointer
	// and was later superseded.
	StatusPreviouslyApproved SnapshotStatus = "PREVIOUSLY_APPROVED"
)

// AttributeSnapshot is one immutable, timestamped version of a user's
// dynamic attribute set. Rows are inserted and never updated, except for
// ApprovedAt which only the approval service stamps.
type AttributeSnapshot struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	UserID     snowflake.ID      `gorm:"not null;index"`
	Fields     datatypes.JSONMap `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time         `gorm:"not null"`
	ApprovedAt *time.Time        `gorm:""`
}

// TableName sets the database table name.
func (AttributeSnapshot) TableName() string { return "attribute_snapshots" }
