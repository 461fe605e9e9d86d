package domain

import "github.com/bwmarrin/snowflake"

// Classify derives a snapshot's status relative to the user's approval
// pointer. Pure function over one identity comparison and two timestamps;
// pointer is the snapshot the approval pointer references and may be nil
// only when approvedID is nil.
//
// The four labels partition every possible snapshot of a user: exactly one
// snapshot (or zero, before any approval) is ever CURRENT.
func Classify(snapshot AttributeSnapshot, approvedID *snowflake.ID, pointer *AttributeSnapshot) SnapshotStatus {
	if approvedID == nil || pointer == nil {
		return StatusPending
	}
	if snapshot.ID == *approvedID {
		return StatusCurrent
	}
	if snapshot.CreatedAt.After(pointer.CreatedAt) {
		return StatusPending
	}
	if snapshot.ApprovedAt == nil {
		return StatusOutdated
	}
	return StatusPreviouslyApproved
}
