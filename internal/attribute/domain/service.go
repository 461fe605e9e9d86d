package domain

import (
	"context"
	"errors"
	"time"
)

type AppendSnapshotRequest struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type ApproveSnapshotRequest struct {
	UserID     string `json:"user_id"`
	SnapshotID string `json:"snapshot_id"`
}

// SnapshotResponse is a snapshot together with its derived status.
type SnapshotResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Fields     map[string]any `json:"fields"`
	Status     SnapshotStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
}

type Service interface {
	// Append inserts a new immutable snapshot; no other snapshot is touched.
	Append(ctx context.Context, req AppendSnapshotRequest) (SnapshotResponse, error)
	// List returns all snapshots of a user, newest first, with derived status.
	List(ctx context.Context, userID string) ([]SnapshotResponse, error)
	// ListPending filters List down to snapshots awaiting review.
	ListPending(ctx context.Context, userID string) ([]SnapshotResponse, error)
	// Approve atomically moves the user's approval pointer to the snapshot
	// and stamps its approval time. Re-approving the same snapshot
	// refreshes the timestamp.
	Approve(ctx context.Context, req ApproveSnapshotRequest) (SnapshotResponse, error)
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidSnapshot = errors.New("invalid_snapshot")
	ErrMissingFields   = errors.New("missing_fields")

	ErrUserNotFound     = errors.New("user_not_found")
	ErrSnapshotNotFound = errors.New("snapshot_not_found")
)
