package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type UserResponse struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	Role               Role    `json:"role"`
	ApprovedSnapshotID *string `json:"approved_snapshot_id,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	// RequireRole fails with the role-specific policy error when the user
	// does not carry the required role.
	RequireRole(ctx context.Context, userID snowflake.ID, role Role) error
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidUser  = errors.New("invalid_user")

	ErrUserNotFound = errors.New("user_not_found")
	ErrUserExists   = errors.New("user_exists")

	// Stable policy codes surfaced to callers.
	ErrUserNotBuyer  = errors.New("ERR_USER_NOT_BUYER")
	ErrUserNotSeller = errors.New("ERR_USER_NOT_SELLER")
	ErrUserNotAdmin  = errors.New("ERR_USER_NOT_ADMIN")
)
