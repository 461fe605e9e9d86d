// Package domain contains persistence models and contracts for marketplace users.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the closed set of marketplace actor roles.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// ParseRole validates a raw role string at construction time.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is a marketplace subject. ApprovedSnapshotID is the approval
// pointer: the single back-reference to the attribute snapshot currently
// in effect, owned exclusively by the approval service.
type User struct {
	ID                 snowflake.ID  `gorm:"primaryKey"`
	Email              string        `gorm:"type:text;not null;uniqueIndex"`
	Name               string        `gorm:"type:text;not null"`
	Role               Role          `gorm:"type:text;not null"`
	ApprovedSnapshotID *snowflake.ID `gorm:""`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
