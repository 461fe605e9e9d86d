// Package domain contains the order store models: a buyer's provisioning
// request, its line items, and seller responses.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a member of the status sum type.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ConsumesQuota reports whether an order in this status counts against the
// buyer's per-period limit. Cancelled orders release their slot.
func (s OrderStatus) ConsumesQuota() bool {
	return s != StatusCancelled
}

type Order struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	BuyerID   snowflake.ID `gorm:"index;not null"`
	Status    OrderStatus  `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	OrderID snowflake.ID `gorm:"index;not null"`
	// IMPACode is the six-digit marine stores catalogue code.
	IMPACode string `gorm:"type:text;not null"`
	Quantity int    `gorm:"not null"`
	// PortLocode is the UN/LOCODE of the delivery port, e.g. NLRTM.
	PortLocode string `gorm:"type:text;not null"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

type OrderResponse struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrderID    snowflake.ID `gorm:"index;not null"`
	SellerID   snowflake.ID `gorm:"index;not null"`
	Message    string       `gorm:"type:text"`
	PriceCents int64        `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OrderResponse) TableName() string { return "order_responses" }
