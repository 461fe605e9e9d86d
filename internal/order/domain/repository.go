package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	InsertResponse(ctx context.Context, db *gorm.DB, resp *OrderResponse) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	ListByBuyer(ctx context.Context, db *gorm.DB, buyerID snowflake.ID) ([]Order, error)
	ListItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItem, error)
	ListResponses(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status OrderStatus, at time.Time) error
	// CountInWindow counts the buyer's quota-consuming orders created in
	// [start, end). Implements the counter slice the quota guard consumes.
	CountInWindow(ctx context.Context, db *gorm.DB, buyerID snowflake.ID, start, end time.Time) (int64, error)
}
