package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, order *orderdomain.Order) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO orders (id, buyer_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		order.ID,
		order.BuyerID,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, conn *gorm.DB, items []orderdomain.OrderItem) error {
	for i := range items {
		err := conn.WithContext(ctx).Exec(
			`INSERT INTO order_items (id, order_id, impa_code, quantity, port_locode)
			 VALUES (?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].OrderID,
			items[i].IMPACode,
			items[i].Quantity,
			items[i].PortLocode,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertResponse(ctx context.Context, conn *gorm.DB, resp *orderdomain.OrderResponse) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO order_responses (id, order_id, seller_id, message, price_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		resp.ID,
		resp.OrderID,
		resp.SellerID,
		resp.Message,
		resp.PriceCents,
		resp.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := conn.WithContext(ctx).Raw(
		`SELECT id, buyer_id, status, created_at, updated_at FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) ListByBuyer(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := conn.WithContext(ctx).Raw(
		`SELECT id, buyer_id, status, created_at, updated_at
		 FROM orders
		 WHERE buyer_id = ?
		 ORDER BY created_at DESC, id DESC`,
		buyerID,
	).Scan(&orders).Error
	return orders, err
}

func (r *repo) ListItems(ctx context.Context, conn *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderItem, error) {
	var items []orderdomain.OrderItem
	err := conn.WithContext(ctx).Raw(
		`SELECT id, order_id, impa_code, quantity, port_locode
		 FROM order_items
		 WHERE order_id = ?
		 ORDER BY id ASC`,
		orderID,
	).Scan(&items).Error
	return items, err
}

func (r *repo) ListResponses(ctx context.Context, conn *gorm.DB, orderID snowflake.ID) ([]orderdomain.OrderResponse, error) {
	var responses []orderdomain.OrderResponse
	err := conn.WithContext(ctx).Raw(
		`SELECT id, order_id, seller_id, message, price_cents, created_at
		 FROM order_responses
		 WHERE order_id = ?
		 ORDER BY created_at ASC, id ASC`,
		orderID,
	).Scan(&responses).Error
	return responses, err
}

func (r *repo) UpdateStatus(ctx context.Context, conn *gorm.DB, id snowflake.ID, status orderdomain.OrderStatus, at time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		at,
		id,
	).Error
}

func (r *repo) CountInWindow(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID, start, end time.Time) (int64, error) {
	var count int64
	err := conn.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM orders
		 WHERE buyer_id = ?
		   AND status <> ?
		   AND created_at >= ?
		   AND created_at < ?`,
		buyerID,
		orderdomain.StatusCancelled,
		start,
		end,
	).Scan(&count).Error
	return count, err
}
