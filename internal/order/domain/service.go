package domain

import (
	"context"
	"errors"
	"time"
)

type CreateOrderItem struct {
	IMPACode   string `json:"impa_code"`
	Quantity   int    `json:"quantity"`
	PortLocode string `json:"port_locode"`
}

type CreateOrderRequest struct {
	BuyerID string            `json:"buyer_id"`
	Items   []CreateOrderItem `json:"items"`
}

type RespondRequest struct {
	OrderID    string `json:"order_id"`
	SellerID   string `json:"seller_id"`
	Message    string `json:"message"`
	PriceCents int64  `json:"price_cents"`
}

type TransitionRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type OrderItemView struct {
	ID         string `json:"id"`
	IMPACode   string `json:"impa_code"`
	Quantity   int    `json:"quantity"`
	PortLocode string `json:"port_locode"`
}

type SellerResponseView struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	Message    string    `json:"message"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderView struct {
	ID        string               `json:"id"`
	BuyerID   string               `json:"buyer_id"`
	Status    OrderStatus          `json:"status"`
	Items     []OrderItemView      `json:"items"`
	Responses []SellerResponseView `json:"responses,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type Service interface {
	// Create inserts the order and its items in one transaction, gated by
	// the buyer role guard and the quota guard. Any failure rolls the
	// whole submission back.
	Create(ctx context.Context, req CreateOrderRequest) (OrderView, error)
	GetByID(ctx context.Context, id string) (OrderView, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]OrderView, error)
	// RespondToOrder records a seller's reply against an existing order.
	RespondToOrder(ctx context.Context, req RespondRequest) (SellerResponseView, error)
	// Transition moves an order to a new status. Fulfillment policy lives
	// elsewhere; the store only enforces the status sum type.
	Transition(ctx context.Context, req TransitionRequest) (OrderView, error)
}

var (
	ErrInvalidOrder  = errors.New("invalid_order")
	ErrInvalidItems  = errors.New("invalid_items")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrOrderNotFound = errors.New("order_not_found")
)
