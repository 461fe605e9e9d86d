package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type SubscribeRequest struct {
	BuyerID  string `json:"buyer_id"`
	TariffID string `json:"tariff_id"`
	// Anchor defaults to the subscription time when omitted.
	Anchor *time.Time `json:"anchor,omitempty"`
}

type SubscriptionResponse struct {
	ID            string    `json:"id"`
	BuyerID       string    `json:"buyer_id"`
	TariffID      string    `json:"tariff_id"`
	BillingAnchor time.Time `json:"billing_anchor"`
	Active        bool      `json:"active"`
}

type Service interface {
	// Subscribe creates a new active ledger entry for the buyer,
	// deactivating any previous one in the same transaction.
	Subscribe(ctx context.Context, req SubscribeRequest) (SubscriptionResponse, error)
	// ActiveSubscription returns the buyer's active ledger entry.
	ActiveSubscription(ctx context.Context, buyerID string) (SubscriptionResponse, error)
	// Authorize is the quota guard. It runs inside the caller's
	// transaction, holds a row lock on the buyer's active ledger entry,
	// and fails with ErrNoActiveTariff or ErrOrderLimitReached. The
	// caller creates the order in the same transaction only on success.
	Authorize(ctx context.Context, tx *gorm.DB, buyerID snowflake.ID, at time.Time) error
}

var (
	ErrInvalidBuyer  = errors.New("invalid_buyer")
	ErrInvalidTariff = errors.New("invalid_tariff")

	// Stable policy codes surfaced to callers; never retried automatically.
	ErrNoActiveTariff    = errors.New("ERR_NO_ACTIVE_TARIFF")
	ErrOrderLimitReached = errors.New("ERR_ORDER_PER_MONTH_LIMIT_REACHED")
)
