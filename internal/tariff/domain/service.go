package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateTariffRequest struct {
	Name                string `json:"name"`
	MaxOrdersPerMonth   int    `json:"max_orders_per_month"`
	PriceCents          int64  `json:"price_cents"`
	BillingPeriodMonths int    `json:"billing_period_months"`
}

type TariffResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	MaxOrdersPerMonth   int    `json:"max_orders_per_month"`
	PriceCents          int64  `json:"price_cents"`
	BillingPeriodMonths int    `json:"billing_period_months"`
}

type Service interface {
	Create(ctx context.Context, req CreateTariffRequest) (TariffResponse, error)
	List(ctx context.Context) ([]TariffResponse, error)
	GetByID(ctx context.Context, id string) (TariffResponse, error)
	// Get resolves a tariff by parsed ID for in-process consumers (the
	// quota guard); served through the resolver cache.
	Get(ctx context.Context, id snowflake.ID) (*Tariff, error)
}

var (
	ErrInvalidTariff        = errors.New("invalid_tariff")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidMaxOrders     = errors.New("invalid_max_orders_per_month")
	ErrInvalidPrice         = errors.New("invalid_price_cents")
	ErrInvalidBillingPeriod = errors.New("invalid_billing_period_months")

	ErrTariffNotFound = errors.New("tariff_not_found")
	ErrTariffExists   = errors.New("tariff_exists")
)
