package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tariffdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, tariff *tariffdomain.Tariff) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO tariffs (id, name, max_orders_per_month, price_cents, billing_period_months, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tariff.ID,
		tariff.Name,
		tariff.MaxOrdersPerMonth,
		tariff.PriceCents,
		tariff.BillingPeriodMonths,
		tariff.CreatedAt,
		tariff.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*tariffdomain.Tariff, error) {
	var tariff tariffdomain.Tariff
	err := conn.WithContext(ctx).Raw(
		`SELECT id, name, max_orders_per_month, price_cents, billing_period_months, created_at, updated_at
		 FROM tariffs WHERE id = ?`,
		id,
	).Scan(&tariff).Error
	if err != nil {
		return nil, err
	}
	if tariff.ID == 0 {
		return nil, nil
	}
	return &tariff, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB) ([]tariffdomain.Tariff, error) {
	var tariffs []tariffdomain.Tariff
	err := conn.WithContext(ctx).Raw(
		`SELECT id, name, max_orders_per_month, price_cents, billing_period_months, created_at, updated_at
		 FROM tariffs ORDER BY price_cents ASC, created_at ASC`,
	).Scan(&tariffs).Error
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}
