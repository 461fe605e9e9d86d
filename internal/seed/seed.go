// Package seed bootstraps a fresh deployment with a default admin and a
// starter tariff catalog.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail = "admin@chandlery.local"
	defaultAdminName  = "Chandlery Admin"
)

type defaultTariff struct {
	name                string
	maxOrdersPerMonth   int
	priceCents          int64
	billingPeriodMonths int
}

var defaultTariffs = []defaultTariff{
	{name: "coastal", maxOrdersPerMonth: 4, priceCents: 9900, billingPeriodMonths: 1},
	{name: "deepsea", maxOrdersPerMonth: 20, priceCents: 39900, billingPeriodMonths: 1},
	{name: "fleet", maxOrdersPerMonth: 120, priceCents: 199900, billingPeriodMonths: 3},
}

// EnsureDefaults seeds the default admin user and tariff catalog. Existing
// rows are left alone, so startup stays idempotent.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureTariffsTx(ctx, tx, node)
	})
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM users WHERE role = ?`,
		userdomain.RoleAdmin,
	).Scan(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		node.Generate(),
		defaultAdminEmail,
		defaultAdminName,
		userdomain.RoleAdmin,
		now,
		now,
	).Error
}

func ensureTariffsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, t := range defaultTariffs {
		var count int64
		err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM tariffs WHERE name = ?`,
			t.name,
		).Scan(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		now := time.Now().UTC()
		err = tx.WithContext(ctx).Exec(
			`INSERT INTO tariffs (id, name, max_orders_per_month, price_cents, billing_period_months, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			node.Generate(),
			t.name,
			t.maxOrdersPerMonth,
			t.priceCents,
			t.billingPeriodMonths,
			now,
			now,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}
