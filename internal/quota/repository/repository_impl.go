package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	"github.com/harborworks/chandlery/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() quotadomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, entry *quotadomain.LedgerEntry) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO quota_ledger_entries (id, buyer_id, tariff_id, billing_anchor, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.BuyerID,
		entry.TariffID,
		entry.BillingAnchor,
		entry.Active,
		entry.CreatedAt,
	).Error
}

func (r *repo) DeactivateActive(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID) (int64, error) {
	result := conn.WithContext(ctx).Exec(
		`UPDATE quota_ledger_entries SET active = ? WHERE buyer_id = ? AND active = ?`,
		false,
		buyerID,
		true,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) FindActiveByBuyer(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID) (*quotadomain.LedgerEntry, error) {
	return r.findActive(ctx, conn, buyerID, false)
}

func (r *repo) FindActiveByBuyerForUpdate(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID) (*quotadomain.LedgerEntry, error) {
	return r.findActive(ctx, conn, buyerID, true)
}

func (r *repo) findActive(ctx context.Context, conn *gorm.DB, buyerID snowflake.ID, forUpdate bool) (*quotadomain.LedgerEntry, error) {
	query := `SELECT id, buyer_id, tariff_id, billing_anchor, active, created_at
	 FROM quota_ledger_entries
	 WHERE buyer_id = ? AND active = ?`
	if forUpdate {
		query += db.LockSuffix(conn)
	}

	var entry quotadomain.LedgerEntry
	err := conn.WithContext(ctx).Raw(query, buyerID, true).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}
