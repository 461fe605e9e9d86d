package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/harborworks/chandlery/internal/attribute/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() attributedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, snapshot *attributedomain.AttributeSnapshot) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO attribute_snapshots (id, user_id, fields, created_at, approved_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.UserID,
		snapshot.Fields,
		snapshot.CreatedAt,
		snapshot.ApprovedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*attributedomain.AttributeSnapshot, error) {
	var snapshot attributedomain.AttributeSnapshot
	err := conn.WithContext(ctx).Raw(
		`SELECT id, user_id, fields, created_at, approved_at
		 FROM attribute_snapshots WHERE id = ?`,
		id,
	).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID == 0 {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *repo) ListByUser(ctx context.Context, conn *gorm.DB, userID snowflake.ID) ([]attributedomain.AttributeSnapshot, error) {
	var snapshots []attributedomain.AttributeSnapshot
	err := conn.WithContext(ctx).Raw(
		`SELECT id, user_id, fields, created_at, approved_at
		 FROM attribute_snapshots
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	).Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) StampApproved(ctx context.Context, conn *gorm.DB, id snowflake.ID, at time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE attribute_snapshots SET approved_at = ? WHERE id = ?`,
		at,
		id,
	).Error
}
