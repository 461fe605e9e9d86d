package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"github.com/harborworks/chandlery/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, user *userdomain.User) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, name, role, approved_snapshot_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.ApprovedSnapshotID,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*userdomain.User, error) {
	return r.findByID(ctx, conn, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*userdomain.User, error) {
	return r.findByID(ctx, conn, id, true)
}

func (r *repo) findByID(ctx context.Context, conn *gorm.DB, id snowflake.ID, forUpdate bool) (*userdomain.User, error) {
	query := `SELECT id, email, name, role, approved_snapshot_id, created_at, updated_at
	 FROM users WHERE id = ?`
	if forUpdate {
		query += db.LockSuffix(conn)
	}

	var user userdomain.User
	err := conn.WithContext(ctx).Raw(query, id).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) SetApprovedSnapshotID(ctx context.Context, conn *gorm.DB, userID, snapshotID snowflake.ID) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE users SET approved_snapshot_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		snapshotID,
		userID,
	).Error
}
