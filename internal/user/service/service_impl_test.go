package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/clock"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"github.com/harborworks/chandlery/internal/user/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateAndGetUser(t *testing.T) {
	svc, _ := setupUserService(t, mustNode(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, userdomain.CreateUserRequest{
		Email: "Master@Vessel.example",
		Name:  "Chief Mate",
		Role:  "buyer",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Email != "master@vessel.example" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if created.Role != userdomain.RoleBuyer {
		t.Fatalf("expected BUYER role, got %s", created.Role)
	}

	fetched, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, fetched.ID)
	}
	if fetched.ApprovedSnapshotID != nil {
		t.Fatalf("fresh user must not carry an approval pointer")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := setupUserService(t, mustNode(t))
	ctx := context.Background()

	cases := []struct {
		name string
		req  userdomain.CreateUserRequest
		want error
	}{
		{"missing email", userdomain.CreateUserRequest{Name: "X", Role: "buyer"}, userdomain.ErrInvalidEmail},
		{"bad email", userdomain.CreateUserRequest{Email: "nope", Name: "X", Role: "buyer"}, userdomain.ErrInvalidEmail},
		{"missing name", userdomain.CreateUserRequest{Email: "a@b.example", Role: "buyer"}, userdomain.ErrInvalidName},
		{"bad role", userdomain.CreateUserRequest{Email: "a@b.example", Name: "X", Role: "captain"}, userdomain.ErrInvalidRole},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := setupUserService(t, mustNode(t))
	ctx := context.Background()

	req := userdomain.CreateUserRequest{Email: "dup@vessel.example", Name: "First", Role: "seller"}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create first: %v", err)
	}

	if _, err := svc.Create(ctx, req); !errors.Is(err, userdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	svc, _ := setupUserService(t, mustNode(t))
	ctx := context.Background()

	buyer, err := svc.Create(ctx, userdomain.CreateUserRequest{Email: "b@x.example", Name: "B", Role: "buyer"})
	if err != nil {
		t.Fatalf("create buyer: %v", err)
	}
	buyerID, _ := snowflake.ParseString(buyer.ID)

	if err := svc.RequireRole(ctx, buyerID, userdomain.RoleBuyer); err != nil {
		t.Fatalf("buyer should pass buyer guard: %v", err)
	}
	if err := svc.RequireRole(ctx, buyerID, userdomain.RoleSeller); !errors.Is(err, userdomain.ErrUserNotSeller) {
		t.Fatalf("expected ErrUserNotSeller, got %v", err)
	}
	if err := svc.RequireRole(ctx, buyerID, userdomain.RoleAdmin); !errors.Is(err, userdomain.ErrUserNotAdmin) {
		t.Fatalf("expected ErrUserNotAdmin, got %v", err)
	}
	if err := svc.RequireRole(ctx, snowflake.ID(424242), userdomain.RoleBuyer); !errors.Is(err, userdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func setupUserService(t *testing.T, node *snowflake.Node) (userdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	prepareUserSchema(t, db)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func prepareUserSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		approved_snapshot_id INTEGER,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create users table: %v", err)
	}
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
