package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/cache"
	"github.com/harborworks/chandlery/internal/clock"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	"github.com/harborworks/chandlery/internal/quota/repository"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	tariffrepository "github.com/harborworks/chandlery/internal/tariff/repository"
	tariffservice "github.com/harborworks/chandlery/internal/tariff/service"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	userrepository "github.com/harborworks/chandlery/internal/user/repository"
	userservice "github.com/harborworks/chandlery/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// counterStub stands in for the order store.
type counterStub struct {
	count int64
	err   error

	gotStart time.Time
	gotEnd   time.Time
}

func (c *counterStub) CountInWindow(ctx context.Context, db *gorm.DB, buyerID snowflake.ID, start, end time.Time) (int64, error) {
	c.gotStart = start
	c.gotEnd = end
	return c.count, c.err
}

func TestSubscribeKeepsSingleActiveEntry(t *testing.T) {
	env := setupQuotaEnv(t)
	ctx := context.Background()

	first, err := env.svc.Subscribe(ctx, quotadomain.SubscribeRequest{
		BuyerID:  env.buyerID.String(),
		TariffID: env.tariffID.String(),
	})
	if err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	if !first.Active {
		t.Fatalf("new subscription must be active")
	}

	env.fc.Advance(72 * time.Hour)
	second, err := env.svc.Subscribe(ctx, quotadomain.SubscribeRequest{
		BuyerID:  env.buyerID.String(),
		TariffID: env.tariffID.String(),
	})
	if err != nil {
		t.Fatalf("subscribe second: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("re-subscribe must create a new ledger entry")
	}

	var active, total int64
	if err := env.db.Raw(`SELECT COUNT(1) FROM quota_ledger_entries WHERE buyer_id = ? AND active = true`, env.buyerID).Scan(&active).Error; err != nil {
		t.Fatalf("count active: %v", err)
	}
	if err := env.db.Raw(`SELECT COUNT(1) FROM quota_ledger_entries WHERE buyer_id = ?`, env.buyerID).Scan(&total).Error; err != nil {
		t.Fatalf("count total: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected exactly one active ledger entry, got %d", active)
	}
	if total != 2 {
		t.Fatalf("expected history preserved, got %d entries", total)
	}

	resolved, err := env.svc.ActiveSubscription(ctx, env.buyerID.String())
	if err != nil {
		t.Fatalf("active subscription: %v", err)
	}
	if resolved.ID != second.ID {
		t.Fatalf("expected latest entry active, got %s", resolved.ID)
	}
}

func TestSubscribeRequiresBuyerRole(t *testing.T) {
	env := setupQuotaEnv(t)

	_, err := env.svc.Subscribe(context.Background(), quotadomain.SubscribeRequest{
		BuyerID:  env.sellerID.String(),
		TariffID: env.tariffID.String(),
	})
	if !errors.Is(err, userdomain.ErrUserNotBuyer) {
		t.Fatalf("expected ErrUserNotBuyer, got %v", err)
	}
}

func TestSubscribeUnknownTariff(t *testing.T) {
	env := setupQuotaEnv(t)

	_, err := env.svc.Subscribe(context.Background(), quotadomain.SubscribeRequest{
		BuyerID:  env.buyerID.String(),
		TariffID: "999999",
	})
	if !errors.Is(err, tariffdomain.ErrTariffNotFound) {
		t.Fatalf("expected ErrTariffNotFound, got %v", err)
	}
}

func TestActiveSubscriptionWithoutEntry(t *testing.T) {
	env := setupQuotaEnv(t)

	_, err := env.svc.ActiveSubscription(context.Background(), env.buyerID.String())
	if !errors.Is(err, quotadomain.ErrNoActiveTariff) {
		t.Fatalf("expected ErrNoActiveTariff, got %v", err)
	}
}

func TestAuthorizeWithoutSubscription(t *testing.T) {
	env := setupQuotaEnv(t)

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.svc.Authorize(context.Background(), tx, env.buyerID, env.fc.Now())
	})
	if !errors.Is(err, quotadomain.ErrNoActiveTariff) {
		t.Fatalf("expected ErrNoActiveTariff, got %v", err)
	}
}

func TestAuthorizeUnderAndAtLimit(t *testing.T) {
	env := setupQuotaEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Subscribe(ctx, quotadomain.SubscribeRequest{
		BuyerID:  env.buyerID.String(),
		TariffID: env.tariffID.String(),
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	env.counter.count = 3 // tariff max is 4
	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.svc.Authorize(ctx, tx, env.buyerID, env.fc.Now())
	})
	if err != nil {
		t.Fatalf("expected authorization under limit, got %v", err)
	}

	env.counter.count = 4
	err = env.db.Transaction(func(tx *gorm.DB) error {
		return env.svc.Authorize(ctx, tx, env.buyerID, env.fc.Now())
	})
	if !errors.Is(err, quotadomain.ErrOrderLimitReached) {
		t.Fatalf("expected ErrOrderLimitReached at limit, got %v", err)
	}
}

func TestAuthorizeResolvesWindowFromAnchor(t *testing.T) {
	env := setupQuotaEnv(t)
	ctx := context.Background()

	anchor := env.fc.Now().Add(-14 * 24 * time.Hour)
	if _, err := env.svc.Subscribe(ctx, quotadomain.SubscribeRequest{
		BuyerID:  env.buyerID.String(),
		TariffID: env.tariffID.String(),
		Anchor:   &anchor,
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.svc.Authorize(ctx, tx, env.buyerID, env.fc.Now())
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}

	if !env.counter.gotStart.Equal(anchor) {
		t.Fatalf("expected window start at anchor %v, got %v", anchor, env.counter.gotStart)
	}
	if want := anchor.Add(30 * 24 * time.Hour); !env.counter.gotEnd.Equal(want) {
		t.Fatalf("expected window end %v, got %v", want, env.counter.gotEnd)
	}
}

type quotaEnv struct {
	svc      quotadomain.Service
	db       *gorm.DB
	fc       *clock.FakeClock
	counter  *counterStub
	buyerID  snowflake.ID
	sellerID snowflake.ID
	tariffID snowflake.ID
}

func setupQuotaEnv(t *testing.T) *quotaEnv {
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
	prepareQuotaSchema(t, db)

	fc := clock.NewFakeClock(time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	userSvc := userservice.NewService(userservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Repo:  userrepository.Provide(),
	})
	tariffSvc := tariffservice.NewService(tariffservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fc,
		Repo:  tariffrepository.Provide(),
		Cache: cache.NewTariffCache(),
	})

	counter := &counterStub{}
	svc := NewService(ServiceParam{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fc,
		Repo:    repository.Provide(),
		Orders:  counter,
		UserSvc: userSvc,
		Tariffs: tariffSvc,
	})

	ctx := context.Background()
	buyer, err := userSvc.Create(ctx, userdomain.CreateUserRequest{Email: "buyer@x.example", Name: "Buyer", Role: "buyer"})
	if err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	seller, err := userSvc.Create(ctx, userdomain.CreateUserRequest{Email: "seller@x.example", Name: "Seller", Role: "seller"})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	tariff, err := tariffSvc.Create(ctx, tariffdomain.CreateTariffRequest{Name: "coastal", MaxOrdersPerMonth: 4, PriceCents: 9900})
	if err != nil {
		t.Fatalf("seed tariff: %v", err)
	}

	buyerID, _ := snowflake.ParseString(buyer.ID)
	sellerID, _ := snowflake.ParseString(seller.ID)
	tariffID, _ := snowflake.ParseString(tariff.ID)

	return &quotaEnv{
		svc:      svc,
		db:       db,
		fc:       fc,
		counter:  counter,
		buyerID:  buyerID,
		sellerID: sellerID,
		tariffID: tariffID,
	}
}

func prepareQuotaSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			approved_snapshot_id INTEGER,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tariffs (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			max_orders_per_month INTEGER NOT NULL,
			price_cents INTEGER NOT NULL,
			billing_period_months INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quota_ledger_entries (
			id INTEGER PRIMARY KEY,
			buyer_id INTEGER NOT NULL,
			tariff_id INTEGER NOT NULL,
			billing_anchor DATETIME NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}
