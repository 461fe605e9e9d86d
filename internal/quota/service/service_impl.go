package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/clock"
	"github.com/harborworks/chandlery/internal/observability/metrics"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    quotadomain.Repository
	orders  quotadomain.OrderCounter
	usersvc userdomain.Service
	tariffs tariffdomain.Service
	metrics *metrics.QuotaMetrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    quotadomain.Repository
	Orders  quotadomain.OrderCounter
	UserSvc userdomain.Service
	Tariffs tariffdomain.Service
	Metrics *metrics.QuotaMetrics `optional:"true"`
}

func NewService(p ServiceParam) quotadomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("quota.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		orders:  p.Orders,
		usersvc: p.UserSvc,
		tariffs: p.Tariffs,
		metrics: p.Metrics,
	}
}

func (s *Service) Subscribe(ctx context.Context, req quotadomain.SubscribeRequest) (quotadomain.SubscriptionResponse, error) {
	buyerID, err := s.parseID(req.BuyerID, quotadomain.ErrInvalidBuyer)
	if err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}
	tariffID, err := s.parseID(req.TariffID, quotadomain.ErrInvalidTariff)
	if err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}

	if err := s.usersvc.RequireRole(ctx, buyerID, userdomain.RoleBuyer); err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}
	if _, err := s.tariffs.Get(ctx, tariffID); err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}

	now := s.clock.Now()
	anchor := now
	if req.Anchor != nil && !req.Anchor.IsZero() {
		anchor = req.Anchor.UTC()
	}

	entry := quotadomain.LedgerEntry{
		ID:            s.genID.Generate(),
		BuyerID:       buyerID,
		TariffID:      tariffID,
		BillingAnchor: anchor,
		Active:        true,
		CreatedAt:     now,
	}

	// Deactivate-then-insert in one transaction keeps the single-active
	// invariant even when a buyer re-subscribes concurrently.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.DeactivateActive(ctx, tx, buyerID); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &entry)
	})
	if err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}

	s.log.Info("buyer subscribed",
		zap.String("buyer_id", buyerID.String()),
		zap.String("tariff_id", tariffID.String()),
		zap.Time("billing_anchor", anchor),
	)

	return toResponse(entry), nil
}

func (s *Service) ActiveSubscription(ctx context.Context, buyerID string) (quotadomain.SubscriptionResponse, error) {
	id, err := s.parseID(buyerID, quotadomain.ErrInvalidBuyer)
	if err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}

	entry, err := s.repo.FindActiveByBuyer(ctx, s.db, id)
	if err != nil {
		return quotadomain.SubscriptionResponse{}, err
	}
	if entry == nil {
		return quotadomain.SubscriptionResponse{}, quotadomain.ErrNoActiveTariff
	}
	return toResponse(*entry), nil
}

// Authorize is the check half of the order-creation check-then-act
// sequence. The FOR UPDATE read of the ledger entry serializes concurrent
// submissions for the same buyer, so two callers can never both observe
// count < max and commit past the cap.
func (s *Service) Authorize(ctx context.Context, tx *gorm.DB, buyerID snowflake.ID, at time.Time) error {
	entry, err := s.repo.FindActiveByBuyerForUpdate(ctx, tx, buyerID)
	if err != nil {
		return err
	}
	if entry == nil {
		s.metrics.RecordRejected("none", "no_active_tariff")
		return quotadomain.ErrNoActiveTariff
	}

	tariff, err := s.tariffs.Get(ctx, entry.TariffID)
	if err != nil {
		return err
	}

	window := quotadomain.ResolvePeriod(entry.BillingAnchor, at, tariff.BillingPeriodMonths)
	count, err := s.orders.CountInWindow(ctx, tx, buyerID, window.Start, window.End)
	if err != nil {
		return err
	}

	if count >= int64(tariff.MaxOrdersPerMonth) {
		s.log.Info("order rejected by quota guard",
			zap.String("buyer_id", buyerID.String()),
			zap.String("tariff_id", tariff.ID.String()),
			zap.Int64("in_window", count),
			zap.Int("max_orders_per_month", tariff.MaxOrdersPerMonth),
			zap.Time("period_start", window.Start),
			zap.Time("period_end", window.End),
		)
		s.metrics.RecordRejected(tariff.Name, "limit_reached")
		return quotadomain.ErrOrderLimitReached
	}

	s.metrics.RecordAccepted(tariff.Name)
	return nil
}

func toResponse(entry quotadomain.LedgerEntry) quotadomain.SubscriptionResponse {
	return quotadomain.SubscriptionResponse{
		ID:            entry.ID.String(),
		BuyerID:       entry.BuyerID.String(),
		TariffID:      entry.TariffID.String(),
		BillingAnchor: entry.BillingAnchor,
		Active:        entry.Active,
	}
}

func (s *Service) parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}
