package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/cache"
	"github.com/harborworks/chandlery/internal/clock"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
	"github.com/harborworks/chandlery/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  tariffdomain.Repository
	cache cache.TariffCache
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  tariffdomain.Repository
	Cache cache.TariffCache
}

func NewService(p ServiceParam) tariffdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("tariff.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req tariffdomain.CreateTariffRequest) (tariffdomain.TariffResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return tariffdomain.TariffResponse{}, tariffdomain.ErrInvalidName
	}
	if req.MaxOrdersPerMonth <= 0 {
		return tariffdomain.TariffResponse{}, tariffdomain.ErrInvalidMaxOrders
	}
	if req.PriceCents < 0 {
		return tariffdomain.TariffResponse{}, tariffdomain.ErrInvalidPrice
	}

	billingPeriodMonths := req.BillingPeriodMonths
	if billingPeriodMonths == 0 {
		billingPeriodMonths = 1
	}
	if billingPeriodMonths < 1 {
		return tariffdomain.TariffResponse{}, tariffdomain.ErrInvalidBillingPeriod
	}

	now := s.clock.Now()
	tariff := tariffdomain.Tariff{
		ID:                  s.genID.Generate(),
		Name:                name,
		MaxOrdersPerMonth:   req.MaxOrdersPerMonth,
		PriceCents:          req.PriceCents,
		BillingPeriodMonths: billingPeriodMonths,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, &tariff); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return tariffdomain.TariffResponse{}, tariffdomain.ErrTariffExists
		}
		return tariffdomain.TariffResponse{}, err
	}

	s.log.Info("tariff created",
		zap.String("tariff_id", tariff.ID.String()),
		zap.String("name", tariff.Name),
		zap.Int("max_orders_per_month", tariff.MaxOrdersPerMonth),
	)

	return toResponse(tariff), nil
}

func (s *Service) List(ctx context.Context) ([]tariffdomain.TariffResponse, error) {
	tariffs, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	out := make([]tariffdomain.TariffResponse, 0, len(tariffs))
	for _, tariff := range tariffs {
		out = append(out, toResponse(tariff))
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (tariffdomain.TariffResponse, error) {
	tariffID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || tariffID == 0 {
		return tariffdomain.TariffResponse{}, tariffdomain.ErrInvalidTariff
	}

	tariff, err := s.Get(ctx, tariffID)
	if err != nil {
		return tariffdomain.TariffResponse{}, err
	}
	return toResponse(*tariff), nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*tariffdomain.Tariff, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(id); ok {
			return cached, nil
		}
	}

	tariff, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, tariffdomain.ErrTariffNotFound
	}

	if s.cache != nil {
		s.cache.Set(id, tariff)
	}
	return tariff, nil
}

func toResponse(tariff tariffdomain.Tariff) tariffdomain.TariffResponse {
	return tariffdomain.TariffResponse{
		ID:                  tariff.ID.String(),
		Name:                tariff.Name,
		MaxOrdersPerMonth:   tariff.MaxOrdersPerMonth,
		PriceCents:          tariff.PriceCents,
		BillingPeriodMonths: tariff.BillingPeriodMonths,
	}
}
