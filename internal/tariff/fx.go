package tariff

import (
	"github.com/harborworks/chandlery/internal/cache"
	"github.com/harborworks/chandlery/internal/tariff/repository"
	"github.com/harborworks/chandlery/internal/tariff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff.service",
	fx.Provide(cache.NewTariffCache),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
