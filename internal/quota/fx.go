package quota

import (
	"github.com/harborworks/chandlery/internal/quota/repository"
	"github.com/harborworks/chandlery/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
